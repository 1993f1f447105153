package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/merge"
)

func TestGoldenEmptyClusterPanics(t *testing.T) {
	assert.Panics(t, func() {
		merge.Golden(nil)
	})
}

func TestGoldenSingularFillOrder(t *testing.T) {
	cluster := []contacts.ContactRecord{
		{AccountID: "acct-1", GivenName: "Jo", FamilyName: "Lee", OrganizationName: ""},
		{AccountID: "acct-2", GivenName: "Jo", FamilyName: "Lee", OrganizationName: "Acme"},
		{AccountID: "acct-3", GivenName: "Jo", FamilyName: "Lee", OrganizationName: "Other"},
	}

	golden := merge.Golden(cluster)
	assert.Equal(t, "Acme", golden.OrganizationName, "first non-empty value wins, later ones ignored")
	assert.Equal(t, "Jo", golden.GivenName)
}

func TestGoldenBirthdayAndImage(t *testing.T) {
	first := contacts.Date{Year: 1980, Month: 1, Day: 2}
	second := contacts.Date{Year: 1990, Month: 3, Day: 4}

	cluster := []contacts.ContactRecord{
		{AccountID: "acct-1"},
		{AccountID: "acct-2", Birthday: &first, ImageData: []byte{0x1}},
		{AccountID: "acct-3", Birthday: &second, ImageData: []byte{0x2}},
	}

	golden := merge.Golden(cluster)
	require.NotNil(t, golden.Birthday)
	assert.True(t, golden.Birthday.Equal(first), "first non-null birthday wins")
	assert.Equal(t, []byte{0x1}, golden.ImageData)
}

func TestGoldenNoteUnion(t *testing.T) {
	tests := []struct {
		name  string
		notes []string
		want  string
	}{
		{
			name:  "distinct notes concatenated",
			notes: []string{"met at conference", "prefers email"},
			want:  "met at conference\nprefers email",
		},
		{
			name:  "identical notes never duplicate",
			notes: []string{"met at conference", "met at conference"},
			want:  "met at conference",
		},
		{
			name:  "substring notes absorbed",
			notes: []string{"met at conference in 2019", "conference"},
			want:  "met at conference in 2019",
		},
		{
			name:  "whitespace-only notes ignored",
			notes: []string{"real note", "   "},
			want:  "real note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster := make([]contacts.ContactRecord, len(tt.notes))
			for i, note := range tt.notes {
				cluster[i] = contacts.ContactRecord{AccountID: contacts.AccountID(string(rune('a' + i))), Note: note}
			}
			assert.Equal(t, tt.want, merge.Golden(cluster).Note)
		})
	}
}

func TestGoldenNoteDelimiterOption(t *testing.T) {
	cluster := []contacts.ContactRecord{
		{AccountID: "acct-1", Note: "one"},
		{AccountID: "acct-2", Note: "two"},
	}

	golden := merge.Golden(cluster, merge.WithNoteDelimiter(" | "))
	assert.Equal(t, "one | two", golden.Note)
}

func TestGoldenLabeledUnion(t *testing.T) {
	cluster := []contacts.ContactRecord{
		{
			AccountID: "acct-1",
			Phones:    []contacts.LabeledValue{{Label: "home", Value: "+1 (555) 010-2030"}},
			Emails:    []contacts.LabeledValue{{Label: "work", Value: "jo@x.com"}},
		},
		{
			AccountID: "acct-2",
			Phones: []contacts.LabeledValue{
				{Label: "home", Value: "15550102030"}, // same digits, suppressed
				{Label: "work", Value: "15550102031"},
			},
			Emails: []contacts.LabeledValue{
				{Label: "work", Value: "JO@X.COM"}, // case-insensitive duplicate
				{Label: "home", Value: "jo@home.net"},
			},
		},
	}

	golden := merge.Golden(cluster)

	require.Len(t, golden.Phones, 2)
	assert.Equal(t, "+1 (555) 010-2030", golden.Phones[0].Value, "order of first appearance preserved")
	assert.Equal(t, "15550102031", golden.Phones[1].Value)

	require.Len(t, golden.Emails, 2)
	assert.Equal(t, "jo@x.com", golden.Emails[0].Value)
	assert.Equal(t, "jo@home.net", golden.Emails[1].Value)
}

func TestGoldenAdditivity(t *testing.T) {
	// Every labeled value present in any member must appear in the result,
	// and no two result entries may be label-equal.
	cluster := []contacts.ContactRecord{
		{
			AccountID:       "acct-1",
			Emails:          []contacts.LabeledValue{{Label: "work", Value: "jo@x.com"}},
			URLs:            []contacts.LabeledValue{{Label: "site", Value: "https://jolee.example"}},
			SocialProfiles:  []contacts.Profile{{Label: "social", Service: "mastodon", Username: "jo"}},
			InstantMessages: []contacts.Profile{{Label: "im", Service: "matrix", Username: "@jo:x"}},
			Dates:           []contacts.LabeledDate{{Label: "anniversary", Date: contacts.Date{Year: 2001, Month: 6, Day: 9}}},
			PostalAddresses: []contacts.PostalAddress{{Label: "home", Street: "1 Main St", City: "Springfield"}},
		},
		{
			AccountID:       "acct-2",
			Emails:          []contacts.LabeledValue{{Label: "home", Value: "jo@home.net"}},
			SocialProfiles:  []contacts.Profile{{Label: "social", Service: "Mastodon", Username: "JO"}},          // duplicate
			PostalAddresses: []contacts.PostalAddress{{Label: "home", Street: "1 main st", City: "SPRINGFIELD"}}, // duplicate
		},
	}

	golden := merge.Golden(cluster)
	assert.Len(t, golden.Emails, 2)
	assert.Len(t, golden.URLs, 1)
	assert.Len(t, golden.SocialProfiles, 1)
	assert.Len(t, golden.InstantMessages, 1)
	assert.Len(t, golden.Dates, 1)
	assert.Len(t, golden.PostalAddresses, 1)
}

func TestGoldenIdempotence(t *testing.T) {
	cluster := []contacts.ContactRecord{
		{
			AccountID:        "acct-1",
			GivenName:        "Jo",
			FamilyName:       "Lee",
			Note:             "met at conference",
			Phones:           []contacts.LabeledValue{{Label: "home", Value: "5550102030"}},
			Emails:           []contacts.LabeledValue{{Label: "work", Value: "jo@x.com"}},
			OrganizationName: "Acme",
		},
		{
			AccountID:  "acct-2",
			GivenName:  "Jo",
			FamilyName: "Lee",
			Note:       "prefers email",
			Emails:     []contacts.LabeledValue{{Label: "home", Value: "jo@home.net"}},
			JobTitle:   "Engineer",
		},
	}

	golden := merge.Golden(cluster)

	// Re-merging the golden contact with itself as the only member must
	// reproduce it exactly.
	again := merge.Golden([]contacts.ContactRecord{golden.Record("acct-1")})
	assert.Equal(t, golden, again)
}

func TestGoldenSingletonCopy(t *testing.T) {
	record := contacts.ContactRecord{
		ID:         "r1",
		AccountID:  "acct-1",
		GivenName:  "Ann",
		FamilyName: "Wu",
		Emails:     []contacts.LabeledValue{{Label: "work", Value: "ann@x.com"}},
	}

	golden := merge.Golden([]contacts.ContactRecord{record})
	assert.Equal(t, record.Golden(), golden)
}
