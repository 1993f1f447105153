// Package contacts defines the contact record model shared by the
// clustering, merge, and sync packages. Records are immutable snapshots
// fetched from a single account; merged output is represented by
// GoldenContact, which carries no origin account.
package contacts

// AccountID represents an account/container identifier for compile-time safety.
type AccountID string

// String returns the string representation of an AccountID.
func (aid AccountID) String() string {
	return string(aid)
}

// ContactRecord is a snapshot of one contact as stored in one account.
// The ID is unique within its origin account only; the same person may
// appear in several accounts under unrelated IDs. A ContactRecord is
// never mutated after fetch.
type ContactRecord struct {
	// Identity
	ID        string    `json:"id" yaml:"id"`                 // Stable within the origin account only
	AccountID AccountID `json:"account_id" yaml:"account_id"` // Owning account/container

	// Name
	GivenName  string `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	Nickname   string `json:"nickname,omitempty" yaml:"nickname,omitempty"`

	// Work
	OrganizationName string `json:"organization_name,omitempty" yaml:"organization_name,omitempty"`
	DepartmentName   string `json:"department_name,omitempty" yaml:"department_name,omitempty"`
	JobTitle         string `json:"job_title,omitempty" yaml:"job_title,omitempty"`

	// Free-form
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
	Birthday  *Date  `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	ImageData []byte `json:"image_data,omitempty" yaml:"image_data,omitempty"`

	// Multi-valued labeled fields
	Phones          []LabeledValue  `json:"phones,omitempty" yaml:"phones,omitempty"`
	Emails          []LabeledValue  `json:"emails,omitempty" yaml:"emails,omitempty"`
	PostalAddresses []PostalAddress `json:"postal_addresses,omitempty" yaml:"postal_addresses,omitempty"`
	URLs            []LabeledValue  `json:"urls,omitempty" yaml:"urls,omitempty"`
	SocialProfiles  []Profile       `json:"social_profiles,omitempty" yaml:"social_profiles,omitempty"`
	InstantMessages []Profile       `json:"instant_messages,omitempty" yaml:"instant_messages,omitempty"`
	Dates           []LabeledDate   `json:"dates,omitempty" yaml:"dates,omitempty"`
}

// GoldenContact is the canonical record produced by merging a duplicate
// cluster. It is structurally a ContactRecord without ID or AccountID:
// it has no single origin and is inserted fresh into every target account.
type GoldenContact struct {
	GivenName  string `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	Nickname   string `json:"nickname,omitempty" yaml:"nickname,omitempty"`

	OrganizationName string `json:"organization_name,omitempty" yaml:"organization_name,omitempty"`
	DepartmentName   string `json:"department_name,omitempty" yaml:"department_name,omitempty"`
	JobTitle         string `json:"job_title,omitempty" yaml:"job_title,omitempty"`

	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
	Birthday  *Date  `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	ImageData []byte `json:"image_data,omitempty" yaml:"image_data,omitempty"`

	Phones          []LabeledValue  `json:"phones,omitempty" yaml:"phones,omitempty"`
	Emails          []LabeledValue  `json:"emails,omitempty" yaml:"emails,omitempty"`
	PostalAddresses []PostalAddress `json:"postal_addresses,omitempty" yaml:"postal_addresses,omitempty"`
	URLs            []LabeledValue  `json:"urls,omitempty" yaml:"urls,omitempty"`
	SocialProfiles  []Profile       `json:"social_profiles,omitempty" yaml:"social_profiles,omitempty"`
	InstantMessages []Profile       `json:"instant_messages,omitempty" yaml:"instant_messages,omitempty"`
	Dates           []LabeledDate   `json:"dates,omitempty" yaml:"dates,omitempty"`
}

// Record converts the golden contact into a ContactRecord snapshot for the
// given account. The ID is left empty: stores assign identifiers on insert.
func (g GoldenContact) Record(accountID AccountID) ContactRecord {
	return ContactRecord{
		AccountID:        accountID,
		GivenName:        g.GivenName,
		FamilyName:       g.FamilyName,
		MiddleName:       g.MiddleName,
		Nickname:         g.Nickname,
		OrganizationName: g.OrganizationName,
		DepartmentName:   g.DepartmentName,
		JobTitle:         g.JobTitle,
		Note:             g.Note,
		Birthday:         g.Birthday,
		ImageData:        g.ImageData,
		Phones:           g.Phones,
		Emails:           g.Emails,
		PostalAddresses:  g.PostalAddresses,
		URLs:             g.URLs,
		SocialProfiles:   g.SocialProfiles,
		InstantMessages:  g.InstantMessages,
		Dates:            g.Dates,
	}
}

// Golden converts a record into a GoldenContact with identical content.
// Safe-set records pass through the save stage in this shape so the save
// fan-out has a single uniform input type.
func (r ContactRecord) Golden() GoldenContact {
	return GoldenContact{
		GivenName:        r.GivenName,
		FamilyName:       r.FamilyName,
		MiddleName:       r.MiddleName,
		Nickname:         r.Nickname,
		OrganizationName: r.OrganizationName,
		DepartmentName:   r.DepartmentName,
		JobTitle:         r.JobTitle,
		Note:             r.Note,
		Birthday:         r.Birthday,
		ImageData:        r.ImageData,
		Phones:           r.Phones,
		Emails:           r.Emails,
		PostalAddresses:  r.PostalAddresses,
		URLs:             r.URLs,
		SocialProfiles:   r.SocialProfiles,
		InstantMessages:  r.InstantMessages,
		Dates:            r.Dates,
	}
}

// DisplayName returns a human-readable name for review lists.
func (r ContactRecord) DisplayName() string {
	switch {
	case r.GivenName != "" && r.FamilyName != "":
		return r.GivenName + " " + r.FamilyName
	case r.GivenName != "":
		return r.GivenName
	case r.FamilyName != "":
		return r.FamilyName
	case r.OrganizationName != "":
		return r.OrganizationName
	default:
		return "(no name)"
	}
}
