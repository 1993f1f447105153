// Package merge reduces a duplicate cluster into a single golden contact.
//
// The merge policy is strictly additive: singular fields are filled by the
// first non-empty value in cluster order, notes are unioned, and multi-valued
// labeled fields are unioned with duplicate suppression. Nothing contributed
// by any cluster member is ever overwritten or dropped, and merging a golden
// contact with itself reproduces it unchanged.
package merge

import (
	"strings"

	"github.com/agentstation/contactmirror/pkg/contacts"
)

// Golden merges a non-empty cluster into one golden contact. The cluster
// members are folded left to right; a singleton cluster degenerates to a
// same-shaped copy, so the save stage has a single uniform input type.
//
// Calling Golden with an empty cluster is a programming error and panics.
func Golden(cluster []contacts.ContactRecord, opts ...Option) contacts.GoldenContact {
	if len(cluster) == 0 {
		panic("merge: cluster must not be empty")
	}

	options := newOptions(opts...)

	var golden contacts.GoldenContact
	for _, member := range cluster {
		fold(&golden, member, options)
	}
	return golden
}

// fold merges one cluster member into the accumulator.
func fold(golden *contacts.GoldenContact, member contacts.ContactRecord, options *options) {
	// Singular text fields: first non-empty value wins, later values are
	// discarded once a value is set.
	fillString(&golden.GivenName, member.GivenName)
	fillString(&golden.FamilyName, member.FamilyName)
	fillString(&golden.MiddleName, member.MiddleName)
	fillString(&golden.Nickname, member.Nickname)
	fillString(&golden.OrganizationName, member.OrganizationName)
	fillString(&golden.DepartmentName, member.DepartmentName)
	fillString(&golden.JobTitle, member.JobTitle)

	// First non-null birthday and image win.
	if golden.Birthday == nil && member.Birthday != nil {
		b := *member.Birthday
		golden.Birthday = &b
	}
	if golden.ImageData == nil && len(member.ImageData) > 0 {
		golden.ImageData = append([]byte(nil), member.ImageData...)
	}

	golden.Note = mergeNote(golden.Note, member.Note, options.noteDelimiter)

	// Multi-valued labeled fields: union with duplicate suppression,
	// preserving order of first appearance.
	for _, phone := range member.Phones {
		if !containsLabeled(golden.Phones, phone, contacts.EqualPhones) {
			golden.Phones = append(golden.Phones, phone)
		}
	}
	for _, email := range member.Emails {
		if !containsLabeled(golden.Emails, email, contacts.EqualEmails) {
			golden.Emails = append(golden.Emails, email)
		}
	}
	for _, url := range member.URLs {
		if !containsLabeled(golden.URLs, url, contacts.EqualURLs) {
			golden.URLs = append(golden.URLs, url)
		}
	}
	for _, addr := range member.PostalAddresses {
		if !containsAddress(golden.PostalAddresses, addr) {
			golden.PostalAddresses = append(golden.PostalAddresses, addr)
		}
	}
	for _, profile := range member.SocialProfiles {
		if !containsProfile(golden.SocialProfiles, profile) {
			golden.SocialProfiles = append(golden.SocialProfiles, profile)
		}
	}
	for _, handle := range member.InstantMessages {
		if !containsProfile(golden.InstantMessages, handle) {
			golden.InstantMessages = append(golden.InstantMessages, handle)
		}
	}
	for _, date := range member.Dates {
		if !containsDate(golden.Dates, date) {
			golden.Dates = append(golden.Dates, date)
		}
	}
}

// fillString sets dst only if it is still empty and src is not.
func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// mergeNote is a concatenative union: a trimmed incoming note is appended
// unless it is already a substring of the accumulated note. Repeated
// identical notes never duplicate; distinct notes from different sources
// are all preserved.
func mergeNote(current, incoming, delimiter string) string {
	current = strings.TrimSpace(current)
	incoming = strings.TrimSpace(incoming)

	if incoming == "" {
		return current
	}
	if current == "" {
		return incoming
	}
	if strings.Contains(current, incoming) {
		return current
	}
	return current + delimiter + incoming
}

func containsLabeled(existing []contacts.LabeledValue, candidate contacts.LabeledValue, equal func(a, b contacts.LabeledValue) bool) bool {
	for _, e := range existing {
		if equal(e, candidate) {
			return true
		}
	}
	return false
}

func containsAddress(existing []contacts.PostalAddress, candidate contacts.PostalAddress) bool {
	for _, e := range existing {
		if e.Equal(candidate) {
			return true
		}
	}
	return false
}

func containsProfile(existing []contacts.Profile, candidate contacts.Profile) bool {
	for _, e := range existing {
		if e.Equal(candidate) {
			return true
		}
	}
	return false
}

func containsDate(existing []contacts.LabeledDate, candidate contacts.LabeledDate) bool {
	for _, e := range existing {
		if e.Equal(candidate) {
			return true
		}
	}
	return false
}
