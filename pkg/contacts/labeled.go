package contacts

import "fmt"

// LabeledValue is a (label, value) pair used for phones, emails, and URLs.
// The label is a free-form category such as "home" or "work" and participates
// in duplicate-suppression equality.
type LabeledValue struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Value string `json:"value" yaml:"value"`
}

// PostalAddress is a labeled street address.
type PostalAddress struct {
	Label          string `json:"label,omitempty" yaml:"label,omitempty"`
	Street         string `json:"street,omitempty" yaml:"street,omitempty"`
	City           string `json:"city,omitempty" yaml:"city,omitempty"`
	State          string `json:"state,omitempty" yaml:"state,omitempty"`
	PostalCode     string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Country        string `json:"country,omitempty" yaml:"country,omitempty"`
	ISOCountryCode string `json:"iso_country_code,omitempty" yaml:"iso_country_code,omitempty"`
}

// Profile is a labeled social-network or instant-messaging identity.
type Profile struct {
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Service  string `json:"service" yaml:"service"`
	Username string `json:"username" yaml:"username"`
}

// Date is a civil date. Time of day and era are deliberately absent:
// two dates are the same when their (day, month, year) tuples match.
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String returns the date in ISO 8601 form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// LabeledDate is a labeled calendar date (anniversary, other significant date).
type LabeledDate struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Date  Date   `json:"date" yaml:"date"`
}

// EqualPhones reports labeled equality for phone numbers: labels must match
// exactly and the numbers must agree digit for digit once formatting
// characters are stripped.
func EqualPhones(a, b LabeledValue) bool {
	return a.Label == b.Label && NormalizePhone(a.Value) == NormalizePhone(b.Value)
}

// EqualEmails reports labeled equality for email addresses: labels must match
// exactly and addresses are compared case-insensitively after trimming.
func EqualEmails(a, b LabeledValue) bool {
	return a.Label == b.Label && NormalizeEmail(a.Value) == NormalizeEmail(b.Value)
}

// EqualURLs reports labeled equality for URLs, compared like email addresses.
func EqualURLs(a, b LabeledValue) bool {
	return a.Label == b.Label && NormalizeEmail(a.Value) == NormalizeEmail(b.Value)
}

// Equal reports labeled equality for postal addresses. The comparison is a
// case-insensitive composite of every address component.
func (a PostalAddress) Equal(b PostalAddress) bool {
	return a.Label == b.Label &&
		foldEqual(a.Street, b.Street) &&
		foldEqual(a.City, b.City) &&
		foldEqual(a.State, b.State) &&
		foldEqual(a.PostalCode, b.PostalCode) &&
		foldEqual(a.Country, b.Country) &&
		foldEqual(a.ISOCountryCode, b.ISOCountryCode)
}

// Equal reports labeled equality for social and IM profiles: a
// case-insensitive composite of service and username.
func (a Profile) Equal(b Profile) bool {
	return a.Label == b.Label &&
		foldEqual(a.Service, b.Service) &&
		foldEqual(a.Username, b.Username)
}

// Equal reports labeled equality for dates.
func (a LabeledDate) Equal(b LabeledDate) bool {
	return a.Label == b.Label && a.Date.Equal(b.Date)
}
