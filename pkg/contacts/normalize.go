package contacts

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold trims and case-folds a string for caseless comparison. A fresh
// Caser per call: cases.Caser is stateful and must not be shared across
// goroutines.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// NormalizedName returns the dedup key for a record: the case-folded,
// whitespace-trimmed given and family names joined by "||". A record with
// neither a given nor a family name normalizes to the empty string, and
// empty keys never bucket together.
func NormalizedName(r ContactRecord) string {
	given := fold(r.GivenName)
	family := fold(r.FamilyName)
	if given == "" && family == "" {
		return ""
	}
	return given + "||" + family
}

// NormalizeEmail lower-cases and trims an email address (or URL) for
// comparison.
func NormalizeEmail(value string) string {
	return fold(value)
}

// NormalizePhone strips everything but digits from a phone number.
// A number with no digits normalizes to the empty string.
func NormalizePhone(value string) string {
	var sb strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// foldEqual compares two strings case-insensitively after trimming.
func foldEqual(a, b string) bool {
	return fold(a) == fold(b)
}
