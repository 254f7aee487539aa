// Package normalize provides canonical name normalization for screening.
// All corpus entries and subject names pass through the same normal form so
// that prefix matching operates on comparable tokens.
package normalize

import "strings"

// stripped holds the punctuation removed from names before comparison.
// Dots, commas, hyphens and apostrophes carry no identity information in
// sanctions list spellings.
var stripped = strings.NewReplacer(".", "", ",", "", "-", "", "'", "")

// Normalize maps a raw value to canonical form: uppercase, punctuation
// stripped, whitespace collapsed, trimmed. Empty input maps to the empty
// string. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s)
	s = stripped.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokens returns the whitespace-separated tokens of the normalized form.
// A value that normalizes to the empty string yields no tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}
