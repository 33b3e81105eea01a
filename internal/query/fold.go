package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the caseless, NFC-normalised form of s used for matching and
// ordering. "Straße" and "STRASSE" fold to the same string.
//
// A cases.Caser keeps state between calls, so a new one is made each time.
func Fold(s string) string {
	return norm.NFC.String(cases.Fold().String(s))
}

// containsFolded reports whether s contains the already folded needle.
func containsFolded(s, needle string) bool {
	return strings.Contains(Fold(s), needle)
}
