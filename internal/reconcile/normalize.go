package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so "Hämeenlinna"
// and "Hameenlinna" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, strips diacritics, collapses whitespace and trims.
// This is the comparison form used for team names, locations and aliases.
func NormalizeText(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeEqual reports whether two strings are equal in comparison form.
func NormalizeEqual(a, b string) bool {
	return NormalizeText(a) == NormalizeText(b)
}

// Tokens splits a string into normalized whitespace-separated tokens.
func Tokens(s string) []string {
	return strings.Fields(NormalizeText(s))
}

// ContainsWord reports whether word appears as a whole token in s, in
// comparison form.
func ContainsWord(s, word string) bool {
	w := NormalizeText(word)
	if w == "" {
		return false
	}
	for _, tok := range Tokens(s) {
		if tok == w {
			return true
		}
	}
	return false
}
