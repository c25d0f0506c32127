package core

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, drops every rune that is not a letter, digit or
// whitespace, collapses whitespace runs to a single space and trims.
// All heuristic matching goes through this function.
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits already normalized text into words.
func Tokenize(s string) []string {
	return strings.Fields(s)
}
