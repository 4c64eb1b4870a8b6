package engine

import (
	"strings"
	"unicode"
)

// Normalize lowercases the input, collapses runs of whitespace to single
// spaces, and strips punctuation except hyphens between word characters
// ("covid-19" survives, a trailing "-" does not). Empty or non-text input
// normalizes to the empty string, which resolves to the fallback outcome.
func Normalize(s string) string {
	runes := []rune(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case r == '-' && i > 0 && i+1 < len(runes) && isWordRune(runes[i-1]) && isWordRune(runes[i+1]):
			// internal hyphen only; pendingSpace cannot be set here
			// because the previous rune was a word character
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			// punctuation is dropped; surrounding whitespace still collapses
		}
	}

	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
