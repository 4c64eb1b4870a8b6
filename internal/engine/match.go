package engine

import "strings"

// contains is the single matching primitive: phrase matching is a plain
// contiguous-substring test over already-normalized text. Multi-word
// phrases match as whole substrings, not token by token. Swapping this
// for tokenized or fuzzy matching must not touch scoring or resolution.
func contains(normalized, phrase string) bool {
	return strings.Contains(normalized, phrase)
}
