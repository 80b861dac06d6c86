package engine

import "strings"

// MaxWordLength caps accepted candidate words.
const MaxWordLength = 20

// seedVocabulary pads an underfilled option set in this order, skipping
// words already used in the story.
var seedVocabulary = []string{
	"and", "the", "a", "is",
	"to", "of", "in", "it",
	"was", "he", "she", "we",
	"they", "but", "so", "then",
	"very", "with", "for", "on",
}

var profaneWords = map[string]bool{
	"damn": true,
	"hell": true,
	"crap": true,
}

// NormalizeWord lower-cases and trims a raw chat token. Validation happens
// separately so callers can report why a word was dropped.
func NormalizeWord(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidWord reports whether a normalized word is acceptable: non-empty,
// at most MaxWordLength runes, strictly a-z, and not on the denylist.
func ValidWord(w string) bool {
	if w == "" || len(w) > MaxWordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return !profaneWords[w]
}
