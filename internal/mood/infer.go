package mood

import (
	"strings"
	"unicode"
)

// FromText guesses a mood from a free-text description by keyword matching.
// Ties go to the mood listed first in Catalog. Returns false when no keyword
// matches.
func FromText(text string) (Mood, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	if len(words) == 0 {
		return Mood{}, false
	}

	best, bestScore := -1, 0
	for i, m := range Catalog {
		score := 0
		for _, w := range words {
			for _, kw := range m.keywords {
				if w == kw {
					score++
				}
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return Mood{}, false
	}
	return Catalog[best], true
}
