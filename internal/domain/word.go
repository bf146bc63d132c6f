package domain

import (
	"fmt"
	"strings"
)

// MaxWordLength bounds a single requested word.
const MaxWordLength = 50

// NormalizeWord trims and lowercases a requested word and checks that it is a
// plain ASCII English word. Hyphens and apostrophes are allowed inside the
// word ("well-being", "o'clock"). The normalized form is also the run cache key.
func NormalizeWord(raw string) (string, error) {
	word := strings.ToLower(strings.TrimSpace(raw))
	if word == "" {
		return "", fmt.Errorf("%w: word is empty", ErrInvalidWord)
	}
	if len(word) > MaxWordLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidWord, word, MaxWordLength)
	}

	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= 'a' && c <= 'z':
		case (c == '-' || c == '\'') && i > 0 && i < len(word)-1:
		default:
			return "", fmt.Errorf("%w: %q contains unsupported character %q", ErrInvalidWord, raw, c)
		}
	}

	return word, nil
}
