package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source records where a card's content came from.
type Source string

// Card sources.
const (
	SourceModel Source = "model"
	SourceMock  Source = "mock"
)

// MemoryTip is a mnemonic for remembering a word.
type MemoryTip struct {
	Kind    TipKind `json:"type"`
	Content string  `json:"content"`
}

// String renders the tip as "Label: content".
func (t MemoryTip) String() string {
	return t.Kind.Label() + ": " + t.Content
}

// Confusable is a word commonly mistaken for the card's word, with a short gloss.
type Confusable struct {
	Word  string `json:"word"`
	Gloss string `json:"gloss"`
}

// String renders the confusable as "word - gloss".
func (c Confusable) String() string {
	if c.Gloss == "" {
		return c.Word
	}
	return c.Word + " - " + c.Gloss
}

// UnmarshalJSON accepts either an object with word and gloss, or a single
// "word - gloss" string as most models emit.
func (c *Confusable) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ParseConfusable(s)
		return nil
	}

	type plain Confusable
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("confusable must be a string or an object: %w", err)
	}
	*c = Confusable(p)
	return nil
}

// ParseConfusable splits "word - gloss" (also accepting ":" and the full-width
// colon as separators).
func ParseConfusable(s string) Confusable {
	s = strings.TrimSpace(s)
	for _, sep := range []string{" - ", "：", ":", " – "} {
		if word, gloss, ok := strings.Cut(s, sep); ok {
			return Confusable{Word: strings.TrimSpace(word), Gloss: strings.TrimSpace(gloss)}
		}
	}
	return Confusable{Word: s}
}

// RawCard is the provider-agnostic payload decoded from a model response.
// Nothing about it has been checked; see CardValidator.
type RawCard struct {
	Word         string       `json:"word,omitempty"`
	Phonetic     string       `json:"phonetic"`
	PartOfSpeech string       `json:"part_of_speech"`
	Meaning      string       `json:"meaning"`
	MemoryTip    *MemoryTip   `json:"memory_tip"`
	Examples     []string     `json:"examples"`
	Synonyms     []string     `json:"synonyms"`
	Confusables  []Confusable `json:"confusables"`
}

// Card is a RawCard that passed validation, keyed by its source word.
type Card struct {
	Word         string       `json:"word"`
	Phonetic     string       `json:"phonetic"`
	PartOfSpeech string       `json:"part_of_speech"`
	Meaning      string       `json:"meaning"`
	MemoryTip    MemoryTip    `json:"memory_tip"`
	Examples     []string     `json:"examples"`
	Synonyms     []string     `json:"synonyms"`
	Confusables  []Confusable `json:"confusables"`
	Source       Source       `json:"source"`
	GeneratedAt  time.Time    `json:"generated_at"`

	validated bool
}

// Validated reports whether the card was produced by CardValidator.
func (c *Card) Validated() bool {
	return c != nil && c.validated
}

// IsMock reports whether the card was synthesized by mock mode.
func (c *Card) IsMock() bool {
	return c.Source == SourceMock
}

// Tags returns the deck tags for the card: the fixed vocabulary tags, the
// part of speech and the memory tip kind.
func (c *Card) Tags() []string {
	tags := []string{"english", "vocabulary"}
	if pos := strings.TrimSuffix(c.PartOfSpeech, "."); pos != "" {
		tags = append(tags, "pos_"+strings.ReplaceAll(pos, " ", "_"))
	}
	if c.MemoryTip.Kind != "" {
		tags = append(tags, "tip_"+string(c.MemoryTip.Kind))
	}
	if c.IsMock() {
		tags = append(tags, "mock")
	}
	return tags
}
