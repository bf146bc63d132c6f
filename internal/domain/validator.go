package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationLimits bounds the content of a card.
type ValidationLimits struct {
	MaxExamples      int `json:"max_examples"`
	MaxSynonyms      int `json:"max_synonyms"`
	MaxConfusables   int `json:"max_confusables"`
	MaxMeaningLength int `json:"max_meaning_length"`
}

// DefaultValidationLimits returns the limits used when none are configured.
func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxExamples:      5,
		MaxSynonyms:      10,
		MaxConfusables:   5,
		MaxMeaningLength: 500,
	}
}

// partsOfSpeech maps spelled-out and bare abbreviations to the dotted form
// used on cards.
var partsOfSpeech = map[string]string{
	"n": "n.", "noun": "n.",
	"v": "v.", "verb": "v.",
	"adj": "adj.", "adjective": "adj.",
	"adv": "adv.", "adverb": "adv.",
	"prep": "prep.", "preposition": "prep.",
	"conj": "conj.", "conjunction": "conj.",
	"interj": "interj.", "interjection": "interj.",
	"pron": "pron.", "pronoun": "pron.",
	"art": "art.", "article": "art.",
	"num": "num.", "numeral": "num.",
}

// NormalizePartOfSpeech returns the dotted abbreviation for pos. Unknown
// values are returned trimmed and unchanged.
func NormalizePartOfSpeech(pos string) string {
	pos = strings.TrimSpace(pos)
	key := strings.TrimSuffix(strings.ToLower(pos), ".")
	if abbr, ok := partsOfSpeech[key]; ok {
		return abbr
	}
	return pos
}

// CardValidator checks raw model output against the card shape. It is
// deterministic and safe for concurrent use.
type CardValidator struct {
	limits ValidationLimits
}

// NewCardValidator creates a validator with the given limits.
func NewCardValidator(limits ValidationLimits) *CardValidator {
	return &CardValidator{limits: limits}
}

// Limits returns the limits the validator enforces.
func (v *CardValidator) Limits() ValidationLimits {
	return v.limits
}

// Validate checks raw and returns the validated Card for word.
//
// Checks run in a fixed order and the first failure is returned as a
// *ValidationError naming the offending field. An empty string counts as a
// missing field; a whitespace-only string counts as an empty one. Nothing is
// repaired apart from trimming whitespace and normalizing the part of speech
// and tip kind spellings.
//
// Parameters:
//   - word: the normalized source word, used as the card key
//   - raw: the decoded model payload
//   - source: whether the payload came from a model or from mock mode
//   - generatedAt: the generation timestamp recorded on the card
//
// Returns:
//   - The validated card
//   - A *ValidationError if any check fails
func (v *CardValidator) Validate(word string, raw *RawCard, source Source, generatedAt time.Time) (*Card, error) {
	if raw == nil {
		return nil, newValidationError(ValidationMissingField, "response", "no card payload")
	}
	if err := checkEncoding(raw); err != nil {
		return nil, err
	}

	phonetic, err := requireText("phonetic", raw.Phonetic)
	if err != nil {
		return nil, err
	}
	pos, err := requireText("part_of_speech", raw.PartOfSpeech)
	if err != nil {
		return nil, err
	}
	meaning, err := requireText("meaning", raw.Meaning)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(meaning); n > v.limits.MaxMeaningLength {
		return nil, newValidationError(ValidationCountMismatch, "meaning",
			"%d characters exceeds limit %d", n, v.limits.MaxMeaningLength)
	}

	tip, err := checkMemoryTip(raw.MemoryTip)
	if err != nil {
		return nil, err
	}

	examples, err := v.checkExamples(raw.Examples)
	if err != nil {
		return nil, err
	}

	synonyms, err := v.checkSynonyms(raw.Synonyms)
	if err != nil {
		return nil, err
	}

	confusables, err := v.checkConfusables(raw.Confusables)
	if err != nil {
		return nil, err
	}

	return &Card{
		Word:         word,
		Phonetic:     phonetic,
		PartOfSpeech: NormalizePartOfSpeech(pos),
		Meaning:      meaning,
		MemoryTip:    tip,
		Examples:     examples,
		Synonyms:     synonyms,
		Confusables:  confusables,
		Source:       source,
		GeneratedAt:  generatedAt,
		validated:    true,
	}, nil
}

func (v *CardValidator) checkExamples(raw []string) ([]string, error) {
	if raw == nil {
		return nil, newValidationError(ValidationMissingField, "examples", "no examples")
	}
	if len(raw) < 1 || len(raw) > v.limits.MaxExamples {
		return nil, newValidationError(ValidationCountMismatch, "examples",
			"got %d, want between 1 and %d", len(raw), v.limits.MaxExamples)
	}

	examples := make([]string, 0, len(raw))
	for i, example := range raw {
		text, err := requireText(fmt.Sprintf("examples[%d]", i), example)
		if err != nil {
			return nil, err
		}
		examples = append(examples, text)
	}
	return examples, nil
}

func (v *CardValidator) checkSynonyms(raw []string) ([]string, error) {
	if len(raw) > v.limits.MaxSynonyms {
		return nil, newValidationError(ValidationCountMismatch, "synonyms",
			"got %d, want at most %d", len(raw), v.limits.MaxSynonyms)
	}

	synonyms := make([]string, 0, len(raw))
	for i, synonym := range raw {
		text, err := requireText(fmt.Sprintf("synonyms[%d]", i), synonym)
		if err != nil {
			return nil, err
		}
		synonyms = append(synonyms, text)
	}
	return synonyms, nil
}

func (v *CardValidator) checkConfusables(raw []Confusable) ([]Confusable, error) {
	if len(raw) > v.limits.MaxConfusables {
		return nil, newValidationError(ValidationCountMismatch, "confusables",
			"got %d, want at most %d", len(raw), v.limits.MaxConfusables)
	}

	confusables := make([]Confusable, 0, len(raw))
	for i, c := range raw {
		word, err := requireText(fmt.Sprintf("confusables[%d].word", i), c.Word)
		if err != nil {
			return nil, err
		}
		gloss, err := requireText(fmt.Sprintf("confusables[%d].gloss", i), c.Gloss)
		if err != nil {
			return nil, err
		}
		confusables = append(confusables, Confusable{Word: word, Gloss: gloss})
	}
	return confusables, nil
}

func checkMemoryTip(raw *MemoryTip) (MemoryTip, error) {
	if raw == nil {
		return MemoryTip{}, newValidationError(ValidationMissingField, "memory_tip", "no memory tip")
	}
	if strings.TrimSpace(string(raw.Kind)) == "" {
		return MemoryTip{}, newValidationError(ValidationMissingField, "memory_tip.type", "no tip kind")
	}
	kind, ok := ParseTipKind(string(raw.Kind))
	if !ok {
		return MemoryTip{}, newValidationError(ValidationMissingField, "memory_tip.type",
			"unrecognized tip kind %q", raw.Kind)
	}
	content, err := requireText("memory_tip.content", raw.Content)
	if err != nil {
		return MemoryTip{}, err
	}
	return MemoryTip{Kind: kind, Content: content}, nil
}

func requireText(field, value string) (string, error) {
	if value == "" {
		return "", newValidationError(ValidationMissingField, field, "value is missing")
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", newValidationError(ValidationEmptyField, field, "value is blank")
	}
	return trimmed, nil
}

type textField struct {
	name  string
	value string
}

// checkEncoding rejects any text field that is not valid UTF-8.
func checkEncoding(raw *RawCard) error {
	fields := []textField{
		{"phonetic", raw.Phonetic},
		{"part_of_speech", raw.PartOfSpeech},
		{"meaning", raw.Meaning},
	}
	if raw.MemoryTip != nil {
		fields = append(fields,
			textField{"memory_tip.type", string(raw.MemoryTip.Kind)},
			textField{"memory_tip.content", raw.MemoryTip.Content},
		)
	}
	for i, s := range raw.Examples {
		fields = append(fields, textField{fmt.Sprintf("examples[%d]", i), s})
	}
	for i, s := range raw.Synonyms {
		fields = append(fields, textField{fmt.Sprintf("synonyms[%d]", i), s})
	}
	for i, c := range raw.Confusables {
		fields = append(fields, textField{fmt.Sprintf("confusables[%d]", i), c.Word + c.Gloss})
	}

	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return newValidationError(ValidationEncoding, f.name, "not valid UTF-8")
		}
	}
	return nil
}
