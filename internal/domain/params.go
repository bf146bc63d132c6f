package domain

import (
	"fmt"
	"strings"
)

// TipKind is the mnemonic technique used by a memory tip.
type TipKind string

// Recognized memory tip kinds.
const (
	TipHomophone   TipKind = "homophone"
	TipSplit       TipKind = "split"
	TipRoot        TipKind = "root"
	TipAssociation TipKind = "association"
	TipStory       TipKind = "story"
)

// tipAliases maps every accepted spelling of a tip kind to its canonical form.
// Models trained on Chinese vocabulary material often answer with the
// Chinese technique names.
var tipAliases = map[string]TipKind{
	"homophone":   TipHomophone,
	"谐音法":         TipHomophone,
	"谐音":          TipHomophone,
	"split":       TipSplit,
	"拆分法":         TipSplit,
	"拆分":          TipSplit,
	"root":        TipRoot,
	"etymology":   TipRoot,
	"词根法":         TipRoot,
	"词根":          TipRoot,
	"association": TipAssociation,
	"联想法":         TipAssociation,
	"联想":          TipAssociation,
	"story":       TipStory,
	"故事法":         TipStory,
}

// ParseTipKind returns the canonical TipKind for s, or false when s names no
// known technique.
func ParseTipKind(s string) (TipKind, bool) {
	kind, ok := tipAliases[strings.ToLower(strings.TrimSpace(s))]
	return kind, ok
}

// Label returns the human-readable name of the kind.
func (k TipKind) Label() string {
	switch k {
	case TipHomophone:
		return "Homophone"
	case TipSplit:
		return "Word split"
	case TipRoot:
		return "Word root"
	case TipAssociation:
		return "Association"
	case TipStory:
		return "Story"
	default:
		return string(k)
	}
}

// GenerationParams controls how much content is requested per word.
type GenerationParams struct {
	ExampleCount    int       `json:"example_count"`
	SynonymCount    int       `json:"synonym_count"`
	ConfusableCount int       `json:"confusable_count"`
	TipKinds        []TipKind `json:"tip_kinds"`
}

// DefaultGenerationParams returns the parameters used when none are configured.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		ExampleCount:    3,
		SynonymCount:    3,
		ConfusableCount: 2,
		TipKinds:        []TipKind{TipHomophone, TipSplit, TipRoot},
	}
}

// Validate checks the parameters against the validator limits so that a
// request never asks for more than a card may hold.
func (p GenerationParams) Validate(limits ValidationLimits) error {
	if p.ExampleCount < 1 || p.ExampleCount > limits.MaxExamples {
		return fmt.Errorf("%w: example count %d not in [1, %d]", ErrInvalidParams, p.ExampleCount, limits.MaxExamples)
	}
	if p.SynonymCount < 0 || p.SynonymCount > limits.MaxSynonyms {
		return fmt.Errorf("%w: synonym count %d not in [0, %d]", ErrInvalidParams, p.SynonymCount, limits.MaxSynonyms)
	}
	if p.ConfusableCount < 0 || p.ConfusableCount > limits.MaxConfusables {
		return fmt.Errorf(
			"%w: confusable count %d not in [0, %d]",
			ErrInvalidParams,
			p.ConfusableCount,
			limits.MaxConfusables,
		)
	}
	if len(p.TipKinds) == 0 {
		return fmt.Errorf("%w: at least one tip kind is required", ErrInvalidParams)
	}
	for _, kind := range p.TipKinds {
		if _, ok := ParseTipKind(string(kind)); !ok {
			return fmt.Errorf("%w: unknown tip kind %q", ErrInvalidParams, kind)
		}
	}
	return nil
}
