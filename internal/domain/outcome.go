package domain

import (
	"time"

	"github.com/google/uuid"
)

// FailureKind classifies why a word produced no card.
type FailureKind string

// Failure kinds.
const (
	FailureTransient   FailureKind = "provider_transient"
	FailurePermanent   FailureKind = "provider_permanent"
	FailureTimeout     FailureKind = "timeout"
	FailureValidation  FailureKind = "validation"
	FailureInvalidWord FailureKind = "invalid_word"
	FailureCancelled   FailureKind = "cancelled"
	FailureInternal    FailureKind = "internal"
)

// Failure describes a word that produced no card.
type Failure struct {
	Word    string      `json:"word"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Outcome is the terminal result for one requested word: exactly one of Card
// and Failure is set.
type Outcome struct {
	Word    string   `json:"word"`
	Card    *Card    `json:"card,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Succeeded returns a successful outcome for card.
func Succeeded(card *Card) Outcome {
	return Outcome{Word: card.Word, Card: card}
}

// Failed returns a failed outcome for word.
func Failed(word string, kind FailureKind, message string) Outcome {
	return Outcome{
		Word:    word,
		Failure: &Failure{Word: word, Kind: kind, Message: message},
	}
}

// OK reports whether the outcome carries a card.
func (o Outcome) OK() bool {
	return o.Card != nil
}

// RunSummary is the read-only account of one orchestrator run.
//
// Counts are per requested occurrence: Requested == Succeeded + Failed always
// holds, and a duplicate word answered from the run cache contributes to both
// CacheHits and whichever of Succeeded or Failed its first occurrence did.
type RunSummary struct {
	RunID          uuid.UUID           `json:"run_id"`
	Requested      int                 `json:"requested"`
	Distinct       int                 `json:"distinct"`
	Succeeded      int                 `json:"succeeded"`
	SucceededModel int                 `json:"succeeded_model"`
	SucceededMock  int                 `json:"succeeded_mock"`
	Failed         int                 `json:"failed"`
	CacheHits      int                 `json:"cache_hits"`
	Failures       []Failure           `json:"failures"`
	ErrorKinds     map[FailureKind]int `json:"error_kinds"`
	Partial        bool                `json:"partial"`
	StartedAt      time.Time           `json:"started_at"`
	FinishedAt     time.Time           `json:"finished_at"`

	cards []*Card
}

// NewRunSummary tallies outcomes into a summary. cacheHits and distinct are
// supplied by the orchestrator, which owns the run cache.
func NewRunSummary(
	runID uuid.UUID,
	outcomes []Outcome,
	distinct, cacheHits int,
	partial bool,
	startedAt, finishedAt time.Time,
) *RunSummary {
	s := &RunSummary{
		RunID:      runID,
		Requested:  len(outcomes),
		Distinct:   distinct,
		CacheHits:  cacheHits,
		Failures:   []Failure{},
		ErrorKinds: map[FailureKind]int{},
		Partial:    partial,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	seen := make(map[*Card]bool)
	for _, o := range outcomes {
		if o.OK() {
			s.Succeeded++
			if o.Card.IsMock() {
				s.SucceededMock++
			} else {
				s.SucceededModel++
			}
			if !seen[o.Card] {
				seen[o.Card] = true
				s.cards = append(s.cards, o.Card)
			}
			continue
		}

		s.Failed++
		if o.Failure != nil {
			s.Failures = append(s.Failures, *o.Failure)
			s.ErrorKinds[o.Failure.Kind]++
		}
	}

	return s
}

// Cards returns the distinct successful cards in input order.
func (s *RunSummary) Cards() []*Card {
	out := make([]*Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// SuccessRate returns succeeded/requested, or 0 for an empty run.
func (s *RunSummary) SuccessRate() float64 {
	if s.Requested == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Requested)
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
