package api

import (
	"github.com/phrazzld/wordcards/internal/domain"
)

// GenerationOptions overrides the configured per-word parameters. Nil
// fields keep the configured value.
type GenerationOptions struct {
	ExampleCount    *int `json:"example_count,omitempty"    validate:"omitempty,gte=1"`
	SynonymCount    *int `json:"synonym_count,omitempty"    validate:"omitempty,gte=0"`
	ConfusableCount *int `json:"confusable_count,omitempty" validate:"omitempty,gte=0"`
}

// GenerateRequest defines the payload for POST /api/generate.
type GenerateRequest struct {
	Words []string `json:"words" validate:"required,min=1"`
	GenerationOptions
}

// DeckRequest defines the payload for POST /api/decks.
type DeckRequest struct {
	Words      []string `json:"words"      validate:"required,min=1"`
	DeckName   string   `json:"deck_name"  validate:"omitempty,max=200"`
	Format     string   `json:"format"     validate:"omitempty,oneof=apkg csv markdown md"`
	AllowEmpty bool     `json:"allow_empty"`
	GenerationOptions
}

// SummaryResponse is a RunSummary with its derived statistics.
type SummaryResponse struct {
	*domain.RunSummary
	SuccessRate float64 `json:"success_rate"`
	DurationMS  int64   `json:"duration_ms"`
}

// GenerateResponse defines the successful response of POST /api/generate.
type GenerateResponse struct {
	Outcomes []domain.Outcome `json:"outcomes"`
	Summary  SummaryResponse  `json:"summary"`
}

func summaryToResponse(summary *domain.RunSummary) SummaryResponse {
	return SummaryResponse{
		RunSummary:  summary,
		SuccessRate: summary.SuccessRate(),
		DurationMS:  summary.Duration().Milliseconds(),
	}
}
