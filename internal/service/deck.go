package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/phrazzld/wordcards/internal/audio"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/task"
)

// ErrNilEncoder is returned when a DeckService is built without an encoder.
var ErrNilEncoder = errors.New("encoder cannot be nil")

// DeckRequest describes the deck built from a run.
type DeckRequest struct {
	Name        string
	Description string
	Format      export.Format
	AllowEmpty  bool
}

// DeckService turns the successes of a run into an encoded deck.
type DeckService struct {
	encoder *export.Encoder
	audio   audio.Generator
	logger  *slog.Logger
}

// NewDeckService creates a DeckService. gen may be nil, in which case decks
// carry no audio.
func NewDeckService(encoder *export.Encoder, gen audio.Generator, logger *slog.Logger) (*DeckService, error) {
	if encoder == nil {
		return nil, ErrNilEncoder
	}
	if logger == nil {
		return nil, task.ErrNilLogger
	}

	return &DeckService{
		encoder: encoder,
		audio:   gen,
		logger:  logger.With("component", "deck_service"),
	}, nil
}

// Build assembles the deck for summary and attaches audio references.
//
// Returns:
//   - (*domain.Deck, nil) on success
//   - (nil, domain.ErrEmptyDeck) when no word succeeded and AllowEmpty is false
//   - (nil, error) wrapping domain.ErrValidation for a blank deck name
func (s *DeckService) Build(ctx context.Context, summary *domain.RunSummary, req DeckRequest) (*domain.Deck, error) {
	deck, err := domain.DeckFromSummary(req.Name, req.Description, summary,
		domain.DeckOptions{AllowEmpty: req.AllowEmpty})
	if err != nil {
		return nil, err
	}

	if err := audio.Attach(ctx, deck, s.audio, s.logger); err != nil {
		return nil, NewServiceError("build_deck", "attaching audio", err)
	}

	s.logger.DebugContext(ctx, "deck built",
		"run_id", summary.RunID,
		"deck", deck.Name,
		"cards", deck.Len())
	return deck, nil
}

// Export builds the deck for summary and writes it to w.
func (s *DeckService) Export(ctx context.Context, summary *domain.RunSummary, req DeckRequest, w io.Writer) (*domain.Deck, error) {
	deck, err := s.Build(ctx, summary, req)
	if err != nil {
		return nil, err
	}
	if err := s.encoder.WithSummary(summary).Encode(ctx, deck, req.Format, w); err != nil {
		return nil, err
	}
	return deck, nil
}

// ExportFile builds the deck for summary and writes it to path. A failed
// encode leaves nothing at path.
func (s *DeckService) ExportFile(ctx context.Context, summary *domain.RunSummary, req DeckRequest, path string) (*domain.Deck, error) {
	deck, err := s.Build(ctx, summary, req)
	if err != nil {
		return nil, err
	}
	if err := s.encoder.WithSummary(summary).EncodeFile(ctx, deck, req.Format, path); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "deck exported",
		"run_id", summary.RunID,
		"format", req.Format,
		"path", path,
		"cards", deck.Len())
	return deck, nil
}
