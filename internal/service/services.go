package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/wordcards/internal/audio"
	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/events"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/phrazzld/wordcards/internal/platform/provider"
)

// Services bundles the use cases built from one configuration.
type Services struct {
	Orchestrator *Orchestrator
	Decks        *DeckService
	Params       domain.GenerationParams
}

// NewServices wires the provider, model client, orchestrator and deck
// service described by cfg. emitter may be nil.
func NewServices(ctx context.Context, cfg *config.Config, emitter events.EventEmitter, logger *slog.Logger) (*Services, error) {
	params, err := cfg.GenerationParams()
	if err != nil {
		return nil, err
	}

	p, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize language model provider: %w", err)
	}

	client, err := generation.NewClient(p, cfg.RetryPolicy(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}

	orchestrator, err := NewOrchestrator(
		client,
		domain.NewCardValidator(cfg.ValidationLimits()),
		OrchestratorConfig{Workers: cfg.Batch.Workers, RateLimit: cfg.Batch.RateLimit},
		emitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	gen, err := audio.New(cfg.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to configure audio: %w", err)
	}

	decks, err := NewDeckService(export.NewEncoder(export.OptionsFromConfig(cfg.Export), logger), gen, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	return &Services{
		Orchestrator: orchestrator,
		Decks:        decks,
		Params:       params,
	}, nil
}
