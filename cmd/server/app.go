package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/wordcards/internal/api"
	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/events"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/service"
)

// application holds the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger

	services *service.Services
	handler  *api.GenerationHandler
}

// newApplication creates an application with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Progress of every run goes to the log
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))

	var err error
	app.services, err = service.NewServices(ctx, cfg, emitter, logger)
	if err != nil {
		return nil, err
	}

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse export format: %w", err)
	}

	app.handler = api.NewGenerationHandler(
		app.services.Orchestrator,
		app.services.Decks,
		api.HandlerConfig{
			Params:          app.services.Params,
			MaxWords:        cfg.Server.MaxWords,
			DeckName:        cfg.Export.DeckName,
			DeckDescription: cfg.Export.DeckDescription,
			Format:          format,
		},
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves the API until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
