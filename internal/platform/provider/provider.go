// Package provider selects and constructs the generation.Provider named by
// the LLM configuration.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/phrazzld/wordcards/internal/platform/anthropic"
	"github.com/phrazzld/wordcards/internal/platform/gemini"
	"github.com/phrazzld/wordcards/internal/platform/openai"
	"github.com/phrazzld/wordcards/internal/redact"
)

// New returns the provider configured by cfg.Provider. The API key is
// registered with the redactor before any request can log it.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Provider, error) {
	redact.RegisterSecret(cfg.APIKey)

	var (
		p   generation.Provider
		err error
	)
	switch cfg.Provider {
	case "openai", "zhipuai":
		p, err = openai.NewProvider(http.DefaultClient, cfg, logger)
	case "anthropic":
		p, err = anthropic.NewProvider(nil, cfg, logger)
	case "gemini":
		p, err = gemini.NewGeminiGenerator(ctx, logger, cfg)
	case generation.MockProviderName:
		p = generation.NewMockProvider()
	default:
		err = fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("language model provider configured",
		"provider", p.Name(),
		"model", cfg.Model)
	return p, nil
}
