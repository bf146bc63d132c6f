package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
)

// ProviderName identifies this adapter in logs and results.
const ProviderName = "anthropic"

// DefaultModel is used when the configuration names none.
const DefaultModel = "claude-3-sonnet-20240229"

// Provider generates cards with the Anthropic Messages API.
type Provider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *slog.Logger
}

// NewProvider creates an Anthropic provider. SDK retries are disabled
// because the model client owns the retry policy.
//
// Parameters:
//   - httpClient: optional client for requests; nil uses the SDK default
//   - cfg: LLM configuration with API key, model and optional base URL
//   - logger: structured logger
//
// Returns:
//   - (*Provider, nil) on success
//   - (nil, error) wrapping generation.ErrInvalidConfig when cfg is unusable
func NewProvider(httpClient *http.Client, cfg config.LLMConfig, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key cannot be empty", generation.ErrInvalidConfig)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		logger:      logger.With("component", "anthropic_provider"),
	}, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string {
	return ProviderName
}

// Generate implements generation.Provider.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (*domain.RawCard, error) {
	prompt, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, generation.NewPermanentError(ProviderName, 0, err)
	}

	p.logger.DebugContext(ctx, "sending messages request",
		"word", req.Word,
		"model", p.model,
		"prompt_length", len(prompt))

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Temperature: anthropic.Float(p.temperature),
		System:      []anthropic.TextBlockParam{{Text: generation.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	if msg.StopReason == "refusal" {
		return nil, generation.NewPermanentError(ProviderName, http.StatusOK, generation.ErrContentBlocked)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	card, err := generation.ParseRawCard(text.String())
	if err != nil {
		return nil, generation.NewPermanentError(ProviderName, http.StatusOK, err)
	}
	return card, nil
}

// classifyError maps SDK errors onto provider error kinds.
func classifyError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return generation.ClassifyStatus(ProviderName, apiErr.StatusCode, err)
	}
	return generation.ClassifyTransportError(ctx, ProviderName, 0, err)
}
