package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
	"google.golang.org/genai"
)

// ProviderName identifies this adapter in logs and results.
const ProviderName = "gemini"

// DefaultModel is used when the configuration names none.
const DefaultModel = "gemini-2.0-flash"

// GeminiGenerator implements generation.Provider using Google's Gemini API.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// generateConfig carries the system instruction and sampling settings
	generateConfig *genai.GenerateContentConfig
}

// NewGeminiGenerator creates a new instance of GeminiGenerator with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and other settings
//
// Returns:
//   - A properly initialized GeminiGenerator or an error if initialization fails
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger: logger.With("component", "gemini_provider"),
		client: client,
		model:  model,
		generateConfig: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: generation.SystemPrompt}},
			},
			Temperature:      genai.Ptr(float32(cfg.Temperature)),
			MaxOutputTokens:  int32(cfg.MaxTokens),
			ResponseMIMEType: "application/json",
		},
	}, nil
}

// Name implements generation.Provider.
func (g *GeminiGenerator) Name() string {
	return ProviderName
}

// Generate implements generation.Provider. It makes exactly one API call;
// retries belong to the model client.
func (g *GeminiGenerator) Generate(ctx context.Context, req generation.Request) (*domain.RawCard, error) {
	prompt, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, generation.NewPermanentError(ProviderName, 0, err)
	}

	g.logger.DebugContext(ctx, "Making Gemini API call",
		"word", req.Word,
		"model", g.model,
		"prompt_length", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.generateConfig)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, generation.NewPermanentError(ProviderName, http.StatusOK, err)
	}

	card, err := generation.ParseRawCard(text)
	if err != nil {
		return nil, generation.NewPermanentError(ProviderName, http.StatusOK, err)
	}
	return card, nil
}

// responseText concatenates the text parts of the first candidate.
//
// Returns:
//   - The response text
//   - generation.ErrContentBlocked when safety filters stopped the response
//   - generation.ErrInvalidResponse when there is no usable content
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return text.String(), nil
}

// classifyError maps genai errors onto provider error kinds.
func classifyError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return generation.ClassifyStatus(ProviderName, apiErr.Code, err)
	}
	return generation.ClassifyTransportError(ctx, ProviderName, 0, err)
}
