package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
)

// Endpoint defaults per provider flavour.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4"

	ZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4"
	ZhipuModel   = "glm-4"
)

// maxErrorBody bounds how much of an error response is kept in the error text.
const maxErrorBody = 512

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Provider calls an OpenAI-compatible chat completions endpoint. The same
// adapter serves OpenAI and Zhipu, which differ only in base URL and model.
type Provider struct {
	name        string
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewProvider creates a chat completions provider.
//
// Parameters:
//   - httpClient: client used for requests; nil uses a client without its own
//     timeout since the model client bounds every call
//   - cfg: LLM configuration; Provider selects the openai or zhipuai defaults
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
		return nil, fmt.Errorf("%w: %s API key cannot be empty", generation.ErrInvalidConfig, cfg.Provider)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	name, baseURL, model := "openai", DefaultBaseURL, DefaultModel
	if cfg.Provider == "zhipuai" {
		name, baseURL, model = "zhipuai", ZhipuBaseURL, ZhipuModel
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Provider{
		name:        name,
		httpClient:  httpClient,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With("component", name+"_provider"),
	}, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string {
	return p.name
}

// Generate implements generation.Provider.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (*domain.RawCard, error) {
	prompt, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, generation.NewPermanentError(p.name, 0, err)
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: generation.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, generation.NewPermanentError(p.name, 0, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, generation.NewPermanentError(p.name, 0, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	p.logger.DebugContext(ctx, "sending chat completion request",
		"word", req.Word,
		"model", p.model,
		"prompt_length", len(prompt))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, generation.ClassifyTransportError(ctx, p.name, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, generation.ClassifyTransportError(ctx, p.name, 0, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, generation.ClassifyStatus(p.name, resp.StatusCode, errors.New(truncate(string(respBody))))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, generation.NewPermanentError(p.name, resp.StatusCode,
			fmt.Errorf("%w: decode response: %v", generation.ErrInvalidResponse, err))
	}
	if len(chatResp.Choices) == 0 {
		return nil, generation.NewPermanentError(p.name, resp.StatusCode,
			fmt.Errorf("%w: no choices in response", generation.ErrInvalidResponse))
	}

	choice := chatResp.Choices[0]
	if choice.FinishReason == "content_filter" || choice.FinishReason == "sensitive" {
		return nil, generation.NewPermanentError(p.name, resp.StatusCode, generation.ErrContentBlocked)
	}

	card, err := generation.ParseRawCard(choice.Message.Content)
	if err != nil {
		return nil, generation.NewPermanentError(p.name, resp.StatusCode, err)
	}
	return card, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
