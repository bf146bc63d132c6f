package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/phrazzld/wordcards/internal/platform/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardJSON = `{"word":"apple","phonetic":"/ˈæp.əl/","part_of_speech":"n.","meaning":"苹果",` +
	`"memory_tip":{"type":"root","content":"古英语 æppel"},"examples":["An apple a day."],` +
	`"synonyms":["pome - 梨果"],"confusables":[]}`

func newProvider(t *testing.T, srv *httptest.Server) *anthropic.Provider {
	t.Helper()
	p, err := anthropic.NewProvider(srv.Client(), config.LLMConfig{
		Provider:    "anthropic",
		APIKey:      "sk-ant-test",
		BaseURL:     srv.URL,
		MaxTokens:   1024,
		Temperature: 0.5,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return p
}

func testRequest(t *testing.T) generation.Request {
	t.Helper()
	req, err := generation.NewRequest("apple", domain.DefaultGenerationParams())
	require.NoError(t, err)
	return req
}

func messageBody(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       anthropic.DefaultModel,
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
	}
}

func TestProvider_Generate_Success(t *testing.T) {
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody("Here you go:\n"+cardJSON, "end_turn"))
	}))
	defer srv.Close()

	p := newProvider(t, srv)
	card, err := p.Generate(context.Background(), testRequest(t))

	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, "苹果", card.Meaning)
	require.NotNil(t, card.MemoryTip)
	assert.Equal(t, domain.TipRoot, card.MemoryTip.Kind)
	assert.Equal(t, anthropic.DefaultModel, gotReq["model"])
	assert.EqualValues(t, 1024, gotReq["max_tokens"])
}

func TestProvider_Generate_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		errType       string
		wantTransient bool
	}{
		{name: "rate_limited", status: http.StatusTooManyRequests, errType: "rate_limit_error", wantTransient: true},
		{name: "overloaded", status: 529, errType: "overloaded_error", wantTransient: true},
		{name: "unauthorized", status: http.StatusUnauthorized, errType: "authentication_error", wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": tt.errType, "message": "nope"},
				})
			}))
			defer srv.Close()

			_, err := newProvider(t, srv).Generate(context.Background(), testRequest(t))

			var providerErr *generation.ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tt.status, providerErr.StatusCode)
			assert.Equal(t, tt.wantTransient, providerErr.Transient())
			assert.Equal(t, 1, calls, "SDK retries must be disabled")
		})
	}
}

func TestProvider_Generate_Refusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody("", "refusal"))
	}))
	defer srv.Close()

	_, err := newProvider(t, srv).Generate(context.Background(), testRequest(t))

	assert.ErrorIs(t, err, generation.ErrContentBlocked)
	assert.ErrorIs(t, err, generation.ErrPermanentFailure)
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := anthropic.NewProvider(nil, config.LLMConfig{Provider: "anthropic"}, slog.Default())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
