package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("WORDCARDS_LLM_PROVIDER", "mock")
	t.Setenv("WORDCARDS_EXPORT_FORMAT", "csv")
	t.Setenv("WORDCARDS_SERVER_MAX_WORDS", "5")

	cfg, err := config.Load("")
	require.NoError(t, err)

	app, err := newApplication(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	server := httptest.NewServer(app.setupRouter())
	t.Cleanup(server.Close)
	return server
}

func TestRouter_Health(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestRouter_Generate(t *testing.T) {
	server := testServer(t)

	resp, err := http.Post(server.URL+"/api/generate", "application/json",
		strings.NewReader(`{"words": ["apple", "banana", "apple"]}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Outcomes []json.RawMessage `json:"outcomes"`
		Summary  struct {
			SucceededMock int `json:"succeeded_mock"`
			CacheHits     int `json:"cache_hits"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Outcomes, 3)
	assert.Equal(t, 3, body.Summary.SucceededMock)
	assert.Equal(t, 1, body.Summary.CacheHits)
}

func TestRouter_CreateDeck(t *testing.T) {
	server := testServer(t)

	resp, err := http.Post(server.URL+"/api/decks", "application/json",
		strings.NewReader(`{"words": ["apple"], "deck_name": "Server Deck"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Word,Phonetic"))
}

func TestRouter_WordLimit(t *testing.T) {
	server := testServer(t)

	resp, err := http.Post(server.URL+"/api/generate", "application/json",
		strings.NewReader(`{"words": ["a", "b", "c", "d", "e", "f"]}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_UnknownRoute(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/cards")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
