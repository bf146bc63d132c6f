package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServices_MockProvider(t *testing.T) {
	t.Setenv("WORDCARDS_LLM_PROVIDER", "mock")
	t.Setenv("WORDCARDS_AUDIO_ENABLED", "true")
	t.Setenv("WORDCARDS_AUDIO_ENGINE", "merriam")
	cfg, err := config.Load("")
	require.NoError(t, err)

	recorder := &mocks.EventRecorder{}
	svc, err := NewServices(context.Background(), cfg, recorder, testLogger())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGenerationParams(), svc.Params)

	outcomes, summary, err := svc.Orchestrator.Run(context.Background(), []string{"apple"}, svc.Params)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 1, summary.SucceededMock)
	assert.NotEmpty(t, recorder.Events())

	var buf bytes.Buffer
	deck, err := svc.Decks.Export(context.Background(), summary,
		DeckRequest{Name: cfg.Export.DeckName, Format: export.FormatCSV}, &buf)
	require.NoError(t, err)

	ref, ok := deck.Audio("apple")
	require.True(t, ok)
	assert.Contains(t, ref, "merriam-webster.com")
}

func TestNewServices_MissingAPIKey(t *testing.T) {
	t.Setenv("WORDCARDS_LLM_PROVIDER", "mock")
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = ""
	_, err = NewServices(context.Background(), cfg, nil, testLogger())
	assert.Error(t, err)
}
