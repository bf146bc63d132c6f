package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// TestLoadDefaults verifies the defaults when only the API key is set.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"WORDCARDS_LLM_API_KEY":  "test-api-key",
		"WORDCARDS_LLM_PROVIDER": "",
	})

	cfg, err := Load("")

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Batch.Workers)
	assert.Zero(t, cfg.Batch.RateLimit, "requests are unthrottled unless configured")
	assert.Equal(t, "apkg", cfg.Export.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)

	params, err := cfg.GenerationParams()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGenerationParams(), params)
	assert.Equal(t, domain.DefaultValidationLimits(), cfg.ValidationLimits())

	policy := cfg.RetryPolicy()
	assert.Equal(t, generation.DefaultRetryPolicy(), policy)
}

// TestLoadFromEnv verifies that environment variables are read.
func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"WORDCARDS_LLM_PROVIDER":             "anthropic",
		"WORDCARDS_LLM_API_KEY":              "sk-ant-test",
		"WORDCARDS_LLM_TIMEOUT":              "5s",
		"WORDCARDS_BATCH_WORKERS":            "2",
		"WORDCARDS_BATCH_MOCK_FALLBACK":      "true",
		"WORDCARDS_BATCH_FALLBACK_AFTER":     "first_failure",
		"WORDCARDS_GENERATION_TIP_KINDS":     "root,story",
		"WORDCARDS_GENERATION_SYNONYM_COUNT": "0",
		"WORDCARDS_EXPORT_FORMAT":            "csv",
	})

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, "csv", cfg.Export.Format)

	params, err := cfg.GenerationParams()
	require.NoError(t, err)
	assert.Equal(t, []domain.TipKind{domain.TipRoot, domain.TipStory}, params.TipKinds)
	assert.Equal(t, 0, params.SynonymCount)

	policy := cfg.RetryPolicy()
	assert.True(t, policy.MockFallback)
	assert.Equal(t, generation.FallbackOnFirstFailure, policy.FallbackAfter)
}

// TestEnvironmentVariablePrecedence verifies that environment variables take
// precedence over config file values.
func TestEnvironmentVariablePrecedence(t *testing.T) {
	configYAML := `
llm:
  provider: zhipuai
  api_key: file-key
  model: glm-4
batch:
  workers: 3
export:
  deck_name: From File
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	setupEnv(t, map[string]string{
		"WORDCARDS_BATCH_WORKERS": "7",
	})

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "zhipuai", cfg.LLM.Provider)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "glm-4", cfg.LLM.Model)
	assert.Equal(t, "From File", cfg.Export.DeckName)
	assert.Equal(t, 7, cfg.Batch.Workers, "environment should override the file")
}

func TestLoadMockProviderNeedsNoKey(t *testing.T) {
	setupEnv(t, map[string]string{
		"WORDCARDS_LLM_PROVIDER": "mock",
		"WORDCARDS_LLM_API_KEY":  "",
	})

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestLoadValidationErrors verifies that invalid values are rejected.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Missing API key",
			envVars: map[string]string{"WORDCARDS_LLM_PROVIDER": "openai"},
		},
		{
			name: "Unknown provider",
			envVars: map[string]string{
				"WORDCARDS_LLM_PROVIDER": "cohere",
				"WORDCARDS_LLM_API_KEY":  "x",
			},
		},
		{
			name: "Invalid log level",
			envVars: map[string]string{
				"WORDCARDS_LLM_API_KEY": "x",
				"WORDCARDS_LOG_LEVEL":   "loud",
			},
		},
		{
			name: "Too many workers",
			envVars: map[string]string{
				"WORDCARDS_LLM_API_KEY":   "x",
				"WORDCARDS_BATCH_WORKERS": "500",
			},
		},
		{
			name: "Unknown tip kind",
			envVars: map[string]string{
				"WORDCARDS_LLM_API_KEY":          "x",
				"WORDCARDS_GENERATION_TIP_KINDS": "rhyme",
			},
		},
		{
			name: "Examples above limit",
			envVars: map[string]string{
				"WORDCARDS_LLM_API_KEY":              "x",
				"WORDCARDS_GENERATION_EXAMPLE_COUNT": "9",
			},
		},
		{
			name: "Unknown export format",
			envVars: map[string]string{
				"WORDCARDS_LLM_API_KEY":   "x",
				"WORDCARDS_EXPORT_FORMAT": "pdf",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t, map[string]string{"WORDCARDS_LLM_API_KEY": ""})
			setupEnv(t, tc.envVars)

			cfg, err := Load("")

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
