package config

import (
	"fmt"
	"time"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Batch      BatchConfig      `mapstructure:"batch"      validate:"required"`
	Export     ExportConfig     `mapstructure:"export"     validate:"required"`
	Audio      AudioConfig      `mapstructure:"audio"`
	Log        LogConfig        `mapstructure:"log"        validate:"required"`
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Provider selects the adapter: openai, zhipuai, anthropic, gemini or mock.
	Provider string `mapstructure:"provider" validate:"required,oneof=openai zhipuai anthropic gemini mock"`

	// APIKey is required for every provider except mock.
	APIKey string `mapstructure:"api_key" validate:"required_unless=Provider mock"`

	// Model overrides the provider's default model when set.
	Model string `mapstructure:"model"`

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	MaxTokens   int           `mapstructure:"max_tokens"  validate:"gt=0,lte=32768"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"gt=0"`
}

// GenerationConfig contains the per-word content parameters and the limits
// the card validator enforces.
type GenerationConfig struct {
	ExampleCount    int      `mapstructure:"example_count"    validate:"gte=1"`
	SynonymCount    int      `mapstructure:"synonym_count"    validate:"gte=0"`
	ConfusableCount int      `mapstructure:"confusable_count" validate:"gte=0"`
	TipKinds        []string `mapstructure:"tip_kinds"        validate:"min=1,dive,required"`

	MaxExamples      int `mapstructure:"max_examples"       validate:"gte=1"`
	MaxSynonyms      int `mapstructure:"max_synonyms"       validate:"gte=0"`
	MaxConfusables   int `mapstructure:"max_confusables"    validate:"gte=0"`
	MaxMeaningLength int `mapstructure:"max_meaning_length" validate:"gte=1"`
}

// BatchConfig contains the orchestrator and retry policy settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"gte=1,lte=64"`

	// RateLimit is the request budget in requests per minute. Zero disables it.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`

	RetryCount    int           `mapstructure:"retry_count"     validate:"gte=0,lte=10"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"     validate:"gte=0"`
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay" validate:"gte=0"`
	Backoff       string        `mapstructure:"backoff"         validate:"oneof=fixed exponential"`
	JitterPercent uint64        `mapstructure:"jitter_percent"  validate:"lte=100"`
	MockFallback  bool          `mapstructure:"mock_fallback"`
	FallbackAfter string        `mapstructure:"fallback_after"  validate:"oneof=exhausted first_failure"`
}

// ExportConfig contains deck naming and output format settings.
type ExportConfig struct {
	DeckName        string `mapstructure:"deck_name"        validate:"required"`
	DeckDescription string `mapstructure:"deck_description"`
	Format          string `mapstructure:"format"           validate:"oneof=apkg csv markdown"`
	CSVDelimiter    string `mapstructure:"csv_delimiter"    validate:"len=1"`
	CSVColumns      string `mapstructure:"csv_columns"      validate:"oneof=full simple"`
	OutputDir       string `mapstructure:"output_dir"       validate:"required"`
	AllowEmpty      bool   `mapstructure:"allow_empty"`
}

// AudioConfig contains pronunciation audio settings.
type AudioConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Engine   string `mapstructure:"engine"    validate:"oneof=youdao google merriam cambridge"`
	Language string `mapstructure:"language"  validate:"required"`
	LocalDir string `mapstructure:"local_dir"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`

	// MaxWords bounds the word list of a single API request.
	MaxWords int `mapstructure:"max_words" validate:"gte=1"`
}

// ValidationLimits returns the card validator limits.
func (c *Config) ValidationLimits() domain.ValidationLimits {
	return domain.ValidationLimits{
		MaxExamples:      c.Generation.MaxExamples,
		MaxSynonyms:      c.Generation.MaxSynonyms,
		MaxConfusables:   c.Generation.MaxConfusables,
		MaxMeaningLength: c.Generation.MaxMeaningLength,
	}
}

// GenerationParams returns the configured per-word parameters, checked
// against the validation limits.
func (c *Config) GenerationParams() (domain.GenerationParams, error) {
	params := domain.GenerationParams{
		ExampleCount:    c.Generation.ExampleCount,
		SynonymCount:    c.Generation.SynonymCount,
		ConfusableCount: c.Generation.ConfusableCount,
	}
	for _, raw := range c.Generation.TipKinds {
		kind, ok := domain.ParseTipKind(raw)
		if !ok {
			return domain.GenerationParams{}, fmt.Errorf("%w: unknown tip kind %q", ErrInvalidConfig, raw)
		}
		params.TipKinds = append(params.TipKinds, kind)
	}
	if err := params.Validate(c.ValidationLimits()); err != nil {
		return domain.GenerationParams{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return params, nil
}

// RetryPolicy returns the model client policy.
func (c *Config) RetryPolicy() generation.RetryPolicy {
	return generation.RetryPolicy{
		MaxRetries:    c.Batch.RetryCount,
		Delay:         c.Batch.RetryDelay,
		MaxDelay:      c.Batch.MaxRetryDelay,
		Backoff:       generation.BackoffStrategy(c.Batch.Backoff),
		JitterPercent: c.Batch.JitterPercent,
		Timeout:       c.LLM.Timeout,
		MockFallback:  c.Batch.MockFallback,
		FallbackAfter: generation.FallbackTrigger(c.Batch.FallbackAfter),
	}
}
