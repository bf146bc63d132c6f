package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "WORDCARDS"

// ErrInvalidConfig is returned when configuration cannot be read or fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// defaults holds every known key. Registering a default also makes the key
// visible to AutomaticEnv during Unmarshal.
var defaults = map[string]any{
	"llm.provider":    "openai",
	"llm.api_key":     "",
	"llm.model":       "",
	"llm.base_url":    "",
	"llm.max_tokens":  2000,
	"llm.temperature": 0.7,
	"llm.timeout":     "30s",

	"generation.example_count":      3,
	"generation.synonym_count":      3,
	"generation.confusable_count":   2,
	"generation.tip_kinds":          []string{"homophone", "split", "root"},
	"generation.max_examples":       5,
	"generation.max_synonyms":       10,
	"generation.max_confusables":    5,
	"generation.max_meaning_length": 500,

	"batch.workers":         5,
	"batch.rate_limit":      0.0,
	"batch.retry_count":     3,
	"batch.retry_delay":     "1s",
	"batch.max_retry_delay": "30s",
	"batch.backoff":         "exponential",
	"batch.jitter_percent":  25,
	"batch.mock_fallback":   false,
	"batch.fallback_after":  "exhausted",

	"export.deck_name":        "English Vocabulary",
	"export.deck_description": "",
	"export.format":           "apkg",
	"export.csv_delimiter":    ",",
	"export.csv_columns":      "full",
	"export.output_dir":       "output",
	"export.allow_empty":      false,

	"audio.enabled":   false,
	"audio.engine":    "youdao",
	"audio.language":  "en",
	"audio.local_dir": "",

	"log.level":  "info",
	"log.format": "json",

	"server.port":      8080,
	"server.max_words": 200,
}

// Load reads configuration from defaults, an optional YAML file and
// WORDCARDS_ environment variables, in increasing order of precedence. A
// .env file in the working directory is loaded into the environment first
// without overriding variables that are already set.
//
// Parameters:
//   - path: config file to read; empty means defaults and environment only
//
// Returns:
//   - (*Config, nil): a validated configuration
//   - (nil, error): an error wrapping ErrInvalidConfig
func Load(path string) (*Config, error) {
	// A missing .env file is the common case
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets are bound explicitly so they are never missed by Unmarshal
	for _, key := range []string{"llm.api_key", "llm.base_url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: binding %s: %v", ErrInvalidConfig, key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal configuration: %v", ErrInvalidConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidConfig, err)
	}
	if _, err := cfg.GenerationParams(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := cfg.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidConfig, err)
	}
	return nil
}
