// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Every key can be overridden by an environment variable named after its
// path with a WORDCARDS_ prefix, for example WORDCARDS_LLM_API_KEY or
// WORDCARDS_BATCH_WORKERS.
package config
