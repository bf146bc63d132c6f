package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when card generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate card")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is matched by every transient ProviderError
	ErrTransientFailure = errors.New("transient error during card generation")

	// ErrPermanentFailure is matched by every permanent ProviderError
	ErrPermanentFailure = errors.New("permanent error during card generation")

	// ErrTimeout is matched by every TimeoutError
	ErrTimeout = errors.New("language model call timed out")

	// ErrInvalidConfig is returned when the provider or client configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// ErrorKind says whether a provider failure may succeed on retry.
type ErrorKind string

// Provider error kinds.
const (
	KindTransient ErrorKind = "transient"
	KindPermanent ErrorKind = "permanent"
)

// ProviderError is a classified failure from a single provider call.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	status := ""
	if e.StatusCode != 0 {
		status = fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s provider error%s: %v", e.Provider, e.Kind, status, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is and errors.As.
func (e *ProviderError) Unwrap() []error {
	sentinel := ErrPermanentFailure
	if e.Kind == KindTransient {
		sentinel = ErrTransientFailure
	}
	return []error{sentinel, e.Err}
}

// Transient reports whether the error may succeed on retry.
func (e *ProviderError) Transient() bool {
	return e.Kind == KindTransient
}

// NewTransientError classifies err as retryable.
func NewTransientError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindTransient, StatusCode: status, Err: err}
}

// NewPermanentError classifies err as not retryable.
func NewPermanentError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindPermanent, StatusCode: status, Err: err}
}

// TimeoutError is returned when a single provider call exceeds its deadline.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
	Err      error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: call timed out after %s: %v", e.Provider, e.Timeout, e.Err)
}

// Unwrap exposes ErrTimeout and the cause.
func (e *TimeoutError) Unwrap() []error {
	return []error{ErrTimeout, e.Err}
}

// IsRetryable reports whether err is a timeout or a transient provider error.
func IsRetryable(err error) bool {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Transient()
	}
	return false
}

// ClassifyStatus maps an HTTP status code from a provider to an error kind.
// Rate limiting, request timeouts and server errors are transient; every
// other client error (bad key, unknown model, malformed request) is permanent.
func ClassifyStatus(provider string, status int, err error) *ProviderError {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status == http.StatusConflict,
		status >= http.StatusInternalServerError:
		return NewTransientError(provider, status, err)
	default:
		return NewPermanentError(provider, status, err)
	}
}

// ClassifyTransportError classifies an error that happened before any HTTP
// status was received. A deadline on callCtx becomes a TimeoutError; anything
// else (connection refused, reset, DNS) is transient.
func ClassifyTransportError(callCtx context.Context, provider string, timeout time.Duration, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Provider: provider, Timeout: timeout, Err: err}
	}
	return NewTransientError(provider, 0, err)
}
