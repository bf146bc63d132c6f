package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/redact"
	"github.com/sethvargo/go-retry"
)

// State is a step of the per-call state machine:
//
//	Attempting(n) → Success
//	              | TransientFailure → Attempting(n+1)
//	              | PermanentFailure → MockFallback | Failure
//
// A transient failure with no retries left is handled as a permanent one.
type State string

// Client states.
const (
	StateAttempting       State = "attempting"
	StateSuccess          State = "success"
	StateTransientFailure State = "transient_failure"
	StatePermanentFailure State = "permanent_failure"
	StateMockFallback     State = "mock_fallback"
	StateFailure          State = "failure"
)

// Client is the uniform model client used by the orchestrator. It owns retry,
// per-call timeouts and the fall back to mock mode; the wrapped Provider only
// ever makes single attempts.
type Client struct {
	provider Provider
	fallback Provider
	policy   RetryPolicy
	logger   *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithFallback replaces the default MockProvider used when the policy enables
// mock fallback.
func WithFallback(p Provider) ClientOption {
	return func(c *Client) {
		c.fallback = p
	}
}

// NewClient creates a Client around provider.
//
// Parameters:
//   - provider: The primary provider; required
//   - policy: Retry, timeout and fallback settings; validated here
//   - logger: A structured logger for operation logging
//   - opts: Optional overrides
//
// Returns:
//   - A ready Client or an error wrapping ErrInvalidConfig
func NewClient(provider Provider, policy RetryPolicy, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		provider: provider,
		fallback: NewMockProvider(),
		policy:   policy,
		logger:   logger.With("component", "model_client", "provider", provider.Name()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Policy returns the client's retry policy.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// Generate produces a raw card for req, retrying and falling back according
// to the policy.
//
// Cancellation of ctx is never retried and never falls back: it is returned
// wrapped with ErrGenerationFailed so callers can tell it apart with
// errors.Is(err, context.Canceled).
//
// Returns:
//   - A Result tagged with SourceModel or SourceMock
//   - The last provider error (*ProviderError or *TimeoutError) when the state
//     machine ends in Failure
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	backoff := c.policy.newBackoff()
	attempts := 0

	for {
		attempts++
		c.logger.DebugContext(ctx, "model call",
			"state", StateAttempting,
			"word", req.Word,
			"attempt", attempts)

		raw, err := c.attempt(ctx, req)
		if err == nil {
			c.logger.DebugContext(ctx, "model call succeeded",
				"state", StateSuccess,
				"word", req.Word,
				"attempt", attempts)
			source := domain.SourceModel
			if c.provider.Name() == MockProviderName {
				source = domain.SourceMock
			}
			return &Result{
				Card:     raw,
				Source:   source,
				Provider: c.provider.Name(),
				Attempts: attempts,
			}, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrGenerationFailed, req.Word, ctx.Err())
		}

		failed := StatePermanentFailure
		if IsRetryable(err) {
			failed = StateTransientFailure
		}
		state, delay := c.next(err, backoff)
		c.logger.WarnContext(ctx, "model call failed",
			"state", failed,
			"next_state", state,
			"word", req.Word,
			"attempt", attempts,
			"error", redact.Error(err))

		switch state {
		case StateAttempting:
			if waitErr := sleep(ctx, delay); waitErr != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrGenerationFailed, req.Word, waitErr)
			}
		case StateMockFallback:
			return c.fallBack(ctx, req, attempts, err)
		default:
			return nil, err
		}
	}
}

// next decides the transition out of a failed attempt.
func (c *Client) next(err error, backoff retry.Backoff) (State, time.Duration) {
	canFallBack := c.policy.MockFallback && c.fallback != nil

	if canFallBack && c.policy.FallbackAfter == FallbackOnFirstFailure {
		return StateMockFallback, 0
	}

	if IsRetryable(err) {
		if delay, stop := backoff.Next(); !stop {
			return StateAttempting, delay
		}
	}

	// Permanent, or transient with no retries left.
	if canFallBack {
		return StateMockFallback, 0
	}
	return StateFailure, 0
}

// attempt makes one provider call under the per-call timeout and converts a
// deadline hit on that call into a TimeoutError.
func (c *Client) attempt(ctx context.Context, req Request) (*domain.RawCard, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	raw, err := c.provider.Generate(callCtx, req)
	if err == nil {
		if raw == nil {
			return nil, NewPermanentError(c.provider.Name(), 0, ErrInvalidResponse)
		}
		return raw, nil
	}

	if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, &TimeoutError{Provider: c.provider.Name(), Timeout: c.policy.Timeout, Err: err}
	}
	return nil, err
}

func (c *Client) fallBack(ctx context.Context, req Request, attempts int, cause error) (*Result, error) {
	raw, err := c.fallback.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: mock fallback for %q: %w", ErrGenerationFailed, req.Word, err)
	}

	c.logger.WarnContext(ctx, "using mock fallback",
		"state", StateMockFallback,
		"word", req.Word,
		"attempts", attempts,
		"reason", redact.Error(cause))

	return &Result{
		Card:           raw,
		Source:         domain.SourceMock,
		Provider:       c.fallback.Name(),
		Attempts:       attempts,
		FallbackReason: cause,
	}, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
