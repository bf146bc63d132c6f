package generation

import (
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// BackoffStrategy selects how the delay between attempts grows.
type BackoffStrategy string

// Backoff strategies.
const (
	BackoffFixed       BackoffStrategy = "fixed"
	BackoffExponential BackoffStrategy = "exponential"
)

// FallbackTrigger selects when mock mode takes over from the real provider.
type FallbackTrigger string

// Fallback triggers.
const (
	// FallbackWhenExhausted falls back after a permanent error or once every
	// retry of a transient error has been spent.
	FallbackWhenExhausted FallbackTrigger = "exhausted"

	// FallbackOnFirstFailure falls back on the first failed attempt of any
	// kind, without retrying.
	FallbackOnFirstFailure FallbackTrigger = "first_failure"
)

// RetryPolicy holds every transition condition of the client state machine.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration

	// Backoff selects fixed or exponential growth of Delay.
	Backoff BackoffStrategy

	// JitterPercent randomizes each wait by up to this percentage.
	JitterPercent uint64

	// Timeout bounds a single provider call.
	Timeout time.Duration

	// MockFallback enables the mock provider as the last state.
	MockFallback bool

	// FallbackAfter selects when the fallback is taken.
	FallbackAfter FallbackTrigger
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		Delay:         time.Second,
		MaxDelay:      30 * time.Second,
		Backoff:       BackoffExponential,
		JitterPercent: 25,
		Timeout:       30 * time.Second,
		MockFallback:  false,
		FallbackAfter: FallbackWhenExhausted,
	}
}

// Validate checks the policy for values the state machine cannot run with.
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", ErrInvalidConfig)
	}
	if p.Delay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: retry delays cannot be negative", ErrInvalidConfig)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("%w: call timeout must be positive", ErrInvalidConfig)
	}
	switch p.Backoff {
	case BackoffFixed, BackoffExponential:
	default:
		return fmt.Errorf("%w: unknown backoff strategy %q", ErrInvalidConfig, p.Backoff)
	}
	switch p.FallbackAfter {
	case FallbackWhenExhausted, FallbackOnFirstFailure:
	default:
		return fmt.Errorf("%w: unknown fallback trigger %q", ErrInvalidConfig, p.FallbackAfter)
	}
	if p.JitterPercent > 100 {
		return fmt.Errorf("%w: jitter percent must be at most 100", ErrInvalidConfig)
	}
	return nil
}

// newBackoff returns a fresh delay sequence for one Generate call. It yields
// exactly MaxRetries delays and then reports stop.
func (p RetryPolicy) newBackoff() retry.Backoff {
	var b retry.Backoff
	switch {
	case p.Delay <= 0:
		b = retry.BackoffFunc(func() (time.Duration, bool) {
			return 0, false
		})
	case p.Backoff == BackoffFixed:
		b = retry.NewConstant(p.Delay)
	default:
		b = retry.NewExponential(p.Delay)
	}

	if p.JitterPercent > 0 && p.Delay > 0 {
		b = retry.WithJitterPercent(p.JitterPercent, b)
	}
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(uint64(p.MaxRetries), b)
}
