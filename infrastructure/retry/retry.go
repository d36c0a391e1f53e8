// Package retry wraps unreliable I/O in a bounded retry loop with pluggable backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrMaxAttemptsExceeded is returned when max retry attempts are exceeded.
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled during retry")
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 30 * time.Second
	defaultFactor      = 1.5
)

// Backoff returns the delay to wait after the given failed attempt (1-based).
type Backoff func(base time.Duration, attempt int) time.Duration

// Linear grows the delay by base on every attempt.
func Linear(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// Multiplicative grows the delay by factor on every attempt.
func Multiplicative(factor float64) Backoff {
	return func(base time.Duration, attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	}
}

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts counts the initial attempt.
	MaxAttempts int
	BaseDelay   time.Duration
	// MaxDelay caps a single backoff delay.
	MaxDelay    time.Duration
	Backoff     Backoff
	IsRetryable func(error) bool
	// Sleep waits for d or until ctx is done. Tests replace it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns three attempts with 1.5x backoff starting at 500ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
		Backoff:     Multiplicative(defaultFactor),
		IsRetryable: DefaultIsRetryable,
		Sleep:       sleepContext,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	if p.Backoff == nil {
		p.Backoff = Multiplicative(defaultFactor)
	}
	if p.IsRetryable == nil {
		p.IsRetryable = DefaultIsRetryable
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

// Delay returns the capped backoff after the given failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	d := p.Backoff(p.BaseDelay, attempt)
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do runs op until it succeeds, returns a non-retryable error, or runs out of attempts.
// Exhaustion returns ErrMaxAttemptsExceeded wrapping the last error.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !policy.IsRetryable(err) {
			return zero, err
		}

		if attempt == policy.MaxAttempts {
			break
		}

		if sleepErr := policy.Sleep(ctx, policy.Delay(attempt)); sleepErr != nil {
			return zero, fmt.Errorf("%w: %w", ErrContextCancelled, sleepErr)
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, policy.MaxAttempts, lastErr)
}

// Run is Do for operations without a result.
func Run(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
