// Package ratelimit spaces out requests to one platform with a token bucket.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
)

// ErrExceedsBurst is returned when a reservation can never be satisfied.
var ErrExceedsBurst = errors.New("rate limiter: request exceeds burst")

// Clock is the time source used for reservations and waiting.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Limiter provides rate limiting for outbound requests.
type Limiter struct {
	limiter *rate.Limiter
	clock   Clock
	logger  logger.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithLogger sets the logger used for cancelled waits.
func WithLogger(log logger.Logger) Option {
	return func(l *Limiter) { l.logger = log }
}

// New creates a Limiter allowing ratePerSecond requests with the given burst.
// A non-positive rate disables limiting.
func New(ratePerSecond float64, burst int, opts ...Option) *Limiter {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	l := &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		clock:   realClock{},
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Unlimited returns a Limiter that never waits.
func Unlimited() *Limiter {
	return New(0, 1)
}

// Wait blocks until a request is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.clock.Now()
	r := l.limiter.ReserveN(now, 1)
	if !r.OK() {
		return ErrExceedsBurst
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	select {
	case <-l.clock.After(delay):
		return nil
	case <-ctx.Done():
		r.CancelAt(l.clock.Now())
		l.logger.Debug("Rate limiter wait cancelled", logger.Duration("remaining", delay))
		return ctx.Err()
	}
}

// Allow reports whether a request may happen now without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.AllowN(l.clock.Now(), 1)
}
