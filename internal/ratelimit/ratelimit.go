// Package ratelimit provides the pacing policies that space out calls to
// external services (search, company pages, generation, mail).
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next call is allowed.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Limiter spaces calls at a fixed minimum interval using a token bucket
// with a burst of one, so the first call never waits.
type Limiter struct {
	limiter  *rate.Limiter
	interval time.Duration

	mu    sync.Mutex
	waits int
}

// Every returns a Limiter allowing one call per interval.
// A non-positive interval disables pacing.
func Every(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// PerMinute returns a Limiter allowing n calls per minute.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		return Every(time.Minute)
	}
	return Every(time.Minute / time.Duration(n))
}

// Unlimited returns a Limiter that never blocks.
func Unlimited() *Limiter {
	return Every(0)
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	l.waits++
	l.mu.Unlock()
	return l.limiter.Wait(ctx)
}

// Interval returns the configured spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Waits returns how many times Wait has been called.
func (l *Limiter) Waits() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waits
}
