package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter blocks a request until it may be sent
type Limiter interface {
	Wait(ctx context.Context) error
}

// Reporter is implemented by limiters that can describe their state
type Reporter interface {
	Status() Status
}

// Status is a snapshot of a TokenBucket
type Status struct {
	Available int
	Capacity  int
	RefillAt  time.Time
}

// TokenBucket implements a token bucket rate limiter that refills completely
// once per refill period. With a spacing set, two tokens are never handed out
// closer together than that spacing.
type TokenBucket struct {
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	spacing      time.Duration
	lastTake     time.Time
	now          func() time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
		now:          time.Now,
	}
}

// NewPerMinute creates a bucket allowing requestsPerMinute requests each minute
func NewPerMinute(requestsPerMinute int) *TokenBucket {
	return NewTokenBucket(requestsPerMinute, time.Minute)
}

// WithSpacing sets the minimum time between two taken tokens
func (tb *TokenBucket) WithSpacing(d time.Duration) *TokenBucket {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.spacing = d
	return tb
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		delay := tb.take()
		tb.mu.Unlock()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Status reports the remaining tokens and when the bucket refills
func (tb *TokenBucket) Status() Status {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return Status{
		Available: tb.tokens,
		Capacity:  tb.capacity,
		RefillAt:  tb.lastRefill.Add(tb.refillPeriod),
	}
}

// take consumes a token and returns 0, or returns how long to wait before
// trying again. Callers hold mu.
func (tb *TokenBucket) take() time.Duration {
	tb.refill()
	now := tb.now()

	if tb.spacing > 0 && !tb.lastTake.IsZero() {
		if gap := now.Sub(tb.lastTake); gap < tb.spacing {
			return tb.spacing - gap
		}
	}
	if tb.tokens == 0 {
		if wait := tb.refillPeriod - now.Sub(tb.lastRefill); wait > 0 {
			return wait
		}
		return 100 * time.Millisecond
	}

	tb.tokens--
	tb.lastTake = now
	return 0
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := tb.now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
