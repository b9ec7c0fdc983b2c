package ai

import (
	"context"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER - Token Bucket implementation
// The generation API bills per request and throttles aggressively, so
// the client never sends faster than the configured budget.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimiter implements the Token Bucket algorithm to control request rate.
type RateLimiter struct {
	mu sync.Mutex

	maxTokens   float64       // maximum tokens in the bucket
	refillRate  float64       // tokens added per second
	tokens      float64       // current token count
	lastRefill  time.Time     // last time tokens were added
	waitTimeout time.Duration // maximum time to wait for a token
}

// RateLimiterConfig contains configuration for the rate limiter.
type RateLimiterConfig struct {
	// RequestsPerMinute is the maximum sustained request rate.
	RequestsPerMinute int

	// BurstSize is the number of requests allowed in a burst.
	BurstSize int

	// WaitTimeout is the maximum time Allow blocks for a token.
	WaitTimeout time.Duration
}

// DefaultRateLimiterConfig returns conservative defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 20,
		BurstSize:         5,
		WaitTimeout:       10 * time.Second,
	}
}

// NewRateLimiter creates a new RateLimiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRateLimiterConfig().RequestsPerMinute
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultRateLimiterConfig().WaitTimeout
	}

	return &RateLimiter{
		maxTokens:   float64(cfg.BurstSize),
		refillRate:  float64(cfg.RequestsPerMinute) / 60.0,
		tokens:      float64(cfg.BurstSize), // start with a full bucket
		lastRefill:  time.Now(),
		waitTimeout: cfg.WaitTimeout,
	}
}

// Allow blocks until a token is available, the wait timeout passes, or
// the context is cancelled.
func (rl *RateLimiter) Allow(ctx context.Context) error {
	deadline := time.Now().Add(rl.waitTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		waitTime, ok := rl.tryAcquire()
		if ok {
			return nil
		}

		if time.Now().Add(waitTime).After(deadline) {
			return ErrRateLimited
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAllow attempts to acquire a token without blocking.
func (rl *RateLimiter) TryAllow() bool {
	_, ok := rl.tryAcquire()
	return ok
}

// tryAcquire takes one token if available. On failure it returns how
// long to wait before the next token is expected.
func (rl *RateLimiter) tryAcquire() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= 1.0 {
		rl.tokens--
		return 0, true
	}

	needed := 1.0 - rl.tokens
	return time.Duration(needed / rl.refillRate * float64(time.Second)), false
}

// refill adds tokens according to elapsed time. Caller holds the lock.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()

	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}
