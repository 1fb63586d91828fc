package loom

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures request throttling for a provider.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate; defaults to 60 when <= 0
	BurstSize         int // Bucket capacity; defaults to RequestsPerMinute
}

// RateLimiter is a token bucket. The bucket starts full at the burst
// capacity and refills continuously at the sustained rate.
type RateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	capacity  float64
	perSecond float64
	last      time.Time
}

// NewRateLimiter creates a limiter from cfg, applying its defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	capacity := float64(cfg.BurstSize)
	if capacity <= 0 {
		capacity = rpm
	}

	return &RateLimiter{
		tokens:    capacity,
		capacity:  capacity,
		perSecond: rpm / 60.0,
		last:      time.Now(),
	}
}

// advance credits tokens for the time elapsed since the last call.
// Callers must hold mu.
func (r *RateLimiter) advance(now time.Time) {
	r.tokens += now.Sub(r.last).Seconds() * r.perSecond
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
	r.last = now
}

// TryAcquire takes a token if one is available, without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(time.Now())
	if r.tokens < 1 {
		return false
	}
	r.tokens--
	return true
}

// Wait blocks until a token is available or ctx is done. The sleep is
// sized to the actual token deficit rather than polled at a fixed
// interval.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.advance(time.Now())
		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		deficit := 1 - r.tokens
		r.mu.Unlock()

		timer := time.NewTimer(time.Duration(deficit / r.perSecond * float64(time.Second)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns the current token count, for inspection.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance(time.Now())
	return r.tokens
}

// RateLimitedProvider throttles an AIProvider. Each resource bundle
// batch costs one token regardless of how many entries it carries.
type RateLimitedProvider struct {
	inner   AIProvider
	limiter *RateLimiter
}

var _ AIProvider = (*RateLimitedProvider)(nil)

// NewRateLimitedProvider wraps provider with a token bucket built from cfg.
func NewRateLimitedProvider(provider AIProvider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   provider,
		limiter: NewRateLimiter(cfg),
	}
}

// Translate implements AIProvider, blocking for a token first.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}
	return p.inner.Translate(ctx, req)
}

// Limiter exposes the underlying bucket for inspection.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
