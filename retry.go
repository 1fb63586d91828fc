package loom

import (
	"context"
	"errors"
	"time"
)

// RetryConfig bounds the retry loop wrapped around provider calls.
type RetryConfig struct {
	MaxRetries int           // Additional attempts after the first failure
	BaseDelay  time.Duration // Sleep before the first retry
	MaxDelay   time.Duration // Ceiling on the exponential backoff
}

// DefaultRetryConfig returns the policy the CLI uses: three retries
// starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// backoff returns the sleep before the retry following attempt, doubling
// from BaseDelay and capped at MaxDelay.
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := c.BaseDelay << uint(attempt)
	if d > c.MaxDelay || d <= 0 {
		d = c.MaxDelay
	}
	return d
}

// RetryFunc is the unit of work WithRetry re-executes.
type RetryFunc[T any] func() (T, error)

// WithRetry runs fn until it succeeds, fails permanently, or exhausts
// cfg.MaxRetries additional attempts, sleeping with exponential backoff
// between attempts. Only errors IsRetryable accepts are tried again.
// Context cancellation interrupts both the sleep and the loop.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		timer := time.NewTimer(cfg.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether err is worth another attempt. Retryability
// is an explicit property of provider errors; everything else, context
// cancellation included, is permanent.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// RetryableProvider wraps an AIProvider so transient failures are retried
// with exponential backoff. The whole resource bundle batch is retried as
// a unit, so the wrapped provider must be idempotent per request.
type RetryableProvider struct {
	inner AIProvider
	cfg   RetryConfig
}

var _ AIProvider = (*RetryableProvider)(nil)

// NewRetryableProvider wraps provider with the given retry policy.
func NewRetryableProvider(provider AIProvider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{inner: provider, cfg: cfg}
}

// Translate implements AIProvider.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	return WithRetry(ctx, p.cfg, func() ([]string, error) {
		return p.inner.Translate(ctx, req)
	})
}
