package client

import (
	"context"
	"math/rand"
	"time"

	"coda/internal/config"
	"coda/internal/logging"
)

// maxBackoffDelay caps the exponential backoff between attempts.
const maxBackoffDelay = 30 * time.Second

// RetryPolicy controls retries of failed model calls. Nothing is inferred:
// callers supply attempts and base delay explicitly.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// PolicyFromConfig builds a RetryPolicy from configuration, defaulting to a
// single attempt (no retries).
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	p := RetryPolicy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.Delay}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Delay <= 0 {
		p.Delay = time.Second
	}
	return p
}

// Do runs fn up to MaxAttempts times with exponential backoff between
// attempts. Context cancellation is observed during backoff and stops the
// retries immediately.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffWithJitter(p.Delay, attempt-1)
			logging.Info("retrying model call", "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := fn(ctx); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		return nil
	}
	return lastErr
}

// backoffWithJitter computes baseDelay * 2^attempt, capped, plus up to 25%
// jitter to avoid synchronized retries.
func backoffWithJitter(baseDelay time.Duration, attempt int) time.Duration {
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxBackoffDelay {
		delay = maxBackoffDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay / 4)))
	return delay + jitter
}
