package ai

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the attempts of one upstream call. Backoff picks the sleep before the next
// attempt from the error that just happened; nil means retry immediately.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(err error) time.Duration
}

func FixedBackoff(d time.Duration) func(error) time.Duration {
	return func(error) time.Duration { return d }
}

// Retryable marks err as worth another attempt.
func Retryable(err error) error {
	return retry.RetryableError(err)
}

// Do runs fn until it succeeds, returns an error not marked Retryable, runs out of attempts or
// ctx is done. attempt starts at 1. On exhaustion the last unwrapped error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var (
		attempt int
		lastErr error
	)
	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		if p.Backoff == nil {
			return 0, false
		}
		d := p.Backoff(lastErr)
		if d < 0 {
			d = 0
		}
		return d, false
	}))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		lastErr = fn(ctx, attempt)
		return lastErr
	})
}
