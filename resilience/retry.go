package resilience

import (
	"context"
	"time"
)

// RetryOpts configures exponential backoff retry.
type RetryOpts struct {
	MaxAttempts int           // default 5
	BaseDelay   time.Duration // default 500ms
	MaxDelay    time.Duration // default 30s
}

var DefaultRetryOpts = RetryOpts{
	MaxAttempts: 5,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    30 * time.Second,
}

// Retry calls f up to opts.MaxAttempts times, doubling the delay between
// attempts (capped at MaxDelay), stopping as soon as f succeeds, the
// context is canceled, or shouldRetry(err) reports false for a non-nil
// error (treating it as terminal). It returns the last error seen.
func Retry(ctx context.Context, opts RetryOpts, shouldRetry func(error) bool, f func(context.Context) error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultRetryOpts.MaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultRetryOpts.BaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultRetryOpts.MaxDelay
	}

	delay := opts.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		lastErr = f(ctx)
		if lastErr == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(lastErr) {
			return lastErr
		}
		if attempt == opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	return lastErr
}
