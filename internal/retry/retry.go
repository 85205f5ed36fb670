// Package retry provides a generic exponential-backoff wrapper around a
// fallible operation. It deliberately does not classify errors or add
// jitter: every failure is retried on the same schedule until attempts
// run out.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every attempt failed without producing an
// error to report. With a non-nil operation this cannot happen, but the
// caller gets a definite error either way.
var ErrExhausted = errors.New("retry: all attempts exhausted")

// Do calls op up to maxAttempts times, sleeping baseDelay * 2^(attempt-1)
// after each failure. It returns the first success, or the last observed
// error once attempts are exhausted. The wait suspends only the calling
// goroutine and aborts early if ctx is cancelled.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), maxAttempts int, baseDelay time.Duration) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = ErrExhausted
	}
	return zero, lastErr
}
