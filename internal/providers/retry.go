package providers

import (
	"context"
	"time"
)

// retryBase is the first back-off interval; tests shrink it.
var retryBase = time.Second

// retryWithBackoff retries fn while it fails with a rate-limit error, up to
// maxRetries extra attempts. Every other failure is returned immediately.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if KindOf(lastErr) != KindRateLimited {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * retryBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
