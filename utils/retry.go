package utils

import (
	"context"
	"time"
)

// WithRetry runs operation until it succeeds, fails with a non-retryable
// error, or maxRetries extra attempts have been spent. The wait grows
// linearly with the attempt number.
func WithRetry(ctx context.Context, maxRetries int, backoff time.Duration, operation func() error) error {
	var err error
	for i := 0; ; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if !Retryable(err) || i >= maxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
}
