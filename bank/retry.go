package bank

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// retryConfig holds configuration for exponential backoff between commit attempts.
type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	maxDelay     time.Duration
	jitterFactor float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts:  defaultCommitAttempts,
		baseDelay:    defaultRetryBaseDelay,
		maxDelay:     defaultRetryMaxDelay,
		jitterFactor: defaultJitterFactor,
	}
}

// backoff returns baseDelay * 2^(attempt-1), capped by maxDelay.
func (c retryConfig) backoff(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt && delay < c.maxDelay; i++ {
		delay *= 2
	}

	return min(delay, c.maxDelay)
}

// retryOnRejection runs fn until it succeeds, fails with an error other than
// ErrCommitRejected, or maxAttempts is reached. onRetry is called before every repeated attempt.
// It returns the number of attempts made and the last error.
func retryOnRejection(
	ctx context.Context,
	rng *rand.Rand,
	config retryConfig,
	fn func(ctx context.Context) error,
	onRetry func(attempt int),
) (int, error) {
	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.backoff(attempt)
			jitter := rng.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // weak random is fine for jitter

			if onRetry != nil {
				onRetry(attempt + 1)
			}

			timer := time.NewTimer(delay + time.Duration(jitter))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return attempt, lastErr
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt + 1, nil
		}

		if !errors.Is(lastErr, ErrCommitRejected) {
			return attempt + 1, lastErr
		}
	}

	return config.maxAttempts, lastErr
}
