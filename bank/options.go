package bank

import (
	"errors"
	"time"
)

const (
	defaultWatcherInterval = 500 * time.Millisecond
	defaultMaxClientSleep  = time.Second
	defaultCommitAttempts  = 1
	defaultRetryBaseDelay  = 10 * time.Millisecond
	defaultRetryMaxDelay   = time.Second
	defaultJitterFactor    = 0.3

	// MaxCommitAttempts is the upper bound accepted by WithCommitAttempts.
	MaxCommitAttempts = 100
)

var (
	// ErrInvalidWatcherInterval is returned when the watcher interval is not positive.
	ErrInvalidWatcherInterval = errors.New("watcher interval must be positive")

	// ErrInvalidClientSleep is returned when the maximum client sleep is not positive.
	ErrInvalidClientSleep = errors.New("max client sleep must be positive")

	// ErrInvalidCommitAttempts is returned when commit attempts are not between 1 and MaxCommitAttempts.
	ErrInvalidCommitAttempts = errors.New("commit attempts must be between 1 and 100")

	// ErrNegativeBaseDelay is returned when the retry base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrNegativeMaxDelay is returned when the retry delay cap is negative.
	ErrNegativeMaxDelay = errors.New("max delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// Option defines a functional option for configuring a Bank.
type Option func(*Bank) error

// WithWatcherInterval sets how often the watcher checks the cash invariant.
func WithWatcherInterval(interval time.Duration) Option {
	return func(b *Bank) error {
		if interval <= 0 {
			return ErrInvalidWatcherInterval
		}

		b.watcherInterval = interval

		return nil
	}
}

// WithMaxClientSleep sets the upper bound (exclusive) of the random pause between client operations.
func WithMaxClientSleep(d time.Duration) Option {
	return func(b *Bank) error {
		if d <= 0 {
			return ErrInvalidClientSleep
		}

		b.maxClientSleep = d

		return nil
	}
}

// WithSeed makes every random choice reproducible. Each client derives its own source from the seed.
func WithSeed(seed int64) Option {
	return func(b *Bank) error {
		b.seed = seed
		b.seeded = true

		return nil
	}
}

// WithCommitAttempts sets how many times a client tries one leg of an operation, each time
// with a fresh session, before giving up. The default of 1 keeps the single-shot behavior.
func WithCommitAttempts(attempts int) Option {
	return func(b *Bank) error {
		if attempts <= 0 || attempts > MaxCommitAttempts {
			return ErrInvalidCommitAttempts
		}

		b.retry.maxAttempts = attempts

		return nil
	}
}

// WithCommitBackoff sets the exponential backoff between commit attempts.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, ... capped by the max delay,
// plus up to jitterFactor of each.
func WithCommitBackoff(baseDelay time.Duration, jitterFactor float64) Option {
	return func(b *Bank) error {
		if baseDelay < 0 {
			return ErrNegativeBaseDelay
		}

		if jitterFactor < 0.0 || jitterFactor > 1.0 {
			return ErrInvalidJitterFactor
		}

		b.retry.baseDelay = baseDelay
		b.retry.jitterFactor = jitterFactor

		return nil
	}
}

// WithMaxCommitDelay caps the backoff delay between two commit attempts before jitter.
func WithMaxCommitDelay(maxDelay time.Duration) Option {
	return func(b *Bank) error {
		if maxDelay < 0 {
			return ErrNegativeMaxDelay
		}

		b.retry.maxDelay = maxDelay

		return nil
	}
}

// WithLogger sets the logger for the Bank.
//
// Debug level: every client step (operation choice, amounts, commit outcome, cashier handling)
// Info level: lifecycle transitions and passed invariant checks
// Warn level: invariant violations, interrupted waits, lossy transfers
// Error level: precondition violations hit by a client.
func WithLogger(logger Logger) Option {
	return func(b *Bank) error {
		b.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Bank.
// It takes precedence over a Logger set with WithLogger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(b *Bank) error {
		b.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Bank.
func WithMetrics(collector MetricsCollector) Option {
	return func(b *Bank) error {
		b.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Bank. Every client operation gets a span.
func WithTracing(collector TracingCollector) Option {
	return func(b *Bank) error {
		b.tracingCollector = collector
		return nil
	}
}
