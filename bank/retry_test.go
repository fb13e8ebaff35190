package bank

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_retryOnRejection(t *testing.T) {
	errOther := errors.New("other")

	testCases := []struct {
		name         string
		maxAttempts  int
		results      []error
		wantAttempts int
		wantErr      error
		wantRetries  []int
	}{
		{"success on first attempt", 3, []error{nil}, 1, nil, nil},
		{"success after rejections", 3, []error{ErrCommitRejected, ErrCommitRejected, nil}, 3, nil, []int{2, 3}},
		{"rejections exhaust attempts", 2, []error{ErrCommitRejected, ErrCommitRejected}, 2, ErrCommitRejected, []int{2}},
		{"single attempt never retries", 1, []error{ErrCommitRejected}, 1, ErrCommitRejected, nil},
		{"other errors are not retried", 3, []error{errOther}, 1, errOther, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := retryConfig{maxAttempts: tc.maxAttempts, baseDelay: time.Millisecond, jitterFactor: 0.5}
			calls := 0
			var retries []int

			attempts, err := retryOnRejection(context.Background(), rand.New(rand.NewSource(1)), config, //nolint:gosec
				func(context.Context) error {
					err := tc.results[calls]
					calls++
					return err
				},
				func(attempt int) { retries = append(retries, attempt) },
			)

			assert.Equal(t, tc.wantAttempts, attempts)
			assert.Equal(t, tc.wantAttempts, calls)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.wantRetries, retries)
		})
	}
}

func Test_retryOnRejection_StopsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := retryConfig{maxAttempts: 5, baseDelay: time.Hour, maxDelay: time.Hour}
	calls := 0

	attempts, err := retryOnRejection(ctx, rand.New(rand.NewSource(1)), config, //nolint:gosec
		func(context.Context) error {
			calls++
			cancel()
			return ErrCommitRejected
		},
		nil,
	)

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrCommitRejected)
}

func Test_retryConfig_BackoffIsCapped(t *testing.T) {
	config := retryConfig{baseDelay: 10 * time.Millisecond, maxDelay: 50 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, config.backoff(1))
	assert.Equal(t, 20*time.Millisecond, config.backoff(2))
	assert.Equal(t, 40*time.Millisecond, config.backoff(3))
	assert.Equal(t, 50*time.Millisecond, config.backoff(4))
	assert.Equal(t, 50*time.Millisecond, config.backoff(MaxCommitAttempts))
	assert.Equal(t, 50*time.Millisecond, config.backoff(1000), "no shift overflow for large attempts")
}
