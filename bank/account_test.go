package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewAccount_RejectsNegativeBalance(t *testing.T) {
	_, err := NewAccount(1, -1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func Test_Account_CompareAndApply(t *testing.T) {
	testCases := []struct {
		name      string
		expected  Money
		delta     int64
		wantOK    bool
		wantAfter Money
	}{
		{"matching snapshot applies delta", 100, -40, true, 60},
		{"stale snapshot is rejected", 90, -40, false, 100},
		{"negative result is rejected", 100, -101, false, 100},
		{"result of zero is allowed", 100, -100, true, 0},
		{"deposit applies", 100, 25, true, 125},
		{"overflowing result is rejected", 100, math.MaxInt64, false, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			account, err := NewAccount(1, 100)
			require.NoError(t, err)

			assert.Equal(t, tc.wantOK, account.compareAndApply(tc.expected, tc.delta))
			assert.Equal(t, tc.wantAfter, account.Check())
		})
	}
}
