package bank

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// shortWait bounds how long a test waits to be confident that a goroutine is blocked.
func shortWait() <-chan time.Time {
	return time.After(50 * time.Millisecond)
}

// givenBank builds a bank with IDs starting at 1 and no retry backoff delay.
func givenBank(t *testing.T, accounts []Money, pockets []Money, cashiers int, options ...Option) *Bank {
	t.Helper()

	options = append([]Option{WithSeed(1), WithCommitBackoff(0, 0)}, options...)
	b, err := NewBank(options...)
	require.NoError(t, err, "error in arranging test data")

	for i, balance := range accounts {
		_, err := b.AddAccount(i+1, balance)
		require.NoError(t, err, "error in arranging test data")
	}

	for i := 1; i <= cashiers; i++ {
		_, err := b.AddCashier(i, fmt.Sprintf("cashier-%d", i))
		require.NoError(t, err, "error in arranging test data")
	}

	for i, amount := range pockets {
		_, err := b.AddClient(i+1, fmt.Sprintf("client-%d", i+1), amount)
		require.NoError(t, err, "error in arranging test data")
	}

	return b
}

func account(t *testing.T, b *Bank, index int) *Account {
	t.Helper()

	a, err := b.AccountByIndex(index)
	require.NoError(t, err, "error in arranging test data")

	return a
}
