package helper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simbank/cashier-simulation/bank"
)

// Population describes the accounts, pockets and cashiers of a test bank.
type Population struct {
	Accounts []bank.Money
	Pockets  []bank.Money
	Cashiers int
}

// GivenBank builds a bank with the given population. Account, client and cashier IDs start at 1.
func GivenBank(t testing.TB, population Population, options ...bank.Option) *bank.Bank {
	t.Helper()

	b, err := bank.NewBank(options...)
	require.NoError(t, err, "error in arranging test data")

	for i, balance := range population.Accounts {
		_, err := b.AddAccount(i+1, balance)
		require.NoError(t, err, "error in arranging test data")
	}

	for i := 1; i <= population.Cashiers; i++ {
		_, err := b.AddCashier(i, fmt.Sprintf("cashier-%d", i))
		require.NoError(t, err, "error in arranging test data")
	}

	for i, amount := range population.Pockets {
		_, err := b.AddClient(i+1, fmt.Sprintf("client-%d", i+1), amount)
		require.NoError(t, err, "error in arranging test data")
	}

	return b
}

// SumOfBalances adds up every account and pocket balance. Call it on a stopped bank only.
func SumOfBalances(b *bank.Bank) bank.Money {
	var sum bank.Money
	for _, a := range b.Accounts() {
		sum += a.Check()
	}

	for _, c := range b.Clients() {
		sum += c.CheckPocket()
	}

	return sum
}

// RunFor starts b, lets it run for d and stops it, failing the test if stopping takes longer than timeout.
func RunFor(t testing.TB, b *bank.Bank, d, timeout time.Duration) {
	t.Helper()

	require.NoError(t, b.Start(context.Background()))
	time.Sleep(d)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	require.NoError(t, b.Stop(ctx))
}
