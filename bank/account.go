package bank

import "sync"

// Account is a shared balance cell. Its balance changes only through compareAndApply,
// which is reached by committing a cashier Session.
type Account struct {
	id      int
	mu      sync.Mutex
	balance Money
}

// NewAccount creates an account with the given starting balance.
func NewAccount(id int, initial Money) (*Account, error) {
	if initial < 0 {
		return nil, ErrNegativeAmount
	}

	return &Account{id: id, balance: initial}, nil
}

// ID returns the account ID.
func (a *Account) ID() int {
	return a.id
}

// Check returns the current balance.
func (a *Account) Check() Money {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balance
}

// compareAndApply sets the balance to expected+delta if the balance still equals expected
// and the result is neither negative nor out of range. It reports whether the balance was changed.
func (a *Account) compareAndApply(expected Money, delta int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.balance != expected {
		return false
	}

	next, ok := addInt64(int64(expected), delta)
	if !ok || next < 0 {
		return false
	}

	a.balance = Money(next)

	return true
}
