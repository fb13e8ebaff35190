package bank

import (
	"errors"
	"math"
)

var (
	// ErrNegativeAmount is returned when an operation receives a negative amount.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrNilAccount is returned when a session is started without an account.
	ErrNilAccount = errors.New("account must not be nil")

	// ErrCashierSessionActive is returned when a cashier that already works with an account
	// is asked to start another session, or is released while its session is still open.
	ErrCashierSessionActive = errors.New("cashier already has an active session")

	// ErrSessionClosed is returned when a committed or abandoned session is used again.
	ErrSessionClosed = errors.New("session is closed")

	// ErrCashierNotHeld is returned when a cashier is released that is not currently held.
	ErrCashierNotHeld = errors.New("cashier is not held")

	// ErrCashierWrongOwner is returned when a cashier is released by a client that does not hold it.
	ErrCashierWrongOwner = errors.New("cashier is held by another client")

	// ErrDuplicateCashier is returned when a cashier with the same ID is added to the pool twice.
	ErrDuplicateCashier = errors.New("cashier already in pool")

	// ErrInsufficientPocket is returned when more money is taken from a pocket than it holds.
	ErrInsufficientPocket = errors.New("pocket balance is insufficient")

	// ErrAmountOverflow is returned when a sum of amounts would exceed the Money range.
	ErrAmountOverflow = errors.New("amount overflows the money range")

	// ErrAccountIndexOutOfRange is returned by AccountByIndex for an invalid index.
	ErrAccountIndexOutOfRange = errors.New("account index out of range")

	// ErrInvalidTransition is returned when a lifecycle transition is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid bank status transition")

	// ErrSetupWhileRunning is returned when accounts, clients or cashiers are added to a running bank.
	ErrSetupWhileRunning = errors.New("bank setup is only allowed while not running")

	// ErrNoAccounts is returned when a bank with clients is started without accounts.
	ErrNoAccounts = errors.New("bank has no accounts")

	// ErrNoCashiers is returned when a bank with clients is started without cashiers.
	ErrNoCashiers = errors.New("bank has no cashiers")

	// ErrCommitRejected signals a rejected optimistic commit inside the retry helper.
	// It never leaves the package through the Session API, where a rejection is a plain false.
	ErrCommitRejected = errors.New("optimistic commit rejected")
)

// Money is a non-negative amount of cash in the smallest unit.
type Money int64

// addInt64 returns a+b and reports whether the sum stayed within the int64 range.
func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}

	return a + b, true
}
