// Package bank provides an in-memory bank simulation that exercises concurrent mutation of
// shared balances through a bounded pool of cashiers using optimistic concurrency control.
//
// A Bank aggregates Accounts, Clients (each owning a Pocket), a CashierPool and a Watcher.
// Every Client runs in its own goroutine and repeatedly borrows a Cashier to move money
// between a random Account and its Pocket. The Watcher samples all balances on a fixed
// interval and compares the sum with the total cash recorded at setup.
//
// The only mutation path for an Account is a Session opened by a Cashier:
//
//	session, err := cashier.StartWorkWithAccount(account)
//	if err != nil {
//		// the cashier already has an active session
//	}
//	_ = session.TakeFromAccount(40)
//	ok, err := session.CommitWorkWithAccount()
//	if err == nil && !ok {
//		// another session committed first, nothing was changed
//	}
//
// Key types:
//   - Account: shared balance cell with a compare-and-apply primitive
//   - Pocket: per-client balance cell, lockable by the Watcher
//   - Cashier and Session: single-account optimistic transaction
//   - CashierPool: blocking pool of cashiers
//   - Bank: lifecycle (Created → Running → Interrupting → Stopped) and invariant owner
//
// Transfers move money in two legs through the client's pocket and are NOT atomic: when
// the deposit leg is rejected the amount is still removed from the pocket, and the Watcher
// reports the resulting invariant violation.
//
// The package owns no logging, metrics or tracing implementation. Collaborators are
// injected with WithLogger, WithContextualLogger, WithMetrics and WithTracing.
package bank
