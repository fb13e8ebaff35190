package bank

import (
	"sync"

	"github.com/google/uuid"
)

// Cashier is a pooled transaction handle. It has at most one active Session at a time.
type Cashier struct {
	Person

	mu     sync.Mutex
	active *Session
}

// NewCashier creates an idle cashier.
func NewCashier(id int, name string) *Cashier {
	return &Cashier{Person: Person{id: id, name: name}}
}

// IsIdle reports whether the cashier has no active session.
func (c *Cashier) IsIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active == nil
}

// StartWorkWithAccount opens an optimistic session against account.
// The session records the account's current balance as its snapshot and starts with a zero delta.
func (c *Cashier) StartWorkWithAccount(account *Account) (*Session, error) {
	if account == nil {
		return nil, ErrNilAccount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, ErrCashierSessionActive
	}

	s := &Session{
		id:       uuid.New(),
		cashier:  c,
		account:  account,
		snapshot: account.Check(),
	}
	c.active = s

	return s, nil
}

// Session is one optimistic unit of work of a Cashier against a single Account.
// Take and put only change the pending delta; the account is touched on commit.
type Session struct {
	id       uuid.UUID
	cashier  *Cashier
	account  *Account
	snapshot Money
	delta    int64
	closed   bool
}

// ID returns the session ID used for log and trace correlation.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Account returns the account the session works with.
func (s *Session) Account() *Account {
	return s.account
}

// Snapshot returns the account balance read when the session was started.
func (s *Session) Snapshot() Money {
	return s.snapshot
}

// Delta returns the pending change that a commit would apply.
func (s *Session) Delta() int64 {
	s.cashier.mu.Lock()
	defer s.cashier.mu.Unlock()

	return s.delta
}

// TakeFromAccount records a withdrawal of amount.
func (s *Session) TakeFromAccount(amount Money) error {
	return s.record(-int64(amount), amount)
}

// PutToAccount records a deposit of amount.
func (s *Session) PutToAccount(amount Money) error {
	return s.record(int64(amount), amount)
}

func (s *Session) record(delta int64, amount Money) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	s.cashier.mu.Lock()
	defer s.cashier.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	next, ok := addInt64(s.delta, delta)
	if !ok {
		return ErrAmountOverflow
	}

	s.delta = next

	return nil
}

// CommitWorkWithAccount applies the pending delta if the account balance still equals the
// snapshot and the result is not negative. It returns false if the account changed in the
// meantime or would go negative; nothing is mutated in that case.
// Either way the cashier becomes idle. The cashier never retries on its own.
func (s *Session) CommitWorkWithAccount() (bool, error) {
	s.cashier.mu.Lock()
	defer s.cashier.mu.Unlock()

	if s.closed {
		return false, ErrSessionClosed
	}

	ok := s.account.compareAndApply(s.snapshot, s.delta)
	s.closeLocked()

	return ok, nil
}

// Abandon ends the session without touching the account. Abandoning a closed session is a no-op.
func (s *Session) Abandon() {
	s.cashier.mu.Lock()
	defer s.cashier.mu.Unlock()

	if !s.closed {
		s.closeLocked()
	}
}

func (s *Session) closeLocked() {
	s.closed = true
	if s.cashier.active == s {
		s.cashier.active = nil
	}
}
