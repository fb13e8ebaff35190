package bank

import "sync"

// Pocket is the cash a client carries. Only the owning client changes it, but the watcher
// may lock it to read a value that no put or take is interleaved with.
type Pocket struct {
	mu      sync.Mutex
	balance Money
}

// NewPocket creates a pocket holding the given amount.
func NewPocket(initial Money) (*Pocket, error) {
	if initial < 0 {
		return nil, ErrNegativeAmount
	}

	return &Pocket{balance: initial}, nil
}

// Check returns the current pocket balance.
func (p *Pocket) Check() Money {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.balance
}

// Put adds amount to the pocket.
func (p *Pocket) Put(amount Money) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.putLocked(amount)
}

// Take removes amount from the pocket. The pocket never goes negative.
func (p *Pocket) Take(amount Money) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.takeLocked(amount)
}

// hold locks the pocket and returns its balance. The caller must call release.
func (p *Pocket) hold() Money {
	p.mu.Lock()
	return p.balance
}

func (p *Pocket) release() {
	p.mu.Unlock()
}

func (p *Pocket) putLocked(amount Money) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	next, ok := addInt64(int64(p.balance), int64(amount))
	if !ok {
		return ErrAmountOverflow
	}

	p.balance = Money(next)

	return nil
}

func (p *Pocket) takeLocked(amount Money) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	if amount > p.balance {
		return ErrInsufficientPocket
	}

	p.balance -= amount

	return nil
}
