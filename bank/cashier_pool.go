package bank

import (
	"context"
	"sync"
)

// PoolStats contains a consistent view of the cashier pool partition.
type PoolStats struct {
	Capacity int `json:"capacity"`
	Free     int `json:"free"`
	Held     int `json:"held"`
	Waiting  int `json:"waiting"`
}

type heldCashier struct {
	cashier *Cashier
	ownerID int
}

// CashierPool hands out cashiers to clients. Every cashier is at all times either free or
// held by exactly one client, so Free+Held always equals Capacity.
type CashierPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	free    []*Cashier
	held    map[int]heldCashier
	known   map[int]*Cashier
	waiting int
}

// NewCashierPool creates a pool that initially holds the given cashiers as free.
func NewCashierPool(cashiers ...*Cashier) (*CashierPool, error) {
	p := &CashierPool{
		held:  make(map[int]heldCashier),
		known: make(map[int]*Cashier),
	}
	p.cond = sync.NewCond(&p.mu)

	for _, c := range cashiers {
		if err := p.Add(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Add puts a new cashier into the pool and wakes one waiting client.
func (p *CashierPool) Add(c *Cashier) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.known[c.ID()]; exists {
		return ErrDuplicateCashier
	}

	p.known[c.ID()] = c
	p.free = append(p.free, c)
	p.cond.Signal()

	return nil
}

// GetCashier removes and returns a free cashier, blocking until one is released.
// It returns ctx.Err() if ctx is done before a cashier becomes available.
func (p *CashierPool) GetCashier(ctx context.Context, ownerID int) (*Cashier, error) {
	// Wake all waiters on cancellation so the canceled one can observe ctx.Err().
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.cond.Broadcast()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.free) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.waiting++
		p.cond.Wait()
		p.waiting--
	}

	// A cashier may be free and ctx canceled at the same time; prefer handing it out
	// only while ctx is alive.
	if err := ctx.Err(); err != nil {
		p.cond.Signal()
		return nil, err
	}

	last := len(p.free) - 1
	c := p.free[last]
	p.free[last] = nil
	p.free = p.free[:last]
	p.held[c.ID()] = heldCashier{cashier: c, ownerID: ownerID}

	return c, nil
}

// ReleaseCashier returns c to the free set and wakes at most one waiting client.
func (p *CashierPool) ReleaseCashier(c *Cashier, ownerID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, isHeld := p.held[c.ID()]
	if !isHeld || h.cashier != c {
		return ErrCashierNotHeld
	}

	if h.ownerID != ownerID {
		return ErrCashierWrongOwner
	}

	if !c.IsIdle() {
		return ErrCashierSessionActive
	}

	delete(p.held, c.ID())
	p.free = append(p.free, c)
	p.cond.Signal()

	return nil
}

// HolderOf returns the owner ID of a held cashier.
func (p *CashierPool) HolderOf(cashierID int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, isHeld := p.held[cashierID]

	return h.ownerID, isHeld
}

// Stats returns the pool partition observed under the pool lock.
func (p *CashierPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Capacity: len(p.known),
		Free:     len(p.free),
		Held:     len(p.held),
		Waiting:  p.waiting,
	}
}
