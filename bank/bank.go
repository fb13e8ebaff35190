package bank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Bank aggregates accounts, clients, the cashier pool and the watcher. It records the total
// cash put into the simulation and drives the Created → Running → Interrupting → Stopped lifecycle.
type Bank struct {
	runID uuid.UUID

	mu         sync.RWMutex
	accounts   []*Account
	clients    []*Client
	cashAmount Money

	pool    *CashierPool
	watcher *Watcher
	status  statusCell

	// lifecycleMu serializes setup, Start and Stop.
	lifecycleMu   sync.Mutex
	clientGroup   *errgroup.Group
	watcherGroup  *errgroup.Group
	cancelClients context.CancelFunc
	cancelWatcher context.CancelFunc

	watcherInterval time.Duration
	maxClientSleep  time.Duration
	seed            int64
	seeded          bool
	retry           retryConfig

	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector

	stats      operationStats
	invariants invariantLog
}

// NewBank creates an empty bank with optional configuration.
func NewBank(options ...Option) (*Bank, error) {
	pool, err := NewCashierPool()
	if err != nil {
		return nil, err
	}

	b := &Bank{
		runID:           uuid.New(),
		pool:            pool,
		watcherInterval: defaultWatcherInterval,
		maxClientSleep:  defaultMaxClientSleep,
		retry:           defaultRetryConfig(),
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	if !b.seeded {
		b.seed = time.Now().UnixNano()
	}

	b.watcher = newWatcher(b, b.watcherInterval)

	return b, nil
}

// RunID identifies this bank in logs and reports.
func (b *Bank) RunID() uuid.UUID {
	return b.runID
}

// Status returns the bank's lifecycle status.
func (b *Bank) Status() Status {
	return b.status.load()
}

// CashAmount returns the total cash the invariant expects: all initial account balances plus
// all initial pocket amounts.
func (b *Bank) CashAmount() Money {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cashAmount
}

// AddAccount adds an account with the given starting balance.
func (b *Bank) AddAccount(id int, initialAmount Money) (*Account, error) {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	if err := b.checkSetupAllowed(); err != nil {
		return nil, err
	}

	account, err := NewAccount(id, initialAmount)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", id, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	total, ok := addInt64(int64(b.cashAmount), int64(initialAmount))
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, ErrAmountOverflow)
	}

	b.accounts = append(b.accounts, account)
	b.cashAmount = Money(total)

	return account, nil
}

// AddClient adds a client carrying amountInPocket.
func (b *Bank) AddClient(id int, name string, amountInPocket Money) (*Client, error) {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	if err := b.checkSetupAllowed(); err != nil {
		return nil, err
	}

	pocket, err := NewPocket(amountInPocket)
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", id, err)
	}

	client := newClient(id, name, b, pocket, b.seed+int64(id))

	b.mu.Lock()
	defer b.mu.Unlock()

	total, ok := addInt64(int64(b.cashAmount), int64(amountInPocket))
	if !ok {
		return nil, fmt.Errorf("client %d: %w", id, ErrAmountOverflow)
	}

	b.clients = append(b.clients, client)
	b.cashAmount = Money(total)

	return client, nil
}

// AddCashier adds a cashier to the pool.
func (b *Bank) AddCashier(id int, name string) (*Cashier, error) {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	if err := b.checkSetupAllowed(); err != nil {
		return nil, err
	}

	cashier := NewCashier(id, name)
	if err := b.pool.Add(cashier); err != nil {
		return nil, fmt.Errorf("cashier %d: %w", id, err)
	}

	return cashier, nil
}

func (b *Bank) checkSetupAllowed() error {
	if s := b.status.load(); s == Running || s == Interrupting {
		return ErrSetupWhileRunning
	}

	return nil
}

// AccountsCount returns the number of accounts.
func (b *Bank) AccountsCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.accounts)
}

// AccountByIndex returns the account at index in creation order.
func (b *Bank) AccountByIndex(index int) (*Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if index < 0 || index >= len(b.accounts) {
		return nil, ErrAccountIndexOutOfRange
	}

	return b.accounts[index], nil
}

// Accounts returns all accounts in creation order.
func (b *Bank) Accounts() []*Account {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Account, len(b.accounts))
	copy(out, b.accounts)

	return out
}

// Clients returns all clients in creation order.
func (b *Bank) Clients() []*Client {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Client, len(b.clients))
	copy(out, b.clients)

	return out
}

// Watcher returns the bank's invariant watcher.
func (b *Bank) Watcher() *Watcher {
	return b.watcher
}

// CashierPool returns the bank's cashier pool.
func (b *Bank) CashierPool() *CashierPool {
	return b.pool
}

// GetCashier blocks until a cashier is free and hands it to ownerID.
func (b *Bank) GetCashier(ctx context.Context, ownerID int) (*Cashier, error) {
	return b.pool.GetCashier(ctx, ownerID)
}

// ReleaseCashier returns a cashier held by ownerID to the pool.
func (b *Bank) ReleaseCashier(cashier *Cashier, ownerID int) error {
	return b.pool.ReleaseCashier(cashier, ownerID)
}

// OperationStats returns the per-kind operation counters.
func (b *Bank) OperationStats() OperationStats {
	return b.stats.snapshot()
}

// Start launches one goroutine per client plus one for the watcher.
// It is allowed from Created and Stopped. Canceling ctx asks every client to stop. The
// watcher keeps running until Stop, so its final check sees the quiescent state, and only
// Stop moves the bank to Stopped.
func (b *Bank) Start(ctx context.Context) error {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	b.mu.RLock()
	clients := b.clients
	accountCount := len(b.accounts)
	b.mu.RUnlock()

	if len(clients) > 0 {
		if accountCount == 0 {
			return ErrNoAccounts
		}

		if b.pool.Stats().Capacity == 0 {
			return ErrNoCashiers
		}
	}

	if !b.status.transition(Running, Created, Stopped) {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, b.status.load())
	}

	clientsCtx, cancelClients := context.WithCancel(ctx)
	// Only Stop ends the watcher, after all clients stopped.
	watcherCtx, cancelWatcher := context.WithCancel(context.WithoutCancel(ctx))
	b.cancelClients = cancelClients
	b.cancelWatcher = cancelWatcher
	b.clientGroup = new(errgroup.Group)
	b.watcherGroup = new(errgroup.Group)

	for _, c := range clients {
		c.status.store(Created)
		b.clientGroup.Go(func() error {
			c.run(clientsCtx)
			return nil
		})
	}

	b.watcher.status.store(Created)
	b.watcherGroup.Go(func() error {
		b.watcher.run(watcherCtx)
		return nil
	})

	b.logInfo(ctx, logMsgBankStarted,
		logAttrRunID, b.runID.String(),
		logAttrClients, len(clients),
		logAttrCashiers, b.pool.Stats().Capacity,
		logAttrAccounts, accountCount,
		logAttrExpected, int64(b.CashAmount()))

	return nil
}

// Stop moves the bank to Interrupting, waits until every client stopped, then stops the
// watcher and waits for it, and finally moves the bank to Stopped. Clients finish their
// in-flight operation; sleeping or waiting clients are woken.
// If ctx is done first, Stop returns its error and the bank stays Interrupting; Stop may be
// called again to keep waiting.
func (b *Bank) Stop(ctx context.Context) error {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	if !b.status.transition(Interrupting, Running, Interrupting) {
		return fmt.Errorf("%w: cannot stop from %s", ErrInvalidTransition, b.status.load())
	}

	b.logInfo(ctx, logMsgBankInterrupting, logAttrRunID, b.runID.String())

	b.cancelClients()
	if err := waitGroup(ctx, b.clientGroup); err != nil {
		return fmt.Errorf("waiting for clients: %w", err)
	}

	b.cancelWatcher()
	if err := waitGroup(ctx, b.watcherGroup); err != nil {
		return fmt.Errorf("waiting for watcher: %w", err)
	}

	b.status.store(Stopped)
	b.logInfo(ctx, logMsgBankStopped,
		logAttrRunID, b.runID.String(),
		logAttrExpected, int64(b.CashAmount()))

	return nil
}

// waitGroup blocks until all goroutines of g returned or ctx is done.
func waitGroup(ctx context.Context, g *errgroup.Group) error {
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WatcherStopped reports whether the watcher's goroutine has terminated.
func (b *Bank) WatcherStopped() bool {
	return b.watcher.IsStopped()
}
