package bank

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// leg identifies one single-account step of a client operation.
type leg int

const (
	legWithdraw leg = iota
	legDeposit
	legTransferWithdraw
	legTransferDeposit
)

// Client is a bank customer running in its own goroutine. It owns a Pocket and holds a
// non-owning handle to the Bank it belongs to.
type Client struct {
	Person

	bank   *Bank
	pocket *Pocket
	rng    *rand.Rand
	status statusCell

	// onSessionStarted is called after a leg opened its session and before it commits.
	onSessionStarted func(l leg, s *Session)
}

func newClient(id int, name string, b *Bank, pocket *Pocket, seed int64) *Client {
	return &Client{
		Person: Person{id: id, name: name},
		bank:   b,
		pocket: pocket,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // weak random is fine for the simulation
	}
}

// Pocket returns the client's pocket.
func (c *Client) Pocket() *Pocket {
	return c.pocket
}

// CheckPocket returns the client's pocket balance.
func (c *Client) CheckPocket() Money {
	return c.pocket.Check()
}

// Status returns the lifecycle status of the client's goroutine.
func (c *Client) Status() Status {
	return c.status.load()
}

// IsStopped reports whether the client's goroutine has terminated.
func (c *Client) IsStopped() bool {
	return c.status.load() == Stopped
}

// run is the client loop. The bank status is consulted only at the top of each iteration,
// so an operation that has started always completes.
func (c *Client) run(ctx context.Context) {
	c.status.store(Running)
	c.bank.logDebug(ctx, logMsgClientRunning, logAttrClientID, c.ID(), logAttrClientName, c.Name())

	for c.bank.Status() == Running && ctx.Err() == nil {
		c.iterate(ctx)
	}

	c.status.store(Interrupting)
	c.bank.logDebug(ctx, logMsgClientInterrupting, logAttrClientID, c.ID())

	c.status.store(Stopped)
	c.bank.logDebug(ctx, logMsgClientStopped, logAttrClientID, c.ID())
}

// iterate performs one acquire → operate → release → sleep cycle.
func (c *Client) iterate(ctx context.Context) {
	c.bank.logDebug(ctx, logMsgWaitingForCashier, logAttrClientID, c.ID())

	waitStart := time.Now()
	cashier, err := c.bank.GetCashier(ctx, c.ID())
	if err != nil {
		c.bank.logWarn(ctx, logMsgAcquireInterrupted, logAttrClientID, c.ID(), logAttrError, err.Error())
		c.bank.incrementCounter(ctx, metricUnitInterrupts, map[string]string{labelUnit: unitClient, labelPoint: pointAcquire})
		return
	}

	wait := time.Since(waitStart)
	c.bank.recordDuration(ctx, metricCashierWait, wait, nil)
	c.bank.logDebug(ctx, logMsgCashierAcquired,
		logAttrClientID, c.ID(),
		logAttrCashierID, cashier.ID(),
		logAttrCashierName, cashier.Name(),
		logAttrWaitMS, toMilliseconds(wait))

	// A started operation is never aborted by a stop request.
	if _, opErr := c.PerformRandomOperation(context.WithoutCancel(ctx), cashier); opErr != nil {
		c.bank.logError(ctx, logMsgOperationFailed, opErr, logAttrClientID, c.ID(), logAttrCashierID, cashier.ID())
	}

	if releaseErr := c.bank.ReleaseCashier(cashier, c.ID()); releaseErr != nil {
		c.bank.logError(ctx, logMsgCashierReleaseFailed, releaseErr, logAttrClientID, c.ID(), logAttrCashierID, cashier.ID())
	} else {
		c.bank.logDebug(ctx, logMsgCashierReleased, logAttrClientID, c.ID(), logAttrCashierID, cashier.ID())
	}

	c.sleep(ctx)
}

func (c *Client) sleep(ctx context.Context) {
	d := c.randomSleep()
	c.bank.logDebug(ctx, logMsgSleeping, logAttrClientID, c.ID(), logAttrSleepMS, d.Milliseconds())

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		c.bank.logWarn(ctx, logMsgSleepInterrupted, logAttrClientID, c.ID())
		c.bank.incrementCounter(ctx, metricUnitInterrupts, map[string]string{labelUnit: unitClient, labelPoint: pointSleep})
	}
}

// PerformRandomOperation picks Withdraw, Deposit or Transfer uniformly at random together with
// random accounts and a random amount, and performs it with cashier.
func (c *Client) PerformRandomOperation(ctx context.Context, cashier *Cashier) (OperationResult, error) {
	kind := operationKinds[c.rng.Intn(len(operationKinds))]

	switch kind {
	case Withdraw:
		account, err := c.randomAccount()
		if err != nil {
			return OperationResult{Kind: kind, Outcome: OutcomeFailed}, err
		}
		amount := c.randomAmountPart(account.Check())

		return c.Withdraw(ctx, cashier, account, amount)

	case Deposit:
		account, err := c.randomAccount()
		if err != nil {
			return OperationResult{Kind: kind, Outcome: OutcomeFailed}, err
		}
		amount := c.randomAmountPart(c.pocket.Check())

		return c.Deposit(ctx, cashier, account, amount)

	default:
		source, err := c.randomAccount()
		if err != nil {
			return OperationResult{Kind: kind, Outcome: OutcomeFailed}, err
		}
		destination, err := c.randomAccount()
		if err != nil {
			return OperationResult{Kind: kind, Outcome: OutcomeFailed}, err
		}
		amount := c.randomAmountPart(source.Check())

		return c.Transfer(ctx, cashier, source, destination, amount)
	}
}

// Withdraw moves amount from account into the client's pocket. A zero amount is a no-op.
// If the account changed since the session snapshot, nothing changes and the outcome is OutcomeRejected.
func (c *Client) Withdraw(ctx context.Context, cashier *Cashier, account *Account, amount Money) (OperationResult, error) {
	return c.operate(ctx, Withdraw, cashier, account, nil, amount, func(ctx context.Context) (Outcome, error) {
		ok, err := c.runLeg(ctx, cashier, account, amount, legWithdraw)
		if err != nil {
			return OutcomeFailed, err
		}

		if !ok {
			return OutcomeRejected, nil
		}

		return OutcomeCommitted, nil
	})
}

// Deposit moves amount from the client's pocket into account. A zero amount is a no-op.
func (c *Client) Deposit(ctx context.Context, cashier *Cashier, account *Account, amount Money) (OperationResult, error) {
	return c.operate(ctx, Deposit, cashier, account, nil, amount, func(ctx context.Context) (Outcome, error) {
		ok, err := c.runLeg(ctx, cashier, account, amount, legDeposit)
		if err != nil {
			return OutcomeFailed, err
		}

		if !ok {
			return OutcomeRejected, nil
		}

		return OutcomeCommitted, nil
	})
}

// Transfer moves amount from source to destination in two legs through the client's pocket.
// The deposit leg only runs if the withdraw leg committed. After the deposit leg the amount
// is removed from the pocket whether that leg committed or not, so a rejected deposit leg
// loses the amount (OutcomePartial). Source and destination may be the same account.
func (c *Client) Transfer(
	ctx context.Context,
	cashier *Cashier,
	source, destination *Account,
	amount Money,
) (OperationResult, error) {
	return c.operate(ctx, Transfer, cashier, source, destination, amount, func(ctx context.Context) (Outcome, error) {
		ok, err := c.runLeg(ctx, cashier, source, amount, legTransferWithdraw)
		if err != nil {
			return OutcomeFailed, err
		}

		if !ok {
			return OutcomeRejected, nil
		}

		ok, err = c.runLeg(ctx, cashier, destination, amount, legTransferDeposit)
		if err != nil {
			return OutcomeFailed, err
		}

		if !ok {
			c.bank.logWarn(ctx, logMsgTransferDepositFailed,
				logAttrClientID, c.ID(),
				logAttrAmount, int64(amount),
				logAttrSourceID, source.ID(),
				logAttrDestinationID, destination.ID())

			return OutcomePartial, nil
		}

		return OutcomeCommitted, nil
	})
}

// operate wraps an operation with validation, logging, tracing and statistics.
func (c *Client) operate(
	ctx context.Context,
	kind OperationKind,
	cashier *Cashier,
	account, destination *Account,
	amount Money,
	perform func(ctx context.Context) (Outcome, error),
) (OperationResult, error) {
	result := OperationResult{Kind: kind, Amount: amount, Outcome: OutcomeFailed}

	if cashier == nil || account == nil || (kind == Transfer && destination == nil) {
		return result, fmt.Errorf("%s: %w", kind, ErrNilAccount)
	}

	result.AccountID = account.ID()
	if destination != nil {
		result.DestinationID = destination.ID()
	}

	if amount < 0 {
		c.bank.recordOperation(ctx, result)
		return result, fmt.Errorf("%s: %w", kind, ErrNegativeAmount)
	}

	logArgs := c.operationLogArgs(kind, amount, account, destination)

	if amount == 0 {
		result.Outcome = OutcomeNoop
		c.bank.logDebug(ctx, logMsgOperationNoop, logArgs...)
		c.bank.recordOperation(ctx, result)

		return result, nil
	}

	c.bank.logDebug(ctx, logMsgOperationChosen, logArgs...)

	spanCtx, span := c.bank.startOperationSpan(ctx, kind, c.ID(), cashier.ID())

	outcome, err := perform(spanCtx)
	result.Outcome = outcome

	c.bank.finishOperationSpan(span, result, err)
	c.bank.recordOperation(spanCtx, result)

	if err != nil {
		return result, fmt.Errorf("%s: %w", kind, err)
	}

	switch outcome {
	case OutcomeCommitted:
		c.bank.logDebug(spanCtx, logMsgOperationCommitted, append(logArgs, logAttrOutcome, outcome.String())...)
	case OutcomeRejected:
		c.bank.logDebug(spanCtx, logMsgOperationRejected, append(logArgs, logAttrOutcome, outcome.String())...)
	}

	return result, nil
}

func (c *Client) operationLogArgs(kind OperationKind, amount Money, account, destination *Account) []any {
	args := []any{
		logAttrClientID, c.ID(),
		logAttrOperation, kind.String(),
		logAttrAmount, int64(amount),
	}

	if kind == Transfer {
		return append(args, logAttrSourceID, account.ID(), logAttrDestinationID, destination.ID())
	}

	return append(args, logAttrAccountID, account.ID())
}

// runLeg performs one single-account leg and books the matching pocket change.
// The pocket is locked per attempt only, never across the backoff between attempts.
func (c *Client) runLeg(ctx context.Context, cashier *Cashier, account *Account, amount Money, l leg) (bool, error) {
	_, err := retryOnRejection(ctx, c.rng, c.bank.retry,
		func(ctx context.Context) error {
			return c.attemptLeg(ctx, cashier, account, amount, l)
		},
		func(attempt int) {
			c.bank.logDebug(ctx, logMsgCommitRetry,
				logAttrClientID, c.ID(),
				logAttrAccountID, account.ID(),
				logAttrAttempt, attempt)
			c.bank.incrementCounter(ctx, metricCommitRetries, nil)
		},
	)

	if err == nil {
		return true, nil
	}

	if !errors.Is(err, ErrCommitRejected) {
		return false, err
	}

	if l == legTransferDeposit {
		// The amount leaves the pocket even when the deposit was rejected.
		if takeErr := c.pocket.Take(amount); takeErr != nil {
			return false, takeErr
		}
	}

	return false, nil
}

// attemptLeg commits one session and books the pocket under the pocket lock, so the
// watcher never sees an account change without the matching pocket change.
func (c *Client) attemptLeg(ctx context.Context, cashier *Cashier, account *Account, amount Money, l leg) error {
	c.pocket.mu.Lock()
	defer c.pocket.mu.Unlock()

	if (l == legDeposit || l == legTransferDeposit) && c.pocket.balance < amount {
		return ErrInsufficientPocket
	}

	if err := c.commitOnce(ctx, cashier, account, amount, l); err != nil {
		return err
	}

	if l == legWithdraw || l == legTransferWithdraw {
		return c.pocket.putLocked(amount)
	}

	return c.pocket.takeLocked(amount)
}

// commitOnce opens a session, records the leg and commits it.
func (c *Client) commitOnce(ctx context.Context, cashier *Cashier, account *Account, amount Money, l leg) error {
	session, err := cashier.StartWorkWithAccount(account)
	if err != nil {
		return err
	}

	switch l {
	case legWithdraw, legTransferWithdraw:
		err = session.TakeFromAccount(amount)
	default:
		err = session.PutToAccount(amount)
	}

	if err != nil {
		session.Abandon()
		return err
	}

	if c.onSessionStarted != nil {
		c.onSessionStarted(l, session)
	}

	ok, err := session.CommitWorkWithAccount()
	if err != nil {
		return err
	}

	c.bank.logDebug(ctx, logMsgSessionFinished,
		logAttrSessionID, session.ID().String(),
		logAttrCashierID, cashier.ID(),
		logAttrAccountID, account.ID(),
		logAttrCommitted, ok)

	if !ok {
		return ErrCommitRejected
	}

	return nil
}

func (c *Client) randomAccount() (*Account, error) {
	count := c.bank.AccountsCount()
	if count == 0 {
		return nil, ErrNoAccounts
	}

	return c.bank.AccountByIndex(c.rng.Intn(count))
}

// randomAmountPart returns a random amount in [0, available).
func (c *Client) randomAmountPart(available Money) Money {
	if available <= 0 {
		return 0
	}

	return Money(c.rng.Int63n(int64(available)))
}

// randomSleep returns a random pause in [0, maxClientSleep).
func (c *Client) randomSleep() time.Duration {
	return time.Duration(c.rng.Int63n(int64(c.bank.maxClientSleep)))
}
