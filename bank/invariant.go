package bank

import (
	"context"
	"sync"
	"time"
)

// maxRecordedViolations bounds the violations kept for inspection. Only the first ones are kept,
// since they show when the money started to diverge. The violation count keeps growing.
const maxRecordedViolations = 1000

// InvariantCheck is one sample of all balances compared with the bank's total cash.
type InvariantCheck struct {
	CheckedAt     time.Time `json:"checked_at"`
	Expected      Money     `json:"expected"`
	AccountsTotal Money     `json:"accounts_total"`
	PocketsTotal  Money     `json:"pockets_total"`
}

// Actual returns the sampled total of accounts and pockets.
func (c InvariantCheck) Actual() Money {
	return c.AccountsTotal + c.PocketsTotal
}

// Difference returns Actual minus Expected. It is negative when money was lost.
func (c InvariantCheck) Difference() int64 {
	return int64(c.Actual()) - int64(c.Expected)
}

// Holds reports whether the sampled total equals the expected total.
func (c InvariantCheck) Holds() bool {
	return c.Actual() == c.Expected
}

// invariantLog keeps the results of all checks.
type invariantLog struct {
	mu         sync.Mutex
	checks     int64
	violated   int64
	last       *InvariantCheck
	violations []InvariantCheck
}

func (l *invariantLog) add(check InvariantCheck) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checks++
	l.last = &check

	if !check.Holds() {
		l.violated++
		if len(l.violations) < maxRecordedViolations {
			l.violations = append(l.violations, check)
		}
	}
}

// CheckInvariant samples all pockets and accounts and compares the sum with the bank's total cash.
// Every pocket is locked for the duration of the sample. The result is recorded, logged and returned.
func (b *Bank) CheckInvariant(ctx context.Context) InvariantCheck {
	b.mu.RLock()
	clients := b.clients
	accounts := b.accounts
	b.mu.RUnlock()

	check := InvariantCheck{Expected: b.CashAmount()}

	for _, c := range clients {
		check.PocketsTotal += c.pocket.hold()
	}

	for _, a := range accounts {
		check.AccountsTotal += a.Check()
	}

	for i := len(clients) - 1; i >= 0; i-- {
		clients[i].pocket.release()
	}

	check.CheckedAt = time.Now()
	b.invariants.add(check)

	args := []any{
		logAttrExpected, int64(check.Expected),
		logAttrActual, int64(check.Actual()),
		logAttrAccountsTotal, int64(check.AccountsTotal),
		logAttrPocketsTotal, int64(check.PocketsTotal),
	}

	if check.Holds() {
		b.incrementCounter(ctx, metricInvariantChecks, map[string]string{labelResult: resultHolds})
		b.logInfo(ctx, logMsgInvariantHolds, args...)
	} else {
		b.incrementCounter(ctx, metricInvariantChecks, map[string]string{labelResult: resultViolated})
		b.logWarn(ctx, logMsgInvariantViolated, append(args, logAttrDifference, check.Difference())...)
	}

	b.recordValue(ctx, metricInvariantDifference, float64(check.Difference()), nil)

	return check
}

// Violations returns the first failed checks, up to maxRecordedViolations, oldest first.
func (b *Bank) Violations() []InvariantCheck {
	b.invariants.mu.Lock()
	defer b.invariants.mu.Unlock()

	out := make([]InvariantCheck, len(b.invariants.violations))
	copy(out, b.invariants.violations)

	return out
}

// ViolationCount returns how many checks failed so far.
func (b *Bank) ViolationCount() int64 {
	b.invariants.mu.Lock()
	defer b.invariants.mu.Unlock()

	return b.invariants.violated
}

// CheckCount returns how many checks ran so far.
func (b *Bank) CheckCount() int64 {
	b.invariants.mu.Lock()
	defer b.invariants.mu.Unlock()

	return b.invariants.checks
}

// LastCheck returns the most recent check, if any ran.
func (b *Bank) LastCheck() (InvariantCheck, bool) {
	b.invariants.mu.Lock()
	defer b.invariants.mu.Unlock()

	if b.invariants.last == nil {
		return InvariantCheck{}, false
	}

	return *b.invariants.last, true
}
