package bank

import (
	"context"
	"time"
)

// Watcher periodically checks that the cash in all accounts and pockets equals the bank's
// total cash. A failed check is reported and recorded but never stops the simulation.
type Watcher struct {
	bank     *Bank
	interval time.Duration
	status   statusCell
}

func newWatcher(b *Bank, interval time.Duration) *Watcher {
	return &Watcher{bank: b, interval: interval}
}

// Interval returns the sampling interval.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Status returns the lifecycle status of the watcher's goroutine.
func (w *Watcher) Status() Status {
	return w.status.load()
}

// IsStopped reports whether the watcher's goroutine has terminated.
func (w *Watcher) IsStopped() bool {
	return w.status.load() == Stopped
}

// run checks the invariant on every tick until ctx is done. The bank cancels ctx only after
// all clients stopped, so the last check runs on a quiescent state.
func (w *Watcher) run(ctx context.Context) {
	w.status.store(Running)
	w.bank.logDebug(ctx, logMsgWatcherRunning, logAttrExpected, int64(w.bank.CashAmount()))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.bank.CheckInvariant(ctx)

		case <-ctx.Done():
			w.status.store(Interrupting)
			w.bank.CheckInvariant(context.WithoutCancel(ctx))
			w.status.store(Stopped)
			w.bank.logDebug(ctx, logMsgWatcherStopped)

			return
		}
	}
}
