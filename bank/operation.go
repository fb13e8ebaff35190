package bank

import "sync/atomic"

// OperationKind is one of the money movements a client can perform.
type OperationKind int

const (
	// Withdraw moves money from an account into the client's pocket.
	Withdraw OperationKind = iota

	// Deposit moves money from the client's pocket into an account.
	Deposit

	// Transfer moves money from one account to another through the client's pocket.
	Transfer
)

// operationKinds is the set a client chooses from uniformly.
var operationKinds = [...]OperationKind{Withdraw, Deposit, Transfer}

func (k OperationKind) String() string {
	switch k {
	case Withdraw:
		return "withdraw"
	case Deposit:
		return "deposit"
	case Transfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Outcome describes how a client operation ended.
type Outcome int

const (
	// OutcomeNoop means the random amount was zero and nothing was attempted.
	OutcomeNoop Outcome = iota

	// OutcomeCommitted means every leg of the operation committed.
	OutcomeCommitted

	// OutcomeRejected means the first leg was rejected and nothing changed.
	OutcomeRejected

	// OutcomePartial means a transfer's withdraw leg committed but its deposit leg was
	// rejected. The amount left the pocket without reaching the destination.
	OutcomePartial

	// OutcomeFailed means a precondition was violated.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomeCommitted:
		return "committed"
	case OutcomeRejected:
		return "rejected"
	case OutcomePartial:
		return "partial"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OperationResult describes one finished client operation.
// DestinationID is only meaningful for transfers.
type OperationResult struct {
	Kind          OperationKind
	Outcome       Outcome
	Amount        Money
	AccountID     int
	DestinationID int
}

// OperationCounts holds the outcome counters of one operation kind.
type OperationCounts struct {
	Attempted int64 `json:"attempted"`
	Committed int64 `json:"committed"`
	Rejected  int64 `json:"rejected"`
	Partial   int64 `json:"partial"`
	Noop      int64 `json:"noop"`
	Failed    int64 `json:"failed"`
}

// OperationStats contains counters per operation kind.
type OperationStats struct {
	Withdraw OperationCounts `json:"withdraw"`
	Deposit  OperationCounts `json:"deposit"`
	Transfer OperationCounts `json:"transfer"`
}

// Total sums the counters of all kinds.
func (s OperationStats) Total() OperationCounts {
	var t OperationCounts
	for _, c := range []OperationCounts{s.Withdraw, s.Deposit, s.Transfer} {
		t.Attempted += c.Attempted
		t.Committed += c.Committed
		t.Rejected += c.Rejected
		t.Partial += c.Partial
		t.Noop += c.Noop
		t.Failed += c.Failed
	}

	return t
}

type kindCounters struct {
	attempted atomic.Int64
	committed atomic.Int64
	rejected  atomic.Int64
	partial   atomic.Int64
	noop      atomic.Int64
	failed    atomic.Int64
}

func (k *kindCounters) snapshot() OperationCounts {
	return OperationCounts{
		Attempted: k.attempted.Load(),
		Committed: k.committed.Load(),
		Rejected:  k.rejected.Load(),
		Partial:   k.partial.Load(),
		Noop:      k.noop.Load(),
		Failed:    k.failed.Load(),
	}
}

// operationStats uses atomic counters so clients never contend on a lock for bookkeeping.
type operationStats struct {
	kinds [len(operationKinds)]kindCounters
}

func (s *operationStats) record(result OperationResult) {
	if result.Kind < 0 || int(result.Kind) >= len(s.kinds) {
		return
	}

	k := &s.kinds[result.Kind]
	k.attempted.Add(1)

	switch result.Outcome {
	case OutcomeCommitted:
		k.committed.Add(1)
	case OutcomeRejected:
		k.rejected.Add(1)
	case OutcomePartial:
		k.partial.Add(1)
	case OutcomeNoop:
		k.noop.Add(1)
	case OutcomeFailed:
		k.failed.Add(1)
	}
}

func (s *operationStats) snapshot() OperationStats {
	return OperationStats{
		Withdraw: s.kinds[Withdraw].snapshot(),
		Deposit:  s.kinds[Deposit].snapshot(),
		Transfer: s.kinds[Transfer].snapshot(),
	}
}
