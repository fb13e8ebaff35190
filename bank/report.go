package bank

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// AccountBalance is one account in a Report.
type AccountBalance struct {
	ID      int   `json:"id"`
	Balance Money `json:"balance"`
}

// PocketBalance is one client's pocket in a Report.
type PocketBalance struct {
	ClientID   int    `json:"client_id"`
	ClientName string `json:"client_name"`
	Status     string `json:"status"`
	Balance    Money  `json:"balance"`
}

// Report is a point-in-time summary of a bank. Balances are read one by one, so a report
// taken while the bank runs is not a consistent sample; use CheckInvariant for that.
type Report struct {
	RunID           string           `json:"run_id"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	TotalCash       Money            `json:"total_cash"`
	Accounts        []AccountBalance `json:"accounts"`
	Pockets         []PocketBalance  `json:"pockets"`
	Cashiers        PoolStats        `json:"cashiers"`
	Operations      OperationStats   `json:"operations"`
	InvariantChecks int64            `json:"invariant_checks"`
	ViolationCount  int64            `json:"violation_count"`
	Violations      []InvariantCheck `json:"violations,omitempty"`
	LastCheck       *InvariantCheck  `json:"last_check,omitempty"`
}

// Report builds a Report of the bank's current state.
func (b *Bank) Report() Report {
	r := Report{
		RunID:           b.runID.String(),
		Status:          b.Status().String(),
		CreatedAt:       time.Now(),
		TotalCash:       b.CashAmount(),
		Cashiers:        b.pool.Stats(),
		Operations:      b.OperationStats(),
		InvariantChecks: b.CheckCount(),
		ViolationCount:  b.ViolationCount(),
		Violations:      b.Violations(),
	}

	for _, a := range b.Accounts() {
		r.Accounts = append(r.Accounts, AccountBalance{ID: a.ID(), Balance: a.Check()})
	}

	for _, c := range b.Clients() {
		r.Pockets = append(r.Pockets, PocketBalance{
			ClientID:   c.ID(),
			ClientName: c.Name(),
			Status:     c.Status().String(),
			Balance:    c.CheckPocket(),
		})
	}

	if last, ok := b.LastCheck(); ok {
		r.LastCheck = &last
	}

	return r
}

// JSON encodes the report as indented JSON.
func (r Report) JSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r, "", "  ")
}
