package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_operationStats_Record(t *testing.T) {
	var stats operationStats

	stats.record(OperationResult{Kind: Withdraw, Outcome: OutcomeCommitted})
	stats.record(OperationResult{Kind: Withdraw, Outcome: OutcomeRejected})
	stats.record(OperationResult{Kind: Deposit, Outcome: OutcomeNoop})
	stats.record(OperationResult{Kind: Transfer, Outcome: OutcomePartial})
	stats.record(OperationResult{Kind: Transfer, Outcome: OutcomeFailed})
	stats.record(OperationResult{Kind: OperationKind(9), Outcome: OutcomeCommitted})

	snapshot := stats.snapshot()
	assert.Equal(t, OperationCounts{Attempted: 2, Committed: 1, Rejected: 1}, snapshot.Withdraw)
	assert.Equal(t, OperationCounts{Attempted: 1, Noop: 1}, snapshot.Deposit)
	assert.Equal(t, OperationCounts{Attempted: 2, Partial: 1, Failed: 1}, snapshot.Transfer)
	assert.Equal(t, OperationCounts{Attempted: 5, Committed: 1, Rejected: 1, Partial: 1, Noop: 1, Failed: 1}, snapshot.Total())
}
