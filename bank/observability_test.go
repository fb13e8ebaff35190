package bank_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbank/cashier-simulation/bank"
	"github.com/simbank/cashier-simulation/testutil/helper"
)

func Test_Bank_OperationIsLoggedTracedAndCounted(t *testing.T) {
	logSpy := helper.NewLogHandlerSpy(false)
	metricsSpy := helper.NewMetricsCollectorSpy()
	tracingSpy := helper.NewTracingCollectorSpy()

	b := helper.GivenBank(t, helper.Population{
		Accounts: []bank.Money{100},
		Pockets:  []bank.Money{0},
		Cashiers: 1,
	},
		bank.WithContextualLogger(slog.New(logSpy)),
		bank.WithMetrics(metricsSpy),
		bank.WithTracing(tracingSpy),
	)

	ctx := context.Background()
	client := b.Clients()[0]
	a, err := b.AccountByIndex(0)
	require.NoError(t, err)

	cashier, err := b.GetCashier(ctx, client.ID())
	require.NoError(t, err)
	_, err = client.Withdraw(ctx, cashier, a, 40)
	require.NoError(t, err)
	require.NoError(t, b.ReleaseCashier(cashier, client.ID()))

	assert.True(t, logSpy.HasLogWithMessage(slog.LevelDebug, "client chose operation").
		WithAttr("operation", "withdraw").
		WithAttr("amount", "40").
		WithAttr("account_id", "1").
		Assert())
	assert.True(t, logSpy.HasLogWithMessage(slog.LevelDebug, "operation committed").
		WithAttr("outcome", "committed").
		Assert())

	spans := tracingSpy.GetSpanRecords()
	require.Len(t, spans, 1)
	assert.Equal(t, "bank.client.withdraw", spans[0].Name)
	assert.True(t, spans[0].Finished)
	assert.Equal(t, "success", spans[0].Status)
	assert.Equal(t, "1", spans[0].StartAttributes["client.id"])
	assert.Equal(t, "1", spans[0].StartAttributes["cashier.id"])
	assert.Equal(t, "40", spans[0].EndAttributes["operation.amount"])

	assert.Equal(t, 1, metricsSpy.CountCounter("bank_client_operations_total",
		map[string]string{"operation": "withdraw", "outcome": "committed"}))
}

func Test_Bank_NoopIsNotTraced(t *testing.T) {
	tracingSpy := helper.NewTracingCollectorSpy()

	b := helper.GivenBank(t, helper.Population{
		Accounts: []bank.Money{100},
		Pockets:  []bank.Money{0},
		Cashiers: 1,
	}, bank.WithTracing(tracingSpy))

	ctx := context.Background()
	client := b.Clients()[0]
	a, err := b.AccountByIndex(0)
	require.NoError(t, err)

	cashier, err := b.GetCashier(ctx, client.ID())
	require.NoError(t, err)
	result, err := client.Deposit(ctx, cashier, a, 0)
	require.NoError(t, err)

	assert.Equal(t, bank.OutcomeNoop, result.Outcome)
	assert.Empty(t, tracingSpy.GetSpanRecords())
}

func Test_Bank_ContextualLoggerTakesPrecedence(t *testing.T) {
	plainSpy := helper.NewLogHandlerSpy(false)
	contextualSpy := helper.NewLogHandlerSpy(false)

	b := helper.GivenBank(t, helper.Population{Accounts: []bank.Money{1}},
		bank.WithLogger(slog.New(plainSpy)),
		bank.WithContextualLogger(slog.New(contextualSpy)),
	)

	b.CheckInvariant(context.Background())

	assert.Empty(t, plainSpy.GetRecords())
	assert.True(t, contextualSpy.HasLog(slog.LevelInfo, "invariant check passed"))
}

func Test_Bank_PlainLogger(t *testing.T) {
	plainSpy := helper.NewLogHandlerSpy(false)

	b := helper.GivenBank(t, helper.Population{Accounts: []bank.Money{1}}, bank.WithLogger(slog.New(plainSpy)))
	b.CheckInvariant(context.Background())

	assert.True(t, plainSpy.HasLog(slog.LevelInfo, "invariant check passed"))
}

func Test_Bank_RunEmitsLifecycleAndWaitMetrics(t *testing.T) {
	logSpy := helper.NewLogHandlerSpy(false)
	metricsSpy := helper.NewMetricsCollectorSpy()

	b := helper.GivenBank(t, helper.Population{
		Accounts: []bank.Money{100, 100},
		Pockets:  []bank.Money{50, 50, 50},
		Cashiers: 1,
	}, append(fastOptions(), bank.WithContextualLogger(slog.New(logSpy)), bank.WithMetrics(metricsSpy))...)

	helper.RunFor(t, b, 80*time.Millisecond, 5*time.Second)

	assert.True(t, logSpy.HasLogWithMessage(slog.LevelInfo, "bank started").
		WithAttr("clients", "3").
		WithAttr("cashiers", "1").
		WithAttrKey("run_id").
		Assert())
	assert.True(t, logSpy.HasLog(slog.LevelInfo, "bank interrupting"))
	assert.True(t, logSpy.HasLog(slog.LevelInfo, "bank stopped"))
	assert.Equal(t, 3, logSpy.CountLogs(slog.LevelDebug, "client stopped"))
	assert.True(t, metricsSpy.HasDurationRecord("bank_cashier_wait_duration_seconds"))
}
