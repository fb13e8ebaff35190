package bank

import (
	"context"
	"math"
	"strconv"
	"time"
)

const (
	logMsgBankStarted           = "bank started"
	logMsgBankInterrupting      = "bank interrupting"
	logMsgBankStopped           = "bank stopped"
	logMsgClientRunning         = "client running"
	logMsgClientInterrupting    = "client interrupting"
	logMsgClientStopped         = "client stopped"
	logMsgWaitingForCashier     = "client waiting for cashier"
	logMsgCashierAcquired       = "client got cashier"
	logMsgCashierReleased       = "client released cashier"
	logMsgCashierReleaseFailed  = "client failed to release cashier"
	logMsgAcquireInterrupted    = "client interrupted while waiting for cashier"
	logMsgSleeping              = "client going to sleep"
	logMsgSleepInterrupted      = "client interrupted while sleeping"
	logMsgOperationChosen       = "client chose operation"
	logMsgOperationNoop         = "client skipped operation with zero amount"
	logMsgOperationCommitted    = "operation committed"
	logMsgOperationRejected     = "operation rejected, balance changed since snapshot"
	logMsgTransferDepositFailed = "transfer deposit leg rejected, amount removed from pocket"
	logMsgOperationFailed       = "operation failed"
	logMsgCommitRetry           = "retrying rejected commit"
	logMsgSessionFinished       = "cashier session finished"
	logMsgWatcherRunning        = "watcher running"
	logMsgWatcherStopped        = "watcher stopped"
	logMsgInvariantHolds        = "invariant check passed"
	logMsgInvariantViolated     = "invariant violated"
	logAttrRunID                = "run_id"
	logAttrClientID             = "client_id"
	logAttrClientName           = "client_name"
	logAttrCashierID            = "cashier_id"
	logAttrCashierName          = "cashier_name"
	logAttrSessionID            = "session_id"
	logAttrOperation            = "operation"
	logAttrAmount               = "amount"
	logAttrAccountID            = "account_id"
	logAttrSourceID             = "source_account_id"
	logAttrDestinationID        = "destination_account_id"
	logAttrOutcome              = "outcome"
	logAttrCommitted            = "committed"
	logAttrAttempt              = "attempt"
	logAttrSleepMS              = "sleep_ms"
	logAttrWaitMS               = "wait_ms"
	logAttrExpected             = "expected_total"
	logAttrActual               = "actual_total"
	logAttrAccountsTotal        = "accounts_total"
	logAttrPocketsTotal         = "pockets_total"
	logAttrDifference           = "difference"
	logAttrClients              = "clients"
	logAttrCashiers             = "cashiers"
	logAttrAccounts             = "accounts"
	logAttrError                = "error"
	metricOperations            = "bank_client_operations_total"
	metricOperationAmount       = "bank_client_operation_amount"
	metricCashierWait           = "bank_cashier_wait_duration_seconds"
	metricCommitRetries         = "bank_commit_retries_total"
	metricUnitInterrupts        = "bank_unit_interrupts_total"
	metricInvariantChecks       = "bank_invariant_checks_total"
	metricInvariantDifference   = "bank_invariant_cash_difference"
	labelOperation              = "operation"
	labelOutcome                = "outcome"
	labelUnit                   = "unit"
	labelPoint                  = "point"
	labelResult                 = "result"
	unitClient                  = "client"
	pointAcquire                = "acquire"
	pointSleep                  = "sleep"
	resultHolds                 = "holds"
	resultViolated              = "violated"
	spanNameOperationPrefix     = "bank.client."
	spanAttrClientID            = "client.id"
	spanAttrCashierID           = "cashier.id"
	spanAttrAmount              = "operation.amount"
	spanAttrOutcome             = "operation.outcome"
	statusSuccess               = "success"
	statusConflict              = "conflict"
	statusError                 = "error"
	statusOK                    = "ok"
)

func (b *Bank) logDebug(ctx context.Context, msg string, args ...any) {
	if b.contextualLogger != nil {
		b.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Bank) logInfo(ctx context.Context, msg string, args ...any) {
	if b.contextualLogger != nil {
		b.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *Bank) logWarn(ctx context.Context, msg string, args ...any) {
	if b.contextualLogger != nil {
		b.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}

// logError logs err with the given message and args at the error level.
func (b *Bank) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if b.contextualLogger != nil {
		b.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if b.logger != nil {
		b.logger.Error(msg, allArgs...)
	}
}

func (b *Bank) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if b.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := b.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	b.metricsCollector.IncrementCounter(metric, labels)
}

func (b *Bank) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if b.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := b.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	b.metricsCollector.RecordDuration(metric, d, labels)
}

func (b *Bank) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if b.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := b.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	b.metricsCollector.RecordValue(metric, value, labels)
}

// recordOperation counts a finished client operation in the bank statistics and the metrics collector.
func (b *Bank) recordOperation(ctx context.Context, result OperationResult) {
	b.stats.record(result)

	labels := map[string]string{
		labelOperation: result.Kind.String(),
		labelOutcome:   result.Outcome.String(),
	}
	b.incrementCounter(ctx, metricOperations, labels)

	if result.Amount > 0 {
		b.recordValue(ctx, metricOperationAmount, float64(result.Amount), labels)
	}
}

// startOperationSpan starts a tracing span for a client operation if tracing is configured.
func (b *Bank) startOperationSpan(ctx context.Context, kind OperationKind, clientID, cashierID int) (context.Context, SpanContext) {
	if b.tracingCollector == nil {
		return ctx, nil
	}

	return b.tracingCollector.StartSpan(ctx, spanNameOperationPrefix+kind.String(), map[string]string{
		spanAttrClientID:  strconv.Itoa(clientID),
		spanAttrCashierID: strconv.Itoa(cashierID),
	})
}

// finishOperationSpan finishes an operation span with its outcome.
func (b *Bank) finishOperationSpan(span SpanContext, result OperationResult, err error) {
	if b.tracingCollector == nil || span == nil {
		return
	}

	status := statusSuccess
	switch {
	case err != nil:
		status = statusError
	case result.Outcome == OutcomeRejected, result.Outcome == OutcomePartial:
		status = statusConflict
	case result.Outcome == OutcomeNoop:
		status = statusOK
	}

	b.tracingCollector.FinishSpan(span, status, map[string]string{
		spanAttrAmount:  strconv.FormatInt(int64(result.Amount), 10),
		spanAttrOutcome: result.Outcome.String(),
	})
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
