// Command bank-simulation runs the concurrent bank simulation until a signal arrives or the
// configured duration elapses, then stops it and prints a report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simbank/cashier-simulation/bank"
	"github.com/simbank/cashier-simulation/bank/oteladapters"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

func run() error {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var options []bank.Option

	if cfg.ObservabilityEnabled {
		providers, err := newObservabilityProviders(ctx)
		if err != nil {
			return fmt.Errorf("failed to create observability providers: %w", err)
		}
		defer func() {
			if err := providers.shutdown(); err != nil {
				log.Printf("Observability shutdown failed: %v", err)
			}
		}()

		options = observabilityBankOptions()
	} else {
		options = consoleBankOptions(os.Stderr, cfg.LogLevel)
	}

	b, err := bank.NewBankFromConfig(cfg.Bank, options...)
	if err != nil {
		return fmt.Errorf("failed to create bank: %w", err)
	}

	logConfiguration(cfg, b)

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bank: %w", err)
	}

	waitForEnd(ctx, cfg.Duration)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := b.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop bank: %w", err)
	}

	return printReport(b.Report(), cfg.ReportJSON)
}

// consoleBankOptions logs bank events as JSON lines to w.
func consoleBankOptions(w io.Writer, level slog.Level) []bank.Option {
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))

	return []bank.Option{bank.WithContextualLogger(logger)}
}

func waitForEnd(ctx context.Context, d time.Duration) {
	if d == 0 {
		<-ctx.Done()
		log.Printf("Received signal, stopping simulation...")

		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		log.Printf("Received signal, stopping simulation...")
	case <-timer.C:
		log.Printf("Run duration of %s elapsed, stopping simulation...", d)
	}
}

func logConfiguration(cfg Config, b *bank.Bank) {
	log.Printf("Simulation configuration:")
	log.Printf("  - Run ID: %s", b.RunID())
	log.Printf("  - Clients: %d, Cashiers: %d, Accounts: %d", cfg.Bank.Clients, cfg.Bank.Cashiers, cfg.Bank.Accounts)
	log.Printf("  - Account balance: %d, Pocket amount: %d, Total cash: %d",
		cfg.Bank.AccountBalance, cfg.Bank.PocketAmount, b.CashAmount())
	log.Printf("  - Watcher interval: %s, Max client sleep: %s, Commit attempts: %d",
		cfg.Bank.WatcherInterval, cfg.Bank.MaxClientSleep, cfg.Bank.CommitAttempts)
}

func printReport(r bank.Report, asJSON bool) error {
	if asJSON {
		data, err := r.JSON()
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}

		_, err = fmt.Fprintln(os.Stdout, string(data))

		return err
	}

	total := r.Operations.Total()
	fmt.Printf("Run %s %s\n", r.RunID, r.Status)
	fmt.Printf("Total cash: %d\n", r.TotalCash)
	fmt.Printf("Operations: %d attempted, %d committed, %d rejected, %d partial, %d no-op, %d failed\n",
		total.Attempted, total.Committed, total.Rejected, total.Partial, total.Noop, total.Failed)
	fmt.Printf("Invariant checks: %d, violations: %d\n", r.InvariantChecks, r.ViolationCount)

	if r.LastCheck != nil {
		fmt.Printf("Last check: expected %d, actual %d, difference %d\n",
			r.LastCheck.Expected, r.LastCheck.Actual(), r.LastCheck.Difference())
	}

	return nil
}
