package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/simbank/cashier-simulation/bank"
)

const (
	maxClients  = 10_000
	maxCashiers = 1_000
	maxAccounts = 100_000

	// maxStartingAmount keeps the total cash of the largest population far below the int64 range.
	maxStartingAmount = 1_000_000_000_000
)

var (
	errInvalidDuration = errors.New("duration must not be negative")
	errInvalidLogLevel = errors.New("log level must be one of debug, info, warn, error")
	errTooMany         = errors.New("population exceeds the supported maximum")
	errAmountTooLarge  = errors.New("starting amount exceeds the supported maximum")
)

// Config holds the command-line configuration of the simulation.
type Config struct {
	Bank                 bank.Config
	Duration             time.Duration
	ObservabilityEnabled bool
	LogLevel             slog.Level
	ReportJSON           bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	defaults := bank.DefaultConfig()

	var (
		clients         = fs.Int("clients", defaults.Clients, "Number of clients")
		cashiers        = fs.Int("cashiers", defaults.Cashiers, "Number of cashiers")
		accounts        = fs.Int("accounts", defaults.Accounts, "Number of accounts")
		accountBalance  = fs.Int64("account-balance", int64(defaults.AccountBalance), "Starting balance of every account")
		pocketAmount    = fs.Int64("pocket-amount", int64(defaults.PocketAmount), "Starting pocket amount of every client")
		watcherInterval = fs.Duration("watcher-interval", defaults.WatcherInterval, "Interval between invariant checks")
		maxSleep        = fs.Duration("max-sleep", defaults.MaxClientSleep, "Upper bound of the random pause between client operations")
		commitAttempts  = fs.Int("commit-attempts", defaults.CommitAttempts, "Attempts per operation leg, 1 disables retries")
		seed            = fs.Int64("seed", 0, "Random seed, 0 for a time based seed")
		duration        = fs.Duration("duration", 0, "Run duration, 0 runs until SIGINT or SIGTERM")
		observability   = fs.Bool("observability-enabled", false, "Export traces and metrics with OpenTelemetry")
		logLevel        = fs.String("log-level", "info", "Log level: debug, info, warn, error")
		reportJSON      = fs.Bool("report-json", false, "Print the final report as JSON")
	)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Bank: bank.Config{
			Clients:         *clients,
			Cashiers:        *cashiers,
			Accounts:        *accounts,
			AccountBalance:  bank.Money(*accountBalance),
			PocketAmount:    bank.Money(*pocketAmount),
			WatcherInterval: *watcherInterval,
			MaxClientSleep:  *maxSleep,
			CommitAttempts:  *commitAttempts,
			Seed:            *seed,
		},
		Duration:             *duration,
		ObservabilityEnabled: *observability,
		LogLevel:             level,
		ReportJSON:           *reportJSON,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if err := c.Bank.Validate(); err != nil {
		return err
	}

	if c.Bank.Clients > maxClients || c.Bank.Cashiers > maxCashiers || c.Bank.Accounts > maxAccounts {
		return fmt.Errorf("%w: clients<=%d, cashiers<=%d, accounts<=%d", errTooMany, maxClients, maxCashiers, maxAccounts)
	}

	if c.Bank.AccountBalance > maxStartingAmount || c.Bank.PocketAmount > maxStartingAmount {
		return fmt.Errorf("%w: %d", errAmountTooLarge, maxStartingAmount)
	}

	if c.Bank.WatcherInterval <= 0 {
		return bank.ErrInvalidWatcherInterval
	}

	if c.Bank.MaxClientSleep <= 0 {
		return bank.ErrInvalidClientSleep
	}

	if c.Bank.CommitAttempts <= 0 || c.Bank.CommitAttempts > bank.MaxCommitAttempts {
		return bank.ErrInvalidCommitAttempts
	}

	if c.Duration < 0 {
		return errInvalidDuration
	}

	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", errInvalidLogLevel, s)
	}
}
