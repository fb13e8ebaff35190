package bank

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidPopulation is returned when a Config asks for a negative number of units.
	ErrInvalidPopulation = errors.New("clients, cashiers and accounts must not be negative")

	// ErrInvalidStartingAmount is returned when a Config has a negative starting balance or pocket.
	ErrInvalidStartingAmount = errors.New("starting amounts must not be negative")
)

// Config describes a whole simulation population. It is the constructor-time input of
// NewBankFromConfig and the CLI.
type Config struct {
	Clients         int
	Cashiers        int
	Accounts        int
	AccountBalance  Money
	PocketAmount    Money
	WatcherInterval time.Duration
	MaxClientSleep  time.Duration
	CommitAttempts  int

	// Seed makes a run reproducible. Zero means a time based seed.
	Seed int64
}

// DefaultConfig returns the population used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		Clients:         10,
		Cashiers:        3,
		Accounts:        5,
		AccountBalance:  1000,
		PocketAmount:    100,
		WatcherInterval: defaultWatcherInterval,
		MaxClientSleep:  defaultMaxClientSleep,
		CommitAttempts:  defaultCommitAttempts,
	}
}

// Validate checks the counts and amounts. Durations and attempts are checked by the options
// NewBankFromConfig derives from them.
func (c Config) Validate() error {
	if c.Clients < 0 || c.Cashiers < 0 || c.Accounts < 0 {
		return ErrInvalidPopulation
	}

	if c.AccountBalance < 0 || c.PocketAmount < 0 {
		return ErrInvalidStartingAmount
	}

	if c.Clients > 0 && c.Accounts == 0 {
		return ErrNoAccounts
	}

	if c.Clients > 0 && c.Cashiers == 0 {
		return ErrNoCashiers
	}

	return nil
}

// options translates the tuning fields into Options. Explicit options passed to
// NewBankFromConfig are applied after these and win.
func (c Config) options() []Option {
	var options []Option

	if c.WatcherInterval != 0 {
		options = append(options, WithWatcherInterval(c.WatcherInterval))
	}

	if c.MaxClientSleep != 0 {
		options = append(options, WithMaxClientSleep(c.MaxClientSleep))
	}

	if c.CommitAttempts != 0 {
		options = append(options, WithCommitAttempts(c.CommitAttempts))
	}

	if c.Seed != 0 {
		options = append(options, WithSeed(c.Seed))
	}

	return options
}

// NewBankFromConfig creates a bank and populates it with cfg.Accounts accounts,
// cfg.Clients clients and cfg.Cashiers cashiers. IDs start at 1.
func NewBankFromConfig(cfg Config, options ...Option) (*Bank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, err := NewBank(append(cfg.options(), options...)...)
	if err != nil {
		return nil, err
	}

	for i := 1; i <= cfg.Accounts; i++ {
		if _, err := b.AddAccount(i, cfg.AccountBalance); err != nil {
			return nil, err
		}
	}

	for i := 1; i <= cfg.Cashiers; i++ {
		if _, err := b.AddCashier(i, fmt.Sprintf("cashier-%d", i)); err != nil {
			return nil, err
		}
	}

	for i := 1; i <= cfg.Clients; i++ {
		if _, err := b.AddClient(i, fmt.Sprintf("client-%d", i), cfg.PocketAmount); err != nil {
			return nil, err
		}
	}

	return b, nil
}
