// Package retry runs side-effecting operations, such as mirroring events into
// Postgres, with optional exponential backoff.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Config holds retry configuration.
type Config struct {
	Enabled      bool
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig mirrors the defaults read by the config package.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MaxRetries:   5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
	}
}

// Strategy decides how often an operation is attempted.
type Strategy interface {
	Execute(ctx context.Context, op Operation) error
	Name() string
}

// Operation is one attempt of the work being retried.
type Operation func(ctx context.Context) error

// NewStrategy returns the strategy selected by cfg.
func NewStrategy(cfg Config) Strategy {
	if !cfg.Enabled {
		slog.Info("Retry disabled, using NoRetryStrategy")
		return NoRetry{}
	}

	slog.Info("Retry enabled, using ExponentialBackoffStrategy",
		"max_retries", cfg.MaxRetries,
		"initial_delay", cfg.InitialDelay,
		"max_delay", cfg.MaxDelay,
	)
	return NewExponentialBackoff(cfg.MaxRetries, cfg.InitialDelay, cfg.MaxDelay)
}

// NoRetry runs the operation once.
type NoRetry struct{}

func (NoRetry) Execute(ctx context.Context, op Operation) error {
	return op(ctx)
}

func (NoRetry) Name() string {
	return "NoRetry"
}
