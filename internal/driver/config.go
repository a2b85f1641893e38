package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Strategy selects the scheduler implementation.
type Strategy string

const (
	// StrategyIterating rescans every pending operation on every step.
	StrategyIterating Strategy = "iterating"

	// StrategyUnparking rechecks only operations whose wake notification fired.
	StrategyUnparking Strategy = "unparking"
)

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strategy := Strategy(strings.ToLower(strings.TrimSpace(s))); strategy {
	case StrategyIterating, StrategyUnparking:
		return strategy, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
	}
}

const (
	// RegistryMutex backs the wake registry with a mutex-guarded slice.
	RegistryMutex = "mutex"

	// RegistryChannel backs the wake registry with a buffered channel.
	RegistryChannel = "channel"
)

// Default configuration values.
const (
	DefaultCount       = 1_000_000
	DefaultMinDelay    = 10 * time.Millisecond
	DefaultMaxDelay    = 60 * time.Second
	DefaultGranularity = 10 * time.Millisecond
)

// Progress receives the number of pending operations after each step.
type Progress interface {
	Update(remaining int)
}

// Config holds the settings of a single run. It is fixed for the run's duration.
type Config struct {
	Strategy    Strategy
	Count       int
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Granularity time.Duration

	// Registry is the wake registry backend used by StrategyUnparking.
	Registry string

	// Seed seeds the delay generator. Zero picks a random seed.
	Seed uint64

	// Fib, if positive, computes the Fib-th Fibonacci number as each operation completes.
	Fib int

	Logger   *slog.Logger
	Progress Progress
}

// DefaultConfig returns the reference configuration for strategy.
func DefaultConfig(strategy Strategy) Config {
	return Config{
		Strategy:    strategy,
		Count:       DefaultCount,
		MinDelay:    DefaultMinDelay,
		MaxDelay:    DefaultMaxDelay,
		Granularity: DefaultGranularity,
		Registry:    RegistryMutex,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.Count < 0 {
		return fmt.Errorf("%w: count %d must not be negative", ErrInvalidConfig, c.Count)
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("%w: min delay %s must not be negative", ErrInvalidConfig, c.MinDelay)
	}
	if c.MinDelay >= c.MaxDelay {
		return fmt.Errorf("%w: min delay %s must be less than max delay %s", ErrInvalidConfig, c.MinDelay, c.MaxDelay)
	}
	if c.Granularity <= 0 {
		return fmt.Errorf("%w: granularity %s must be positive", ErrInvalidConfig, c.Granularity)
	}
	switch c.Registry {
	case RegistryMutex, RegistryChannel:
	default:
		return fmt.Errorf("%w: unknown registry %q", ErrInvalidConfig, c.Registry)
	}
	if c.Fib < 0 {
		return fmt.Errorf("%w: fib %d must not be negative", ErrInvalidConfig, c.Fib)
	}
	return nil
}
