package app

import (
	"github.com/urfave/cli"

	"github.com/hackebrot/go-unpark-bench/internal/driver"
)

func flags(strategy driver.Strategy) []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "strategy, s",
			Usage:  "scheduling strategy: iterating or unparking",
			EnvVar: "UNPARK_STRATEGY",
			Value:  string(strategy),
		},
		cli.IntFlag{
			Name:   "count, n",
			Usage:  "number of pending operations",
			EnvVar: "UNPARK_COUNT",
			Value:  driver.DefaultCount,
		},
		cli.DurationFlag{
			Name:   "min-delay",
			Usage:  "minimum operation delay",
			EnvVar: "UNPARK_MIN_DELAY",
			Value:  driver.DefaultMinDelay,
		},
		cli.DurationFlag{
			Name:   "max-delay",
			Usage:  "maximum operation delay (exclusive), also the timer service max timeout",
			EnvVar: "UNPARK_MAX_DELAY",
			Value:  driver.DefaultMaxDelay,
		},
		cli.DurationFlag{
			Name:   "granularity, g",
			Usage:  "delays are rounded down to a multiple of this",
			EnvVar: "UNPARK_GRANULARITY",
			Value:  driver.DefaultGranularity,
		},
		cli.StringFlag{
			Name:   "registry",
			Usage:  "wake registry backend for the unparking strategy: mutex or channel",
			EnvVar: "UNPARK_REGISTRY",
			Value:  driver.RegistryMutex,
		},
		cli.Uint64Flag{
			Name:   "seed",
			Usage:  "seed for the delay generator (0 picks a random seed)",
			EnvVar: "UNPARK_SEED",
		},
		cli.IntFlag{
			Name:   "fib",
			Usage:  "compute the nth fibonacci number as each operation completes (0 disables)",
			EnvVar: "UNPARK_FIB",
		},
		cli.BoolFlag{
			Name:   "progress, p",
			Usage:  "show a progress bar of resolved operations",
			EnvVar: "UNPARK_PROGRESS",
		},
		cli.StringFlag{
			Name:   "log-level, l",
			Usage:  "log level: trace, debug, info, warn or error",
			EnvVar: "UNPARK_LOG",
			Value:  "info",
		},
	}
}

// configFromContext builds the run configuration from the parsed flags.
func configFromContext(c *cli.Context) (driver.Config, error) {
	strategy, err := driver.ParseStrategy(c.String("strategy"))
	if err != nil {
		return driver.Config{}, err
	}

	cfg := driver.Config{
		Strategy:    strategy,
		Count:       c.Int("count"),
		MinDelay:    c.Duration("min-delay"),
		MaxDelay:    c.Duration("max-delay"),
		Granularity: c.Duration("granularity"),
		Registry:    c.String("registry"),
		Seed:        c.Uint64("seed"),
		Fib:         c.Int("fib"),
	}
	return cfg, cfg.Validate()
}
