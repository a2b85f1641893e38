// Package app implements the command line interface shared by the benchmark binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/hackebrot/go-unpark-bench/internal/driver"
	"github.com/hackebrot/go-unpark-bench/internal/logging"
)

const description = `Creates a large number of timers with random delays and drives them to
completion from a single loop, reporting the time spent polling.

The iterating strategy polls every pending timer on every step. The
unparking strategy polls only the timers whose wake notification fired
since the previous step.`

// New returns the application. strategy is the default for the --strategy flag.
func New(strategy driver.Strategy) *cli.App {
	app := cli.NewApp()
	app.Name = string(strategy)
	app.HelpName = string(strategy)
	app.Usage = "measure the cost of polling many pending timers"
	app.Description = description
	app.Flags = flags(strategy)
	app.Action = run
	app.HideVersion = true
	return app
}

// Main runs the application with the process arguments and exits non-zero on failure.
func Main(strategy driver.Strategy) {
	if err := New(strategy).Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// errWriter returns the app's error writer, falling back to stderr.
func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

func run(c *cli.Context) error {
	level, err := logging.ParseLevel(c.String("log-level"))
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	logger := logging.New(errWriter(c), level)
	slog.SetDefault(logger)

	cfg, err := configFromContext(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	cfg.Logger = logger

	fmt.Fprintf(c.App.Writer, "%s events=%d max=%dms granularity=%dms\n",
		cfg.Strategy,
		cfg.Count,
		cfg.MaxDelay.Milliseconds(),
		cfg.Granularity.Milliseconds(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	var bar *progressBar
	if c.Bool("progress") {
		bar = newProgressBar(errWriter(c), cfg)
		cfg.Progress = bar
	}

	res, err := driver.Run(ctx, cfg)
	if bar != nil {
		bar.Finish(err == nil)
	}
	if err != nil {
		logger.Error("run failed", "strategy", cfg.Strategy, "count_steps", res.Steps, "error", err)
		return cli.NewExitError(fmt.Sprintf("run failed: %v", err), 1)
	}

	res.LogSummary(logger)

	fmt.Fprintf(c.App.Writer, "poll time %s\n", driver.FormatPollTime(res.PollTime))
	fmt.Fprintf(c.App.Writer, "resolved %s operations in %s steps\n",
		humanize.Comma(int64(res.Count)),
		humanize.Comma(int64(res.Steps)),
	)
	return nil
}
