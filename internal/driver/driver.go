// Package driver runs one benchmark: it creates the operations, drives the
// selected scheduler until every operation is ready, and accumulates the
// time spent inside scheduler steps. Time spent parked between steps,
// waiting for a timer to fire, is not counted.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackebrot/go-fibonacci"

	"github.com/hackebrot/go-unpark-bench/internal/duration"
	"github.com/hackebrot/go-unpark-bench/internal/eventaware"
	"github.com/hackebrot/go-unpark-bench/internal/fib"
	"github.com/hackebrot/go-unpark-bench/internal/naive"
	"github.com/hackebrot/go-unpark-bench/internal/timer"
	"github.com/hackebrot/go-unpark-bench/internal/wake"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Result describes a completed (or aborted) run.
type Result struct {
	Strategy Strategy
	Count    int

	// Steps is the number of Step calls made.
	Steps int

	// PollTime is the total time spent inside Step.
	PollTime time.Duration

	// StepDurations holds the duration of each Step call, in order.
	StepDurations []time.Duration
}

// Run executes the benchmark described by cfg.
func Run(ctx context.Context, cfg Config) (Result, error) {
	res := Result{Strategy: cfg.Strategy, Count: cfg.Count}

	if err := cfg.Validate(); err != nil {
		return res, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		return res, err
	}

	svc := timer.NewService(timer.WithMaxTimeout(cfg.MaxDelay), timer.WithLogger(logger))
	defer svc.Close()

	ops := make([]scheduler.Operation, cfg.Count)
	for i := range ops {
		ops[i] = svc.Sleep(gen.Next())
	}
	if cfg.Fib > 0 {
		fib.WrapAll(ops, cfg.Fib, fibonacci.NewRecursive(), logger)
	}

	p := newParker()
	s := newScheduler(cfg, ops, p, logger)

	logger.Info("running", "strategy", cfg.Strategy, "count_operations", cfg.Count)

	driven, err := Drive(ctx, s, p.C(), cfg.Progress)
	res.Steps = driven.Steps
	res.PollTime = driven.PollTime
	res.StepDurations = driven.StepDurations
	return res, err
}

func newGenerator(cfg Config) (*duration.Generator, error) {
	if cfg.Seed == 0 {
		return duration.New(cfg.MinDelay, cfg.MaxDelay, cfg.Granularity, nil)
	}
	return duration.NewSeeded(cfg.MinDelay, cfg.MaxDelay, cfg.Granularity, cfg.Seed)
}

// newScheduler builds the scheduler for cfg.Strategy. Every wake, whatever the strategy, also unparks p.
func newScheduler(cfg Config, ops []scheduler.Operation, p *parker, logger *slog.Logger) scheduler.Scheduler {
	if cfg.Strategy == StrategyIterating {
		return naive.New(ops, naive.WithWaker(p), naive.WithLogger(logger))
	}

	opts := []wake.Option{wake.WithWaker(p), wake.WithCapacity(max(cfg.Count, 1)), wake.WithLogger(logger)}

	var reg eventaware.Registry
	if cfg.Registry == RegistryChannel {
		reg = wake.NewChannelRegistry(opts...)
	} else {
		reg = wake.NewRegistry(opts...)
	}
	return eventaware.New(ops, reg, eventaware.WithLogger(logger))
}

// Drive calls s.Step until it reports done, parking on wake between steps.
//
// Only time spent inside Step is added to PollTime. A step error aborts the
// run; so does ctx being done while parked. A closed wake channel makes
// Drive step continuously. progress may be nil.
func Drive(ctx context.Context, s scheduler.Scheduler, wake <-chan struct{}, progress Progress) (Result, error) {
	var res Result

	for {
		start := time.Now()
		done, err := s.Step()
		elapsed := time.Since(start)

		res.Steps++
		res.PollTime += elapsed
		res.StepDurations = append(res.StepDurations, elapsed)

		if err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		}
		if progress != nil {
			progress.Update(s.Remaining())
		}
		if done {
			return res, nil
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-wake:
		}
	}
}

// FormatPollTime renders d as whole seconds and a nine digit nanosecond remainder.
func FormatPollTime(d time.Duration) string {
	return fmt.Sprintf("%d.%09d", d/time.Second, d%time.Second)
}
