package driver

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackebrot/go-unpark-bench/internal/eventaware"
	"github.com/hackebrot/go-unpark-bench/internal/logging"
	"github.com/hackebrot/go-unpark-bench/internal/naive"
	"github.com/hackebrot/go-unpark-bench/internal/timer"
	"github.com/hackebrot/go-unpark-bench/internal/timer/timertest"
	"github.com/hackebrot/go-unpark-bench/internal/wake"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

type recordingProgress struct {
	updates []int
}

func (p *recordingProgress) Update(remaining int) {
	p.updates = append(p.updates, remaining)
}

func closedChannel() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func smallConfig(strategy Strategy) Config {
	cfg := DefaultConfig(strategy)
	cfg.Count = 200
	cfg.MinDelay = time.Millisecond
	cfg.MaxDelay = 30 * time.Millisecond
	cfg.Granularity = time.Millisecond
	cfg.Seed = 1
	return cfg
}

func TestDrive_Naive(t *testing.T) {
	svc := timertest.New()
	ops := svc.CreateN(3, 2)
	ops[1] = svc.Create(1)

	progress := &recordingProgress{}
	res, err := Drive(context.Background(), naive.New(ops), closedChannel(), progress)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Steps)
	assert.Len(t, res.StepDurations, 2)
	assert.Equal(t, res.StepDurations[0]+res.StepDurations[1], res.PollTime)
	assert.Equal(t, []int{2, 0}, progress.updates)
}

func TestDrive_EventAware(t *testing.T) {
	svc := timertest.New()
	p := newParker()
	reg := wake.NewRegistry(wake.WithWaker(p))
	s := eventaware.New(svc.CreateN(5, 2), reg)

	progress := &recordingProgress{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Fire pending wakes from another goroutine, the way the timer service does.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				svc.FireAll()
			}
		}
	}()

	res, err := Drive(ctx, s, p.C(), progress)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Steps, 2)
	assert.Zero(t, s.Remaining())
	assert.Equal(t, 0, progress.updates[len(progress.updates)-1])
}

func TestDrive_StepError(t *testing.T) {
	errBoom := errors.New("boom")
	svc := timertest.New()
	ops := svc.CreateN(2, 3)
	svc.Operations()[1].Fail(errBoom)

	res, err := Drive(context.Background(), naive.New(ops), closedChannel(), nil)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "step 1")
	assert.Equal(t, 1, res.Steps)
}

func TestDrive_ContextCancelledWhileParked(t *testing.T) {
	svc := timertest.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Drive(ctx, naive.New(svc.CreateN(1, 2)), make(chan struct{}), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Steps)
}

func TestDrive_ParkedTimeExcludedFromPollTime(t *testing.T) {
	const sleep = 200 * time.Millisecond

	tests := []struct {
		name     string
		strategy Strategy
	}{
		{"iterating", StrategyIterating},
		{"unparking", StrategyUnparking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := timer.NewService()
			defer svc.Close()

			ops := []scheduler.Operation{svc.Sleep(sleep)}
			p := newParker()
			var s scheduler.Scheduler
			if tt.strategy == StrategyIterating {
				s = naive.New(ops, naive.WithWaker(p))
			} else {
				s = eventaware.New(ops, wake.NewRegistry(wake.WithWaker(p)))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			start := time.Now()
			res, err := Drive(ctx, s, p.C(), nil)
			elapsed := time.Since(start)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, elapsed, sleep)
			assert.Less(t, res.PollTime, elapsed/10)
			assert.GreaterOrEqual(t, res.Steps, 2)
		})
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		registry string
	}{
		{"iterating", StrategyIterating, RegistryMutex},
		{"unparking_mutex", StrategyUnparking, RegistryMutex},
		{"unparking_channel", StrategyUnparking, RegistryChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(tt.strategy)
			cfg.Registry = tt.registry
			progress := &recordingProgress{}
			cfg.Progress = progress

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			res, err := Run(ctx, cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, cfg.Count, res.Count)
			assert.Positive(t, res.Steps)
			assert.Positive(t, res.PollTime)
			assert.Len(t, res.StepDurations, res.Steps)
			require.NotEmpty(t, progress.updates)
			assert.Zero(t, progress.updates[len(progress.updates)-1])
			for i := 1; i < len(progress.updates); i++ {
				assert.LessOrEqual(t, progress.updates[i], progress.updates[i-1])
			}
		})
	}
}

func TestRun_WithFib(t *testing.T) {
	cfg := smallConfig(StrategyUnparking)
	cfg.Fib = 5

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Positive(t, res.Steps)
}

func TestRun_LogsSteps(t *testing.T) {
	var buf bytes.Buffer
	cfg := smallConfig(StrategyUnparking)
	cfg.Count = 3
	cfg.Fib = 2
	cfg.Logger = logging.New(&buf, logging.LevelTrace)

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "msg=running")
	assert.Contains(t, buf.String(), "active=3")
	assert.Contains(t, buf.String(), "level=TRACE msg=polling")
	assert.Contains(t, buf.String(), "inserting event")
	assert.Contains(t, buf.String(), "computation complete")
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := smallConfig(StrategyIterating)
	cfg.Granularity = 0

	_, err := Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRun_ZeroCount(t *testing.T) {
	for _, strategy := range []Strategy{StrategyIterating, StrategyUnparking} {
		cfg := smallConfig(strategy)
		cfg.Count = 0

		res, err := Run(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Steps)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Strategy = "sleepy" }},
		{"negative count", func(c *Config) { c.Count = -1 }},
		{"negative min delay", func(c *Config) { c.MinDelay = -time.Second }},
		{"min not below max", func(c *Config) { c.MinDelay = c.MaxDelay }},
		{"zero granularity", func(c *Config) { c.Granularity = 0 }},
		{"unknown registry", func(c *Config) { c.Registry = "ring" }},
		{"negative fib", func(c *Config) { c.Fib = -1 }},
	}

	require.NoError(t, DefaultConfig(StrategyUnparking).Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(StrategyIterating)
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Unparking")
	require.NoError(t, err)
	assert.Equal(t, StrategyUnparking, s)

	s, err = ParseStrategy("iterating")
	require.NoError(t, err)
	assert.Equal(t, StrategyIterating, s)

	_, err = ParseStrategy("heap")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFormatPollTime(t *testing.T) {
	assert.Equal(t, "0.000000000", FormatPollTime(0))
	assert.Equal(t, "3.000000005", FormatPollTime(3*time.Second+5))
	assert.Equal(t, "12.345678901", FormatPollTime(12*time.Second+345678901))
}

func TestParker_Coalesces(t *testing.T) {
	p := newParker()
	p.Wake()
	p.Wake()

	<-p.C()
	select {
	case <-p.C():
		t.Fatal("wakes should coalesce")
	default:
	}
}
