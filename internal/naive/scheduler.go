// Package naive implements a scheduler that rescans every pending operation on every step.
//
// It models an executor without per-operation wake subscriptions: each step
// costs O(pending), however few operations are actually close to firing.
package naive

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hackebrot/go-unpark-bench/internal/logging"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWaker passes w to every poll, so the caller learns when any operation may have progressed.
func WithWaker(w scheduler.Waker) Option {
	return func(s *Scheduler) { s.waker = w }
}

// WithLogger sets the logger used for step and poll events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// Scheduler polls all pending operations, in round-robin order, on every step.
type Scheduler struct {
	ops    []scheduler.Operation
	waker  scheduler.Waker
	logger *slog.Logger
}

// New creates a Scheduler owning ops.
func New(ops []scheduler.Operation, opts ...Option) *Scheduler {
	s := &Scheduler{
		ops:    slices.Clone(ops),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step polls each pending operation once, dropping the ones that are ready.
// Operations still pending keep their relative order.
func (s *Scheduler) Step() (bool, error) {
	ctx := context.Background()
	trace := s.logger.Enabled(ctx, logging.LevelTrace)

	s.logger.Debug("poll", "sleeps", len(s.ops))

	remaining := s.ops[:0]
	for i, op := range s.ops {
		if trace {
			s.logger.Log(ctx, logging.LevelTrace, "polling")
		}

		status, err := op.Poll(s.waker)
		if err != nil {
			// The failed operation is dropped; the unpolled tail goes ahead of the ones already kept.
			s.ops = append(slices.Clone(s.ops[i+1:]), remaining...)
			return false, fmt.Errorf("poll operation: %w", err)
		}

		if status == scheduler.NotReady {
			remaining = append(remaining, op)
		}
	}

	clear(s.ops[len(remaining):])
	s.ops = remaining

	done := len(s.ops) == 0
	s.logger.Debug("poll done", "done", done)
	return done, nil
}

// Remaining returns the number of operations still pending.
func (s *Scheduler) Remaining() int {
	return len(s.ops)
}

// Pending returns the pending operations in polling order.
func (s *Scheduler) Pending() []scheduler.Operation {
	return slices.Clone(s.ops)
}

var _ scheduler.Scheduler = (*Scheduler)(nil)
