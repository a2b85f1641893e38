// Package eventaware implements a scheduler that only rechecks operations whose wake notification fired.
//
// Every operation is polled with a waker bound to its index, so a later
// completion inserts that index into the shared Registry. Each step drains
// the Registry and polls only those indices, costing O(notifications)
// rather than O(pending).
package eventaware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hackebrot/go-unpark-bench/internal/logging"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Registry collects the indices of operations that should be polled on the next step.
type Registry interface {
	scheduler.Notifier

	// Drain returns every index notified since the last drain, in arrival order, and empties the registry.
	Drain() []int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for step and poll events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// Scheduler polls the operations named by its Registry.
type Scheduler struct {
	ops    []scheduler.Operation
	active int
	ready  Registry
	logger *slog.Logger
}

// New creates a Scheduler owning ops, and seeds ready with every index so the first step polls each operation once.
func New(ops []scheduler.Operation, ready Registry, opts ...Option) *Scheduler {
	s := &Scheduler{
		ops:    make([]scheduler.Operation, len(ops)),
		ready:  ready,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i, op := range ops {
		if op == nil {
			continue
		}
		s.ops[i] = op
		s.active++
		ready.Notify(i)
	}
	return s
}

// Step drains the registry and polls each drained index that still holds an operation.
// Indices whose slot is already empty are skipped, so duplicate notifications are harmless.
// If a poll fails, the failing index and the indices not yet polled are notified again before returning.
func (s *Scheduler) Step() (bool, error) {
	ctx := context.Background()
	trace := s.logger.Enabled(ctx, logging.LevelTrace)

	ready := s.ready.Drain()
	s.logger.Debug("poll", "active", s.active, "ready", len(ready))

	for i, idx := range ready {
		if idx < 0 || idx >= len(s.ops) {
			s.logger.Warn("ignoring out of range index", "index", idx)
			continue
		}

		op := s.ops[idx]
		if op == nil {
			continue
		}

		if trace {
			s.logger.Log(ctx, logging.LevelTrace, "polling", "index", idx)
		}

		status, err := op.Poll(scheduler.BindIndex(s.ready, idx))
		if err != nil {
			for _, rest := range ready[i:] {
				s.ready.Notify(rest)
			}
			return false, fmt.Errorf("poll operation %d: %w", idx, err)
		}

		if status == scheduler.NotReady {
			if trace {
				s.logger.Log(ctx, logging.LevelTrace, "not ready", "index", idx)
			}
			continue
		}

		if trace {
			s.logger.Log(ctx, logging.LevelTrace, "ready", "index", idx)
		}
		s.ops[idx] = nil
		s.active--
	}

	s.logger.Debug("poll done", "active", s.active)
	return s.active == 0, nil
}

// Remaining returns the number of operations still pending.
func (s *Scheduler) Remaining() int {
	return s.active
}

// Slot returns the operation held at index, if any.
func (s *Scheduler) Slot(index int) (scheduler.Operation, bool) {
	if index < 0 || index >= len(s.ops) || s.ops[index] == nil {
		return nil, false
	}
	return s.ops[index], true
}

var _ scheduler.Scheduler = (*Scheduler)(nil)
