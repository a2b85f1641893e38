package fib

import (
	"context"
	"log/slog"

	"github.com/hackebrot/go-fibonacci"

	"github.com/hackebrot/go-unpark-bench/internal/logging"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Operation wraps an operation and computes the nth Fibonacci number the first time it completes.
// The extra work is the same for every scheduling strategy.
type Operation struct {
	id       int
	inner    scheduler.Operation
	n        int
	strategy fibonacci.Strategy
	done     bool
	result   any
	logger   *slog.Logger
}

// Poll polls the wrapped operation, computing the payload once it reports Ready.
func (o *Operation) Poll(w scheduler.Waker) (scheduler.Status, error) {
	if o.done {
		return scheduler.Ready, nil
	}

	status, err := o.inner.Poll(w)
	if err != nil || status != scheduler.Ready {
		return status, err
	}

	r := o.strategy.Compute(o.n)
	o.result = r
	o.done = true
	o.logger.Log(context.Background(), logging.LevelTrace, "computation complete", "operation_id", o.id, "n", o.n, "result", r)

	return scheduler.Ready, nil
}

// Result returns the computed Fibonacci number, or nil before the operation completes.
func (o *Operation) Result() any {
	return o.result
}

// Wrap creates an Operation computing the nth Fibonacci number with strategy once op completes.
// A nil logger uses slog.Default.
func Wrap(id int, op scheduler.Operation, n int, strategy fibonacci.Strategy, logger *slog.Logger) *Operation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Operation{
		id:       id,
		inner:    op,
		n:        n,
		strategy: strategy,
		logger:   logger,
	}
}

// WrapAll wraps each operation in ops, using the slice index as its id.
func WrapAll(ops []scheduler.Operation, n int, strategy fibonacci.Strategy, logger *slog.Logger) {
	for i, op := range ops {
		ops[i] = Wrap(i, op, n, strategy, logger)
	}
}

var _ scheduler.Operation = (*Operation)(nil)
