// Package wake implements registries of operation indices awaiting a recheck.
//
// Registries are filled by wake notifications fired from timer goroutines and
// drained by the foreground scheduler. Duplicate indices are kept as is.
package wake

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hackebrot/go-unpark-bench/internal/logging"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Option configures a registry.
type Option func(*options)

type options struct {
	waker    scheduler.Waker
	capacity int
	logger   *slog.Logger
}

// WithWaker signals w after every insert, e.g. to unpark the loop that drains the registry.
func WithWaker(w scheduler.Waker) Option {
	return func(o *options) { o.waker = w }
}

// WithCapacity preallocates room for n indices.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithLogger sets the logger used for insert events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Registry is a mutex-guarded list of ready indices.
type Registry struct {
	mu     sync.Mutex
	ready  []int
	waker  scheduler.Waker
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		ready:  make([]int, 0, max(o.capacity, 0)),
		waker:  o.waker,
		logger: o.logger,
	}
}

// Insert appends index to the ready list.
func (r *Registry) Insert(index int) {
	r.logger.Log(context.Background(), logging.LevelTrace, "inserting event", "index", index)

	r.mu.Lock()
	r.ready = append(r.ready, index)
	r.mu.Unlock()

	if r.waker != nil {
		r.waker.Wake()
	}
}

// Notify implements scheduler.Notifier.
func (r *Registry) Notify(index int) { r.Insert(index) }

// Drain returns the current contents and leaves the registry empty.
func (r *Registry) Drain() []int {
	r.mu.Lock()
	ready := r.ready
	r.ready = nil
	r.mu.Unlock()

	if len(ready) == 0 {
		return nil
	}
	return ready
}

// Len returns the number of indices waiting to be drained.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ready)
}

var _ scheduler.Notifier = (*Registry)(nil)
