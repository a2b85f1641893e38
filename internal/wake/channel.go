package wake

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hackebrot/go-unpark-bench/internal/logging"
	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

const defaultChannelCapacity = 1024

// ChannelRegistry is a registry backed by a buffered channel.
//
// Inserts that find the channel full spill into an overflow list, so Insert never blocks and never drops.
type ChannelRegistry struct {
	ch       chan int
	mu       sync.Mutex
	overflow []int
	waker    scheduler.Waker
	logger   *slog.Logger
}

// NewChannelRegistry creates an empty ChannelRegistry. WithCapacity sets the channel buffer size.
func NewChannelRegistry(opts ...Option) *ChannelRegistry {
	o := buildOptions(opts)
	if o.capacity <= 0 {
		o.capacity = defaultChannelCapacity
	}
	return &ChannelRegistry{
		ch:     make(chan int, o.capacity),
		waker:  o.waker,
		logger: o.logger,
	}
}

// Insert queues index for the next drain.
func (r *ChannelRegistry) Insert(index int) {
	r.logger.Log(context.Background(), logging.LevelTrace, "inserting event", "index", index)

	select {
	case r.ch <- index:
	default:
		r.mu.Lock()
		r.overflow = append(r.overflow, index)
		r.mu.Unlock()
	}

	if r.waker != nil {
		r.waker.Wake()
	}
}

// Notify implements scheduler.Notifier.
func (r *ChannelRegistry) Notify(index int) { r.Insert(index) }

// Drain receives the indices buffered at the time of the call, followed by any overflow.
// Only one goroutine may drain a ChannelRegistry.
func (r *ChannelRegistry) Drain() []int {
	var ready []int
	if n := len(r.ch); n > 0 {
		ready = make([]int, n)
		for i := range ready {
			ready[i] = <-r.ch
		}
	}

	r.mu.Lock()
	overflow := r.overflow
	r.overflow = nil
	r.mu.Unlock()

	return append(ready, overflow...)
}

// Len returns the number of indices waiting to be drained.
func (r *ChannelRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ch) + len(r.overflow)
}

var _ scheduler.Notifier = (*ChannelRegistry)(nil)
