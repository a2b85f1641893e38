package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Sleep is an operation that becomes ready once its deadline has passed.
type Sleep struct {
	deadline time.Time
	fired    atomic.Bool

	mu    sync.Mutex
	err   error
	waker scheduler.Waker
}

// Poll implements scheduler.Operation.
func (s *Sleep) Poll(w scheduler.Waker) (scheduler.Status, error) {
	if s.fired.Load() {
		return scheduler.Ready, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return scheduler.NotReady, s.err
	}
	if s.fired.Load() {
		return scheduler.Ready, nil
	}
	if w != nil {
		s.waker = w
	}
	return scheduler.NotReady, nil
}

// Deadline returns the time at which the sleep becomes ready.
func (s *Sleep) Deadline() time.Time {
	return s.deadline
}

func (s *Sleep) fire() { s.complete(nil) }

func (s *Sleep) fail(err error) { s.complete(err) }

// complete resolves the sleep once, then wakes the registered waker without holding the lock.
func (s *Sleep) complete(err error) {
	s.mu.Lock()
	if s.fired.Load() || s.err != nil {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.err = err
	} else {
		s.fired.Store(true)
	}
	w := s.waker
	s.waker = nil
	s.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}

var _ scheduler.Operation = (*Sleep)(nil)
