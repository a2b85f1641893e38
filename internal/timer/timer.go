// Package timer provides the sleep primitive driven by the schedulers.
//
// A Service keeps pending sleeps in a min-heap ordered by deadline. One
// background goroutine sleeps until the earliest deadline, then fires every
// expired sleep, calling its registered waker from that goroutine.
package timer

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxTimeout is the longest sleep a Service accepts unless configured otherwise.
const DefaultMaxTimeout = 60 * time.Second

var (
	// ErrTimerFailure is the base error for failures of the timer service itself, as opposed to a sleep not being ready yet.
	ErrTimerFailure = errors.New("timer service failure")

	// ErrTooLong is returned when polling a sleep whose duration exceeds the service's max timeout.
	ErrTooLong = fmt.Errorf("%w: duration exceeds max timeout", ErrTimerFailure)

	// ErrClosed is returned when polling a sleep that was still pending when the service closed.
	ErrClosed = fmt.Errorf("%w: service closed", ErrTimerFailure)
)

// Option configures a Service.
type Option func(*Service)

// WithMaxTimeout sets the longest accepted sleep duration.
func WithMaxTimeout(d time.Duration) Option {
	return func(s *Service) { s.maxTimeout = d }
}

// WithLogger sets the logger used by the service. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service creates sleeps and fires them when their deadlines pass.
type Service struct {
	mu         sync.Mutex
	sleeps     *sleepHeap
	closed     bool
	maxTimeout time.Duration
	logger     *slog.Logger

	wakeup    chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewService creates a Service and starts its firing goroutine. Call Close to stop it.
func NewService(opts ...Option) *Service {
	h := &sleepHeap{}
	heap.Init(h)

	s := &Service{
		sleeps:     h,
		maxTimeout: DefaultMaxTimeout,
		logger:     slog.Default(),
		wakeup:     make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// Sleep returns an operation that becomes ready no earlier than d from now.
//
// Failures are reported by the sleep's Poll: ErrTooLong if d exceeds the max timeout,
// ErrClosed if the service is closed before the sleep fires.
func (s *Service) Sleep(d time.Duration) *Sleep {
	sl := &Sleep{deadline: time.Now().Add(d)}

	if d > s.maxTimeout {
		sl.fail(fmt.Errorf("%w: %s > %s", ErrTooLong, d, s.maxTimeout))
		return sl
	}
	if d <= 0 {
		sl.fire()
		return sl
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sl.fail(ErrClosed)
		return sl
	}
	heap.Push(s.sleeps, sl)
	earliest := (*s.sleeps)[0] == sl
	s.mu.Unlock()

	// The firing goroutine may be waiting on a later deadline.
	if earliest {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}

	return sl
}

// Pending returns the number of sleeps that have not fired yet.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sleeps.Len()
}

// Close stops the firing goroutine. Sleeps still pending fail with ErrClosed and their wakers are fired.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		pending := *s.sleeps
		*s.sleeps = nil
		s.mu.Unlock()

		close(s.quit)
		<-s.done

		if len(pending) > 0 {
			s.logger.Debug("timer service closed with pending sleeps", "count_sleeps", len(pending))
		}
		for _, sl := range pending {
			sl.fail(ErrClosed)
		}
	})
	return nil
}

// run fires expired sleeps, then waits for the next deadline, an earlier insert, or Close.
func (s *Service) run() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		expired, wait, pending := s.nextBatch()
		for _, sl := range expired {
			sl.fire()
		}

		var timerC <-chan time.Time
		if pending {
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case <-s.quit:
			return
		case <-s.wakeup:
			timer.Stop()
		case <-timerC:
		}
	}
}

// nextBatch pops every expired sleep and returns the wait until the next deadline, if any sleep remains.
func (s *Service) nextBatch() ([]*Sleep, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var expired []*Sleep

	// The heap keeps sleeps sorted by deadline, so we only need to check the top
	for s.sleeps.Len() > 0 {
		next := (*s.sleeps)[0]
		if now.Before(next.deadline) {
			return expired, next.deadline.Sub(now), true
		}
		expired = append(expired, heap.Pop(s.sleeps).(*Sleep))
	}

	return expired, 0, false
}
