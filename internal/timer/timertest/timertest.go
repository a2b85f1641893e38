// Package timertest provides a deterministic fake timer service for scheduler tests.
package timertest

import (
	"sync"

	"github.com/hackebrot/go-unpark-bench/pkg/scheduler"
)

// Service creates fake operations and fires their wake registrations on demand.
type Service struct {
	mu  sync.Mutex
	ops []*Operation
}

// New creates an empty Service.
func New() *Service {
	return &Service{}
}

// Create returns an operation that reports Ready on its readyOnPoll-th poll (1 means the first poll).
func (s *Service) Create(readyOnPoll int) *Operation {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := &Operation{id: len(s.ops), readyOnPoll: readyOnPoll}
	s.ops = append(s.ops, op)
	return op
}

// CreateN returns n operations that all report Ready on their readyOnPoll-th poll.
func (s *Service) CreateN(n, readyOnPoll int) []scheduler.Operation {
	ops := make([]scheduler.Operation, n)
	for i := range ops {
		ops[i] = s.Create(readyOnPoll)
	}
	return ops
}

// Operations returns every operation created so far, in creation order.
func (s *Service) Operations() []*Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Operation(nil), s.ops...)
}

// FireAll fires every pending wake registration in creation order and returns how many fired.
func (s *Service) FireAll() int {
	fired := 0
	for _, op := range s.Operations() {
		if op.Fire() {
			fired++
		}
	}
	return fired
}

// Operation is a fake scheduler.Operation.
type Operation struct {
	mu          sync.Mutex
	id          int
	readyOnPoll int
	polls       int
	ready       bool
	waker       scheduler.Waker
	err         error
}

// Poll implements scheduler.Operation.
func (o *Operation) Poll(w scheduler.Waker) (scheduler.Status, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.polls++
	if o.err != nil {
		return scheduler.NotReady, o.err
	}
	if o.ready || o.polls >= o.readyOnPoll {
		o.ready = true
		o.waker = nil
		return scheduler.Ready, nil
	}
	if w != nil {
		o.waker = w
	}
	return scheduler.NotReady, nil
}

// Fire invokes the registered waker, if any, and reports whether one fired.
// The waker runs without the operation lock held.
func (o *Operation) Fire() bool {
	o.mu.Lock()
	w := o.waker
	o.waker = nil
	o.mu.Unlock()

	if w == nil {
		return false
	}
	w.Wake()
	return true
}

// Fail makes every later poll return err.
func (o *Operation) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

// ID returns the creation index of the operation.
func (o *Operation) ID() int { return o.id }

// Polls returns the number of times the operation was polled.
func (o *Operation) Polls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.polls
}

// Registered reports whether a wake registration is pending.
func (o *Operation) Registered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.waker != nil
}

var _ scheduler.Operation = (*Operation)(nil)
