package driver

import "github.com/hackebrot/go-unpark-bench/pkg/scheduler"

// parker lets the foreground loop sleep until some operation may have progressed.
// Wakes coalesce, and Wake never blocks the timer goroutine.
type parker struct {
	ch chan struct{}
}

func newParker() *parker {
	return &parker{ch: make(chan struct{}, 1)}
}

// Wake implements scheduler.Waker.
func (p *parker) Wake() {
	select {
	case p.ch <- struct{}{}:
	default:
	}
}

// C returns the channel receiving wake signals.
func (p *parker) C() <-chan struct{} {
	return p.ch
}

var _ scheduler.Waker = (*parker)(nil)
