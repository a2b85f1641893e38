package scheduler

// Status is the result of a single non-blocking poll.
type Status int

const (
	// NotReady means the operation is still pending.
	NotReady Status = iota

	// Ready means the operation has completed.
	Ready
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case NotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// Operation represents a delayed action that becomes ready no earlier than a configured duration after creation.
type Operation interface {
	// Poll checks the operation without blocking.
	//
	// If the result is NotReady and w is non-nil, w is registered as a one-shot notification that fires the
	// next time the operation transitions to Ready. A later poll replaces any earlier registration.
	// Polling a Ready operation keeps returning Ready.
	Poll(w Waker) (Status, error)
}

// Waker is a one-shot wake notification.
type Waker interface {
	// Wake signals that the owner should poll again. It must not block.
	Wake()
}

// WakerFunc adapts a function to the Waker interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// Notifier receives the index of an operation that should be rechecked.
type Notifier interface {
	Notify(index int)
}

// indexWaker wakes an operation by reporting its index to a Notifier.
type indexWaker struct {
	notifier Notifier
	index    int
}

func (w indexWaker) Wake() { w.notifier.Notify(w.index) }

// BindIndex returns a Waker that reports index to n when fired.
func BindIndex(n Notifier, index int) Waker {
	return indexWaker{notifier: n, index: index}
}
