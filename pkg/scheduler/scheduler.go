package scheduler

// Scheduler drives a fixed set of operations to completion, one step at a time.
type Scheduler interface {
	// Step polls the operations the strategy considers worth checking.
	// It never blocks, and reports done once no operation remains pending.
	// An error from any poll aborts the step.
	Step() (done bool, err error)

	// Remaining returns the number of operations still pending.
	Remaining() int
}
