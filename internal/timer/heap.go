package timer

// sleepHeap implements heap.Interface for pending sleeps, ordered by deadline.
type sleepHeap []*Sleep

func (h sleepHeap) Len() int { return len(h) }

func (h sleepHeap) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}

func (h sleepHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *sleepHeap) Push(x any) {
	*h = append(*h, x.(*Sleep))
}

func (h *sleepHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return s
}
