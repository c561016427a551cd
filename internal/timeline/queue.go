package timeline

import (
	"container/heap"
	"sync"
	"time"
)

// event is a callback due at a run offset.
type event struct {
	at  time.Duration
	seq int64
	fn  func()
}

// eventHeap orders events by time, then by sequence number.
type eventHeap []event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	// Drop the callback reference so the closure can be collected.
	old[n-1] = event{}
	*h = old[:n-1]
	return e
}

// eventQueue is a time-ordered queue of events.
//
// Thread-safety is provided so callers can schedule before Run starts or
// from another goroutine; in practice events are scheduled from callbacks
// running on the loop goroutine.
type eventQueue struct {
	mu     sync.Mutex
	events eventHeap
}

func newEventQueue() *eventQueue {
	return &eventQueue{events: make(eventHeap, 0, 64)}
}

// Push schedules e.
func (q *eventQueue) Push(e event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.events, e)
}

// Pop removes and returns the earliest event.
// Returns (event{}, false) if the queue is empty.
func (q *eventQueue) Pop() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return event{}, false
	}
	return heap.Pop(&q.events).(event), true
}

// Len returns the number of pending events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
