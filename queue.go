package mvu

import "sync"

// eventQueue is a thread-safe FIFO queue of pending events.
//
// The queue is unbounded by default so that cascading immediate effects
// can enqueue arbitrarily many follow-up events without blocking. A fixed
// capacity may be configured at construction; on overflow the newest
// event is dropped and the drop is reported through the overflow hook.
//
// Thread-safety covers external enqueuing (props callbacks, completed
// tasks, injectors on arbitrary goroutines) while a single consumer
// dequeues. The dequeue path is never called concurrently.
//
// A buffered signal channel coalesces availability notifications so the
// run loop can wait with select (and stay responsive to context
// cancellation).
type eventQueue[E any] struct {
	mu       sync.Mutex
	events   []E
	capacity int // 0 means unbounded
	closed   bool
	signal   chan struct{}
	overflow func(pending int) // invoked outside the lock on each drop
}

func newEventQueue[E any](capacity int) *eventQueue[E] {
	return &eventQueue[E]{
		events:   make([]E, 0, 64),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue appends an event to the back of the queue.
// Safe to call from any goroutine.
// Returns false if the queue is closed or the event was dropped on
// overflow; a closed queue is a silent no-op, an overflow is additionally
// reported through the overflow hook.
func (q *eventQueue[E]) Enqueue(e E) bool {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		return false
	}

	if q.capacity > 0 && len(q.events) >= q.capacity {
		// Drop-newest policy: rejecting the incoming event keeps every
		// already-accepted event and its FIFO position intact.
		pending := len(q.events)
		hook := q.overflow
		q.mu.Unlock()
		if hook != nil {
			hook(pending)
		}
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking send; the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	q.mu.Unlock()
	return true
}

// TryDequeue removes and returns the front event without blocking.
// Returns (zero, false) if the queue is empty.
func (q *eventQueue[E]) TryDequeue() (E, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero E
	if len(q.events) == 0 {
		return zero, false
	}

	e := q.events[0]

	// Zero the slot so the backing array does not retain pointers held
	// by the dequeued event.
	q.events[0] = zero

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting. The channel is closed when
// the queue closes, waking all waiters permanently.
func (q *eventQueue[E]) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending events.
func (q *eventQueue[E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue[E]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue as stopped. Further Enqueue calls become no-ops
// and all blocked waiters are woken.
func (q *eventQueue[E]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
