package mvu

// Emitter is a shared handle for injecting events into the runtime's
// queue. Clone it freely into props callbacks and task completions; any
// number of holders may call Emit concurrently without coordinating.
//
// The queue itself is owned by the Runtime. Emitters are non-owning
// references to it: holding one past teardown is safe, emitting into a
// stopped runtime is a no-op.
type Emitter[E any] struct {
	queue *eventQueue[E]
}

// Emit appends an event to the pending queue and returns immediately.
// Safe to call from any goroutine.
//
// Returns false when the event was not accepted: the runtime has been
// stopped, the bounded queue overflowed, or the emitter is the zero
// value. Callbacks embedded in props typically ignore the result.
func (e Emitter[E]) Emit(event E) bool {
	if e.queue == nil {
		return false
	}
	return e.queue.Enqueue(event)
}

// Clone returns an equivalent handle referencing the same queue.
// Emitter values are plain handles, so assignment works just as well;
// Clone exists to make shared-ownership hand-offs explicit at view time.
func (e Emitter[E]) Clone() Emitter[E] {
	return e
}
