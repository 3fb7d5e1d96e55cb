package mvu

import "context"

// Task is one unit of asynchronous work produced by an effect. It runs on
// whatever scheduler the Spawner wraps. The bool reports whether the work
// yielded an event to feed back into the loop; a false outcome emits
// nothing. Fallible operations belong here: represent failure either as
// the no-event outcome or as an application-defined error event.
type Task[E any] func(ctx context.Context) (E, bool)

type effectKind int

const (
	effectNone effectKind = iota
	effectEmit
	effectTask
	effectBatch
)

// Effect is a declarative description of events to be produced.
//
// Effects are returned from Logic.Init and Logic.Update alongside the new
// model. They describe future event production without performing it; the
// runtime interprets each effect exactly once at the point it is returned.
//
// Construct effects only through None, Emit, Do and Batch. The zero value
// of Effect is equivalent to None.
type Effect[E any] struct {
	kind  effectKind
	event E
	task  Task[E]
	batch []Effect[E]
}

// None returns the empty effect. Prefer it when semantically indicating
// "no side effects".
func None[E any]() Effect[E] {
	return Effect[E]{kind: effectNone}
}

// Emit returns an effect that immediately enqueues a single event.
//
// The event re-enters the queue like any other; it does not short-circuit
// into Update. Useful for triggering follow-up events from a reduction.
func Emit[E any](event E) Effect[E] {
	return Effect[E]{kind: effectEmit, event: event}
}

// Do returns an effect that hands one unit of asynchronous work to the
// runtime's Spawner. When the work completes and yields an event, the
// event is routed back into the queue. The loop never blocks waiting for
// the work to finish.
func Do[E any](task Task[E]) Effect[E] {
	return Effect[E]{kind: effectTask, task: task}
}

// IsNone reports whether the effect produces nothing: the None effect,
// the zero value, or a batch containing only such effects.
func (e Effect[E]) IsNone() bool {
	switch e.kind {
	case effectNone:
		return true
	case effectBatch:
		for _, inner := range e.batch {
			if !inner.IsNone() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Batch combines effects into one. Contained effects are interpreted in
// the order given; immediate events within one batch are enqueued in that
// relative order. No ordering is promised between batched task outcomes
// and other producers.
func Batch[E any](effects ...Effect[E]) Effect[E] {
	return Effect[E]{kind: effectBatch, batch: effects}
}
