// Package counter is the reference application for the mvu runtime: a
// counter with immediate increment/decrement events and a task-backed
// delayed add. It backs the scenario runner, the CLI demo and the
// integration tests.
package counter

import (
	"context"
	"time"

	"github.com/statecraft/mvu"
)

// Kind enumerates counter events.
type Kind string

const (
	// KindIncrement adds one to the count.
	KindIncrement Kind = "increment"
	// KindDecrement subtracts one from the count.
	KindDecrement Kind = "decrement"
	// KindAddLater schedules a task that adds Amount after a delay.
	KindAddLater Kind = "add_later"
	// KindAdded is the completion of an add_later task.
	KindAdded Kind = "added"
)

// Event is a counter input.
type Event struct {
	Kind   Kind
	Amount int
}

// Model is the counter state snapshot.
type Model struct {
	Count int
}

// Props is the render-ready projection of a Model: the current count
// plus bound dispatch callbacks.
type Props struct {
	Count       int
	OnIncrement func()
	OnDecrement func()
}

// Logic implements the mvu contract for the counter.
//
// Delay applies to add_later tasks; the zero value completes them
// without sleeping, which keeps deterministic runs instant.
type Logic struct {
	Delay time.Duration
}

// Init returns the seed model unchanged with no bootstrap effect.
func (l Logic) Init(model Model) (Model, mvu.Effect[Event]) {
	return model, mvu.None[Event]()
}

// Update reduces one event into a new model and an effect. The prior
// model value is never mutated.
func (l Logic) Update(event Event, model Model) (Model, mvu.Effect[Event]) {
	switch event.Kind {
	case KindIncrement:
		return Model{Count: model.Count + 1}, mvu.None[Event]()

	case KindDecrement:
		return Model{Count: model.Count - 1}, mvu.None[Event]()

	case KindAddLater:
		amount := event.Amount
		delay := l.Delay
		task := func(ctx context.Context) (Event, bool) {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return Event{}, false
				}
			}
			return Event{Kind: KindAdded, Amount: amount}, true
		}
		return model, mvu.Do(task)

	case KindAdded:
		return Model{Count: model.Count + event.Amount}, mvu.None[Event]()

	default:
		return model, mvu.None[Event]()
	}
}

// View derives Props, binding the dispatch callbacks to a cloned
// emitter.
func (l Logic) View(model Model, emitter mvu.Emitter[Event]) Props {
	emitter = emitter.Clone()
	return Props{
		Count: model.Count,
		OnIncrement: func() {
			emitter.Emit(Event{Kind: KindIncrement})
		},
		OnDecrement: func() {
			emitter.Emit(Event{Kind: KindDecrement})
		},
	}
}
