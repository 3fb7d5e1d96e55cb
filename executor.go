package mvu

import (
	"context"
	"errors"
)

// runEffect interprets one effect value against an emitter and a spawner.
// All output reaches the system through the emitter; the return value
// only reports scheduling failures.
//
// Interpretation per variant:
//   - none: no-op
//   - emit: synchronously enqueues the event (single point of entry for
//     state transitions is preserved; the event goes through the queue,
//     not straight into Update)
//   - task: hands the work to the spawner; a completion that yields an
//     event routes it to the emitter, a no-event outcome emits nothing
//   - batch: interprets contained effects in order, recursively; a
//     refused spawn does not stop the remaining effects
func runEffect[E any](ctx context.Context, eff Effect[E], emitter Emitter[E], spawner Spawner) error {
	switch eff.kind {
	case effectNone:
		return nil

	case effectEmit:
		emitter.Emit(eff.event)
		return nil

	case effectTask:
		task := eff.task
		if task == nil {
			return nil
		}
		err := spawner.Spawn(func() {
			if event, ok := task(ctx); ok {
				emitter.Emit(event)
			}
		})
		if err != nil {
			return newSpawnRejectedError(err)
		}
		return nil

	case effectBatch:
		var errs []error
		for _, sub := range eff.batch {
			if err := runEffect(ctx, sub, emitter, spawner); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)

	default:
		return nil
	}
}
