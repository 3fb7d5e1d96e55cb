package mvutest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/mvu"
)

// The test app sums event values. Update effects are scripted per test.
type sumEvent struct {
	n int
}

type sumModel struct {
	total int
}

type sumProps struct {
	total int
	onAdd func(n int)
}

type sumLogic struct {
	initEffect   mvu.Effect[sumEvent]
	updateEffect func(sumEvent) mvu.Effect[sumEvent]
}

func (l sumLogic) Init(model sumModel) (sumModel, mvu.Effect[sumEvent]) {
	return model, l.initEffect
}

func (l sumLogic) Update(event sumEvent, model sumModel) (sumModel, mvu.Effect[sumEvent]) {
	effect := mvu.None[sumEvent]()
	if l.updateEffect != nil {
		effect = l.updateEffect(event)
	}
	return sumModel{total: model.total + event.n}, effect
}

func (l sumLogic) View(model sumModel, emitter mvu.Emitter[sumEvent]) sumProps {
	return sumProps{
		total: model.total,
		onAdd: func(n int) {
			emitter.Emit(sumEvent{n: n})
		},
	}
}

func totals(renders []sumProps) []int {
	out := make([]int, len(renders))
	for i, p := range renders {
		out[i] = p.total
	}
	return out
}

func TestDriver_ConstructionRendersOnce(t *testing.T) {
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{total: 3}, sumLogic{}, SyncSpawner{})
	defer d.Stop()

	require.Equal(t, 1, d.Renders().Count())
	assert.Equal(t, 3, d.Renders().Last().total)
	assert.Empty(t, d.Errors())
}

func TestDriver_ProcessEventsOnEmptyQueue(t *testing.T) {
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, sumLogic{}, SyncSpawner{})
	defer d.Stop()

	assert.Equal(t, 0, d.ProcessEvents())
	assert.Equal(t, 0, d.ProcessEvents())
	assert.Equal(t, 1, d.Renders().Count(), "empty drains must not render")
}

func TestDriver_CallbackThenProcess(t *testing.T) {
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, sumLogic{}, SyncSpawner{})
	defer d.Stop()

	d.Renders().Last().onAdd(1)
	require.Equal(t, 1, d.QueueLen())
	require.Equal(t, 1, d.Renders().Count(), "nothing renders before the drain")

	require.Equal(t, 1, d.ProcessEvents())
	assert.Equal(t, 0, d.QueueLen())
	assert.Equal(t, []int{0, 1}, totals(d.Renders().Snapshot()))
}

func TestDriver_OneRenderPerEvent(t *testing.T) {
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, sumLogic{}, SyncSpawner{})
	defer d.Stop()

	d.Emitter().Emit(sumEvent{n: 1})
	d.Emitter().Emit(sumEvent{n: 2})
	d.Emitter().Emit(sumEvent{n: 3})

	require.Equal(t, 3, d.ProcessEvents())
	assert.Equal(t, []int{0, 1, 3, 6}, totals(d.Renders().Snapshot()))
}

func TestDriver_InitialEffectBatchOrder(t *testing.T) {
	logic := sumLogic{
		initEffect: mvu.Batch(
			mvu.Emit(sumEvent{n: 1}),
			mvu.Emit(sumEvent{n: 2}),
		),
	}
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, logic, SyncSpawner{})
	defer d.Stop()

	require.Equal(t, 2, d.ProcessEvents())
	assert.Equal(t, []int{0, 1, 3}, totals(d.Renders().Snapshot()))
}

func TestDriver_TaskCompletesWithinDrainUnderSyncSpawner(t *testing.T) {
	logic := sumLogic{
		updateEffect: func(event sumEvent) mvu.Effect[sumEvent] {
			if event.n == 1 {
				return mvu.Do(func(ctx context.Context) (sumEvent, bool) {
					return sumEvent{n: 10}, true
				})
			}
			return mvu.None[sumEvent]()
		},
	}
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, logic, SyncSpawner{})
	defer d.Stop()

	d.Emitter().Emit(sumEvent{n: 1})

	require.Equal(t, 2, d.ProcessEvents(), "the task outcome joins the same drain")
	assert.Equal(t, []int{0, 1, 11}, totals(d.Renders().Snapshot()))
}

func TestDriver_ManualSpawnerInterleaving(t *testing.T) {
	spawner := NewManualSpawner()
	logic := sumLogic{
		updateEffect: func(event sumEvent) mvu.Effect[sumEvent] {
			if event.n == 1 {
				return mvu.Do(func(ctx context.Context) (sumEvent, bool) {
					return sumEvent{n: 10}, true
				})
			}
			return mvu.None[sumEvent]()
		},
	}
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, logic, spawner)
	defer d.Stop()

	d.Emitter().Emit(sumEvent{n: 1})
	require.Equal(t, 1, d.ProcessEvents())
	require.Equal(t, 1, spawner.Pending(), "the task is parked, not run")

	// Another event overtakes the parked task outcome.
	d.Emitter().Emit(sumEvent{n: 2})
	require.Equal(t, 1, d.ProcessEvents())

	require.True(t, spawner.RunNext())
	require.Equal(t, 1, d.ProcessEvents())

	assert.Equal(t, []int{0, 1, 3, 13}, totals(d.Renders().Snapshot()))
}

func TestDriver_SpawnRefusalSurfacesOnErrors(t *testing.T) {
	logic := sumLogic{
		updateEffect: func(sumEvent) mvu.Effect[sumEvent] {
			return mvu.Do(func(ctx context.Context) (sumEvent, bool) {
				return sumEvent{}, false
			})
		},
	}
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, logic, RejectSpawner{})
	defer d.Stop()

	d.Emitter().Emit(sumEvent{n: 1})
	require.Equal(t, 1, d.ProcessEvents())

	require.Len(t, d.Errors(), 1)
	assert.True(t, mvu.IsSpawnRejected(d.Errors()[0]))
	assert.ErrorIs(t, d.Errors()[0], ErrSpawnerClosed)

	// The refusal did not derail the transition itself.
	assert.Equal(t, []int{0, 1}, totals(d.Renders().Snapshot()))
}

func TestDriver_QueueOverflowSurfacesOnErrors(t *testing.T) {
	d := NewDriver[sumEvent, sumModel, sumProps](
		sumModel{}, sumLogic{}, SyncSpawner{}, mvu.WithQueueCapacity(1),
	)
	defer d.Stop()

	assert.True(t, d.Emitter().Emit(sumEvent{n: 1}))
	assert.False(t, d.Emitter().Emit(sumEvent{n: 2}), "second emit exceeds the bound")

	require.Len(t, d.Errors(), 1)
	assert.True(t, mvu.IsQueueOverflow(d.Errors()[0]))

	require.Equal(t, 1, d.ProcessEvents())
	assert.Equal(t, []int{0, 1}, totals(d.Renders().Snapshot()))
}

func TestDriver_EmitAfterStopIsNoop(t *testing.T) {
	d := NewDriver[sumEvent, sumModel, sumProps](sumModel{}, sumLogic{}, SyncSpawner{})
	d.Stop()

	assert.False(t, d.Emitter().Emit(sumEvent{n: 1}))
	assert.Equal(t, 0, d.ProcessEvents())
	assert.Equal(t, 1, d.Renders().Count())
}
