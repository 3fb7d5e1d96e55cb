package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/mvu/internal/counter"
	"github.com/statecraft/mvu/mvutest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorder_JournalsEventsInDispatchOrder(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.BeginRun(ctx, "run-1"))

	recorder := NewRecorder[counter.Event, counter.Model, counter.Props](
		counter.Logic{}, j, counter.EncodeEvent, "run-1", quietLogger(),
	)
	driver := mvutest.NewDriver[counter.Event, counter.Model, counter.Props](
		counter.Model{}, recorder, mvutest.SyncSpawner{},
	)
	defer driver.Stop()

	driver.Emitter().Emit(counter.Event{Kind: counter.KindIncrement})
	driver.Emitter().Emit(counter.Event{Kind: counter.KindAddLater, Amount: 5})
	driver.ProcessEvents()

	entries, err := j.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 3, "the task completion is journaled too")

	assert.Equal(t, Entry{RunToken: "run-1", Seq: 1, Name: "increment", Args: "{}"}, entries[0])
	assert.Equal(t, Entry{RunToken: "run-1", Seq: 2, Name: "add_later", Args: `{"amount":5}`}, entries[1])
	assert.Equal(t, Entry{RunToken: "run-1", Seq: 3, Name: "added", Args: `{"amount":5}`}, entries[2])

	// Recording is invisible to the application.
	assert.Equal(t, 5, driver.Renders().Last().Count)
}

func TestRecorder_ContinuesPastAppendFailure(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	// A closed journal makes every append fail.
	require.NoError(t, j.Close())

	recorder := NewRecorder[counter.Event, counter.Model, counter.Props](
		counter.Logic{}, j, counter.EncodeEvent, "run-1", quietLogger(),
	)
	driver := mvutest.NewDriver[counter.Event, counter.Model, counter.Props](
		counter.Model{}, recorder, mvutest.SyncSpawner{},
	)
	defer driver.Stop()

	driver.Emitter().Emit(counter.Event{Kind: counter.KindIncrement})
	driver.ProcessEvents()

	assert.Equal(t, 1, driver.Renders().Last().Count, "processing continues without the journal")
}

func TestRecorder_ContinuesPastEncodeFailure(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.BeginRun(ctx, "run-1"))

	recorder := NewRecorder[counter.Event, counter.Model, counter.Props](
		counter.Logic{}, j, counter.EncodeEvent, "run-1", quietLogger(),
	)
	driver := mvutest.NewDriver[counter.Event, counter.Model, counter.Props](
		counter.Model{}, recorder, mvutest.SyncSpawner{},
	)
	defer driver.Stop()

	driver.Emitter().Emit(counter.Event{Kind: counter.Kind("bogus")})
	driver.Emitter().Emit(counter.Event{Kind: counter.KindIncrement})
	driver.ProcessEvents()

	entries, err := j.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the encodable event is journaled")
	assert.Equal(t, "increment", entries[0].Name)
	assert.Equal(t, int64(2), entries[0].Seq, "the failed event still consumed a clock position")
}

func TestMarshalArgs(t *testing.T) {
	out, err := marshalArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	out, err = marshalArgs(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, out, "keys are emitted sorted")
}
