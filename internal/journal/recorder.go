package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/statecraft/mvu"
)

// EventCodec names an application event and extracts its arguments for
// journaling.
type EventCodec[E any] func(event E) (name string, args map[string]any, err error)

// Recorder wraps an application's logic and journals every event that
// reaches Update, stamped with a logical clock position.
//
// Recording is log-and-continue: an encode or append failure is logged
// and the event is processed normally. A journal gap degrades replay,
// not the live run.
type Recorder[E, M, P any] struct {
	inner   mvu.Logic[E, M, P]
	journal *Journal
	codec   EventCodec[E]
	clock   *Clock
	token   string
	log     *slog.Logger
}

// NewRecorder wraps logic so events are journaled under the given run
// token. The caller registers the token with BeginRun beforehand.
func NewRecorder[E, M, P any](
	inner mvu.Logic[E, M, P],
	j *Journal,
	codec EventCodec[E],
	token string,
	logger *slog.Logger,
) *Recorder[E, M, P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder[E, M, P]{
		inner:   inner,
		journal: j,
		codec:   codec,
		clock:   NewClock(),
		token:   token,
		log:     logger,
	}
}

func (r *Recorder[E, M, P]) Init(model M) (M, mvu.Effect[E]) {
	return r.inner.Init(model)
}

func (r *Recorder[E, M, P]) Update(event E, model M) (M, mvu.Effect[E]) {
	r.record(event)
	return r.inner.Update(event, model)
}

func (r *Recorder[E, M, P]) View(model M, emitter mvu.Emitter[E]) P {
	return r.inner.View(model, emitter)
}

func (r *Recorder[E, M, P]) record(event E) {
	seq := r.clock.Next()

	name, args, err := r.codec(event)
	if err != nil {
		r.log.Error("journal encode failed", "run", r.token, "seq", seq, "error", err)
		return
	}

	argsJSON, err := marshalArgs(args)
	if err != nil {
		r.log.Error("journal encode failed", "run", r.token, "seq", seq, "error", err)
		return
	}

	entry := Entry{RunToken: r.token, Seq: seq, Name: name, Args: argsJSON}
	if err := r.journal.Append(context.Background(), entry); err != nil {
		r.log.Error("journal append failed", "run", r.token, "seq", seq, "error", err)
	}
}

// marshalArgs serializes event arguments deterministically. Map keys
// are emitted in sorted order, so equal argument maps produce equal
// journal text.
func marshalArgs(args map[string]any) (string, error) {
	if len(args) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}
