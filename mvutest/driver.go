package mvutest

import (
	"io"
	"log/slog"

	"github.com/statecraft/mvu"
)

// Driver drives an mvu runtime one drain cycle at a time.
//
// Construction performs the same one-time init-then-render transition as
// the production loop; after that, nothing happens until ProcessEvents
// is called. No background draining ever occurs.
type Driver[E, M, P any] struct {
	runtime  *mvu.Runtime[E, M, P]
	renderer *CaptureRenderer[P]
	errs     []error
}

// NewDriver builds a runtime around the seed model, logic and spawner,
// wires in a CaptureRenderer, and eagerly performs the initial render.
//
// Recoverable runtime errors (spawn refusals, queue drops) are collected
// on the driver and retrievable with Errors, surfacing synchronously to
// the test. The runtime's own logging is discarded; pass
// mvu.WithLogger in opts to override.
func NewDriver[E, M, P any](
	seed M,
	logic mvu.Logic[E, M, P],
	spawner mvu.Spawner,
	opts ...mvu.Option,
) *Driver[E, M, P] {
	d := &Driver[E, M, P]{
		renderer: NewCaptureRenderer[P](),
	}

	base := []mvu.Option{
		mvu.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		mvu.WithErrorHandler(func(err error) {
			d.errs = append(d.errs, err)
		}),
	}
	d.runtime = mvu.New(seed, logic, d.renderer, spawner, append(base, opts...)...)

	// A fresh runtime cannot refuse its first start.
	_ = d.runtime.Start()

	return d
}

// ProcessEvents drains the queue once in strict FIFO order, applying one
// update-then-render transition per event, and returns the number of
// events processed. Events enqueued by effects during the drain are
// included if they arrive before the emptiness check. Idempotent when
// the queue is already empty.
func (d *Driver[E, M, P]) ProcessEvents() int {
	return d.runtime.Pump()
}

// Emitter returns the runtime's event-injection handle.
func (d *Driver[E, M, P]) Emitter() mvu.Emitter[E] {
	return d.runtime.Emitter()
}

// Renders exposes the capturing renderer for assertions and callback
// invocation.
func (d *Driver[E, M, P]) Renders() *CaptureRenderer[P] {
	return d.renderer
}

// QueueLen returns the number of pending, not yet drained events.
func (d *Driver[E, M, P]) QueueLen() int {
	return d.runtime.QueueLen()
}

// Errors returns recoverable conditions reported since construction.
func (d *Driver[E, M, P]) Errors() []error {
	return d.errs
}

// Stop tears the underlying runtime down; later emits become no-ops.
func (d *Driver[E, M, P]) Stop() {
	d.runtime.Stop()
}
