package mvu

import (
	"context"
	"log/slog"
)

// config holds runtime parameters shared by all type instantiations.
type config struct {
	logger        *slog.Logger
	queueCapacity int
	onError       func(error)
}

// Option configures a Runtime at construction time.
type Option func(*config)

// WithLogger sets the structured logger used by the loop.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithQueueCapacity bounds the pending-event queue to n events.
//
// The default queue is unbounded. With a bound, an enqueue into a full
// queue drops the incoming event and reports the drop through the error
// hook; already-accepted events keep their order. Intended for
// memory-constrained hosts where unbounded growth is not acceptable.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		c.queueCapacity = n
	}
}

// WithErrorHandler installs a hook that observes recoverable conditions:
// spawner refusals and bounded-queue drops. The hook is advisory; the
// loop continues regardless. Defaults to logging only.
func WithErrorHandler(handler func(error)) Option {
	return func(c *config) {
		c.onError = handler
	}
}

// Runtime is the dispatch loop tying init, update, view and render
// together.
//
// Thread-safety model:
//   - Emitter(): the returned handle is safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Pump()/Start(): must be called from the loop goroutine only
//   - Stop(): safe from any goroutine
//
// INVARIANTS:
//   - Exactly one Update call per dequeued event
//   - A render follows init and every processed event; no render happens
//     without a preceding state transition
//   - The model is owned by the loop and replaced wholesale each step
type Runtime[E, M, P any] struct {
	logic    Logic[E, M, P]
	renderer Renderer[P]
	spawner  Spawner
	queue    *eventQueue[E]
	emitter  Emitter[E]
	model    M
	log      *slog.Logger
	onError  func(error)
	baseCtx  context.Context
	started  bool
}

// New creates a Runtime around the seed model and the three external
// contracts. The runtime does nothing until Start or Run is called.
func New[E, M, P any](
	seed M,
	logic Logic[E, M, P],
	renderer Renderer[P],
	spawner Spawner,
	opts ...Option,
) *Runtime[E, M, P] {
	cfg := config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	queue := newEventQueue[E](cfg.queueCapacity)

	r := &Runtime[E, M, P]{
		logic:    logic,
		renderer: renderer,
		spawner:  spawner,
		queue:    queue,
		emitter:  Emitter[E]{queue: queue},
		model:    seed,
		log:      cfg.logger,
		onError:  cfg.onError,
		baseCtx:  context.Background(),
	}

	if cfg.queueCapacity > 0 {
		capacity := cfg.queueCapacity
		queue.overflow = func(pending int) {
			r.report(newQueueOverflowError(pending, capacity))
		}
	}

	return r
}

// Emitter returns a handle for injecting events from any goroutine.
// Props callbacks receive the same handle through Logic.View.
func (r *Runtime[E, M, P]) Emitter() Emitter[E] {
	return r.emitter
}

// QueueLen returns the number of pending events.
// Useful for monitoring and testing.
func (r *Runtime[E, M, P]) QueueLen() int {
	return r.queue.Len()
}

// Start performs the one-time initializing transition: it calls Init on
// the seed model, executes the initial effect, and renders once. Run
// calls Start automatically when needed; call it directly when driving
// the loop cooperatively with Pump.
func (r *Runtime[E, M, P]) Start() error {
	if r.started {
		return &RuntimeError{Code: ErrCodeAlreadyStarted, Message: "runtime already started"}
	}
	r.started = true

	model, effect := r.logic.Init(r.model)
	r.model = model
	if err := runEffect(r.baseCtx, effect, r.emitter, r.spawner); err != nil {
		r.report(err)
	}
	r.render()
	return nil
}

// Run starts the loop and blocks until the context is cancelled or Stop
// is called. It never returns under normal operation; teardown is an
// external signal, not a value returned by Update.
//
// Must be called from exactly one goroutine. All reduction and rendering
// happen on that goroutine.
//
// Spawner refusals and queue drops are reported and processing
// continues; the loop never retries a failed effect.
func (r *Runtime[E, M, P]) Run(ctx context.Context) error {
	r.baseCtx = ctx

	if !r.started {
		if err := r.Start(); err != nil {
			return err
		}
	}

	r.log.Info("mvu runtime started")

	for {
		event, ok := r.queue.TryDequeue()
		if ok {
			r.step(event)
			continue
		}

		// No event ready: wait for a signal or cancellation. This is the
		// loop's designated suspension point.
		select {
		case <-ctx.Done():
			r.log.Info("mvu runtime stopping", "reason", "context cancelled")
			r.queue.Close()
			return ctx.Err()

		case <-r.queue.Wait():
			// The signal channel closes when the queue closes; a stale
			// coalesced signal just loops back to TryDequeue.
			if r.queue.Closed() && r.queue.Len() == 0 {
				r.log.Info("mvu runtime stopping", "reason", "queue closed")
				return nil
			}
		}
	}
}

// Pump drains the queue once, applying one update-then-render transition
// per dequeued event in FIFO order, and returns the number of events
// processed. It stops when the queue is empty at the moment of the
// check; events enqueued by effects during the drain are included if
// they arrive before that check.
//
// Pump is the cooperative alternative to Run for hosts that own the
// thread (frame loops, superloops on embedded targets) and the substrate
// of the mvutest driver. Calling it with an empty queue performs zero
// updates and zero renders.
func (r *Runtime[E, M, P]) Pump() int {
	processed := 0
	for {
		event, ok := r.queue.TryDequeue()
		if !ok {
			return processed
		}
		r.step(event)
		processed++
	}
}

// Stop tears the runtime down: the queue closes, Run returns, and
// subsequent emits become no-ops. Safe to call from any goroutine and
// idempotent.
func (r *Runtime[E, M, P]) Stop() {
	r.queue.Close()
}

// step applies one processing transition: exactly one Update call,
// wholesale model replacement, effect execution, then a render.
func (r *Runtime[E, M, P]) step(event E) {
	model, effect := r.logic.Update(event, r.model)
	r.model = model

	if err := runEffect(r.baseCtx, effect, r.emitter, r.spawner); err != nil {
		r.report(err)
	}

	r.render()
}

// render derives props from the current model and hands them to the
// renderer. The runtime retains nothing after the call.
func (r *Runtime[E, M, P]) render() {
	props := r.logic.View(r.model, r.emitter)
	r.renderer.Render(props)
}

// report surfaces a recoverable condition on the side channel without
// aborting the loop.
func (r *Runtime[E, M, P]) report(err error) {
	r.log.Error("mvu runtime recoverable failure", "error", err)
	if r.onError != nil {
		r.onError(err)
	}
}
