package mvu

// Logic is the application contract consumed by the runtime.
//
// All three methods must be pure: free of directly observable side
// effects and total. Any effect belongs in the returned Effect value, and
// any fallible operation belongs inside a task effect. The runtime has no
// recovery path for a broken purity contract.
type Logic[E, M, P any] interface {
	// Init produces the starting model and any bootstrap effect from the
	// seed model. Called exactly once, before the first render.
	Init(model M) (M, Effect[E])

	// Update reduces one event and the current model to a new model and
	// an effect. The prior model must not be mutated; return a fresh
	// value. Never invoked concurrently with itself.
	Update(event E, model M) (M, Effect[E])

	// View derives render-ready props from the model. The emitter allows
	// props to carry callbacks that feed events back into the loop.
	View(model M, emitter Emitter[E]) P
}
