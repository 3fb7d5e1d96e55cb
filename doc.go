// Package mvu implements a unidirectional Model-View-Update runtime.
//
// The runtime is a closed dispatch loop: discrete events are reduced into
// new application state, renderable props are derived from that state, and
// side effects are described as data and executed under the runtime's
// control.
//
// ARCHITECTURE:
//
// Single-Consumer Event Loop:
// All updates run sequentially on the goroutine driving the loop. This
// ensures:
// - The model is never observed or replaced from two call sites at once
// - Exactly one Update call per dequeued event
// - A render after init and after every processed event
//
// Event Flow:
//  1. Init seeds (Model, Effect); the initial effect is executed
//  2. View derives Props from the model and an Emitter; Props are rendered
//  3. Emitter holders (props callbacks, completed tasks, external
//     injectors) enqueue events from any goroutine
//  4. The loop dequeues one event, calls Update, executes the returned
//     effect, and renders again
//
// Effects never execute themselves. They are interpreted exactly once, at
// the point they are returned from Init or Update: immediate effects
// re-enter the queue, asynchronous tasks are handed to a Spawner and feed
// their eventual outcome back through the Emitter.
//
// The loop is designed for correctness and determinism, not throughput.
// Task execution may be parallelized by the Spawner, but reduction and
// rendering are strictly single-threaded.
//
// For deterministic tests, see the mvutest package: a manually pumped
// driver, a capturing renderer, and a synchronous spawner built on the
// same loop with automatic draining disabled.
package mvu
