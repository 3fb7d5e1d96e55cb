// Package mvutest provides a deterministic testing harness for mvu
// runtimes.
//
// The harness is built from the production loop with automatic draining
// disabled:
//
//   - Driver wraps a runtime whose queue is drained only by explicit
//     ProcessEvents calls
//   - CaptureRenderer records every rendered props value in arrival
//     order for assertions and for invoking captured callbacks
//   - SyncSpawner executes task effects inline, so two runs fed the same
//     event sequence produce identical captured props
//   - ManualSpawner holds tasks for explicit release when a test needs
//     to interleave completions by hand
//
// On top of the driver, the package offers scripted scenarios: ordered
// event sequences loaded from YAML (validated against an embedded CUE
// schema), executed against application bindings, with assertions over
// render counts, props contents and event order. Scenario traces
// serialize to canonical JSON for byte-stable golden file comparison.
package mvutest
