package mvutest

import (
	"fmt"

	"github.com/statecraft/mvu"
)

// Bindings connects a scenario to a concrete application: how to build
// the seed model, how to decode named scenario events into application
// events, and how to project props into a comparable snapshot.
type Bindings[E, M, P any] struct {
	// Logic is the application's mvu contract.
	Logic mvu.Logic[E, M, P]

	// SeedModel builds the starting model from the scenario's seed map.
	// A nil scenario seed is passed through as an empty map.
	SeedModel func(seed map[string]any) (M, error)

	// DecodeEvent turns a step's event name and args into an event.
	DecodeEvent func(name string, args map[string]any) (E, error)

	// SnapshotProps projects rendered props into plain trace data.
	// Snapshots must contain only strings, ints, bools, maps and
	// slices; anything else breaks canonical serialization.
	SnapshotProps func(props P) map[string]any
}

// TraceEvent is one entry in a scenario trace: an emitted event or a
// captured render, stamped with a logical sequence number.
type TraceEvent struct {
	Type  string         `json:"type"` // "event" or "render"
	Name  string         `json:"name,omitempty"`
	Args  map[string]any `json:"args,omitempty"`
	Props map[string]any `json:"props,omitempty"`
	Seq   int64          `json:"seq"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace interleaves emitted events and captured renders in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists assertion failures and reported runtime conditions.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// RunScenario executes a scenario against the bindings on a fresh
// deterministic driver and returns the result.
//
// Each run uses its own driver, clock and capture list, so repeated runs
// of the same scenario produce identical traces.
func RunScenario[E, M, P any](scenario *Scenario, bindings Bindings[E, M, P]) (*Result, error) {
	seed := scenario.Seed
	if seed == nil {
		seed = map[string]any{}
	}
	model, err := bindings.SeedModel(seed)
	if err != nil {
		return nil, fmt.Errorf("seed model: %w", err)
	}

	driver := NewDriver(model, bindings.Logic, SyncSpawner{})
	clock := NewClock()
	result := &Result{Pass: true, Trace: []TraceEvent{}}

	captured := 0
	captureRenders := func() {
		snapshot := driver.Renders().Snapshot()
		for ; captured < len(snapshot); captured++ {
			result.Trace = append(result.Trace, TraceEvent{
				Type:  "render",
				Props: bindings.SnapshotProps(snapshot[captured]),
				Seq:   clock.Next(),
			})
		}
	}

	// The init-driven render happens eagerly on driver construction.
	captureRenders()

	for i, step := range scenario.Steps {
		event, err := bindings.DecodeEvent(step.Emit, step.Args)
		if err != nil {
			return nil, fmt.Errorf("step %d: decode event %q: %w", i, step.Emit, err)
		}

		result.Trace = append(result.Trace, TraceEvent{
			Type: "event",
			Name: step.Emit,
			Args: step.Args,
			Seq:  clock.Next(),
		})

		driver.Emitter().Emit(event)
		driver.ProcessEvents()
		captureRenders()
	}

	for _, err := range driver.Errors() {
		result.AddError(fmt.Sprintf("runtime: %v", err))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}
