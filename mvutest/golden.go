package mvutest

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// toCanonicalMap converts a result trace to plain maps for canonical
// JSON serialization. Empty optional fields are omitted so traces stay
// minimal and stable.
func toCanonicalMap(scenarioName string, trace []TraceEvent) map[string]any {
	traceList := make([]any, len(trace))
	for i, entry := range trace {
		entryMap := map[string]any{
			"type": entry.Type,
			"seq":  entry.Seq,
		}
		if entry.Name != "" {
			entryMap["name"] = entry.Name
		}
		if len(entry.Args) > 0 {
			entryMap["args"] = entry.Args
		}
		if entry.Props != nil {
			entryMap["props"] = entry.Props
		}
		traceList[i] = entryMap
	}

	return map[string]any{
		"scenario_name": scenarioName,
		"trace":         traceList,
	}
}

// RunScenarioWithGolden executes a scenario and compares its canonical
// trace against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
//
// The scenario's own assertions are evaluated first; a failed assertion
// fails the test before the golden comparison runs.
func RunScenarioWithGolden[E, M, P any](t *testing.T, scenario *Scenario, bindings Bindings[E, M, P]) {
	t.Helper()

	result, err := RunScenario(scenario, bindings)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		t.Fatalf("scenario %s failed: %v", scenario.Name, result.Errors)
	}

	AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result's trace against the
// named golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	traceJSON, err := marshalCanonical(toCanonicalMap(scenarioName, result.Trace))
	if err != nil {
		t.Fatalf("canonical trace for %s: %v", scenarioName, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
}
