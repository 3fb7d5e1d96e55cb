package mvutest

import (
	"fmt"
	"reflect"
	"strings"
)

// AssertionError describes one failed scenario assertion with enough
// context to debug it without re-running.
type AssertionError struct {
	Type     string       // assertion type for categorization
	Expected string       // human-readable expected outcome
	Actual   string       // human-readable actual outcome
	Trace    []TraceEvent // full trace for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nfull trace:\n")
	for i, entry := range e.Trace {
		switch entry.Type {
		case "event":
			fmt.Fprintf(&buf, "  [%d] event %s %v\n", i+1, entry.Name, entry.Args)
		case "render":
			fmt.Fprintf(&buf, "  [%d] render %v\n", i+1, entry.Props)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result's trace
// and returns the failure messages. An unknown assertion type is itself
// a failure; the schema normally rejects those before execution.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertRenderCount:
			err = assertRenderCount(result.Trace, assertion)
		case AssertPropsAt:
			err = assertPropsAt(result.Trace, assertion)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	return failures
}

// assertRenderCount checks the total number of renders in the trace.
func assertRenderCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, entry := range trace {
		if entry.Type == "render" {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertRenderCount,
			Expected: fmt.Sprintf("%d renders", assertion.Count),
			Actual:   fmt.Sprintf("%d renders", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertPropsAt checks the N-th render's props against the expected
// fields (subset match).
func assertPropsAt(trace []TraceEvent, assertion Assertion) error {
	index := 0
	for _, entry := range trace {
		if entry.Type != "render" {
			continue
		}
		if index == assertion.Index {
			if matchSubset(entry.Props, assertion.Props) {
				return nil
			}
			return &AssertionError{
				Type:     AssertPropsAt,
				Expected: fmt.Sprintf("render %d with props %v", assertion.Index, assertion.Props),
				Actual:   fmt.Sprintf("props %v", entry.Props),
				Trace:    trace,
			}
		}
		index++
	}

	return &AssertionError{
		Type:     AssertPropsAt,
		Expected: fmt.Sprintf("at least %d renders", assertion.Index+1),
		Actual:   fmt.Sprintf("%d renders", index),
		Trace:    trace,
	}
}

// assertEventOrder checks that the named events appear in the given
// order. Events need not be consecutive; intervening events are allowed.
func assertEventOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, entry := range trace {
		if entry.Type != "event" {
			continue
		}
		for _, expected := range assertion.Events {
			if entry.Name == expected && positions[expected] == 0 {
				positions[expected] = i + 1 // 1-indexed for readability
			}
		}
	}

	for _, name := range assertion.Events {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("all events present: %v", assertion.Events),
				Actual:   fmt.Sprintf("missing event: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Events); i++ {
		prev := assertion.Events[i-1]
		curr := assertion.Events[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("events in order: %v", assertion.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// matchSubset reports whether every expected field matches the actual
// map. Numeric values are normalized first so YAML's int and an
// application's int64 compare equal.
func matchSubset(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(normalize(got), normalize(want)) {
			return false
		}
	}
	return true
}

// normalize flattens numeric types to int64 and recurses into
// containers so DeepEqual compares values, not representations.
func normalize(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalize(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalize(elem)
		}
		return out
	default:
		return v
	}
}
