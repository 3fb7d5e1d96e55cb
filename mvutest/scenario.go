package mvutest

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var scenarioSchema string

// Scenario defines a scripted test run: an ordered sequence of events
// fed to the deterministic driver, with assertions over the resulting
// trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed holds application-defined seed-model fields.
	Seed map[string]any `yaml:"seed,omitempty"`

	// Steps are executed in order; each emits one event and drains the
	// queue once.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	// Supported types: render_count, props_at, event_order.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step emits one named event into the driver and processes the queue.
type Step struct {
	// Emit is the application-defined event name.
	Emit string `yaml:"emit"`

	// Args carries event arguments, decoded by the application codec.
	Args map[string]any `yaml:"args,omitempty"`
}

// Assertion validates the trace produced by a scenario run.
type Assertion struct {
	// Type selects the assertion: render_count, props_at or event_order.
	Type string `yaml:"type"`

	// Count is the expected total number of renders (render_count).
	Count int `yaml:"count,omitempty"`

	// Index selects a render by position (props_at).
	Index int `yaml:"index,omitempty"`

	// Props are expected props fields; subset match (props_at).
	Props map[string]any `yaml:"props,omitempty"`

	// Events is the expected event-name order (event_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertRenderCount = "render_count"
	AssertPropsAt     = "props_at"
	AssertEventOrder  = "event_order"
)

// LoadScenario reads, schema-validates and parses a scenario YAML file.
//
// Validation happens twice on purpose: the embedded CUE schema enforces
// structural constraints (non-empty name, known assertion types), and
// strict YAML decoding rejects unknown fields such as typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario validates and decodes scenario YAML from memory. The
// path is used only for positions in validation errors.
func ParseScenario(path string, data []byte) (*Scenario, error) {
	if err := validateAgainstSchema(path, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	return &scenario, nil
}

// validateAgainstSchema unifies the raw YAML document with the embedded
// #Scenario definition and checks the result is a concrete instance.
func validateAgainstSchema(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(scenarioSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if !def.Exists() {
		return fmt.Errorf("scenario schema missing #Scenario definition")
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("extract YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build YAML document: %w", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true), cue.Final()); err != nil {
		return err
	}
	return nil
}
