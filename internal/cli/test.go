package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statecraft/mvu/internal/counter"
	"github.com/statecraft/mvu/mvutest"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on file name)
	Trace  bool   // print the full trace for each scenario
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Pass   bool                 `json:"pass"`
	Errors []string             `json:"errors,omitempty"`
	Trace  []mvutest.TraceEvent `json:"trace,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against the counter",
		Long: `Run YAML scenario files on the deterministic driver.

Each scenario seeds the counter, emits its steps in order, drains the
queue after every step, and evaluates its assertions against the
resulting trace.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios, etc.)

Examples:
  mvu test ./scenarios
  mvu test ./scenarios --filter "counter-*"
  mvu test ./scenarios --format json --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "include the full trace in the output")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenarioFile(scenarioFile, opts)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := outputTestJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputTestText(cmd, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// runScenarioFile loads and executes one scenario file. Load and decode
// failures become scenario failures rather than aborting the whole run.
func runScenarioFile(path string, opts *TestOptions) ScenarioResult {
	scenResult := ScenarioResult{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		File: path,
	}

	scenario, err := mvutest.LoadScenario(path)
	if err != nil {
		scenResult.Errors = append(scenResult.Errors, err.Error())
		return scenResult
	}
	scenResult.Name = scenario.Name

	result, err := mvutest.RunScenario(scenario, counter.Bindings())
	if err != nil {
		scenResult.Errors = append(scenResult.Errors, err.Error())
		return scenResult
	}

	scenResult.Pass = result.Pass
	scenResult.Errors = append(scenResult.Errors, result.Errors...)
	if opts.Trace {
		scenResult.Trace = result.Trace
	}
	return scenResult
}

// findScenarioFiles finds all YAML scenario files in a directory,
// optionally filtered by a glob pattern on the base name.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return formatter.Success(result)
}

func outputTestText(cmd *cobra.Command, result TestResult) {
	out := cmd.OutOrStdout()

	for _, scen := range result.Scenarios {
		status := "PASS"
		if !scen.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(out, "%s  %s\n", status, scen.Name)
		for _, msg := range scen.Errors {
			fmt.Fprintf(out, "      %s\n", strings.ReplaceAll(msg, "\n", "\n      "))
		}
		for _, entry := range scen.Trace {
			switch entry.Type {
			case "event":
				fmt.Fprintf(out, "      [%d] event %s %v\n", entry.Seq, entry.Name, entry.Args)
			case "render":
				fmt.Fprintf(out, "      [%d] render %v\n", entry.Seq, entry.Props)
			}
		}
	}

	fmt.Fprintf(out, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
