package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/statecraft/mvu"
	"github.com/statecraft/mvu/internal/counter"
	"github.com/statecraft/mvu/internal/journal"
	"github.com/statecraft/mvu/mvutest"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
	Run     string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	Run           string         `json:"run"`
	Events        int            `json:"events"`
	Renders       int            `json:"renders"`
	FinalProps    map[string]any `json:"final_props"`
	Deterministic bool           `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled runs and verify determinism",
		Long: `Replay journaled events through the deterministic driver.

Each run's events are re-dispatched in journal order, twice, and the
two render sequences are compared. Identical sequences mean the run is
deterministic; any difference is reported.

Exit codes:
  0 - All runs replayed deterministically
  1 - Determinism verification failed
  2 - Command error (journal not found, undecodable events, etc.)

Examples:
  mvu replay --journal ./runs.db
  mvu replay --journal ./runs.db --run 0190b5e8-2f9a-7cc0-b0e6-1f0c4a9d21aa
  mvu replay --journal ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Run, "run", "", "replay a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var tokens []string
	if opts.Run != "" {
		tokens = []string{opts.Run}
	} else {
		runs, err := j.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, run := range runs {
			tokens = append(tokens, run.Token)
		}
	}

	if len(tokens) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Runs:             []ReplayRunResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in journal.")
		return nil
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(tokens)),
		TotalRuns:        len(tokens),
		AllDeterministic: true,
	}

	for _, token := range tokens {
		runResult, err := replayRun(ctx, j, token)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", token), err)
		}
		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		if err := outputReplayJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay produced diverging render sequences")
	}
	return nil
}

// replayRun re-dispatches one run's events twice and compares the
// resulting render sequences.
func replayRun(ctx context.Context, j *journal.Journal, token string) (ReplayRunResult, error) {
	entries, err := j.ReadRun(ctx, token)
	if err != nil {
		return ReplayRunResult{}, err
	}

	first, err := dispatchEntries(entries)
	if err != nil {
		return ReplayRunResult{}, err
	}
	second, err := dispatchEntries(entries)
	if err != nil {
		return ReplayRunResult{}, err
	}

	result := ReplayRunResult{
		Run:           token,
		Events:        len(entries),
		Renders:       len(first),
		Deterministic: reflect.DeepEqual(first, second),
	}
	if len(first) > 0 {
		result.FinalProps = first[len(first)-1]
	}
	return result, nil
}

// dispatchEntries feeds journaled events through a fresh deterministic
// driver and returns the rendered props snapshots in order.
//
// Tasks run on the synchronous spawner, so a journaled add_later is
// immediately followed by its journaled added completion; dispatching
// both reproduces the live ordering.
func dispatchEntries(entries []journal.Entry) ([]map[string]any, error) {
	driver := mvutest.NewDriver[counter.Event, counter.Model, counter.Props](
		counter.Model{}, replayLogic{}, mvutest.SyncSpawner{},
	)
	defer driver.Stop()

	for _, entry := range entries {
		args, err := decodeArgs(entry.Args)
		if err != nil {
			return nil, fmt.Errorf("run %s seq %d: %w", entry.RunToken, entry.Seq, err)
		}
		event, err := counter.DecodeEvent(entry.Name, args)
		if err != nil {
			return nil, fmt.Errorf("run %s seq %d: %w", entry.RunToken, entry.Seq, err)
		}
		driver.Emitter().Emit(event)
		driver.ProcessEvents()
	}

	snapshots := driver.Renders().Snapshot()
	rendered := make([]map[string]any, len(snapshots))
	for i, props := range snapshots {
		rendered[i] = counter.SnapshotProps(props)
	}
	return rendered, nil
}

// replayLogic is counter logic with effects stripped. The journal
// already holds task completions as explicit events; re-running the
// tasks would double-apply them.
type replayLogic struct {
	inner counter.Logic
}

func (l replayLogic) Init(model counter.Model) (counter.Model, mvu.Effect[counter.Event]) {
	model, _ = l.inner.Init(model)
	return model, mvu.None[counter.Event]()
}

func (l replayLogic) Update(event counter.Event, model counter.Model) (counter.Model, mvu.Effect[counter.Event]) {
	model, _ = l.inner.Update(event, model)
	return model, mvu.None[counter.Event]()
}

func (l replayLogic) View(model counter.Model, emitter mvu.Emitter[counter.Event]) counter.Props {
	return l.inner.View(model, emitter)
}

// decodeArgs parses journaled canonical JSON args. Numbers are decoded
// as json.Number and narrowed to int, matching what the scenario YAML
// path produces.
func decodeArgs(text string) (map[string]any, error) {
	if text == "" || text == "{}" {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}

	args := make(map[string]any, len(raw))
	for key, value := range raw {
		if num, ok := value.(json.Number); ok {
			n, err := num.Int64()
			if err != nil {
				return nil, fmt.Errorf("arg %q: %w", key, err)
			}
			args[key] = int(n)
			continue
		}
		args[key] = value
	}
	return args, nil
}

func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return formatter.Success(result)
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) {
	out := cmd.OutOrStdout()

	for _, run := range result.Runs {
		status := "deterministic"
		if !run.Deterministic {
			status = "DIVERGED"
		}
		fmt.Fprintf(out, "%s  events=%d renders=%d final=%v  %s\n",
			run.Run, run.Events, run.Renders, run.FinalProps, status)
	}
	fmt.Fprintf(out, "\n%d runs replayed\n", result.TotalRuns)
}
