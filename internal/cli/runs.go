package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/statecraft/mvu/internal/journal"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Journal string
}

// RunInfo is one journaled run in the listing.
type RunInfo struct {
	Token     string `json:"token"`
	StartedAt string `json:"started_at"`
	Events    int    `json:"events"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled runs",
		Long: `List all runs recorded in a journal, in creation order.

Examples:
  mvu runs --journal ./runs.db
  mvu runs --journal ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func listRuns(opts *RunsOptions, cmd *cobra.Command) error {
	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	infos := make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, RunInfo{
			Token:     run.Token,
			StartedAt: run.StartedAt.Format(time.RFC3339),
			Events:    run.Events,
		})
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(infos)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found in journal.")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(out, "%s  %s  %d events\n", info.Token, info.StartedAt, info.Events)
	}
	return nil
}
