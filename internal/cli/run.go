package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/statecraft/mvu"
	"github.com/statecraft/mvu/internal/counter"
	"github.com/statecraft/mvu/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string
	Delay   time.Duration

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens journal.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the interactive counter",
		Long: `Run the counter application on the production dispatch loop.

Events are read line by line from standard input:
  increment, +       increment the count
  decrement, -       decrement the count
  add <n>            add n after a delay (asynchronous task)
  quit               stop the loop

With --journal, every processed event is appended to a SQLite journal
under a fresh run token; journaled runs can be replayed later with the
replay command.

Example:
  mvu run
  mvu run --journal ./runs.db --delay 2s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounter(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (omit to disable journaling)")
	cmd.Flags().DurationVar(&opts.Delay, "delay", time.Second, "completion delay for add tasks")

	return cmd
}

func runCounter(opts *RunOptions, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// Use the command's context if available (for testing).
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var logic mvu.Logic[counter.Event, counter.Model, counter.Props] = counter.Logic{Delay: opts.Delay}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()

		tokens := opts.Tokens
		if tokens == nil {
			tokens = journal.UUIDv7Generator{}
		}
		token := tokens.Generate()
		if err := j.BeginRun(ctx, token); err != nil {
			return WrapExitError(ExitCommandError, "failed to begin run", err)
		}

		logic = journal.NewRecorder(logic, j, counter.EncodeEvent, token, slog.Default())
		slog.Info("journaling enabled", "path", opts.Journal, "run", token)
		fmt.Fprintf(out, "Journaling to %s as run %s\n", opts.Journal, token)
	}

	renderer := mvu.RenderFunc[counter.Props](func(props counter.Props) {
		fmt.Fprintf(out, "count: %d\n", props.Count)
	})

	runtime := mvu.New(counter.Model{}, logic, renderer, mvu.GoSpawner{})

	fmt.Fprintln(out, "Counter started. Type increment, decrement, add <n> or quit.")

	// The reader feeds events from stdin while the loop owns this
	// goroutine; quit or EOF closes the queue and unblocks Run.
	go readEvents(cmd.InOrStdin(), out, runtime)

	if err := runtime.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "runtime error", err)
	}

	slog.Info("counter stopped")
	return nil
}

// readEvents parses stdin lines into counter events until EOF or quit.
func readEvents(in io.Reader, out io.Writer, runtime *mvu.Runtime[counter.Event, counter.Model, counter.Props]) {
	emitter := runtime.Emitter()
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "increment", "+":
			emitter.Emit(counter.Event{Kind: counter.KindIncrement})
		case "decrement", "-":
			emitter.Emit(counter.Event{Kind: counter.KindDecrement})
		case "add":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: add <n>")
				continue
			}
			amount, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(out, "not a number: %s\n", fields[1])
				continue
			}
			emitter.Emit(counter.Event{Kind: counter.KindAddLater, Amount: amount})
		case "quit", "exit":
			runtime.Stop()
			return
		default:
			fmt.Fprintf(out, "unknown command: %s\n", fields[0])
		}
	}

	runtime.Stop()
}
