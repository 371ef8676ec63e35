package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morninglang/mornc/internal/journal"
	"github.com/morninglang/mornc/internal/pipeline"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run's stage timeline
}

// RunHistory is the detailed view of one recorded run.
type RunHistory struct {
	Run    journal.Run            `json:"run"`
	Stages []pipeline.StageResult `json:"stages"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded pipeline runs",
		Long: `Read the run journal written by run --journal.

Without --run, lists all recorded runs, newest first. With --run, shows
one run's stage timeline ordered by logical seq.

Examples:
  mornc history --db ./mornc.db
  mornc history --db ./mornc.db --run 0190f7a2-...
  mornc history --db ./mornc.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the stage timeline for one run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	j, err := journal.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.RunID != "" {
		return outputRunHistory(ctx, opts, formatter, j)
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		state := r.State
		if state == "" {
			state = "INCOMPLETE"
		}
		line := fmt.Sprintf("%s  %s  %s", r.ID, r.StartedAt, state)
		if r.ProgramExited {
			line += fmt.Sprintf("  exit=%d", r.ProgramExit)
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}

func outputRunHistory(ctx context.Context, opts *HistoryOptions, formatter *OutputFormatter, j *journal.Journal) error {
	run, err := j.GetRun(ctx, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}

	stages, err := j.StageRecords(ctx, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read stage records", err)
	}

	history := RunHistory{Run: run, Stages: stages}

	if opts.Format == "json" {
		return formatter.Success(history)
	}

	state := run.State
	if state == "" {
		state = "INCOMPLETE"
	}
	fmt.Fprintf(formatter.Writer, "run %s\n", run.ID)
	fmt.Fprintf(formatter.Writer, "  started:     %s\n", run.StartedAt)
	fmt.Fprintf(formatter.Writer, "  state:       %s\n", state)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", run.Fingerprint)
	if run.ProgramExited {
		fmt.Fprintf(formatter.Writer, "  program exit: %d\n", run.ProgramExit)
	}
	fmt.Fprintln(formatter.Writer)
	for _, s := range stages {
		fmt.Fprintf(formatter.Writer, "  %d  %-6s %-9s exit=%d", s.Seq, s.Stage, s.State, s.ExitCode)
		if s.Detail != "" {
			fmt.Fprintf(formatter.Writer, "  %s", s.Detail)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
