package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/morninglang/mornc/internal/config"
	"github.com/morninglang/mornc/internal/journal"
	"github.com/morninglang/mornc/internal/pipeline"
)

// ErrCodeStageFailed identifies a pipeline stage failure in error output.
const ErrCodeStageFailed = "E201"

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string   // optional journal database path
	Stages  []string // enabled-stage override
	Dir     string   // working directory for stages and artifacts

	// Runner allows overriding the command runner (for testing).
	// If nil, defaults to an ExecRunner in Dir.
	Runner pipeline.CommandRunner

	// IDGen allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGen pipeline.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [config-dir]",
		Short: "Run the toolchain pipeline",
		Long: `Run the staged toolchain pipeline: build, lower, native, exec.

With no config directory, the built-in morninglang conventions apply:

  build:  bash build.sh all
  lower:  ./build/bin/morninglang   (emits out.ll)
  native: clang++ -O3 -Igc -lgc out.ll -o out.bin
  exec:   ./out.bin

The first failing stage aborts the pipeline and is reported with its
command line and exit code. The exec stage is the exception: the
program's own exit status is the pipeline's result and is printed as the
last line of output, whatever its value.

Examples:
  mornc run
  mornc run ./config --stages build,lower
  mornc run --journal ./mornc.db --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runPipeline(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run in a SQLite journal at this path")
	cmd.Flags().StringSliceVar(&opts.Stages, "stages", nil, "comma-separated enabled stages (default: from config)")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "C", "", "working directory for all stages (default: current directory)")

	return cmd
}

func runPipeline(opts *RunOptions, configDir string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag. The stage summary lines
	// are the primary output; structured logs stay quiet unless asked.
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg, err := LoadConfig(configDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if opts.Stages != nil {
		cfg.Stages = make([]config.StageName, 0, len(opts.Stages))
		for _, s := range opts.Stages {
			cfg.Stages = append(cfg.Stages, config.StageName(strings.TrimSpace(s)))
		}
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		formatter := newFormatter(opts.RootOptions, cmd)
		_ = formatter.Error(errs[0].Code, errs[0].Message, errs)
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid config: %d error(s)", len(errs)))
	}

	runner := opts.Runner
	if runner == nil {
		runner = &pipeline.ExecRunner{
			Dir:    opts.Dir,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}
	}

	p := pipeline.New(cfg, runner)
	p.Dir = opts.Dir
	if opts.IDGen != nil {
		p.IDGen = opts.IDGen
	}

	if opts.Journal != "" {
		slog.Debug("opening journal", "path", opts.Journal)
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		p.Recorder = j
	}

	// Setup signal handling: a signal cancels the running stage's
	// subprocess and the pipeline reports the interrupted stage.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, aborting pipeline", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	result, runErr := p.Run(ctx)
	if result == nil {
		return WrapExitError(ExitCommandError, "pipeline could not start", runErr)
	}

	return outputRunResult(opts, result, runErr, cmd)
}

// outputRunResult renders the run in the configured format. The program's
// exit status, when the exec stage ran, is the last line of text output,
// printed as a bare integer.
func outputRunResult(opts *RunOptions, result *pipeline.RunResult, runErr error, cmd *cobra.Command) error {
	if opts.Format == "json" {
		formatter := newFormatter(opts.RootOptions, cmd)
		if runErr != nil {
			_ = formatter.Error(ErrCodeStageFailed, runErr.Error(), result)
			return NewExitError(ExitFailure, runErr.Error())
		}
		if err := formatter.Success(result); err != nil {
			return err
		}
		return nil
	}

	out := cmd.OutOrStdout()
	for _, sr := range result.Stages {
		switch sr.State {
		case pipeline.StateSucceeded:
			fmt.Fprintf(out, "✓ %s\n", sr.Stage)
		case pipeline.StateFailed:
			fmt.Fprintf(out, "✗ %s: %s\n", sr.Stage, sr.Detail)
		case pipeline.StateSkipped:
			fmt.Fprintf(out, "- %s (skipped)\n", sr.Stage)
		}
	}

	if runErr != nil {
		fmt.Fprintf(out, "\npipeline aborted at stage %s\n", pipeline.FailedStage(runErr))
		return NewExitError(ExitFailure, runErr.Error())
	}

	if result.ProgramExited {
		fmt.Fprintf(out, "%d\n", result.ProgramExit)
	}
	return nil
}

// newFormatter builds the standard output formatter for a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
