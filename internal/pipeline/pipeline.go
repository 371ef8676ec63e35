package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/morninglang/mornc/internal/config"
)

// Run states recorded in the journal for a whole run.
const (
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
)

// Recorder persists run and stage records. The journal package provides
// the SQLite implementation; a nil Recorder disables recording.
type Recorder interface {
	BeginRun(ctx context.Context, runID, fingerprint string, startedAt time.Time) error
	RecordStage(ctx context.Context, runID string, res StageResult) error
	FinishRun(ctx context.Context, runID, state string, programExit int, programExited bool) error
}

// Pipeline drives the four stages against a resolved configuration.
//
// Fields may be overridden between New and Run; this mirrors how tests
// substitute scripted runners, fixed run IDs and in-memory recorders.
type Pipeline struct {
	Config *config.Config
	Runner CommandRunner

	// IDGen produces the run identifier. Defaults to UUIDv7Generator.
	IDGen RunIDGenerator

	// Recorder receives run and stage records. Nil disables the journal.
	Recorder Recorder

	// Clock stamps stage results with logical seq numbers.
	Clock *Clock

	// Dir is the working directory used for artifact existence checks.
	// Empty means the driver's own working directory. The Runner carries
	// its own working directory; keep the two in agreement.
	Dir string
}

// New creates a pipeline with default run ID generation and a fresh clock.
func New(cfg *config.Config, runner CommandRunner) *Pipeline {
	return &Pipeline{
		Config: cfg,
		Runner: runner,
		IDGen:  UUIDv7Generator{},
		Clock:  NewClock(),
	}
}

// Run executes the enabled stages in order and returns the run's result.
//
// The returned error is non-nil exactly when a stage failed (or the
// context was cancelled); it wraps a *StageError naming the first failing
// stage. The RunResult is returned in both cases and accounts for every
// planned stage, including the ones skipped after a failure.
//
// A non-zero exit from the exec stage's program is not a failure: the
// program's exit status is the pipeline's result and is reported through
// RunResult.ProgramExit.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	fingerprint, err := config.Fingerprint(p.Config)
	if err != nil {
		return nil, fmt.Errorf("resolve config identity: %w", err)
	}

	result := &RunResult{
		RunID:       p.IDGen.Generate(),
		Fingerprint: fingerprint,
	}

	// Journal writes outlive cancellation: an interrupted run must still
	// leave a complete record behind.
	jctx := context.WithoutCancel(ctx)

	if p.Recorder != nil {
		if err := p.Recorder.BeginRun(jctx, result.RunID, fingerprint, time.Now()); err != nil {
			return nil, fmt.Errorf("journal begin run: %w", err)
		}
	}

	slog.Info("pipeline starting",
		"run_id", result.RunID,
		"stages", p.Config.Enabled(),
		"fingerprint", fingerprint[:12])

	plan := Plan(p.Config)
	var failure *StageError

	for i, stage := range plan {
		if failure != nil || !p.Config.IsEnabled(stage.Name) {
			res := p.skip(stage)
			result.Stages = append(result.Stages, res)
			if err := p.record(jctx, result.RunID, res); err != nil {
				return result, err
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			failure = NewLaunchError(stage, fmt.Errorf("cancelled: %w", err))
			res := p.fail(stage, failure)
			result.Stages = append(result.Stages, res)
			if err := p.record(jctx, result.RunID, res); err != nil {
				return result, err
			}
			continue
		}

		res, stageErr := p.runStage(ctx, stage)
		result.Stages = append(result.Stages, res)
		if err := p.record(jctx, result.RunID, res); err != nil {
			return result, err
		}

		if stageErr != nil {
			failure = stageErr
			slog.Error("stage failed",
				"run_id", result.RunID,
				"stage", stage.Name,
				"exit_code", res.ExitCode,
				"remaining", len(plan)-i-1)
			continue
		}

		if stage.Name == config.StageExec {
			result.ProgramExited = true
			result.ProgramExit = res.ExitCode
		}
	}

	state := RunSucceeded
	if failure != nil {
		state = RunFailed
	}
	if p.Recorder != nil {
		if err := p.Recorder.FinishRun(jctx, result.RunID, state, result.ProgramExit, result.ProgramExited); err != nil {
			return result, fmt.Errorf("journal finish run: %w", err)
		}
	}

	if failure != nil {
		return result, fmt.Errorf("pipeline aborted: %w", failure)
	}

	slog.Info("pipeline finished",
		"run_id", result.RunID,
		"program_exited", result.ProgramExited,
		"program_exit", result.ProgramExit)
	return result, nil
}

// runStage executes one enabled stage and classifies its outcome.
func (p *Pipeline) runStage(ctx context.Context, stage Stage) (StageResult, *StageError) {
	if stage.Requires != "" {
		if _, err := os.Stat(p.resolve(stage.Requires)); err != nil {
			stageErr := NewArtifactError(stage, stage.Requires)
			return p.fail(stage, stageErr), stageErr
		}
	}

	slog.Debug("stage starting", "stage", stage.Name, "command", stage.Command, "args", stage.Args)
	start := time.Now()
	code, err := p.Runner.Run(ctx, stage.Command, stage.Args...)
	elapsed := time.Since(start)

	if err != nil {
		stageErr := NewLaunchError(stage, err)
		res := p.fail(stage, stageErr)
		res.Duration = elapsed
		return res, stageErr
	}

	// The program's own exit status is a result, not a failure.
	if code != 0 && stage.Name != config.StageExec {
		stageErr := NewExitError(stage, code)
		res := p.fail(stage, stageErr)
		res.ExitCode = code
		res.Duration = elapsed
		return res, stageErr
	}

	slog.Debug("stage finished", "stage", stage.Name, "exit_code", code, "duration", elapsed)
	return StageResult{
		Stage:    stage.Name,
		Seq:      p.Clock.Next(),
		State:    StateSucceeded,
		ExitCode: code,
		Duration: elapsed,
	}, nil
}

func (p *Pipeline) skip(stage Stage) StageResult {
	return StageResult{
		Stage:    stage.Name,
		Seq:      p.Clock.Next(),
		State:    StateSkipped,
		ExitCode: -1,
	}
}

func (p *Pipeline) fail(stage Stage, stageErr *StageError) StageResult {
	return StageResult{
		Stage:    stage.Name,
		Seq:      p.Clock.Next(),
		State:    StateFailed,
		ExitCode: stageErr.ExitCode,
		Detail:   stageErr.Error(),
	}
}

func (p *Pipeline) record(ctx context.Context, runID string, res StageResult) error {
	if p.Recorder == nil {
		return nil
	}
	if err := p.Recorder.RecordStage(ctx, runID, res); err != nil {
		return fmt.Errorf("journal record stage %s: %w", res.Stage, err)
	}
	return nil
}

func (p *Pipeline) resolve(path string) string {
	if p.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}
