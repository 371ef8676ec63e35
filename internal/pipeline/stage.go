package pipeline

import (
	"time"

	"github.com/morninglang/mornc/internal/config"
)

// Stage is a fully resolved pipeline stage: the command to run and the
// artifacts it consumes and produces. Artifact paths come from the Config;
// a stage never invents a path of its own.
type Stage struct {
	// Name is one of build, lower, native, exec.
	Name config.StageName

	// Command and Args form the subprocess invocation.
	Command string
	Args    []string

	// Requires is an artifact path that must exist before the stage
	// launches. Empty means the stage has no input artifact.
	Requires string

	// Produces is the artifact path the stage is expected to emit.
	// Empty means the stage produces no artifact (exec).
	Produces string
}

// Plan resolves a Config into all four stages in fixed execution order.
// Disabled stages are included; the pipeline records them as skipped so a
// run's result always accounts for every stage.
func Plan(cfg *config.Config) []Stage {
	return []Stage{
		{
			Name:     config.StageBuild,
			Command:  cfg.Build.Command,
			Args:     cfg.Build.Args,
			Produces: cfg.Build.Produces,
		},
		{
			Name:     config.StageLower,
			Command:  cfg.Lower.Command,
			Args:     cfg.Lower.Args,
			Requires: cfg.Build.Produces,
			Produces: cfg.Lower.Produces,
		},
		{
			Name:     config.StageNative,
			Command:  cfg.Native.Command,
			Args:     cfg.NativeArgs(),
			Requires: cfg.Lower.Produces,
			Produces: cfg.Native.Output,
		},
		{
			Name:     config.StageExec,
			Command:  cfg.Exec.Command,
			Args:     cfg.Exec.Args,
			Requires: cfg.Native.Output,
		},
	}
}

// StageState is the lifecycle state of a stage within one run.
type StageState string

const (
	StatePending   StageState = "PENDING"
	StateRunning   StageState = "RUNNING"
	StateSucceeded StageState = "SUCCEEDED"
	StateFailed    StageState = "FAILED"
	StateSkipped   StageState = "SKIPPED"
)

// StageResult records the outcome of one stage attempt.
type StageResult struct {
	// Stage is the stage name.
	Stage config.StageName `json:"stage"`

	// Seq is the logical clock stamp. Skipped stages are stamped too, so
	// the journal reads as a complete, ordered account of the run.
	Seq int64 `json:"seq"`

	// State is the terminal state: SUCCEEDED, FAILED or SKIPPED.
	State StageState `json:"state"`

	// ExitCode is the subprocess exit code. -1 when the subprocess never
	// ran (skipped, missing artifact, launch failure).
	ExitCode int `json:"exit_code"`

	// Duration is wall time spent in the subprocess. Informational only,
	// never used for ordering.
	Duration time.Duration `json:"duration_ns"`

	// Detail carries the failure diagnostic for FAILED stages.
	Detail string `json:"detail,omitempty"`
}

// RunResult is the outcome of one full pipeline run.
type RunResult struct {
	// RunID identifies the run (UUIDv7, time-sortable).
	RunID string `json:"run_id"`

	// Fingerprint is the canonical identity of the effective config.
	Fingerprint string `json:"fingerprint"`

	// Stages holds one result per planned stage, in execution order.
	Stages []StageResult `json:"stages"`

	// ProgramExited is true when the exec stage ran the program.
	ProgramExited bool `json:"program_exited"`

	// ProgramExit is the program's own exit status, the pipeline's final
	// visible output. Meaningful only when ProgramExited is true.
	ProgramExit int `json:"program_exit"`
}

// Failed returns the first failed stage result, or nil if no stage failed.
func (r *RunResult) Failed() *StageResult {
	for i := range r.Stages {
		if r.Stages[i].State == StateFailed {
			return &r.Stages[i]
		}
	}
	return nil
}
