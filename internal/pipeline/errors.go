package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/morninglang/mornc/internal/config"
)

// StageError represents a stage failure that halted the pipeline.
//
// Stage failures include:
//   - Non-zero exit: the subprocess ran and reported failure
//   - Missing artifact: a required input did not exist before launch
//   - Launch failure: the subprocess could not be started at all
type StageError struct {
	// Stage is the failing stage.
	Stage config.StageName

	// Command and Args are the attempted invocation.
	Command string
	Args    []string

	// ExitCode is the subprocess exit code, or -1 if it never ran.
	ExitCode int

	// Err is the underlying cause for launch and artifact failures.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	cmdline := e.Command
	if len(e.Args) > 0 {
		cmdline += " " + strings.Join(e.Args, " ")
	}
	if e.Err != nil {
		return fmt.Sprintf("stage %s failed: %v (command: %s)", e.Stage, e.Err, cmdline)
	}
	return fmt.Sprintf("stage %s failed: exit code %d (command: %s)", e.Stage, e.ExitCode, cmdline)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewExitError creates a StageError for a subprocess that exited non-zero.
func NewExitError(stage Stage, exitCode int) *StageError {
	return &StageError{
		Stage:    stage.Name,
		Command:  stage.Command,
		Args:     stage.Args,
		ExitCode: exitCode,
	}
}

// NewArtifactError creates a StageError for a missing required artifact.
func NewArtifactError(stage Stage, path string) *StageError {
	return &StageError{
		Stage:    stage.Name,
		Command:  stage.Command,
		Args:     stage.Args,
		ExitCode: -1,
		Err:      fmt.Errorf("required artifact missing: %s", path),
	}
}

// NewLaunchError creates a StageError for a subprocess that never started.
func NewLaunchError(stage Stage, err error) *StageError {
	return &StageError{
		Stage:    stage.Name,
		Command:  stage.Command,
		Args:     stage.Args,
		ExitCode: -1,
		Err:      err,
	}
}

// FailedStage extracts the failing stage name from an error chain.
// Returns "" if the error is not a StageError.
func FailedStage(err error) config.StageName {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
