package pipeline

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// CommandRunner abstracts subprocess execution so the pipeline can be
// exercised with scripted runners in tests.
//
// Run blocks until the subprocess terminates. It returns the exit code and
// a nil error when the subprocess ran to completion, regardless of whether
// the code is zero; interpreting the code is the caller's job. A non-nil
// error means the subprocess could not be started (missing binary, not
// executable, context cancelled) and the exit code is -1.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (int, error)
}

// ExecRunner runs commands via os/exec in a fixed working directory, with
// subprocess stdout and stderr wired through to the given writers. This is
// the production runner: collaborators stay opaque, their output goes
// straight to the operator.
type ExecRunner struct {
	// Dir is the working directory for every command. Empty means the
	// driver's own working directory.
	Dir string

	// Stdout and Stderr receive the subprocess output. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command and blocks until it terminates.
func (r *ExecRunner) Run(ctx context.Context, command string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		// A cancelled context kills the child, and Wait reports the
		// signal death as an ExitError. Report the cancellation, not a
		// fake exit code.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The subprocess ran and exited non-zero.
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
