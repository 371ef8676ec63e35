package pipeline

import (
	"bytes"
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunnerZeroExit(t *testing.T) {
	skipWithoutShell(t)

	r := &ExecRunner{}
	code, err := r.Run(context.Background(), "sh", "-c", "exit 0")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	skipWithoutShell(t)

	r := &ExecRunner{}
	code, err := r.Run(context.Background(), "sh", "-c", "exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{}
	code, err := r.Run(context.Background(), "./definitely-not-a-binary")
	require.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestExecRunnerWorkingDirectory(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	r := &ExecRunner{Dir: dir, Stdout: &stdout}

	code, err := r.Run(context.Background(), "pwd")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), dir)
}

func TestExecRunnerOutputWiring(t *testing.T) {
	skipWithoutShell(t)

	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	code, err := r.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecRunnerCancelledContext(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &ExecRunner{}
	code, err := r.Run(ctx, "sh", "-c", "sleep 10")
	require.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestExecRunnerCancelledMidRun(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := &ExecRunner{}
	code, err := r.Run(ctx, "sh", "-c", "sleep 10")

	// The signal-killed child must surface as a cancellation, never as
	// a completed run with a synthetic exit code.
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, -1, code)
}
