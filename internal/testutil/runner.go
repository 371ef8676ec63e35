// Package testutil provides scripted stand-ins for the pipeline's
// external collaborators, used across package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Outcome scripts the result of running one command.
type Outcome struct {
	// ExitCode is returned as the subprocess exit code.
	ExitCode int

	// Err, when set, simulates a launch failure (missing binary,
	// not executable). ExitCode is ignored in that case.
	Err error

	// Creates lists files the "subprocess" leaves behind, relative to
	// Dir. This models the side-effect contract of the real stages:
	// the build drops the toolchain binary, lowering drops the IR file.
	Creates []string
}

// ScriptedRunner implements pipeline.CommandRunner with predetermined
// outcomes keyed by command name. Commands without a script succeed with
// exit code 0 and no side effects.
//
// Thread-safety: safe for concurrent use, though the pipeline itself is
// strictly sequential.
type ScriptedRunner struct {
	// Dir anchors relative paths in Creates.
	Dir string

	// Outcomes maps a command (as invoked, e.g. "./out.bin") to its
	// scripted result.
	Outcomes map[string]Outcome

	mu    sync.Mutex
	calls []string
}

// Run returns the scripted outcome for the command, creating any declared
// side-effect files first.
func (r *ScriptedRunner) Run(ctx context.Context, command string, args ...string) (int, error) {
	r.mu.Lock()
	cmdline := command
	if len(args) > 0 {
		cmdline += " " + strings.Join(args, " ")
	}
	r.calls = append(r.calls, cmdline)
	r.mu.Unlock()

	out, ok := r.Outcomes[command]
	if !ok {
		return 0, nil
	}
	if out.Err != nil {
		return -1, out.Err
	}

	for _, rel := range out.Creates {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.Dir, rel)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return -1, err
		}
		if err := os.WriteFile(path, []byte(command+"\n"), 0o755); err != nil {
			return -1, err
		}
	}

	return out.ExitCode, nil
}

// Calls returns the recorded command lines in invocation order.
func (r *ScriptedRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}
