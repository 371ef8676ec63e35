package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/morninglang/mornc/internal/config"
	"github.com/morninglang/mornc/internal/pipeline"
	"github.com/morninglang/mornc/internal/testutil"
)

// fixedRunID keeps transcripts deterministic for golden comparison.
const fixedRunID = "scenario-run"

// Result holds everything a scenario run produced.
type Result struct {
	Run *pipeline.RunResult

	// Err is the pipeline's returned error (nil unless a stage failed).
	Err error

	// Calls are the command lines the pipeline actually invoked.
	Calls []string
}

// Run executes a scenario in the given scratch directory.
//
// The pipeline runs against the default morninglang configuration with
// the scenario's enabled-stage list applied, so scenarios exercise the
// exact conventional command lines.
func Run(s *Scenario, dir string) (*Result, error) {
	cfg := config.Default()
	if s.Enabled != nil {
		cfg.Stages = make([]config.StageName, 0, len(s.Enabled))
		for _, name := range s.Enabled {
			cfg.Stages = append(cfg.Stages, config.StageName(name))
		}
	}

	for _, rel := range s.Preexisting {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("scenario setup: %w", err)
		}
		if err := os.WriteFile(path, []byte("preexisting\n"), 0o755); err != nil {
			return nil, fmt.Errorf("scenario setup: %w", err)
		}
	}

	outcomes, err := scriptOutcomes(s, cfg)
	if err != nil {
		return nil, err
	}

	runner := &testutil.ScriptedRunner{Dir: dir, Outcomes: outcomes}
	p := pipeline.New(cfg, runner)
	p.Dir = dir
	p.IDGen = pipeline.NewFixedGenerator(fixedRunID)

	run, runErr := p.Run(context.Background())
	return &Result{Run: run, Err: runErr, Calls: runner.Calls()}, nil
}

// scriptOutcomes maps the scenario's per-stage scripts onto the commands
// the pipeline will actually invoke.
func scriptOutcomes(s *Scenario, cfg *config.Config) (map[string]testutil.Outcome, error) {
	commands := map[string]string{
		string(config.StageBuild):  cfg.Build.Command,
		string(config.StageLower):  cfg.Lower.Command,
		string(config.StageNative): cfg.Native.Command,
		string(config.StageExec):   cfg.Exec.Command,
	}

	outcomes := make(map[string]testutil.Outcome, len(s.Stages))
	for stage, script := range s.Stages {
		command, ok := commands[stage]
		if !ok {
			return nil, fmt.Errorf("scenario %s: unknown stage %q", s.Name, stage)
		}
		out := testutil.Outcome{
			ExitCode: script.Exit,
			Creates:  script.Creates,
		}
		if script.LaunchError != "" {
			out.Err = errors.New(script.LaunchError)
		}
		outcomes[command] = out
	}
	return outcomes, nil
}

// Verify checks a result against the scenario's expectations and returns
// every mismatch found.
func Verify(s *Scenario, res *Result) []error {
	var errs []error

	if s.Expect.Failed != (res.Err != nil) {
		errs = append(errs, fmt.Errorf("scenario %s: failed=%v, want %v (err: %v)",
			s.Name, res.Err != nil, s.Expect.Failed, res.Err))
	}

	if s.Expect.FailedStage != "" {
		got := pipeline.FailedStage(res.Err)
		if string(got) != s.Expect.FailedStage {
			errs = append(errs, fmt.Errorf("scenario %s: failed stage %q, want %q",
				s.Name, got, s.Expect.FailedStage))
		}
	}

	states := make(map[string]pipeline.StageState, len(res.Run.Stages))
	for _, sr := range res.Run.Stages {
		states[string(sr.Stage)] = sr.State
	}
	for stage, want := range s.Expect.States {
		if got := string(states[stage]); got != want {
			errs = append(errs, fmt.Errorf("scenario %s: stage %s state %q, want %q",
				s.Name, stage, got, want))
		}
	}

	if s.Expect.ProgramExit != nil {
		if !res.Run.ProgramExited {
			errs = append(errs, fmt.Errorf("scenario %s: program did not run, want exit %d",
				s.Name, *s.Expect.ProgramExit))
		} else if res.Run.ProgramExit != *s.Expect.ProgramExit {
			errs = append(errs, fmt.Errorf("scenario %s: program exit %d, want %d",
				s.Name, res.Run.ProgramExit, *s.Expect.ProgramExit))
		}
	} else if res.Run.ProgramExited {
		errs = append(errs, fmt.Errorf("scenario %s: program ran unexpectedly (exit %d)",
			s.Name, res.Run.ProgramExit))
	}

	return errs
}
