package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted pipeline run.
//
// Stage outcomes are keyed by stage name; stages without a script succeed
// with exit code 0 and leave no artifacts behind, which usually makes the
// next stage fail its artifact check. Script artifact side effects
// explicitly.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Enabled lists the enabled stages. Empty means all four.
	Enabled []string `yaml:"enabled,omitempty"`

	// Stages scripts each stage command's outcome.
	Stages map[string]StageScript `yaml:"stages,omitempty"`

	// Preexisting lists files present before the run starts, relative
	// to the scratch directory. Models stale artifacts from a previous
	// run.
	Preexisting []string `yaml:"preexisting,omitempty"`

	// Expect describes the run's expected outcome.
	Expect Expectation `yaml:"expect"`
}

// StageScript is the scripted outcome of one stage's subprocess.
type StageScript struct {
	// Exit is the subprocess exit code.
	Exit int `yaml:"exit"`

	// Creates lists artifact files the subprocess leaves behind.
	Creates []string `yaml:"creates,omitempty"`

	// LaunchError, when non-empty, simulates a failure to start the
	// subprocess at all. Exit and Creates are ignored.
	LaunchError string `yaml:"launch_error,omitempty"`
}

// Expectation is the asserted outcome of a scenario run.
type Expectation struct {
	// States maps stage name to expected terminal state
	// (SUCCEEDED, FAILED, SKIPPED).
	States map[string]string `yaml:"states,omitempty"`

	// Failed asserts whether the pipeline aborted.
	Failed bool `yaml:"failed"`

	// FailedStage names the expected first failing stage.
	FailedStage string `yaml:"failed_stage,omitempty"`

	// ProgramExit asserts the program's reported exit status.
	// Nil means the exec stage is expected not to report one.
	ProgramExit *int `yaml:"program_exit,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &s, nil
}

// FindScenarios returns all scenario YAML files under dir, sorted by path.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
