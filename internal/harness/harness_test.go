package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morninglang/mornc/internal/pipeline"
)

func TestScenarioGoldens(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no scenario files found")

	for _, file := range files {
		s, err := LoadScenario(file)
		require.NoError(t, err, "loading %s", file)

		t.Run(s.Name, func(t *testing.T) {
			RunWithGolden(t, s, t.TempDir())
		})
	}
}

func TestRunUnknownStage(t *testing.T) {
	s := &Scenario{
		Name:   "bad",
		Stages: map[string]StageScript{"linker": {Exit: 0}},
	}

	_, err := Run(s, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestRunLaunchError(t *testing.T) {
	s := &Scenario{
		Name: "launch-error",
		Stages: map[string]StageScript{
			"build": {LaunchError: "bash: command not found"},
		},
	}

	res, err := Run(s, t.TempDir())
	require.NoError(t, err)
	require.Error(t, res.Err)
	assert.Equal(t, "build", string(pipeline.FailedStage(res.Err)))
	assert.Contains(t, res.Err.Error(), "command not found")
}

func TestRunPreexistingArtifacts(t *testing.T) {
	exit := 7
	s := &Scenario{
		Name:        "stale-binary",
		Enabled:     []string{"exec"},
		Preexisting: []string{"out.bin"},
		Stages: map[string]StageScript{
			"exec": {Exit: exit},
		},
		Expect: Expectation{
			ProgramExit: &exit,
			States: map[string]string{
				"build": "SKIPPED", "lower": "SKIPPED",
				"native": "SKIPPED", "exec": "SUCCEEDED",
			},
		},
	}

	res, err := Run(s, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Empty(t, Verify(s, res))
	assert.True(t, res.Run.ProgramExited)
	assert.Equal(t, 7, res.Run.ProgramExit)
}

func TestVerifyDetectsMismatches(t *testing.T) {
	s := &Scenario{
		Name: "expect-success",
		Stages: map[string]StageScript{
			"build": {Exit: 1},
		},
		Expect: Expectation{
			Failed: false,
			States: map[string]string{"build": "SUCCEEDED"},
		},
	}

	res, err := Run(s, t.TempDir())
	require.NoError(t, err)

	errs := Verify(s, res)
	require.NotEmpty(t, errs)
	// Both the failure flag and the build state should mismatch.
	assert.GreaterOrEqual(t, len(errs), 2)
}

func TestLoadScenarioMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: nameless\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenarioBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
}
