package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	out, err := executeCommand(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Config valid")
}

func TestValidateReportsErrors(t *testing.T) {
	dir := writeConfigDir(t, `package pipeline

pipeline: build: command: ""
`)
	out, err := executeCommand(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "build.command")
}

func TestValidateWarnsAboutStaleArtifacts(t *testing.T) {
	dir := writeConfigDir(t, `package pipeline

pipeline: stages: ["native", "exec"]
`)
	out, err := executeCommand(t, "validate", dir)
	require.NoError(t, err, "warnings do not fail validation")
	assert.Contains(t, out, "✓ Config valid")
	assert.Contains(t, out, "warning E110")
}

func TestValidateJSON(t *testing.T) {
	dir := writeConfigDir(t, `package pipeline

pipeline: build: command: "  "
`)
	out, err := executeCommand(t, "validate", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])
}

func TestValidateBadConfigDir(t *testing.T) {
	out, err := executeCommand(t, "validate", "./does-not-exist")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}
