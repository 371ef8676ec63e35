package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateDefaultIsClean(t *testing.T) {
	assert.Empty(t, Validate(Default()))
	assert.Empty(t, Warnings(Default()))
}

func TestValidateEmptyCommand(t *testing.T) {
	cfg := Default()
	cfg.Native.Command = "  "

	errs := Validate(cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEmptyCommand, errs[0].Code)
	assert.Equal(t, "native.command", errs[0].Field)
}

func TestValidateEmptyArtifact(t *testing.T) {
	cfg := Default()
	cfg.Lower.Produces = ""

	errs := Validate(cfg)
	assert.Contains(t, codes(errs), ErrEmptyArtifact)
}

func TestValidateEscapingArtifactPaths(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		escapes bool
	}{
		{"plain relative", "out.bin", false},
		{"subdirectory", "build/bin/morninglang", false},
		{"upward", "../out.bin", true},
		{"bare parent", "..", true},
		{"hidden upward", "foo/../../x", true},
		{"absolute", "/tmp/out.bin", true},
		{"dotdot prefix name", "..out.bin", false},
		{"internal dotdot resolving inside", "foo/../out.bin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Native.Output = tt.path

			errs := Validate(cfg)
			if tt.escapes {
				assert.Contains(t, codes(errs), ErrAbsoluteUpward)
			} else {
				assert.NotContains(t, codes(errs), ErrAbsoluteUpward)
			}
		})
	}
}

func TestValidateStagesList(t *testing.T) {
	tests := []struct {
		name   string
		stages []StageName
		want   string
	}{
		{"unknown stage", []StageName{StageBuild, "link"}, ErrUnknownStage},
		{"duplicate stage", []StageName{StageBuild, StageBuild}, ErrDuplicateStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Stages = tt.stages

			errs := Validate(cfg)
			require.NotEmpty(t, errs)
			assert.Contains(t, codes(errs), tt.want)
		})
	}
}

func TestWarningsMissingProducer(t *testing.T) {
	cfg := Default()
	cfg.Stages = []StageName{StageNative, StageExec}

	warns := Warnings(cfg)
	// native without lower; exec's producer (native) is enabled.
	require.Len(t, warns, 1)
	assert.Equal(t, WarnMissingProducer, warns[0].Code)
	assert.Contains(t, warns[0].Message, `"native"`)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "build.command", Message: "command is required", Code: ErrEmptyCommand}
	assert.Equal(t, "[E101] build.command: command is required", err.Error())
}
