package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validation error codes (E100-E199).
const (
	ErrEmptyCommand    = "E101" // stage command is required
	ErrUnknownStage    = "E102" // stages list names an unknown stage
	ErrDuplicateStage  = "E103" // stages list repeats a stage
	ErrEmptyArtifact   = "E104" // artifact path is required
	ErrAbsoluteUpward  = "E105" // artifact path escapes the working directory

	// Warning codes (E110-E119). Warnings never fail validation; they
	// flag configurations that will reuse stale artifacts from a
	// previous run.
	WarnMissingProducer = "E110" // stage enabled without its producer stage
)

// ValidationError represents a configuration validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a Config for structural errors. Returns all errors
// found (does not fail-fast).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	commands := []struct {
		field string
		value string
	}{
		{"build.command", cfg.Build.Command},
		{"lower.command", cfg.Lower.Command},
		{"native.command", cfg.Native.Command},
		{"exec.command", cfg.Exec.Command},
	}
	for _, c := range commands {
		if strings.TrimSpace(c.value) == "" {
			errs = append(errs, ValidationError{
				Field:   c.field,
				Message: "command is required and must be non-empty",
				Code:    ErrEmptyCommand,
			})
		}
	}

	artifacts := []struct {
		field string
		value string
	}{
		{"build.produces", cfg.Build.Produces},
		{"lower.produces", cfg.Lower.Produces},
		{"native.output", cfg.Native.Output},
	}
	for _, a := range artifacts {
		if strings.TrimSpace(a.value) == "" {
			errs = append(errs, ValidationError{
				Field:   a.field,
				Message: "artifact path is required and must be non-empty",
				Code:    ErrEmptyArtifact,
			})
			continue
		}
		if escapesWorkingDir(a.value) {
			errs = append(errs, ValidationError{
				Field:   a.field,
				Message: fmt.Sprintf("artifact path %q escapes the working directory", a.value),
				Code:    ErrAbsoluteUpward,
			})
		}
	}

	seen := map[StageName]bool{}
	for _, s := range cfg.Stages {
		if !KnownStage(s) {
			errs = append(errs, ValidationError{
				Field:   "stages",
				Message: fmt.Sprintf("unknown stage %q (known: build, lower, native, exec)", s),
				Code:    ErrUnknownStage,
			})
			continue
		}
		if seen[s] {
			errs = append(errs, ValidationError{
				Field:   "stages",
				Message: fmt.Sprintf("stage %q listed more than once", s),
				Code:    ErrDuplicateStage,
			})
		}
		seen[s] = true
	}

	return errs
}

// escapesWorkingDir reports whether an artifact path resolves outside the
// working directory: absolute, or climbing above it after cleaning.
func escapesWorkingDir(path string) bool {
	if filepath.IsAbs(path) {
		return true
	}
	clean := filepath.Clean(path)
	return clean == ".." || strings.HasPrefix(clean, "../")
}

// Warnings reports non-fatal findings: enabled stages whose producer
// stage is disabled will consume whatever artifact a previous run left
// behind.
func Warnings(cfg *Config) []ValidationError {
	var warns []ValidationError
	for _, s := range cfg.Enabled() {
		p := Producer(s)
		if p == "" || cfg.IsEnabled(p) {
			continue
		}
		warns = append(warns, ValidationError{
			Field:   "stages",
			Message: fmt.Sprintf("stage %q is enabled but its producer %q is not; a stale artifact from a previous run will be consumed", s, p),
			Code:    WarnMissingProducer,
		})
	}
	return warns
}
