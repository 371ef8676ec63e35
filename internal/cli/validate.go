package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morninglang/mornc/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Errors   []config.ValidationError `json:"errors,omitempty"`
	Warnings []config.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-dir]",
		Short: "Validate a pipeline configuration",
		Long: `Validate the pipeline configuration without running anything.

Checks that every stage names a command, every artifact path is sane,
and the enabled-stage list is well-formed. Warns about enabled stages
whose producer stage is disabled: those will consume whatever artifact a
previous run left behind.

Exit codes:
  0 - Config valid (warnings allowed)
  1 - Validation errors found
  2 - Command error (directory missing, CUE fails to load)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := LoadConfig(configDir)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	result := ValidationResult{
		Errors:   config.Validate(cfg),
		Warnings: config.Warnings(cfg),
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !result.Valid {
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
		}
		return nil
	}

	if result.Valid {
		fmt.Fprintln(formatter.Writer, "✓ Config valid")
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, e := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s: %s\n", w.Code, w.Message)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}
