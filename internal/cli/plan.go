package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morninglang/mornc/internal/config"
	"github.com/morninglang/mornc/internal/pipeline"
)

// PlanResult holds the resolved pipeline for output.
type PlanResult struct {
	Fingerprint string      `json:"fingerprint"`
	Stages      []PlanStage `json:"stages"`
}

// PlanStage is one stage of the resolved plan.
type PlanStage struct {
	Stage    string `json:"stage"`
	Enabled  bool   `json:"enabled"`
	Command  string `json:"command"`
	Requires string `json:"requires,omitempty"`
	Produces string `json:"produces,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [config-dir]",
		Short: "Show the resolved pipeline without running it",
		Long: `Resolve the configuration and print the pipeline that run would
execute: each stage's command line, the artifacts it consumes and
produces, and the config fingerprint.

Two invocations printing the same fingerprint will execute identical
pipelines; the journal records the fingerprint per run, so idempotent
re-runs are detectable after the fact.

Examples:
  mornc plan
  mornc plan ./config --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runPlan(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runPlan(opts *RootOptions, configDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := LoadConfig(configDir)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	fingerprint, err := config.Fingerprint(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fingerprint config", err)
	}

	result := PlanResult{Fingerprint: fingerprint}
	for _, stage := range pipeline.Plan(cfg) {
		cmdline := stage.Command
		if len(stage.Args) > 0 {
			cmdline += " " + strings.Join(stage.Args, " ")
		}
		result.Stages = append(result.Stages, PlanStage{
			Stage:    string(stage.Name),
			Enabled:  cfg.IsEnabled(stage.Name),
			Command:  cmdline,
			Requires: stage.Requires,
			Produces: stage.Produces,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	for _, s := range result.Stages {
		marker := "✓"
		if !s.Enabled {
			marker = "-"
		}
		fmt.Fprintf(formatter.Writer, "%s %-6s %s\n", marker, s.Stage, s.Command)
		if s.Requires != "" {
			fmt.Fprintf(formatter.Writer, "         requires %s\n", s.Requires)
		}
		if s.Produces != "" {
			fmt.Fprintf(formatter.Writer, "         produces %s\n", s.Produces)
		}
	}
	fmt.Fprintf(formatter.Writer, "\nfingerprint: %s\n", fingerprint)
	return nil
}

// loadErrorCode extracts the error code from a load error, defaulting to
// the generic code.
func loadErrorCode(err error) string {
	if le, ok := err.(*LoadError); ok {
		return le.Code
	}
	return ErrCodeGeneric
}
