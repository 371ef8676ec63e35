package config

// StageName identifies one of the four pipeline stages.
type StageName string

const (
	// StageBuild compiles the toolchain itself from source.
	StageBuild StageName = "build"

	// StageLower runs the toolchain executable to emit the IR file.
	StageLower StageName = "lower"

	// StageNative invokes the native compiler on the IR file.
	StageNative StageName = "native"

	// StageExec runs the produced native executable.
	StageExec StageName = "exec"
)

// StageOrder is the fixed execution order of the pipeline.
// The enabled-stage list selects a subset; it never reorders.
var StageOrder = []StageName{StageBuild, StageLower, StageNative, StageExec}

// KnownStage reports whether name is one of the four pipeline stages.
func KnownStage(name StageName) bool {
	for _, s := range StageOrder {
		if s == name {
			return true
		}
	}
	return false
}

// Producer returns the stage that produces the artifact the given stage
// consumes, or "" if the stage has no upstream artifact dependency.
func Producer(name StageName) StageName {
	switch name {
	case StageLower:
		return StageBuild
	case StageNative:
		return StageLower
	case StageExec:
		return StageNative
	default:
		return ""
	}
}

// BuildStage describes the external build procedure that compiles the
// toolchain from source.
type BuildStage struct {
	// Command is the build program, e.g. "bash".
	Command string `json:"command"`

	// Args are passed verbatim, e.g. ["build.sh", "all"].
	Args []string `json:"args,omitempty"`

	// Produces is the path where the toolchain executable appears.
	Produces string `json:"produces"`
}

// LowerStage describes the lowering run of the toolchain executable.
// By convention the toolchain reads an implicit input program and writes
// the IR file as a side effect.
type LowerStage struct {
	// Command is the toolchain executable. Defaults to Build.Produces.
	Command string `json:"command"`

	// Args are passed verbatim. The morninglang convention is none.
	Args []string `json:"args,omitempty"`

	// Produces is the path where the IR file appears.
	Produces string `json:"produces"`
}

// NativeStage describes the native compiler invocation that turns the IR
// file into a platform executable.
type NativeStage struct {
	// Command is the native compiler, e.g. "clang++".
	Command string `json:"command"`

	// Optimize is the optimization flag, e.g. "-O3". Empty disables it.
	Optimize string `json:"optimize,omitempty"`

	// Include is an include directory passed as -I<dir>. Empty disables it.
	Include string `json:"include,omitempty"`

	// Libs are link libraries passed as -l<lib>, e.g. ["gc"].
	Libs []string `json:"libs,omitempty"`

	// Output is the path of the native executable, passed via -o.
	Output string `json:"output"`
}

// ExecStage describes the final run of the native executable.
type ExecStage struct {
	// Command is the program to run. Defaults to Native.Output.
	Command string `json:"command"`

	// Args are passed verbatim. The morninglang convention is none.
	Args []string `json:"args,omitempty"`
}

// Config is the resolved pipeline configuration. Every artifact path is
// named exactly once; stages reference them through their stage views.
type Config struct {
	Build  BuildStage  `json:"build"`
	Lower  LowerStage  `json:"lower"`
	Native NativeStage `json:"native"`
	Exec   ExecStage   `json:"exec"`

	// Stages lists the enabled stages. Order is normalized to StageOrder
	// by Enabled(); Validate rejects unknown and duplicate names.
	Stages []StageName `json:"stages"`
}

// Default returns the morninglang conventions: the exact commands, flags
// and artifact paths of the original driver, with all four stages enabled.
func Default() *Config {
	return &Config{
		Build: BuildStage{
			Command:  "bash",
			Args:     []string{"build.sh", "all"},
			Produces: "build/bin/morninglang",
		},
		Lower: LowerStage{
			Command:  "./build/bin/morninglang",
			Produces: "out.ll",
		},
		Native: NativeStage{
			Command:  "clang++",
			Optimize: "-O3",
			Include:  "gc",
			Libs:     []string{"gc"},
			Output:   "out.bin",
		},
		Exec: ExecStage{
			Command: "./out.bin",
		},
		Stages: []StageName{StageBuild, StageLower, StageNative, StageExec},
	}
}

// IsEnabled reports whether the named stage is in the enabled list.
func (c *Config) IsEnabled(name StageName) bool {
	for _, s := range c.Stages {
		if s == name {
			return true
		}
	}
	return false
}

// Enabled returns the enabled stages in fixed execution order.
func (c *Config) Enabled() []StageName {
	var out []StageName
	for _, s := range StageOrder {
		if c.IsEnabled(s) {
			out = append(out, s)
		}
	}
	return out
}

// NativeArgs assembles the native compiler argument list in the
// conventional order: optimization flag, include path, link libraries,
// IR input, then the output path.
func (c *Config) NativeArgs() []string {
	var args []string
	if c.Native.Optimize != "" {
		args = append(args, c.Native.Optimize)
	}
	if c.Native.Include != "" {
		args = append(args, "-I"+c.Native.Include)
	}
	for _, lib := range c.Native.Libs {
		args = append(args, "-l"+lib)
	}
	args = append(args, c.Lower.Produces, "-o", c.Native.Output)
	return args
}
