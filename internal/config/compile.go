package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Compile parses a CUE value into a Config. The value should be the
// pipeline struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`pipeline: { ... }`)
//	cfg, err := config.Compile(v.LookupPath(cue.ParsePath("pipeline")))
//
// Fields absent from the CUE value keep their Default() values, so a
// configuration only needs to name what it changes. An explicitly empty
// stages list disables every stage; omitting it enables all four.
func Compile(v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := Default()

	if bv := v.LookupPath(cue.ParsePath("build")); bv.Exists() {
		if err := compileBuild(bv, &cfg.Build); err != nil {
			return nil, err
		}
	}
	if lv := v.LookupPath(cue.ParsePath("lower")); lv.Exists() {
		if err := compileLower(lv, &cfg.Lower); err != nil {
			return nil, err
		}
	}
	if nv := v.LookupPath(cue.ParsePath("native")); nv.Exists() {
		if err := compileNative(nv, &cfg.Native); err != nil {
			return nil, err
		}
	}
	if ev := v.LookupPath(cue.ParsePath("exec")); ev.Exists() {
		if err := compileExec(ev, &cfg.Exec); err != nil {
			return nil, err
		}
	}

	// A stage command defaults to the artifact its producer stage emits.
	// An explicit command in the config always wins.
	if !fieldSet(v, "lower.command") {
		cfg.Lower.Command = "./" + cfg.Build.Produces
	}
	if !fieldSet(v, "exec.command") {
		cfg.Exec.Command = "./" + cfg.Native.Output
	}

	if sv := v.LookupPath(cue.ParsePath("stages")); sv.Exists() {
		names, err := stringList(sv, "stages")
		if err != nil {
			return nil, err
		}
		cfg.Stages = make([]StageName, 0, len(names))
		for _, n := range names {
			cfg.Stages = append(cfg.Stages, StageName(n))
		}
	}

	return cfg, nil
}

func compileBuild(v cue.Value, out *BuildStage) error {
	var err error
	if out.Command, err = stringField(v, "command", out.Command); err != nil {
		return err
	}
	if av := v.LookupPath(cue.ParsePath("args")); av.Exists() {
		if out.Args, err = stringList(av, "build.args"); err != nil {
			return err
		}
	}
	if out.Produces, err = stringField(v, "produces", out.Produces); err != nil {
		return err
	}
	return nil
}

func compileLower(v cue.Value, out *LowerStage) error {
	var err error
	if out.Command, err = stringField(v, "command", out.Command); err != nil {
		return err
	}
	if av := v.LookupPath(cue.ParsePath("args")); av.Exists() {
		if out.Args, err = stringList(av, "lower.args"); err != nil {
			return err
		}
	}
	if out.Produces, err = stringField(v, "produces", out.Produces); err != nil {
		return err
	}
	return nil
}

func compileNative(v cue.Value, out *NativeStage) error {
	var err error
	if out.Command, err = stringField(v, "command", out.Command); err != nil {
		return err
	}
	if out.Optimize, err = stringField(v, "optimize", out.Optimize); err != nil {
		return err
	}
	if out.Include, err = stringField(v, "include", out.Include); err != nil {
		return err
	}
	if lv := v.LookupPath(cue.ParsePath("libs")); lv.Exists() {
		if out.Libs, err = stringList(lv, "native.libs"); err != nil {
			return err
		}
	}
	if out.Output, err = stringField(v, "output", out.Output); err != nil {
		return err
	}
	return nil
}

func compileExec(v cue.Value, out *ExecStage) error {
	var err error
	if out.Command, err = stringField(v, "command", out.Command); err != nil {
		return err
	}
	if av := v.LookupPath(cue.ParsePath("args")); av.Exists() {
		if out.Args, err = stringList(av, "exec.args"); err != nil {
			return err
		}
	}
	return nil
}

// fieldSet reports whether a dotted path is explicitly present in the value.
func fieldSet(v cue.Value, path string) bool {
	return v.LookupPath(cue.ParsePath(path)).Exists()
}

// stringField reads an optional string field, returning def when absent.
func stringField(v cue.Value, name, def string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return def, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   name,
			Message: fmt.Sprintf("must be a string: %v", err),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// stringList reads a CUE list of strings.
func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a list of strings: %v", err),
			Pos:     v.Pos(),
		}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("element must be a string: %v", err),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// CompileError represents a configuration compile error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
