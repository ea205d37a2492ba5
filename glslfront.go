// Package glslfront provides the call-resolution and entry-point stages of
// a Pure Go GLSL front end.
//
// glslfront takes a parsed GLSL translation unit, resolves every call in
// it (type constructors, builtins, combined texture and sampler calls and
// overloaded user functions) and synthesizes one ir entry point per stage
// entry function. Units are read from TOML or msgpack with the unit
// package.
//
// Example usage:
//
//	module, err := glslfront.CompileFile("shader.toml", glslfront.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ir.Fprint(os.Stdout, module)
//
// For lower-level access, drive a glsl.Frontend directly:
//
//	fe := glsl.New(glsl.DefaultOptions())
//	ctx := fe.NewContext()
//	// ... add HIR and lower it ...
//	module, err := fe.Finish()
package glslfront

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/glslfront/ir"
	"github.com/gogpu/glslfront/unit"
)

// CompileOptions configures compilation.
type CompileOptions struct {
	// Validate enables IR validation of the finished module.
	Validate bool

	// Logger receives debug records from every stage. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{Validate: true}
}

// Compile builds u into an IR module.
//
// The pipeline is:
//  1. Register declarations and the stage interface
//  2. Lower every function body, resolving calls
//  3. Synthesize entry points
//  4. Validate the module (if enabled)
func Compile(u *unit.Unit, opts CompileOptions) (*ir.Module, error) {
	module, err := unit.Build(u, opts.Logger)
	if err != nil {
		return nil, err
	}
	if opts.Validate {
		if err := Validate(module); err != nil {
			return nil, err
		}
	}
	return module, nil
}

// CompileFile loads the unit at path and compiles it.
func CompileFile(path string, opts CompileOptions) (*ir.Module, error) {
	u, err := unit.Load(path)
	if err != nil {
		return nil, err
	}
	module, err := Compile(u, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return module, nil
}

// Validate checks an IR module for correctness and joins every
// validation error into one.
func Validate(module *ir.Module) error {
	validationErrors, err := ir.Validate(module)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if len(validationErrors) == 0 {
		return nil
	}
	errs := make([]error, len(validationErrors))
	for i := range validationErrors {
		errs[i] = &validationErrors[i]
	}
	return fmt.Errorf("validation failed: %w", errors.Join(errs...))
}
