// Package glsl is the call-resolution core of a GLSL front end.
//
// It lowers parsed call expressions into ir expressions and statements:
// type constructors, builtin functions, combined texture and sampler
// calls, and calls to overloaded user functions. It then synthesizes one
// entry point per stage entry function from the stage-interface globals
// that the function touches, directly or through its callees.
//
// # Basic Usage
//
//	fe := glsl.New(glsl.Options{
//	    EntryPoints: map[string]ir.ShaderStage{"main": ir.StageFragment},
//	})
//	vec4 := fe.AddType("vec4", ir.VectorType{Size: ir.Vec4, Scalar: f32})
//	_, _, _ = fe.AddEntryArg("color", vec4, ir.LocationBinding{Location: 0}, 0)
//
//	ctx := fe.NewContext()
//	var body ir.Block
//	// ... build HIR with ctx.AddHir and lower it with ctx.Lower ...
//	_, _ = fe.AddFunction(ctx, "main", nil, body, glsl.Span{})
//	module, err := fe.Finish()
//
// # Emission
//
// Every Context keeps an emit range open. Expressions that need
// evaluation (loads, arithmetic, calls to builtins) are covered by Emit
// statements that are flushed before every Store and Call the core
// appends, so statement order follows evaluation order.
//
// # Stage interface
//
// Stage inputs and outputs are private globals registered with
// AddEntryArg. Lowering a reference to one records a read or a write in
// the function's usage record; Finish closes those records over the call
// graph before building entry points.
package glsl
