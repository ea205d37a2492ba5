package glsl

import "github.com/gogpu/glslfront/ir"

// AddPrototype registers a function prototype whose parameters were
// declared in ctx. A prototype reserves a function handle that a later
// definition with the same parameter types fills in.
func (f *Frontend) AddPrototype(ctx *Context, name string, result *ir.TypeHandle, span Span) error {
	decls := f.lookup[name]
	for _, d := range decls {
		if f.sameParameters(d.Parameters, ctx.parameters) {
			return semanticError(span, "Prototype already defined")
		}
	}

	fn := ir.Function{Name: name, Arguments: ctx.function.Arguments}
	if result != nil {
		fn.Result = &ir.FunctionResult{Type: *result}
	}
	h := f.appendFunction(fn)
	f.lookup[name] = append(decls, FunctionDeclaration{
		Qualifiers: ctx.qualifiers,
		Parameters: ctx.parameters,
		Handle:     h,
		Void:       result == nil,
	})
	f.logger.Debug("prototype declared", "name", name, "function", h)
	return nil
}

// AddFunction registers the function whose parameters and body were
// built in ctx. Functions named as entry points are kept out of the
// overload table and synthesized into entry points by Finish.
func (f *Frontend) AddFunction(ctx *Context, name string, result *ir.TypeHandle, body ir.Block, span Span) (ir.FunctionHandle, error) {
	ctx.EmitFlush(&body)
	ir.EnsureBlockReturns(&body)

	fn := ctx.function
	fn.Name = name
	fn.Body = body
	if result != nil {
		fn.Result = &ir.FunctionResult{Type: *result}
	}

	if stage, ok := f.opts.EntryPoints[name]; ok {
		for _, e := range f.entries {
			if e.name == name {
				return 0, semanticError(span, "Function already defined")
			}
		}
		h := f.appendFunction(fn)
		f.entries = append(f.entries, entryFunction{name: name, stage: stage, function: h})
		f.argUse[h] = ctx.argUse
		f.logger.Debug("entry function defined", "name", name, "stage", stage, "function", h)
		return h, nil
	}

	decls := f.lookup[name]
	for i, d := range decls {
		if !f.sameParameters(d.Parameters, ctx.parameters) {
			continue
		}
		if d.Defined {
			return 0, semanticError(span, "Function already defined")
		}
		decls[i].Defined = true
		decls[i].Qualifiers = ctx.qualifiers
		decls[i].Parameters = ctx.parameters
		f.module.Functions[d.Handle] = fn
		f.argUse[d.Handle] = ctx.argUse
		f.logger.Debug("prototype defined", "name", name, "function", d.Handle)
		return d.Handle, nil
	}

	h := f.appendFunction(fn)
	f.lookup[name] = append(decls, FunctionDeclaration{
		Qualifiers: ctx.qualifiers,
		Parameters: ctx.parameters,
		Handle:     h,
		Defined:    true,
		Void:       result == nil,
	})
	f.argUse[h] = ctx.argUse
	f.logger.Debug("function defined", "name", name, "function", h, "overloads", len(decls)+1)
	return h, nil
}

func (f *Frontend) appendFunction(fn ir.Function) ir.FunctionHandle {
	h := arenaHandle[ir.FunctionHandle](len(f.module.Functions))
	f.module.Functions = append(f.module.Functions, fn)
	return h
}
