package glsl

import (
	"fmt"

	"github.com/gogpu/glslfront/ir"
)

// proxyWrite is a swizzled out argument that was passed through a
// temporary and must be copied back after the call.
type proxyWrite struct {
	target ir.ExprSwizzle
	temp   ir.ExpressionHandle
}

// FunctionCall lowers a call to a type constructor, builtin or user
// function. It returns nil for calls to void functions.
func (f *Frontend) FunctionCall(ctx *Context, body *ir.Block, kind FunctionCallKind, rawArgs []HirHandle, span Span) (*ir.ExpressionHandle, error) {
	switch k := kind.(type) {
	case CallTypeConstructor:
		args, err := ctx.lowerValues(body, rawArgs)
		if err != nil {
			return nil, err
		}
		expr, err := f.constructType(ctx, body, k.Type, args, span)
		if err != nil {
			return nil, err
		}
		return &expr, nil
	case CallFunction:
		if b, ok := builtins[k.Name]; ok {
			args, err := ctx.lowerValues(body, rawArgs)
			if err != nil {
				return nil, err
			}
			return f.builtinCall(ctx, body, k.Name, b, args, span)
		}
		return f.userCall(ctx, body, k.Name, rawArgs, span)
	}
	panic(fmt.Sprintf("glsl: unknown call kind %T", kind))
}

func (c *Context) lowerValues(body *ir.Block, rawArgs []HirHandle) ([]loweredArg, error) {
	args := make([]loweredArg, len(rawArgs))
	for i, raw := range rawArgs {
		expr, span, err := c.LowerExpect(body, raw, false)
		if err != nil {
			return nil, err
		}
		args[i] = loweredArg{expr: expr, span: span}
	}
	return args, nil
}

// userCall resolves and calls a user function. Every argument is lowered
// once: as a location when some overload of that arity takes it out or
// inout, as a value otherwise.
//
//nolint:gocyclo,cyclop,funlen // Argument binding, overload resolution and write-back
func (f *Frontend) userCall(ctx *Context, body *ir.Block, name string, rawArgs []HirHandle, span Span) (*ir.ExpressionHandle, error) {
	locations := f.locationArgs(ctx, name, rawArgs)
	args := make([]loweredArg, len(rawArgs))
	argTypes := make([]ir.TypeInner, len(rawArgs))
	for i, raw := range rawArgs {
		var (
			expr    ir.ExpressionHandle
			argSpan Span
			err     error
		)
		if locations[i] {
			expr, argSpan, err = ctx.lowerLocation(body, raw)
		} else {
			expr, argSpan, err = ctx.LowerExpect(body, raw, false)
		}
		if err != nil {
			return nil, err
		}
		inner, err := ctx.ResolveType(expr, argSpan)
		if err != nil {
			return nil, err
		}
		if locations[i] {
			inner = ctx.derefType(inner)
		}
		args[i] = loweredArg{expr: expr, span: argSpan}
		argTypes[i] = inner
	}

	decl, exact, err := f.resolveOverload(name, argTypes, span)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("call resolved", "name", name, "function", decl.Handle, "exact", exact)

	arguments := make([]ir.ExpressionHandle, len(args))
	var proxies []proxyWrite
	for i, param := range decl.Parameters {
		qualifier := decl.Qualifiers[i]
		arg := args[i]

		if !qualifier.IsLhs() {
			expr := arg.expr
			if locations[i] {
				expr = ctx.loadLocation(body, expr)
				ctx.recordRootUse(rawArgs[i], EntryArgRead)
			}
			if scalar, ok := ir.ScalarOf(f.module.Types[param].Inner); ok {
				if err := ctx.ImplicitConversion(body, &expr, arg.span, scalar); err != nil {
					return nil, err
				}
			}
			arguments[i] = expr
			continue
		}

		if !locations[i] {
			if err := ctx.notAssignable(rawArgs[i]); err != nil {
				return nil, err
			}
			return nil, semanticError(arg.span, "Expression cannot be used as an l-value")
		}
		if !ir.SameType(argTypes[i], f.module.Types[param].Inner) {
			return nil, semanticError(arg.span, "%s argument %d of '%s' must match the parameter type exactly", qualifier, i+1, name)
		}
		use := EntryArgWrite
		if qualifier == QualifierInOut {
			use |= EntryArgRead
		}
		ctx.recordRootUse(rawArgs[i], use)

		if sw, ok := ctx.Expression(arg.expr).(ir.ExprSwizzle); ok {
			temp := ctx.temporary(body, param)
			if qualifier == QualifierInOut {
				ctx.store(body, temp, ctx.loadLocation(body, arg.expr))
			}
			proxies = append(proxies, proxyWrite{target: sw, temp: temp})
			arguments[i] = temp
			continue
		}
		arguments[i] = arg.expr
	}

	ctx.EmitFlush(body)
	var result *ir.ExpressionHandle
	if !decl.Void {
		r := ctx.AddExpression(ir.ExprCallResult{Function: decl.Handle}, body)
		result = &r
	}
	*body = append(*body, ir.Statement{Kind: ir.StmtCall{
		Function:  decl.Handle,
		Arguments: arguments,
		Result:    result,
	}})
	ctx.EmitStart()

	for _, p := range proxies {
		value := ctx.AddExpression(ir.ExprLoad{Pointer: p.temp}, body)
		for j := 0; j < int(p.target.Size); j++ {
			dst := ctx.AddExpression(ir.ExprAccessIndex{Base: p.target.Vector, Index: uint32(p.target.Pattern[j])}, body)
			src := ctx.AddExpression(ir.ExprAccessIndex{Base: value, Index: arenaHandle[uint32](j)}, body)
			ctx.store(body, dst, src)
		}
	}
	ctx.EmitFlush(body)
	ctx.EmitStart()

	return result, nil
}

// locationArgs reports which arguments are lowered as locations: those
// some overload of matching arity takes out or inout, when the argument
// can be assigned to at all.
func (f *Frontend) locationArgs(ctx *Context, name string, rawArgs []HirHandle) []bool {
	locations := make([]bool, len(rawArgs))
	for _, d := range f.lookup[name] {
		if len(d.Qualifiers) != len(rawArgs) {
			continue
		}
		for i, q := range d.Qualifiers {
			if q.IsLhs() && ctx.notAssignable(rawArgs[i]) == nil {
				locations[i] = true
			}
		}
	}
	return locations
}

// lowerLocation lowers h as a pointer without recording a write to the
// stage-interface global it is rooted at; the caller records the use
// once the parameter qualifier is known.
func (c *Context) lowerLocation(body *ir.Block, h HirHandle) (ir.ExpressionHandle, Span, error) {
	saved := c.deferWrites
	c.deferWrites = true
	defer func() { c.deferWrites = saved }()
	return c.LowerExpect(body, h, true)
}

// loadLocation reads the value behind a location. A swizzle over a
// vector pointer loads the whole vector and swizzles the loaded value.
func (c *Context) loadLocation(body *ir.Block, pointer ir.ExpressionHandle) ir.ExpressionHandle {
	if sw, ok := c.Expression(pointer).(ir.ExprSwizzle); ok {
		vec := c.AddExpression(ir.ExprLoad{Pointer: sw.Vector}, body)
		return c.AddExpression(ir.ExprSwizzle{Size: sw.Size, Vector: vec, Pattern: sw.Pattern}, body)
	}
	return c.AddExpression(ir.ExprLoad{Pointer: pointer}, body)
}

// notAssignable returns the error lowering h as a location would raise
// before any expression is added, or nil.
func (c *Context) notAssignable(h HirHandle) *Error {
	node := c.hir[h]
	switch k := node.Kind.(type) {
	case HirVariable:
		if !k.Ref.Mutable {
			return semanticError(node.Span, "Variable cannot be used in LHS position")
		}
		return nil
	case HirAccess:
		return c.notAssignable(k.Base)
	case HirSelect:
		return c.notAssignable(k.Base)
	}
	return semanticError(node.Span, "Expression cannot be used as an l-value")
}

// recordRootUse records use for the stage-interface global a location
// expression is rooted at.
func (c *Context) recordRootUse(h HirHandle, use EntryArgUse) {
	for {
		switch k := c.hir[h].Kind.(type) {
		case HirVariable:
			if k.Ref.EntryArg != nil {
				c.recordArgUse(*k.Ref.EntryArg, use)
			}
			return
		case HirAccess:
			h = k.Base
		case HirSelect:
			h = k.Base
		default:
			return
		}
	}
}

// temporary allocates an unnamed local and returns its pointer.
func (c *Context) temporary(body *ir.Block, ty ir.TypeHandle) ir.ExpressionHandle {
	l := arenaHandle[uint32](len(c.function.LocalVars))
	c.function.LocalVars = append(c.function.LocalVars, ir.LocalVariable{Type: ty})
	return c.AddExpression(ir.ExprLocalVariable{Variable: l}, body)
}
