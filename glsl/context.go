package glsl

import (
	"github.com/gogpu/glslfront/ir"
)

// Context holds the state of one function while its body is lowered:
// its expression arena, locals, HIR arena, name scopes, the texture to
// sampler pairing and the stage-interface usage it accumulates.
type Context struct {
	frontend *Frontend
	function ir.Function

	hir    []HirExpr
	scopes []map[string]VariableReference

	// globals caches the expression created for each referenced global
	// so that every reference shares one handle.
	globals map[string]VariableReference

	// samplers pairs a texture expression with the sampler it was
	// combined with by a sampler constructor.
	samplers map[ir.ExpressionHandle]ir.ExpressionHandle

	argUse     []EntryArgUse
	parameters []ir.TypeHandle
	qualifiers []ParameterQualifier

	// deferWrites holds back the write record of a location's root
	// variable while a call argument is lowered.
	deferWrites bool

	emitting bool
	emitFrom int
}

// NewContext creates the context for one function. The emitter is
// already started.
func (f *Frontend) NewContext() *Context {
	c := &Context{
		frontend: f,
		scopes:   []map[string]VariableReference{{}},
		globals:  make(map[string]VariableReference),
		samplers: make(map[ir.ExpressionHandle]ir.ExpressionHandle),
	}
	c.EmitStart()
	return c
}

// Function returns the function under construction.
func (c *Context) Function() *ir.Function {
	return &c.function
}

// ArgUse returns the stage-interface usage recorded so far.
func (c *Context) ArgUse() []EntryArgUse {
	return c.argUse
}

// EmitStart opens an emit range at the current end of the arena.
func (c *Context) EmitStart() {
	c.emitting = true
	c.emitFrom = len(c.function.Expressions)
}

// EmitFlush closes the open emit range, pushing an Emit statement for it
// onto body when it is not empty.
func (c *Context) EmitFlush(body *ir.Block) {
	if !c.emitting {
		return
	}
	c.emitting = false
	end := len(c.function.Expressions)
	if end > c.emitFrom {
		*body = append(*body, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{
			Start: arenaHandle[ir.ExpressionHandle](c.emitFrom),
			End:   arenaHandle[ir.ExpressionHandle](end),
		}}})
	}
}

// AddExpression appends kind to the arena and records its type.
// Expressions that are never emitted split the open emit range.
func (c *Context) AddExpression(kind ir.ExpressionKind, body *ir.Block) ir.ExpressionHandle {
	split := c.emitting && ir.NeedsPreEmit(kind)
	if split {
		c.EmitFlush(body)
	}

	h := arenaHandle[ir.ExpressionHandle](len(c.function.Expressions))
	c.function.Expressions = append(c.function.Expressions, ir.Expression{Kind: kind})

	res, err := ir.ResolveExpressionType(&c.frontend.module, &c.function, h)
	if err != nil {
		res = ir.TypeResolution{}
	}
	c.function.ExpressionTypes = append(c.function.ExpressionTypes, res)

	if split {
		c.EmitStart()
	}
	return h
}

// Expression returns the kind of an arena expression.
func (c *Context) Expression(h ir.ExpressionHandle) ir.ExpressionKind {
	return c.function.Expressions[h].Kind
}

// ResolveType returns the type of h.
func (c *Context) ResolveType(h ir.ExpressionHandle, span Span) (ir.TypeInner, error) {
	module := &c.frontend.module
	if int(h) < len(c.function.ExpressionTypes) {
		if res := c.function.ExpressionTypes[h]; res.Handle != nil || res.Value != nil {
			return res.Inner(module), nil
		}
	}
	res, err := ir.ResolveExpressionType(module, &c.function, h)
	if err != nil {
		return nil, semanticError(span, "Can't resolve type: %v", err)
	}
	if int(h) < len(c.function.ExpressionTypes) {
		c.function.ExpressionTypes[h] = res
	}
	return res.Inner(module), nil
}

// AddHir appends an HIR node.
func (c *Context) AddHir(kind HirKind, span Span) HirHandle {
	h := arenaHandle[HirHandle](len(c.hir))
	c.hir = append(c.hir, HirExpr{Kind: kind, Span: span})
	return h
}

// Hir returns an HIR node.
func (c *Context) Hir(h HirHandle) HirExpr {
	return c.hir[h]
}

// PushScope opens a nested name scope.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, map[string]VariableReference{})
}

// PopScope closes the innermost name scope.
func (c *Context) PopScope() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

func (c *Context) declare(name string, ref VariableReference) {
	if name != "" {
		c.scopes[len(c.scopes)-1][name] = ref
	}
}

// AddLocal declares a mutable function-local variable in the innermost
// scope.
func (c *Context) AddLocal(body *ir.Block, name string, ty ir.TypeHandle) VariableReference {
	l := arenaHandle[uint32](len(c.function.LocalVars))
	c.function.LocalVars = append(c.function.LocalVars, ir.LocalVariable{Name: name, Type: ty})
	expr := c.AddExpression(ir.ExprLocalVariable{Variable: l}, body)
	ref := VariableReference{Expr: expr, Load: true, Mutable: true}
	c.declare(name, ref)
	return ref
}

// AddParameter declares the next parameter. In parameters are copied
// into a mutable local, const parameters are read-only values and out or
// inout parameters are passed by pointer.
func (c *Context) AddParameter(body *ir.Block, name string, ty ir.TypeHandle, qualifier ParameterQualifier) {
	index := arenaHandle[uint32](len(c.function.Arguments))
	argType := ty
	if qualifier.IsLhs() {
		argType = c.frontend.AddType("", ir.PointerType{Base: ty, Space: ir.SpaceFunction})
	}
	c.function.Arguments = append(c.function.Arguments, ir.FunctionArgument{Name: name, Type: argType})
	c.parameters = append(c.parameters, ty)
	c.qualifiers = append(c.qualifiers, qualifier)

	arg := c.AddExpression(ir.ExprFunctionArgument{Index: index}, body)
	switch qualifier {
	case QualifierOut, QualifierInOut:
		c.declare(name, VariableReference{Expr: arg, Load: true, Mutable: true})
	case QualifierConst:
		c.declare(name, VariableReference{Expr: arg})
	default:
		local := c.AddLocal(body, name, ty)
		c.EmitFlush(body)
		*body = append(*body, ir.Statement{Kind: ir.StmtStore{Pointer: local.Expr, Value: arg}})
		c.EmitStart()
	}
}

// Variable resolves name in the innermost enclosing scope, then among
// module globals and constants.
func (c *Context) Variable(body *ir.Block, name string) (VariableReference, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if ref, ok := c.scopes[i][name]; ok {
			return ref, true
		}
	}
	if ref, ok := c.globals[name]; ok {
		return ref, true
	}

	f := c.frontend
	if g, ok := f.globals[name]; ok {
		expr := c.AddExpression(ir.ExprGlobalVariable{Variable: g.handle}, body)
		load := f.module.GlobalVariables[g.handle].Space != ir.SpaceHandle
		ref := VariableReference{Expr: expr, Load: load, Mutable: g.mutable, EntryArg: g.entryArg}
		c.globals[name] = ref
		return ref, true
	}
	if h, ok := f.constants[name]; ok {
		expr := c.AddExpression(ir.ExprConstant{Constant: h}, body)
		ref := VariableReference{Expr: expr}
		c.globals[name] = ref
		return ref, true
	}
	return VariableReference{}, false
}

func (c *Context) recordArgUse(index int, use EntryArgUse) {
	for len(c.argUse) <= index {
		c.argUse = append(c.argUse, 0)
	}
	c.argUse[index] |= use
}
