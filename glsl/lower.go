package glsl

import (
	"fmt"

	"github.com/gogpu/glslfront/ir"
)

// LowerExpect lowers h and fails when it produces no value.
func (c *Context) LowerExpect(body *ir.Block, h HirHandle, lhs bool) (ir.ExpressionHandle, Span, error) {
	expr, span, err := c.Lower(body, h, lhs)
	if err != nil {
		return 0, span, err
	}
	if expr == nil {
		return 0, span, semanticError(span, "Expression returns void")
	}
	return *expr, span, nil
}

// Lower lowers h into the function's expression arena, appending any
// statements it needs to body. With lhs set the result is a pointer
// suitable for a Store. Calls to void functions produce no value.
//
//nolint:gocyclo,cyclop // One case per HIR kind
func (c *Context) Lower(body *ir.Block, h HirHandle, lhs bool) (*ir.ExpressionHandle, Span, error) {
	node := c.hir[h]
	span := node.Span
	if !lhs && c.deferWrites {
		c.deferWrites = false
		defer func() { c.deferWrites = true }()
	}
	value := func(expr ir.ExpressionHandle, err error) (*ir.ExpressionHandle, Span, error) {
		if err != nil {
			return nil, span, err
		}
		return &expr, span, nil
	}

	switch k := node.Kind.(type) {
	case HirVariable:
		return value(c.lowerVariable(body, k.Ref, lhs, span))
	case HirAccess:
		return value(c.lowerAccess(body, k, lhs))
	case HirSelect:
		return value(c.lowerSelect(body, k, lhs, span))
	}

	if lhs {
		return nil, span, semanticError(span, "Expression cannot be used as an l-value")
	}

	switch k := node.Kind.(type) {
	case HirLiteral:
		return value(c.AddExpression(ir.Literal{Value: k.Value}, body), nil)
	case HirConstant:
		return value(c.AddExpression(ir.ExprConstant{Constant: k.Constant}, body), nil)
	case HirBinary:
		return value(c.lowerBinary(body, k))
	case HirUnary:
		expr, _, err := c.LowerExpect(body, k.Expr, false)
		if err != nil {
			return nil, span, err
		}
		return value(c.AddExpression(ir.ExprUnary{Op: k.Op, Expr: expr}, body), nil)
	case HirConditional:
		return value(c.lowerConditional(body, k))
	case HirAssign:
		return value(c.lowerAssign(body, k))
	case HirCall:
		expr, err := c.frontend.FunctionCall(c, body, k.Kind, k.Args, span)
		return expr, span, err
	}
	panic(fmt.Sprintf("glsl: unknown HIR kind %T", node.Kind))
}

func (c *Context) lowerVariable(body *ir.Block, ref VariableReference, lhs bool, span Span) (ir.ExpressionHandle, error) {
	if lhs {
		if !ref.Mutable {
			return 0, semanticError(span, "Variable cannot be used in LHS position")
		}
		if ref.EntryArg != nil && !c.deferWrites {
			c.recordArgUse(*ref.EntryArg, EntryArgWrite)
		}
		return ref.Expr, nil
	}

	if ref.EntryArg != nil {
		c.recordArgUse(*ref.EntryArg, EntryArgRead)
	}
	if ref.Load {
		return c.AddExpression(ir.ExprLoad{Pointer: ref.Expr}, body), nil
	}
	return ref.Expr, nil
}

func (c *Context) lowerAccess(body *ir.Block, k HirAccess, lhs bool) (ir.ExpressionHandle, error) {
	base, _, err := c.LowerExpect(body, k.Base, lhs)
	if err != nil {
		return 0, err
	}
	index, _, err := c.LowerExpect(body, k.Index, false)
	if err != nil {
		return 0, err
	}

	if lit, ok := c.Expression(index).(ir.Literal); ok {
		switch v := lit.Value.(type) {
		case ir.LiteralI32:
			if v >= 0 {
				return c.AddExpression(ir.ExprAccessIndex{Base: base, Index: uint32(v)}, body), nil
			}
		case ir.LiteralU32:
			return c.AddExpression(ir.ExprAccessIndex{Base: base, Index: uint32(v)}, body), nil
		}
	}
	return c.AddExpression(ir.ExprAccess{Base: base, Index: index}, body), nil
}

func (c *Context) lowerSelect(body *ir.Block, k HirSelect, lhs bool, span Span) (ir.ExpressionHandle, error) {
	base, baseSpan, err := c.LowerExpect(body, k.Base, lhs)
	if err != nil {
		return 0, err
	}
	inner, err := c.ResolveType(base, baseSpan)
	if err != nil {
		return 0, err
	}

	switch t := c.derefType(inner).(type) {
	case ir.StructType:
		for i, m := range t.Members {
			if m.Name == k.Field {
				return c.AddExpression(ir.ExprAccessIndex{Base: base, Index: arenaHandle[uint32](i)}, body), nil
			}
		}
		return 0, semanticError(span, "Unknown field: %s", k.Field)

	case ir.VectorType:
		size, pattern, ok := swizzlePattern(k.Field, t.Size)
		if !ok {
			return 0, semanticError(span, "Invalid swizzle: %s", k.Field)
		}
		if size == 1 {
			return c.AddExpression(ir.ExprAccessIndex{Base: base, Index: uint32(pattern[0])}, body), nil
		}
		if lhs && hasRepeatedComponent(pattern[:size]) {
			return 0, semanticError(span, "Swizzle %s cannot be assigned to, it repeats a component", k.Field)
		}
		return c.AddExpression(ir.ExprSwizzle{Size: ir.VectorSize(size), Vector: base, Pattern: pattern}, body), nil
	}
	return 0, semanticError(span, "Can't lookup field %s on this type", k.Field)
}

func (c *Context) lowerBinary(body *ir.Block, k HirBinary) (ir.ExpressionHandle, error) {
	left, leftSpan, err := c.LowerExpect(body, k.Left, false)
	if err != nil {
		return 0, err
	}
	right, rightSpan, err := c.LowerExpect(body, k.Right, false)
	if err != nil {
		return 0, err
	}
	if k.Op <= ir.BinaryGreaterEqual {
		if err := c.BinaryImplicitConversion(body, &left, leftSpan, &right, rightSpan); err != nil {
			return 0, err
		}
	}
	return c.AddExpression(ir.ExprBinary{Op: k.Op, Left: left, Right: right}, body), nil
}

func (c *Context) lowerConditional(body *ir.Block, k HirConditional) (ir.ExpressionHandle, error) {
	condition, _, err := c.LowerExpect(body, k.Condition, false)
	if err != nil {
		return 0, err
	}
	accept, _, err := c.LowerExpect(body, k.Accept, false)
	if err != nil {
		return 0, err
	}
	reject, _, err := c.LowerExpect(body, k.Reject, false)
	if err != nil {
		return 0, err
	}
	return c.AddExpression(ir.ExprSelect{Condition: condition, Accept: accept, Reject: reject}, body), nil
}

// lowerAssign stores the value through the target. A swizzled target is
// written one component at a time.
func (c *Context) lowerAssign(body *ir.Block, k HirAssign) (ir.ExpressionHandle, error) {
	value, valueSpan, err := c.LowerExpect(body, k.Value, false)
	if err != nil {
		return 0, err
	}
	target, targetSpan, err := c.LowerExpect(body, k.Target, true)
	if err != nil {
		return 0, err
	}

	targetInner, err := c.ResolveType(target, targetSpan)
	if err != nil {
		return 0, err
	}
	if scalar, ok := ir.ScalarOf(c.derefType(targetInner)); ok {
		if err := c.ImplicitConversion(body, &value, valueSpan, scalar); err != nil {
			return 0, err
		}
	}

	if sw, ok := c.Expression(target).(ir.ExprSwizzle); ok {
		for i := 0; i < int(sw.Size); i++ {
			dst := c.AddExpression(ir.ExprAccessIndex{Base: sw.Vector, Index: uint32(sw.Pattern[i])}, body)
			src := c.AddExpression(ir.ExprAccessIndex{Base: value, Index: arenaHandle[uint32](i)}, body)
			c.store(body, dst, src)
		}
		return value, nil
	}

	c.store(body, target, value)
	return value, nil
}

func (c *Context) store(body *ir.Block, pointer, value ir.ExpressionHandle) {
	c.EmitFlush(body)
	*body = append(*body, ir.Statement{Kind: ir.StmtStore{Pointer: pointer, Value: value}})
	c.EmitStart()
}

// derefType returns the type a pointer points at, or inner itself.
func (c *Context) derefType(inner ir.TypeInner) ir.TypeInner {
	switch t := inner.(type) {
	case ir.PointerType:
		return c.frontend.module.Types[t.Base].Inner
	case ir.ValuePointerType:
		if t.Size != nil {
			return ir.VectorType{Size: *t.Size, Scalar: t.Scalar}
		}
		return t.Scalar
	}
	return inner
}

// swizzlePattern parses a one to four letter swizzle over a vector of
// vecSize components.
func swizzlePattern(member string, vecSize ir.VectorSize) (int, [4]ir.SwizzleComponent, bool) {
	var pattern [4]ir.SwizzleComponent
	if len(member) < 1 || len(member) > 4 {
		return 0, pattern, false
	}
	set := swizzleSet(member[0])
	for i := 0; i < len(member); i++ {
		comp, ok := swizzleComponent(member[i])
		if !ok || uint8(comp) >= uint8(vecSize) || swizzleSet(member[i]) != set {
			return 0, pattern, false
		}
		pattern[i] = comp
	}
	return len(member), pattern, true
}

func swizzleComponent(c byte) (ir.SwizzleComponent, bool) {
	switch c {
	case 'x', 'r', 's':
		return ir.SwizzleX, true
	case 'y', 'g', 't':
		return ir.SwizzleY, true
	case 'z', 'b', 'p':
		return ir.SwizzleZ, true
	case 'w', 'a', 'q':
		return ir.SwizzleW, true
	default:
		return 0, false
	}
}

// swizzleSet tells the xyzw, rgba and stpq letter sets apart.
func swizzleSet(c byte) int {
	switch c {
	case 'x', 'y', 'z', 'w':
		return 0
	case 'r', 'g', 'b', 'a':
		return 1
	default:
		return 2
	}
}

func hasRepeatedComponent(pattern []ir.SwizzleComponent) bool {
	var seen [4]bool
	for _, p := range pattern {
		if seen[p] {
			return true
		}
		seen[p] = true
	}
	return false
}
