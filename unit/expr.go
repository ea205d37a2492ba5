package unit

import (
	"strings"

	"github.com/gogpu/glslfront/glsl"
	"github.com/gogpu/glslfront/ir"
)

// hir builds the HIR tree for e. Names are resolved as the tree is
// built, so references to globals land in body's open emit range.
//
//nolint:gocyclo,cyclop // One case per expression kind
func (b *builder) hir(body *ir.Block, e *Expr) (glsl.HirHandle, error) {
	span := spanOf(e.Line, e.Column)
	arity := func(n int) error {
		if len(e.Args) != n {
			return semanticError(span, "%s expression expects %d operands, found %d", e.Kind, n, len(e.Args))
		}
		return nil
	}

	switch e.Kind {
	case "lit":
		lit, err := parseLiteral(e.Value)
		if err != nil {
			return 0, semanticError(span, "%v", err)
		}
		return b.ctx.AddHir(glsl.HirLiteral{Value: lit}, span), nil

	case "var":
		ref, ok := b.ctx.Variable(body, e.Name)
		if !ok {
			return 0, semanticError(span, "Unknown variable: %s", e.Name)
		}
		return b.ctx.AddHir(glsl.HirVariable{Ref: ref}, span), nil

	case "binary":
		if err := arity(2); err != nil {
			return 0, err
		}
		op, ok := binaryOps[e.Op]
		if !ok {
			return 0, semanticError(span, "unknown binary operator %q", e.Op)
		}
		args, err := b.hirArgs(body, e.Args)
		if err != nil {
			return 0, err
		}
		return b.ctx.AddHir(glsl.HirBinary{Left: args[0], Op: op, Right: args[1]}, span), nil

	case "unary":
		if err := arity(1); err != nil {
			return 0, err
		}
		operand, err := b.hir(body, &e.Args[0])
		if err != nil {
			return 0, err
		}
		if e.Op == "+" {
			return operand, nil
		}
		op, ok := unaryOps[e.Op]
		if !ok {
			return 0, semanticError(span, "unknown unary operator %q", e.Op)
		}
		return b.ctx.AddHir(glsl.HirUnary{Op: op, Expr: operand}, span), nil

	case "call":
		args, err := b.hirArgs(body, e.Args)
		if err != nil {
			return 0, err
		}
		return b.ctx.AddHir(glsl.HirCall{Kind: glsl.CallFunction{Name: e.Name}, Args: args}, span), nil

	case "construct":
		ty, err := resolveType(b.fe, e.Type)
		if err != nil {
			return 0, semanticError(span, "%v", err)
		}
		args, err := b.hirArgs(body, e.Args)
		if err != nil {
			return 0, err
		}
		return b.ctx.AddHir(glsl.HirCall{Kind: glsl.CallTypeConstructor{Type: ty}, Args: args}, span), nil

	case "field":
		if err := arity(1); err != nil {
			return 0, err
		}
		base, err := b.hir(body, &e.Args[0])
		if err != nil {
			return 0, err
		}
		return b.ctx.AddHir(glsl.HirSelect{Base: base, Field: e.Name}, span), nil

	case "index":
		if err := arity(2); err != nil {
			return 0, err
		}
		args, err := b.hirArgs(body, e.Args)
		if err != nil {
			return 0, err
		}
		return b.ctx.AddHir(glsl.HirAccess{Base: args[0], Index: args[1]}, span), nil

	case "assign":
		return b.assign(body, e, span)

	case "cond":
		if err := arity(3); err != nil {
			return 0, err
		}
		args, err := b.hirArgs(body, e.Args)
		if err != nil {
			return 0, err
		}
		return b.ctx.AddHir(glsl.HirConditional{Condition: args[0], Accept: args[1], Reject: args[2]}, span), nil
	}
	return 0, semanticError(span, "unknown expression kind %q", e.Kind)
}

func (b *builder) hirArgs(body *ir.Block, args []Expr) ([]glsl.HirHandle, error) {
	out := make([]glsl.HirHandle, len(args))
	for i := range args {
		h, err := b.hir(body, &args[i])
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

// assign builds a plain or compound assignment. For a compound operator
// such as += the target is built twice: once as the store destination and
// once as the left operand.
func (b *builder) assign(body *ir.Block, e *Expr, span glsl.Span) (glsl.HirHandle, error) {
	if len(e.Args) != 2 {
		return 0, semanticError(span, "assign expression expects 2 operands, found %d", len(e.Args))
	}
	target, err := b.hir(body, &e.Args[0])
	if err != nil {
		return 0, err
	}
	value, err := b.hir(body, &e.Args[1])
	if err != nil {
		return 0, err
	}

	if e.Op != "" && e.Op != "=" {
		op, ok := binaryOps[strings.TrimSuffix(e.Op, "=")]
		if !ok {
			return 0, semanticError(span, "unknown assignment operator %q", e.Op)
		}
		left, err := b.hir(body, &e.Args[0])
		if err != nil {
			return 0, err
		}
		value = b.ctx.AddHir(glsl.HirBinary{Left: left, Op: op, Right: value}, span)
	}
	return b.ctx.AddHir(glsl.HirAssign{Target: target, Value: value}, span), nil
}
