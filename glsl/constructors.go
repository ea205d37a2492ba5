package glsl

import "github.com/gogpu/glslfront/ir"

// loweredArg is a call argument after rvalue lowering.
type loweredArg struct {
	expr ir.ExpressionHandle
	span Span
}

// constructType lowers T(args).
func (f *Frontend) constructType(ctx *Context, body *ir.Block, ty ir.TypeHandle, args []loweredArg, span Span) (ir.ExpressionHandle, error) {
	switch len(args) {
	case 0:
		return 0, semanticError(span, "Constructor needs at least one argument")
	case 1:
		return f.constructFromValue(ctx, body, ty, args[0], span)
	}
	return f.constructFromComponents(ctx, body, ty, args, span)
}

//nolint:gocyclo,cyclop // One case per target shape
func (f *Frontend) constructFromValue(ctx *Context, body *ir.Block, ty ir.TypeHandle, arg loweredArg, span Span) (ir.ExpressionHandle, error) {
	argInner, err := ctx.ResolveType(arg.expr, arg.span)
	if err != nil {
		return 0, err
	}

	switch target := f.module.Types[ty].Inner.(type) {
	case ir.ScalarType:
		source, ok := argInner.(ir.ScalarType)
		if !ok {
			return 0, badCast(span)
		}
		return ctx.conform(body, arg.expr, source, target), nil

	case ir.VectorType:
		switch source := argInner.(type) {
		case ir.ScalarType:
			value := ctx.conform(body, arg.expr, source, target.Scalar)
			return ctx.AddExpression(ir.ExprSplat{Size: target.Size, Value: value}, body), nil
		case ir.VectorType:
			if source.Size < target.Size {
				return 0, badCast(span)
			}
			value := arg.expr
			if source.Size > target.Size {
				value = ctx.AddExpression(ir.ExprSwizzle{Size: target.Size, Vector: value, Pattern: ir.SwizzleXYZW}, body)
			}
			return ctx.conform(body, value, source.Scalar, target.Scalar), nil
		}

	case ir.MatrixType:
		switch source := argInner.(type) {
		case ir.ScalarType:
			value := ctx.conform(body, arg.expr, source, target.Scalar)
			column := ctx.AddExpression(ir.ExprSplat{Size: target.Rows, Value: value}, body)
			columns := make([]ir.ExpressionHandle, target.Columns)
			for i := range columns {
				columns[i] = column
			}
			return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: columns}, body), nil
		case ir.MatrixType:
			return f.resizeMatrix(ctx, body, ty, target, arg.expr, source), nil
		}

	case ir.StructType:
		return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: []ir.ExpressionHandle{arg.expr}}, body), nil

	case ir.ArrayType:
		return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: []ir.ExpressionHandle{arg.expr}}, body), nil
	}
	return 0, badCast(span)
}

// resizeMatrix builds a target-sized matrix column by column. Columns
// are truncated or padded with the identity matrix's elements, and
// columns past the source's are identity columns.
func (f *Frontend) resizeMatrix(ctx *Context, body *ir.Block, ty ir.TypeHandle, target ir.MatrixType, expr ir.ExpressionHandle, source ir.MatrixType) ir.ExpressionHandle {
	columnType := f.AddType("", ir.VectorType{Size: target.Rows, Scalar: target.Scalar})
	columns := make([]ir.ExpressionHandle, target.Columns)

	for i := range columns {
		if i >= int(source.Columns) {
			elems := make([]ir.ExpressionHandle, target.Rows)
			for r := range elems {
				elems[r] = ctx.identityElement(body, target.Scalar, r == i)
			}
			columns[i] = ctx.AddExpression(ir.ExprCompose{Type: columnType, Components: elems}, body)
			continue
		}

		column := ctx.AddExpression(ir.ExprAccessIndex{Base: expr, Index: arenaHandle[uint32](i)}, body)
		column = ctx.conform(body, column, source.Scalar, target.Scalar)
		switch {
		case target.Rows < source.Rows:
			column = ctx.AddExpression(ir.ExprSwizzle{Size: target.Rows, Vector: column, Pattern: ir.SwizzleXYZW}, body)
		case target.Rows > source.Rows:
			elems := make([]ir.ExpressionHandle, target.Rows)
			for r := range elems {
				if r < int(source.Rows) {
					elems[r] = ctx.AddExpression(ir.ExprAccessIndex{Base: column, Index: arenaHandle[uint32](r)}, body)
				} else {
					elems[r] = ctx.identityElement(body, target.Scalar, r == i)
				}
			}
			column = ctx.AddExpression(ir.ExprCompose{Type: columnType, Components: elems}, body)
		}
		columns[i] = column
	}
	return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: columns}, body)
}

func (c *Context) identityElement(body *ir.Block, scalar ir.ScalarType, diagonal bool) ir.ExpressionHandle {
	v := 0.0
	if diagonal {
		v = 1
	}
	var lit ir.LiteralValue = ir.LiteralF32(v)
	if scalar.Width == 8 {
		lit = ir.LiteralF64(v)
	}
	return c.AddExpression(ir.Literal{Value: lit}, body)
}

// constructFromComponents composes the arguments positionally, first
// converting each to the target's scalar type.
func (f *Frontend) constructFromComponents(ctx *Context, body *ir.Block, ty ir.TypeHandle, args []loweredArg, span Span) (ir.ExpressionHandle, error) {
	target := f.module.Types[ty].Inner
	scalar, hasScalar := ir.ScalarOf(target)

	components := make([]ir.ExpressionHandle, len(args))
	inners := make([]ir.TypeInner, len(args))
	for i, arg := range args {
		inner, err := ctx.ResolveType(arg.expr, arg.span)
		if err != nil {
			return 0, err
		}
		components[i] = arg.expr
		inners[i] = inner
		if source, ok := ir.ScalarOf(inner); ok && hasScalar {
			components[i] = ctx.conform(body, arg.expr, source, scalar)
		}
	}

	if m, ok := target.(ir.MatrixType); ok {
		return f.composeMatrix(ctx, body, ty, m, components, inners, span)
	}
	return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: components}, body), nil
}

// composeMatrix builds a matrix from whole columns or, failing that, from
// the scalars of its arguments in column-major order.
func (f *Frontend) composeMatrix(ctx *Context, body *ir.Block, ty ir.TypeHandle, m ir.MatrixType, components []ir.ExpressionHandle, inners []ir.TypeInner, span Span) (ir.ExpressionHandle, error) {
	columnsGiven := len(components) == int(m.Columns)
	for _, inner := range inners {
		if vec, ok := inner.(ir.VectorType); !ok || vec.Size != m.Rows {
			columnsGiven = false
		}
	}
	if columnsGiven {
		return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: components}, body), nil
	}

	var scalars []ir.ExpressionHandle
	for i, inner := range inners {
		switch t := inner.(type) {
		case ir.ScalarType:
			scalars = append(scalars, components[i])
		case ir.VectorType:
			for lane := 0; lane < int(t.Size); lane++ {
				scalars = append(scalars, ctx.AddExpression(ir.ExprAccessIndex{Base: components[i], Index: arenaHandle[uint32](lane)}, body))
			}
		default:
			return 0, badCast(span)
		}
	}
	if len(scalars) != int(m.Columns)*int(m.Rows) {
		return 0, badCast(span)
	}

	columnType := f.AddType("", ir.VectorType{Size: m.Rows, Scalar: m.Scalar})
	columns := make([]ir.ExpressionHandle, m.Columns)
	for i := range columns {
		rows := scalars[i*int(m.Rows) : (i+1)*int(m.Rows)]
		columns[i] = ctx.AddExpression(ir.ExprCompose{Type: columnType, Components: rows}, body)
	}
	return ctx.AddExpression(ir.ExprCompose{Type: ty, Components: columns}, body), nil
}

func badCast(span Span) *Error {
	return semanticError(span, "Bad cast")
}
