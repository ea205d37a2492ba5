package glsl

import "github.com/gogpu/glslfront/ir"

// conversionRank orders the numeric scalar types for implicit widening:
// int < uint < float < double. Booleans have no rank.
func conversionRank(s ir.ScalarType) (int, bool) {
	switch s.Kind {
	case ir.ScalarSint:
		return 0, true
	case ir.ScalarUint:
		return 1, true
	case ir.ScalarFloat:
		if s.Width == 8 {
			return 3, true
		}
		return 2, true
	}
	return 0, false
}

// canWiden reports whether a value of scalar type from may be implicitly
// converted to to.
func canWiden(from, to ir.ScalarType) bool {
	fromRank, ok := conversionRank(from)
	if !ok {
		return false
	}
	toRank, ok := conversionRank(to)
	return ok && toRank >= fromRank
}

// ImplicitConversion widens expr to target when target ranks above the
// expression's scalar type. Anything else is left unchanged.
func (c *Context) ImplicitConversion(body *ir.Block, expr *ir.ExpressionHandle, span Span, target ir.ScalarType) error {
	inner, err := c.ResolveType(*expr, span)
	if err != nil {
		return err
	}
	source, ok := ir.ScalarOf(inner)
	if !ok {
		return nil
	}
	sourceRank, sourceOk := conversionRank(source)
	targetRank, targetOk := conversionRank(target)
	if sourceOk && targetOk && targetRank > sourceRank {
		*expr = c.convert(body, *expr, target)
	}
	return nil
}

// BinaryImplicitConversion widens whichever operand ranks lower so both
// share a scalar type.
func (c *Context) BinaryImplicitConversion(body *ir.Block, left *ir.ExpressionHandle, leftSpan Span, right *ir.ExpressionHandle, rightSpan Span) error {
	leftInner, err := c.ResolveType(*left, leftSpan)
	if err != nil {
		return err
	}
	rightInner, err := c.ResolveType(*right, rightSpan)
	if err != nil {
		return err
	}
	leftScalar, leftOk := ir.ScalarOf(leftInner)
	rightScalar, rightOk := ir.ScalarOf(rightInner)
	if !leftOk || !rightOk {
		return nil
	}

	leftRank, leftRanked := conversionRank(leftScalar)
	rightRank, rightRanked := conversionRank(rightScalar)
	switch {
	case leftRanked && rightRanked:
		if leftRank > rightRank {
			*right = c.convert(body, *right, leftScalar)
		} else if rightRank > leftRank {
			*left = c.convert(body, *left, rightScalar)
		}
	case leftRanked != rightRanked:
		return semanticError(rightSpan, "Cannot apply implicit conversion between %s and %s",
			leftScalar.Kind, rightScalar.Kind)
	}
	return nil
}

// conform converts expr from source to target when they differ, in
// either direction.
func (c *Context) conform(body *ir.Block, expr ir.ExpressionHandle, source, target ir.ScalarType) ir.ExpressionHandle {
	if source == target {
		return expr
	}
	return c.convert(body, expr, target)
}

func (c *Context) convert(body *ir.Block, expr ir.ExpressionHandle, target ir.ScalarType) ir.ExpressionHandle {
	width := target.Width
	return c.AddExpression(ir.ExprAs{Expr: expr, Kind: target.Kind, Convert: &width}, body)
}
