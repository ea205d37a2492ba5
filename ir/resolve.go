package ir

import "fmt"

var (
	boolScalar = ScalarType{Kind: ScalarBool, Width: 1}
	f32Scalar  = ScalarType{Kind: ScalarFloat, Width: 4}
	u32Scalar  = ScalarType{Kind: ScalarUint, Width: 4}
)

// ResolveExpressionType resolves the type of an expression in a function.
// Returns a TypeResolution that either references a module type or contains an inline type.
//
// Variable references resolve to pointers. Access, AccessIndex and Swizzle
// look through a pointer base; Load removes it.
//
//nolint:gocyclo,cyclop,funlen // Type resolution requires handling all expression kinds
func ResolveExpressionType(module *Module, fn *Function, handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(fn.Expressions))
	}

	switch kind := fn.Expressions[handle].Kind.(type) {
	case Literal:
		return resolveLiteralType(kind)
	case ExprConstant:
		if int(kind.Constant) >= len(module.Constants) {
			return TypeResolution{}, fmt.Errorf("constant %d out of range", kind.Constant)
		}
		return handleResolution(module.Constants[kind.Constant].Type), nil
	case ExprZeroValue:
		return handleResolution(kind.Type), nil
	case ExprCompose:
		return handleResolution(kind.Type), nil
	case ExprAccess:
		return resolveIndexedType(module, fn, kind.Base, nil)
	case ExprAccessIndex:
		index := kind.Index
		return resolveIndexedType(module, fn, kind.Base, &index)
	case ExprSplat:
		return resolveSplatType(module, fn, kind)
	case ExprSwizzle:
		return resolveSwizzleType(module, fn, kind)
	case ExprFunctionArgument:
		if int(kind.Index) >= len(fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", kind.Index)
		}
		return handleResolution(fn.Arguments[kind.Index].Type), nil
	case ExprGlobalVariable:
		if int(kind.Variable) >= len(module.GlobalVariables) {
			return TypeResolution{}, fmt.Errorf("global variable %d out of range", kind.Variable)
		}
		global := module.GlobalVariables[kind.Variable]
		if global.Space == SpaceHandle {
			return handleResolution(global.Type), nil
		}
		return TypeResolution{Value: PointerType{Base: global.Type, Space: global.Space}}, nil
	case ExprLocalVariable:
		if int(kind.Variable) >= len(fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", kind.Variable)
		}
		return TypeResolution{Value: PointerType{Base: fn.LocalVars[kind.Variable].Type, Space: SpaceFunction}}, nil
	case ExprLoad:
		return resolveLoadType(module, fn, kind)
	case ExprImageSample:
		return resolveImageSampleType(module, fn, kind)
	case ExprImageLoad:
		return resolveImageLoadType(module, fn, kind)
	case ExprImageQuery:
		return resolveImageQueryType(module, fn, kind)
	case ExprUnary:
		operand, err := ResolveExpressionType(module, fn, kind.Expr)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("unary operand: %w", err)
		}
		return operand, nil
	case ExprBinary:
		return resolveBinaryType(module, fn, kind)
	case ExprSelect:
		accept, err := ResolveExpressionType(module, fn, kind.Accept)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("select accept: %w", err)
		}
		return accept, nil
	case ExprRelational:
		return resolveRelationalType(module, fn, kind)
	case ExprMath:
		return resolveMathType(module, fn, kind)
	case ExprAs:
		return resolveAsType(module, fn, kind)
	case ExprCallResult:
		if int(kind.Function) >= len(module.Functions) {
			return TypeResolution{}, fmt.Errorf("function %d out of range", kind.Function)
		}
		result := module.Functions[kind.Function].Result
		if result == nil {
			return TypeResolution{}, fmt.Errorf("function %q has no return type", module.Functions[kind.Function].Name)
		}
		return handleResolution(result.Type), nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

func handleResolution(h TypeHandle) TypeResolution {
	return TypeResolution{Handle: &h}
}

// resolveInner resolves an expression and returns its TypeInner.
func resolveInner(module *Module, fn *Function, handle ExpressionHandle) (TypeInner, error) {
	res, err := ResolveExpressionType(module, fn, handle)
	if err != nil {
		return nil, err
	}
	if res.Handle != nil && int(*res.Handle) >= len(module.Types) {
		return nil, fmt.Errorf("type handle %d out of range", *res.Handle)
	}
	return res.Inner(module), nil
}

func resolveLiteralType(lit Literal) (TypeResolution, error) {
	switch v := lit.Value.(type) {
	case LiteralF64:
		return TypeResolution{Value: ScalarType{Kind: ScalarFloat, Width: 8}}, nil
	case LiteralF32:
		return TypeResolution{Value: f32Scalar}, nil
	case LiteralU32:
		return TypeResolution{Value: u32Scalar}, nil
	case LiteralI32:
		return TypeResolution{Value: ScalarType{Kind: ScalarSint, Width: 4}}, nil
	case LiteralBool:
		return TypeResolution{Value: boolScalar}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", v)
	}
}

// resolveIndexedType handles Access (index == nil) and AccessIndex.
func resolveIndexedType(module *Module, fn *Function, base ExpressionHandle, index *uint32) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, base)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("access base: %w", err)
	}

	switch t := inner.(type) {
	case ArrayType:
		return handleResolution(t.Base), nil
	case VectorType:
		return TypeResolution{Value: t.Scalar}, nil
	case MatrixType:
		return TypeResolution{Value: VectorType{Size: t.Rows, Scalar: t.Scalar}}, nil
	case StructType:
		if index == nil {
			return TypeResolution{}, fmt.Errorf("struct members need a constant index")
		}
		if int(*index) >= len(t.Members) {
			return TypeResolution{}, fmt.Errorf("struct member index %d out of range", *index)
		}
		return handleResolution(t.Members[*index].Type), nil
	case PointerType:
		if int(t.Base) >= len(module.Types) {
			return TypeResolution{}, fmt.Errorf("pointer base type %d out of range", t.Base)
		}
		switch pointee := module.Types[t.Base].Inner.(type) {
		case ArrayType:
			return TypeResolution{Value: PointerType{Base: pointee.Base, Space: t.Space}}, nil
		case VectorType:
			return TypeResolution{Value: ValuePointerType{Scalar: pointee.Scalar, Space: t.Space}}, nil
		case MatrixType:
			rows := pointee.Rows
			return TypeResolution{Value: ValuePointerType{Size: &rows, Scalar: pointee.Scalar, Space: t.Space}}, nil
		case StructType:
			if index == nil || int(*index) >= len(pointee.Members) {
				return TypeResolution{}, fmt.Errorf("invalid struct member access through pointer")
			}
			return TypeResolution{Value: PointerType{Base: pointee.Members[*index].Type, Space: t.Space}}, nil
		default:
			return TypeResolution{}, fmt.Errorf("cannot index through pointer to %T", pointee)
		}
	case ValuePointerType:
		if t.Size == nil {
			return TypeResolution{}, fmt.Errorf("cannot index through pointer to scalar")
		}
		return TypeResolution{Value: ValuePointerType{Scalar: t.Scalar, Space: t.Space}}, nil
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into type %T", t)
	}
}

func resolveSplatType(module *Module, fn *Function, expr ExprSplat) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Value)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("splat value: %w", err)
	}
	scalar, ok := inner.(ScalarType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("splat value must be scalar, got %T", inner)
	}
	return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: scalar}}, nil
}

func resolveSwizzleType(module *Module, fn *Function, expr ExprSwizzle) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Vector)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("swizzle vector: %w", err)
	}

	switch t := inner.(type) {
	case VectorType:
		return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: t.Scalar}}, nil
	case PointerType:
		if int(t.Base) < len(module.Types) {
			if vec, ok := module.Types[t.Base].Inner.(VectorType); ok {
				return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: vec.Scalar}}, nil
			}
		}
	case ValuePointerType:
		if t.Size != nil {
			return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: t.Scalar}}, nil
		}
	}
	return TypeResolution{}, fmt.Errorf("swizzle base must be vector, got %T", inner)
}

func resolveLoadType(module *Module, fn *Function, expr ExprLoad) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Pointer)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("load pointer: %w", err)
	}

	switch ptr := inner.(type) {
	case PointerType:
		return handleResolution(ptr.Base), nil
	case ValuePointerType:
		if ptr.Size != nil {
			return TypeResolution{Value: VectorType{Size: *ptr.Size, Scalar: ptr.Scalar}}, nil
		}
		return TypeResolution{Value: ptr.Scalar}, nil
	}
	return TypeResolution{}, fmt.Errorf("load requires pointer type, got %T", inner)
}

func resolveImage(module *Module, fn *Function, handle ExpressionHandle) (ImageType, error) {
	inner, err := resolveInner(module, fn, handle)
	if err != nil {
		return ImageType{}, err
	}
	img, ok := inner.(ImageType)
	if !ok {
		return ImageType{}, fmt.Errorf("expected image type, got %T", inner)
	}
	return img, nil
}

func resolveImageSampleType(module *Module, fn *Function, expr ExprImageSample) (TypeResolution, error) {
	img, err := resolveImage(module, fn, expr.Image)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("image sample image: %w", err)
	}
	if img.Class == ImageClassDepth && expr.DepthRef != nil {
		return TypeResolution{Value: f32Scalar}, nil
	}
	return TypeResolution{Value: VectorType{Size: Vec4, Scalar: f32Scalar}}, nil
}

func resolveImageLoadType(module *Module, fn *Function, expr ExprImageLoad) (TypeResolution, error) {
	img, err := resolveImage(module, fn, expr.Image)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("image load image: %w", err)
	}
	if img.Class == ImageClassDepth {
		return TypeResolution{Value: f32Scalar}, nil
	}
	return TypeResolution{Value: VectorType{Size: Vec4, Scalar: f32Scalar}}, nil
}

func resolveImageQueryType(module *Module, fn *Function, expr ExprImageQuery) (TypeResolution, error) {
	switch expr.Query.(type) {
	case ImageQuerySize:
		img, err := resolveImage(module, fn, expr.Image)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("image query image: %w", err)
		}
		switch img.Dim {
		case Dim1D:
			return TypeResolution{Value: u32Scalar}, nil
		case Dim3D:
			return TypeResolution{Value: VectorType{Size: Vec3, Scalar: u32Scalar}}, nil
		default:
			return TypeResolution{Value: VectorType{Size: Vec2, Scalar: u32Scalar}}, nil
		}
	case ImageQueryNumLevels, ImageQueryNumLayers, ImageQueryNumSamples:
		return TypeResolution{Value: u32Scalar}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown image query type: %T", expr.Query)
	}
}

func resolveBinaryType(module *Module, fn *Function, expr ExprBinary) (TypeResolution, error) {
	left, err := ResolveExpressionType(module, fn, expr.Left)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary left: %w", err)
	}

	switch {
	case expr.Op.IsComparison():
		if vec, ok := left.Inner(module).(VectorType); ok {
			return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: boolScalar}}, nil
		}
		return TypeResolution{Value: boolScalar}, nil

	case expr.Op == BinaryLogicalAnd || expr.Op == BinaryLogicalOr:
		return TypeResolution{Value: boolScalar}, nil
	}

	right, err := ResolveExpressionType(module, fn, expr.Right)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary right: %w", err)
	}
	if expr.Op == BinaryMultiply {
		return resolveMulResultType(module, left, right), nil
	}
	_, leftIsScalar := left.Inner(module).(ScalarType)
	_, rightIsVec := right.Inner(module).(VectorType)
	if leftIsScalar && rightIsVec {
		return right, nil
	}
	return left, nil
}

// resolveMulResultType determines the result type of a multiplication:
// scalar*vec is vec, scalar*mat is mat, mat*vec is vec(rows), vec*mat is vec(cols).
func resolveMulResultType(module *Module, left, right TypeResolution) TypeResolution {
	leftInner := left.Inner(module)
	rightInner := right.Inner(module)

	_, leftIsScalar := leftInner.(ScalarType)
	_, leftIsVec := leftInner.(VectorType)
	_, rightIsVec := rightInner.(VectorType)
	leftMat, leftIsMat := leftInner.(MatrixType)
	rightMat, rightIsMat := rightInner.(MatrixType)

	switch {
	case leftIsScalar && (rightIsVec || rightIsMat):
		return right
	case leftIsMat && rightIsVec:
		return TypeResolution{Value: VectorType{Size: leftMat.Rows, Scalar: leftMat.Scalar}}
	case leftIsVec && rightIsMat:
		return TypeResolution{Value: VectorType{Size: rightMat.Columns, Scalar: rightMat.Scalar}}
	case leftIsMat && rightIsMat:
		return TypeResolution{Value: MatrixType{Columns: rightMat.Columns, Rows: leftMat.Rows, Scalar: leftMat.Scalar}}
	default:
		return left
	}
}

func resolveRelationalType(module *Module, fn *Function, expr ExprRelational) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Argument)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("relational argument: %w", err)
	}

	if vec, ok := inner.(VectorType); ok {
		switch expr.Fun {
		case RelationalIsNan, RelationalIsInf:
			return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: boolScalar}}, nil
		}
	}
	return TypeResolution{Value: boolScalar}, nil
}

func resolveMathType(module *Module, fn *Function, expr ExprMath) (TypeResolution, error) {
	arg, err := ResolveExpressionType(module, fn, expr.Arg)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("math argument: %w", err)
	}
	inner := arg.Inner(module)

	switch expr.Fun {
	case MathDot, MathLength, MathDistance:
		if vec, ok := inner.(VectorType); ok {
			return TypeResolution{Value: vec.Scalar}, nil
		}
		return arg, nil

	case MathDeterminant:
		if mat, ok := inner.(MatrixType); ok {
			return TypeResolution{Value: mat.Scalar}, nil
		}
		return arg, nil

	case MathTranspose:
		if mat, ok := inner.(MatrixType); ok {
			return TypeResolution{Value: MatrixType{Columns: mat.Rows, Rows: mat.Columns, Scalar: mat.Scalar}}, nil
		}
		return arg, nil

	case MathOuter:
		if expr.Arg1 == nil {
			return TypeResolution{}, fmt.Errorf("outer product needs two arguments")
		}
		right, err := resolveInner(module, fn, *expr.Arg1)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("math argument 1: %w", err)
		}
		lv, lok := inner.(VectorType)
		rv, rok := right.(VectorType)
		if !lok || !rok {
			return TypeResolution{}, fmt.Errorf("outer product needs vector arguments")
		}
		return TypeResolution{Value: MatrixType{Columns: rv.Size, Rows: lv.Size, Scalar: lv.Scalar}}, nil

	default:
		return arg, nil
	}
}

func resolveAsType(module *Module, fn *Function, expr ExprAs) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Expr)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("as expr: %w", err)
	}
	source, ok := ScalarOf(inner)
	if !ok {
		return TypeResolution{}, fmt.Errorf("cannot cast type %T", inner)
	}

	target := ScalarType{Kind: expr.Kind, Width: source.Width}
	if expr.Convert != nil {
		target.Width = *expr.Convert
	}

	switch t := inner.(type) {
	case VectorType:
		return TypeResolution{Value: VectorType{Size: t.Size, Scalar: target}}, nil
	case MatrixType:
		return TypeResolution{Value: MatrixType{Columns: t.Columns, Rows: t.Rows, Scalar: target}}, nil
	default:
		return TypeResolution{Value: target}, nil
	}
}
