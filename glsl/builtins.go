package glsl

import (
	"sort"

	"github.com/gogpu/glslfront/ir"
)

type builtinKind uint8

const (
	builtinMath builtinKind = iota
	builtinAtan
	builtinMod
	builtinMix
	builtinCompare
	builtinRelational
	builtinSampler
	builtinTexture
	builtinTextureLod
	builtinTextureSize
	builtinTexelFetch
)

func (k builtinKind) String() string {
	switch k {
	case builtinMath:
		return "math"
	case builtinAtan:
		return "atan"
	case builtinMod:
		return "mod"
	case builtinMix:
		return "mix"
	case builtinCompare:
		return "compare"
	case builtinRelational:
		return "relational"
	case builtinSampler:
		return "sampler"
	case builtinTexture, builtinTextureLod, builtinTextureSize, builtinTexelFetch:
		return "texture"
	}
	return "unknown"
}

// builtin is one entry of the dispatch table. Expected is the count
// reported when the call has the wrong number of arguments.
type builtin struct {
	kind     builtinKind
	math     ir.MathFunction
	op       ir.BinaryOperator
	rel      ir.RelationalFunction
	min, max int
	expected int
}

func mathBuiltin(fun ir.MathFunction, args int) builtin {
	return builtin{kind: builtinMath, math: fun, min: args, max: args, expected: args}
}

func compareBuiltin(op ir.BinaryOperator) builtin {
	return builtin{kind: builtinCompare, op: op, min: 2, max: 2, expected: 2}
}

func relationalBuiltin(fun ir.RelationalFunction) builtin {
	return builtin{kind: builtinRelational, rel: fun, min: 1, max: 1, expected: 1}
}

var samplerBuiltin = builtin{kind: builtinSampler, min: 2, max: 2, expected: 2}

var builtins = map[string]builtin{
	"sampler1D":            samplerBuiltin,
	"sampler1DArray":       samplerBuiltin,
	"sampler2D":            samplerBuiltin,
	"sampler2DArray":       samplerBuiltin,
	"sampler2DMS":          samplerBuiltin,
	"sampler2DMSArray":     samplerBuiltin,
	"sampler3D":            samplerBuiltin,
	"samplerCube":          samplerBuiltin,
	"samplerCubeArray":     samplerBuiltin,
	"sampler2DShadow":      samplerBuiltin,
	"sampler2DArrayShadow": samplerBuiltin,
	"samplerCubeShadow":    samplerBuiltin,

	"texture":     {kind: builtinTexture, min: 2, max: 3, expected: 2},
	"textureLod":  {kind: builtinTextureLod, min: 3, max: 3, expected: 3},
	"textureSize": {kind: builtinTextureSize, min: 1, max: 2, expected: 1},
	"texelFetch":  {kind: builtinTexelFetch, min: 3, max: 3, expected: 3},

	"ceil":            mathBuiltin(ir.MathCeil, 1),
	"round":           mathBuiltin(ir.MathRound, 1),
	"floor":           mathBuiltin(ir.MathFloor, 1),
	"fract":           mathBuiltin(ir.MathFract, 1),
	"trunc":           mathBuiltin(ir.MathTrunc, 1),
	"sin":             mathBuiltin(ir.MathSin, 1),
	"abs":             mathBuiltin(ir.MathAbs, 1),
	"sqrt":            mathBuiltin(ir.MathSqrt, 1),
	"inversesqrt":     mathBuiltin(ir.MathInverseSqrt, 1),
	"exp":             mathBuiltin(ir.MathExp, 1),
	"exp2":            mathBuiltin(ir.MathExp2, 1),
	"sign":            mathBuiltin(ir.MathSign, 1),
	"transpose":       mathBuiltin(ir.MathTranspose, 1),
	"inverse":         mathBuiltin(ir.MathInverse, 1),
	"normalize":       mathBuiltin(ir.MathNormalize, 1),
	"sinh":            mathBuiltin(ir.MathSinh, 1),
	"cos":             mathBuiltin(ir.MathCos, 1),
	"cosh":            mathBuiltin(ir.MathCosh, 1),
	"tan":             mathBuiltin(ir.MathTan, 1),
	"tanh":            mathBuiltin(ir.MathTanh, 1),
	"acos":            mathBuiltin(ir.MathAcos, 1),
	"asin":            mathBuiltin(ir.MathAsin, 1),
	"log":             mathBuiltin(ir.MathLog, 1),
	"log2":            mathBuiltin(ir.MathLog2, 1),
	"length":          mathBuiltin(ir.MathLength, 1),
	"determinant":     mathBuiltin(ir.MathDeterminant, 1),
	"bitCount":        mathBuiltin(ir.MathCountOneBits, 1),
	"bitfieldReverse": mathBuiltin(ir.MathReverseBits, 1),

	"atan": {kind: builtinAtan, min: 1, max: 2, expected: 2},

	"pow":          mathBuiltin(ir.MathPow, 2),
	"dot":          mathBuiltin(ir.MathDot, 2),
	"max":          mathBuiltin(ir.MathMax, 2),
	"min":          mathBuiltin(ir.MathMin, 2),
	"reflect":      mathBuiltin(ir.MathReflect, 2),
	"cross":        mathBuiltin(ir.MathCross, 2),
	"outerProduct": mathBuiltin(ir.MathOuter, 2),
	"distance":     mathBuiltin(ir.MathDistance, 2),
	"step":         mathBuiltin(ir.MathStep, 2),
	"modf":         mathBuiltin(ir.MathModf, 2),
	"frexp":        mathBuiltin(ir.MathFrexp, 2),
	"ldexp":        mathBuiltin(ir.MathLdexp, 2),

	"mod": {kind: builtinMod, min: 2, max: 2, expected: 2},
	"mix": {kind: builtinMix, min: 3, max: 3, expected: 3},

	"clamp":       mathBuiltin(ir.MathClamp, 3),
	"faceforward": mathBuiltin(ir.MathFaceForward, 3),
	"refract":     mathBuiltin(ir.MathRefract, 3),
	"fma":         mathBuiltin(ir.MathFma, 3),
	"smoothstep":  mathBuiltin(ir.MathSmoothStep, 3),

	"lessThan":         compareBuiltin(ir.BinaryLess),
	"greaterThan":      compareBuiltin(ir.BinaryGreater),
	"lessThanEqual":    compareBuiltin(ir.BinaryLessEqual),
	"greaterThanEqual": compareBuiltin(ir.BinaryGreaterEqual),
	"equal":            compareBuiltin(ir.BinaryEqual),
	"notEqual":         compareBuiltin(ir.BinaryNotEqual),

	"isinf": relationalBuiltin(ir.RelationalIsInf),
	"isnan": relationalBuiltin(ir.RelationalIsNan),
	"all":   relationalBuiltin(ir.RelationalAll),
	"any":   relationalBuiltin(ir.RelationalAny),
}

// BuiltinInfo describes one builtin function.
type BuiltinInfo struct {
	Name    string
	Kind    string
	MinArgs int
	MaxArgs int
}

// Builtins lists the builtin functions sorted by name.
func Builtins() []BuiltinInfo {
	infos := make([]BuiltinInfo, 0, len(builtins))
	for name, b := range builtins {
		infos = append(infos, BuiltinInfo{Name: name, Kind: b.kind.String(), MinArgs: b.min, MaxArgs: b.max})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// IsBuiltin reports whether name is a builtin function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

//nolint:gocyclo,cyclop // One case per builtin kind
func (f *Frontend) builtinCall(ctx *Context, body *ir.Block, name string, b builtin, args []loweredArg, span Span) (*ir.ExpressionHandle, error) {
	if len(args) < b.min || len(args) > b.max {
		return nil, wrongArgCount(name, b.expected, len(args), span)
	}

	var expr ir.ExpressionHandle
	switch b.kind {
	case builtinMath:
		expr = ctx.AddExpression(mathExpression(b.math, args), body)

	case builtinAtan:
		fun := ir.MathAtan
		if len(args) == 2 {
			fun = ir.MathAtan2
		}
		expr = ctx.AddExpression(mathExpression(fun, args), body)

	case builtinMod:
		left, right := args[0].expr, args[1].expr
		if err := ctx.BinaryImplicitConversion(body, &left, args[0].span, &right, args[1].span); err != nil {
			return nil, err
		}
		expr = ctx.AddExpression(ir.ExprBinary{Op: ir.BinaryModulo, Left: left, Right: right}, body)

	case builtinMix:
		inner, err := ctx.ResolveType(args[2].expr, args[2].span)
		if err != nil {
			return nil, err
		}
		if s, ok := ir.ScalarOf(inner); ok && s.Kind == ir.ScalarBool {
			expr = ctx.AddExpression(ir.ExprSelect{
				Condition: args[2].expr,
				Accept:    args[0].expr,
				Reject:    args[1].expr,
			}, body)
		} else {
			expr = ctx.AddExpression(mathExpression(ir.MathMix, args), body)
		}

	case builtinCompare:
		expr = ctx.AddExpression(ir.ExprBinary{Op: b.op, Left: args[0].expr, Right: args[1].expr}, body)

	case builtinRelational:
		expr = ctx.AddExpression(ir.ExprRelational{Fun: b.rel, Argument: args[0].expr}, body)

	case builtinSampler:
		ctx.samplers[args[0].expr] = args[1].expr
		expr = args[0].expr

	case builtinTexture:
		return f.texture(ctx, body, name, args, span)
	case builtinTextureLod:
		return f.textureLod(ctx, body, name, args, span)
	case builtinTextureSize:
		return f.textureSize(ctx, body, args)
	case builtinTexelFetch:
		return f.texelFetch(ctx, body, name, args, span)
	}

	f.logger.Debug("builtin call", "name", name, "args", len(args))
	return &expr, nil
}

func mathExpression(fun ir.MathFunction, args []loweredArg) ir.ExprMath {
	m := ir.ExprMath{Fun: fun, Arg: args[0].expr}
	if len(args) > 1 {
		arg1 := args[1].expr
		m.Arg1 = &arg1
	}
	if len(args) > 2 {
		arg2 := args[2].expr
		m.Arg2 = &arg2
	}
	return m
}
