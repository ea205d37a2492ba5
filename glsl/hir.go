package glsl

import "github.com/gogpu/glslfront/ir"

// HirHandle indexes a Context's HIR arena.
type HirHandle uint32

// HirExpr is an untyped expression tree node produced by parsing.
// Nodes are lowered to IR on demand by Context.LowerExpect.
type HirExpr struct {
	Kind HirKind
	Span Span
}

// HirKind is the kind of an HIR node.
type HirKind interface {
	hirKind()
}

// HirAccess indexes an array, vector or matrix.
type HirAccess struct {
	Base  HirHandle
	Index HirHandle
}

func (HirAccess) hirKind() {}

// HirSelect selects a struct member or a vector swizzle by name.
type HirSelect struct {
	Base  HirHandle
	Field string
}

func (HirSelect) hirKind() {}

// HirConstant references a module constant.
type HirConstant struct {
	Constant ir.ConstantHandle
}

func (HirConstant) hirKind() {}

// HirLiteral is a literal scalar.
type HirLiteral struct {
	Value ir.LiteralValue
}

func (HirLiteral) hirKind() {}

// HirBinary applies a binary operator.
type HirBinary struct {
	Left  HirHandle
	Op    ir.BinaryOperator
	Right HirHandle
}

func (HirBinary) hirKind() {}

// HirUnary applies a unary operator.
type HirUnary struct {
	Op   ir.UnaryOperator
	Expr HirHandle
}

func (HirUnary) hirKind() {}

// HirVariable references a resolved variable.
type HirVariable struct {
	Ref VariableReference
}

func (HirVariable) hirKind() {}

// HirCall is a function call or type constructor.
type HirCall struct {
	Kind FunctionCallKind
	Args []HirHandle
}

func (HirCall) hirKind() {}

// HirConditional is the ternary operator.
type HirConditional struct {
	Condition HirHandle
	Accept    HirHandle
	Reject    HirHandle
}

func (HirConditional) hirKind() {}

// HirAssign stores Value through Target and yields Value.
type HirAssign struct {
	Target HirHandle
	Value  HirHandle
}

func (HirAssign) hirKind() {}

// VariableReference is what a name resolves to inside a function.
type VariableReference struct {
	// Expr is the pointer (Load set) or the value (Load unset).
	Expr ir.ExpressionHandle
	// Load is set when reading the variable needs a Load of Expr.
	Load bool
	// Mutable is set when the variable may be assigned.
	Mutable bool
	// EntryArg is the stage-interface index for interface globals.
	EntryArg *int
}

// FunctionCallKind is what a call site names.
type FunctionCallKind interface {
	functionCallKind()
}

// CallTypeConstructor constructs a value of Type.
type CallTypeConstructor struct {
	Type ir.TypeHandle
}

func (CallTypeConstructor) functionCallKind() {}

// CallFunction calls a builtin or user function by name.
type CallFunction struct {
	Name string
}

func (CallFunction) functionCallKind() {}
