package glsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/glslfront/ir"
)

var (
	testF32  = ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	testF64  = ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}
	testI32  = ir.ScalarType{Kind: ir.ScalarSint, Width: 4}
	testU32  = ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
	testBool = ir.ScalarType{Kind: ir.ScalarBool, Width: 1}
)

// fixture drives one function context of a Frontend.
type fixture struct {
	t    *testing.T
	fe   *Frontend
	ctx  *Context
	body ir.Block
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	fe := New(opts)
	return &fixture{t: t, fe: fe, ctx: fe.NewContext()}
}

// restart begins a new function context on the same frontend.
func (fx *fixture) restart() {
	fx.ctx = fx.fe.NewContext()
	fx.body = nil
}

func (fx *fixture) typ(inner ir.TypeInner) ir.TypeHandle {
	return fx.fe.AddType("", inner)
}

func (fx *fixture) vec(size ir.VectorSize, scalar ir.ScalarType) ir.TypeHandle {
	return fx.typ(ir.VectorType{Size: size, Scalar: scalar})
}

func (fx *fixture) lit(v ir.LiteralValue) HirHandle {
	return fx.ctx.AddHir(HirLiteral{Value: v}, Span{})
}

func (fx *fixture) local(name string, ty ir.TypeHandle) HirHandle {
	ref := fx.ctx.AddLocal(&fx.body, name, ty)
	return fx.ctx.AddHir(HirVariable{Ref: ref}, Span{})
}

func (fx *fixture) variable(name string) HirHandle {
	fx.t.Helper()
	ref, ok := fx.ctx.Variable(&fx.body, name)
	if !ok {
		fx.t.Fatalf("variable %q not found", name)
	}
	return fx.ctx.AddHir(HirVariable{Ref: ref}, Span{})
}

func (fx *fixture) field(base HirHandle, name string) HirHandle {
	return fx.ctx.AddHir(HirSelect{Base: base, Field: name}, Span{})
}

func (fx *fixture) assign(target, value HirHandle) HirHandle {
	return fx.ctx.AddHir(HirAssign{Target: target, Value: value}, Span{})
}

func (fx *fixture) call(name string, args ...HirHandle) HirHandle {
	return fx.ctx.AddHir(HirCall{Kind: CallFunction{Name: name}, Args: args}, Span{Start: Position{Line: 3, Column: 5}})
}

func (fx *fixture) construct(ty ir.TypeHandle, args ...HirHandle) HirHandle {
	return fx.ctx.AddHir(HirCall{Kind: CallTypeConstructor{Type: ty}, Args: args}, Span{Start: Position{Line: 3, Column: 5}})
}

func (fx *fixture) lower(h HirHandle) ir.ExpressionHandle {
	fx.t.Helper()
	expr, _, err := fx.ctx.LowerExpect(&fx.body, h, false)
	if err != nil {
		fx.t.Fatalf("LowerExpect() error = %v", err)
	}
	return expr
}

// lowerStatement lowers h for its side effects.
func (fx *fixture) lowerStatement(h HirHandle) {
	fx.t.Helper()
	if _, _, err := fx.ctx.Lower(&fx.body, h, false); err != nil {
		fx.t.Fatalf("Lower() error = %v", err)
	}
}

func (fx *fixture) lowerError(h HirHandle) *Error {
	fx.t.Helper()
	_, _, err := fx.ctx.LowerExpect(&fx.body, h, false)
	if err == nil {
		fx.t.Fatal("expected an error, got nil")
	}
	var ferr *Error
	if !errors.As(err, &ferr) {
		fx.t.Fatalf("error %v is not a *Error", err)
	}
	return ferr
}

func (fx *fixture) expr(h ir.ExpressionHandle) ir.ExpressionKind {
	return fx.ctx.Expression(h)
}

func (fx *fixture) typeOf(h ir.ExpressionHandle) ir.TypeInner {
	fx.t.Helper()
	inner, err := fx.ctx.ResolveType(h, Span{})
	if err != nil {
		fx.t.Fatalf("ResolveType(%d) error = %v", h, err)
	}
	return inner
}

// define registers the function built so far in the fixture's context
// and starts a new one.
func (fx *fixture) define(name string, result *ir.TypeHandle) ir.FunctionHandle {
	fx.t.Helper()
	h, err := fx.fe.AddFunction(fx.ctx, name, result, fx.body, Span{})
	if err != nil {
		fx.t.Fatalf("AddFunction(%q) error = %v", name, err)
	}
	fx.restart()
	return h
}

// declare defines a function with the given parameters whose body only
// returns, from a fresh context, and leaves the fixture's context alone.
func (fx *fixture) declare(name string, result *ir.TypeHandle, params ...param) ir.FunctionHandle {
	fx.t.Helper()
	ctx := fx.fe.NewContext()
	var body ir.Block
	for _, p := range params {
		ctx.AddParameter(&body, p.name, p.ty, p.qualifier)
	}
	h, err := fx.fe.AddFunction(ctx, name, result, body, Span{})
	if err != nil {
		fx.t.Fatalf("AddFunction(%q) error = %v", name, err)
	}
	return h
}

type param struct {
	name      string
	ty        ir.TypeHandle
	qualifier ParameterQualifier
}

func typePtr(h ir.TypeHandle) *ir.TypeHandle {
	return &h
}

// statements returns the kinds of the fixture's body in order.
func (fx *fixture) statements() []ir.StatementKind {
	kinds := make([]ir.StatementKind, len(fx.body))
	for i, s := range fx.body {
		kinds[i] = s.Kind
	}
	return kinds
}

func (fx *fixture) countExpressions(match func(ir.ExpressionKind) bool) int {
	n := 0
	for _, e := range fx.ctx.function.Expressions {
		if match(e.Kind) {
			n++
		}
	}
	return n
}

func expectNoValidationErrors(t *testing.T, module *ir.Module) {
	t.Helper()
	errs, err := ir.Validate(module)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("unexpected validation error: %s", e.Error())
	}
}

func expectMessage(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want it to contain %q", err.Error(), want)
	}
}

// lastCall returns the last call statement of the fixture's body.
func (fx *fixture) lastCall() ir.StmtCall {
	fx.t.Helper()
	for i := len(fx.body) - 1; i >= 0; i-- {
		if call, ok := fx.body[i].Kind.(ir.StmtCall); ok {
			return call
		}
	}
	fx.t.Fatal("no call statement in body")
	return ir.StmtCall{}
}
