package ir

import (
	"strings"
	"testing"
)

func bindingPtr(b Binding) *Binding {
	return &b
}

func exprPtr(h ExpressionHandle) *ExpressionHandle {
	return &h
}

// newValidModule builds a fragment module whose entry stores a constant
// into a private global and returns it through a bound struct.
func newValidModule() *Module {
	registry := NewTypeRegistry()
	f32 := registry.GetOrCreate("", testF32)
	out := registry.GetOrCreate("FragmentOutput", StructType{
		Members: []StructMember{{
			Name:    "color",
			Type:    f32,
			Binding: bindingPtr(LocationBinding{Location: 0}),
		}},
		Span: 4,
	})

	return &Module{
		Types: registry.GetTypes(),
		GlobalVariables: []GlobalVariable{
			{Name: "color", Space: SpacePrivate, Type: f32},
		},
		EntryPoints: []EntryPoint{{
			Name:  "main",
			Stage: StageFragment,
			Function: Function{
				Result: &FunctionResult{Type: out},
				Expressions: []Expression{
					{Kind: ExprGlobalVariable{Variable: 0}},
					{Kind: Literal{Value: LiteralF32(1)}},
					{Kind: ExprLoad{Pointer: 0}},
					{Kind: ExprCompose{Type: out, Components: []ExpressionHandle{2}}},
				},
				Body: Block{
					{Kind: StmtStore{Pointer: 0, Value: 1}},
					{Kind: StmtEmit{Range: Range{Start: 2, End: 4}}},
					{Kind: StmtReturn{Value: exprPtr(3)}},
				},
			},
		}},
	}
}

func expectValidationErrors(t *testing.T, module *Module, expectedSubstrings ...string) {
	t.Helper()
	errs, err := Validate(module)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, want := range expectedSubstrings {
		found := false
		for _, e := range errs {
			if strings.Contains(e.Error(), want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected validation error containing %q, got %v", want, errs)
		}
	}
}

func expectNoValidationErrors(t *testing.T, module *Module) {
	t.Helper()
	errs, err := Validate(module)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("unexpected validation error: %s", e.Error())
	}
}

func TestValidate_ValidModule(t *testing.T) {
	expectNoValidationErrors(t, newValidModule())
}

func TestValidate_NilModule(t *testing.T) {
	if _, err := Validate(nil); err == nil {
		t.Error("Expected error for nil module, got nil")
	}
}

func TestValidate_UseBeforeEmit(t *testing.T) {
	module := newValidModule()
	body := &module.EntryPoints[0].Function.Body
	*body = Block{(*body)[0], (*body)[2], (*body)[1]}

	expectValidationErrors(t, module, "return value expression 3 is used before it is emitted")
}

func TestValidate_EmitCoversPreEmitExpression(t *testing.T) {
	module := newValidModule()
	module.EntryPoints[0].Function.Body[1] = Statement{Kind: StmtEmit{Range: Range{Start: 1, End: 4}}}

	expectValidationErrors(t, module, "emit range covers pre-emitted expression 1")
}

func TestValidate_OperandOrdering(t *testing.T) {
	module := newValidModule()
	exprs := module.EntryPoints[0].Function.Expressions
	exprs[2] = Expression{Kind: ExprLoad{Pointer: 3}}

	expectValidationErrors(t, module, "operand 3 is not defined before its use")
}

func TestValidate_CallResult(t *testing.T) {
	module := newValidModule()
	module.Functions = []Function{{
		Name:   "helper",
		Result: &FunctionResult{Type: 0},
		Expressions: []Expression{
			{Kind: Literal{Value: LiteralF32(2)}},
		},
		Body: Block{{Kind: StmtReturn{Value: exprPtr(0)}}},
	}}

	fn := &module.EntryPoints[0].Function
	fn.Expressions = append(fn.Expressions, Expression{Kind: ExprCallResult{Function: 0}})
	fn.Body = append(Block{{Kind: StmtCall{Function: 0, Result: exprPtr(4)}}}, fn.Body...)
	expectNoValidationErrors(t, module)

	fn.Body = append(fn.Body[:0:0], Statement{Kind: StmtEmit{Range: Range{Start: 4, End: 5}}})
	expectValidationErrors(t, module, "emit range covers call result 4")
}

func TestValidate_CallArgumentCount(t *testing.T) {
	module := newValidModule()
	module.Functions = []Function{{
		Name:      "takesOne",
		Arguments: []FunctionArgument{{Name: "x", Type: 0}},
	}}
	fn := &module.EntryPoints[0].Function
	fn.Body = append(Block{{Kind: StmtCall{Function: 0}}}, fn.Body...)

	expectValidationErrors(t, module, `call to "takesOne" passes 0 arguments, want 1`)
}

func TestValidate_ControlFlowPlacement(t *testing.T) {
	tests := []struct {
		name string
		body Block
		want string
	}{
		{"break outside loop", Block{{Kind: StmtBreak{}}}, "break outside of loop or switch"},
		{"continue outside loop", Block{{Kind: StmtContinue{}}}, "continue outside of loop"},
		{
			"return in continuing",
			Block{{Kind: StmtLoop{Continuing: Block{{Kind: StmtReturn{}}}}}},
			"return in continuing block",
		},
		{
			"switch without default",
			Block{{Kind: StmtSwitch{Selector: 1, Cases: []SwitchCase{{Value: SwitchValueI32(0)}}}}},
			"switch missing default case",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := newValidModule()
			module.EntryPoints[0].Function.Body = tt.body
			expectValidationErrors(t, module, tt.want)
		})
	}
}

func TestValidate_BreakInsideSwitch(t *testing.T) {
	module := newValidModule()
	fn := &module.EntryPoints[0].Function
	fn.Body = append(Block{{Kind: StmtSwitch{
		Selector: 1,
		Cases:    []SwitchCase{{Value: SwitchValueDefault{}, Body: Block{{Kind: StmtBreak{}}}}},
	}}}, fn.Body...)

	expectNoValidationErrors(t, module)
}

func TestValidate_Types(t *testing.T) {
	tests := []struct {
		name  string
		types []Type
		want  string
	}{
		{
			"vector width",
			[]Type{{Inner: VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarFloat, Width: 3}}}},
			"vector scalar width",
		},
		{
			"integer matrix",
			[]Type{{Inner: MatrixType{Columns: Vec2, Rows: Vec2, Scalar: testI32}}},
			"matrix scalar must be float",
		},
		{
			"forward struct member",
			[]Type{{Name: "S", Inner: StructType{Members: []StructMember{{Name: "a", Type: 1}}}}, {Inner: testF32}},
			"is not declared before it",
		},
		{
			"duplicate member",
			[]Type{{Inner: testF32}, {Inner: StructType{Members: []StructMember{{Name: "a"}, {Name: "a"}}}}},
			`duplicate struct member name "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectValidationErrors(t, &Module{Types: tt.types}, tt.want)
		})
	}
}

func TestValidate_EntryPoints(t *testing.T) {
	t.Run("compute workgroup", func(t *testing.T) {
		module := &Module{EntryPoints: []EntryPoint{{Name: "main", Stage: StageCompute}}}
		expectValidationErrors(t, module, "workgroup size must be non-zero")
	})

	t.Run("early depth on vertex", func(t *testing.T) {
		module := &Module{EntryPoints: []EntryPoint{{Name: "main", Stage: StageVertex, EarlyDepthTest: &EarlyDepthTest{}}}}
		expectValidationErrors(t, module, "early depth test is only valid for fragment")
	})

	t.Run("unbound result member", func(t *testing.T) {
		module := newValidModule()
		st := module.Types[1].Inner.(StructType)
		st.Members[0].Binding = nil
		expectValidationErrors(t, module, `result member "color" has no binding`)
	})

	t.Run("same name different stage", func(t *testing.T) {
		module := &Module{EntryPoints: []EntryPoint{
			{Name: "main", Stage: StageVertex},
			{Name: "main", Stage: StageFragment},
			{Name: "main", Stage: StageFragment},
		}}
		expectValidationErrors(t, module, `duplicate fragment entry point "main"`)
	})
}

func TestValidate_DuplicateResourceBinding(t *testing.T) {
	module := newValidModule()
	module.Types = append(module.Types, Type{Inner: ImageType{Dim: Dim2D}})
	module.GlobalVariables = append(module.GlobalVariables,
		GlobalVariable{Name: "a", Space: SpaceHandle, Type: 2, Binding: &ResourceBinding{Group: 0, Binding: 1}},
		GlobalVariable{Name: "b", Space: SpaceHandle, Type: 2, Binding: &ResourceBinding{Group: 0, Binding: 1}},
	)

	expectValidationErrors(t, module, `already used by "a"`)
}

func TestValidationError_Formatting(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Message: "bad", Statement: -1}, "bad"},
		{ValidationError{Message: "bad", Function: "f", Statement: -1}, "in function f: bad"},
		{ValidationError{Message: "bad", Function: "f", Statement: 2}, "in function f, statement 2: bad"},
		{ValidationError{Message: "bad", Function: "f", Expression: exprPtr(7), Statement: -1}, "in function f, expression 7: bad"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
