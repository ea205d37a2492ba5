package unit

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/glslfront/glsl"
	"github.com/gogpu/glslfront/ir"
)

// dumpUnit builds u and returns the textual dump of the module.
func dumpUnit(t *testing.T, u *Unit) string {
	t.Helper()
	module, err := Build(u, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	var sb strings.Builder
	if err := ir.Fprint(&sb, module); err != nil {
		t.Fatalf("Fprint() error = %v", err)
	}
	return sb.String()
}

func expectValid(t *testing.T, module *ir.Module) {
	t.Helper()
	errs, err := ir.Validate(module)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("unexpected validation error: %s", e.Error())
	}
}

func lit(v string) *Expr      { return &Expr{Kind: "lit", Value: v} }
func ref(name string) *Expr   { return &Expr{Kind: "var", Name: name} }
func exprStmt(e *Expr) Stmt   { return Stmt{Kind: "expr", Expr: e} }
func args(es ...*Expr) []Expr { return deref(es) }

func deref(es []*Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = *e
	}
	return out
}

func assign(target, value *Expr) *Expr {
	return &Expr{Kind: "assign", Args: args(target, value)}
}

func fragmentUnit(functions ...Function) *Unit {
	return &Unit{
		FormatVersion: CurrentFormat,
		Options:       Options{EntryPoints: map[string]string{"main": "fragment"}},
		Interface: []EntryArg{
			{Name: "uv", Type: "vec2", Location: 0, Inputs: []string{"fragment"}},
			{Name: "color", Type: "vec4", Location: 0},
		},
		Functions: functions,
	}
}

func TestBuildFixture(t *testing.T) {
	u, err := Load(filepath.Join("testdata", "fragment.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	module, err := Build(u, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(module.EntryPoints) != 1 {
		t.Fatalf("got %d entry points, want 1", len(module.EntryPoints))
	}
	ep := module.EntryPoints[0]
	if ep.Name != "main" || ep.Stage != ir.StageFragment {
		t.Errorf("entry point = %s %v", ep.Name, ep.Stage)
	}
	if args := ep.Function.Arguments; len(args) != 1 || args[0].Name != "uv" {
		t.Errorf("arguments = %+v, want uv", args)
	}
	if ep.Function.Result == nil {
		t.Fatal("entry point has no result")
	}
	st := module.Types[ep.Function.Result.Type].Inner.(ir.StructType)
	if len(st.Members) != 1 || st.Members[0].Name != "color" {
		t.Errorf("outputs = %+v, want color", st.Members)
	}

	scale := module.GlobalVariables[0]
	if scale.Space != ir.SpaceUniform || scale.Binding == nil || scale.Binding.Binding != 1 {
		t.Errorf("scale = %+v, want a uniform at binding 1", scale)
	}
	expectValid(t, module)
}

func TestBuildStatements(t *testing.T) {
	main := Function{Name: "main", Body: []Stmt{
		{Kind: "local", Name: "acc", Type: "vec4", Expr: &Expr{Kind: "construct", Type: "vec4", Args: args(lit("0.0"))}},
		{Kind: "local", Name: "i", Type: "int", Expr: lit("0")},
		{
			Kind: "loop",
			Expr: &Expr{Kind: "binary", Op: "<", Args: args(ref("i"), lit("4"))},
			Body: []Stmt{
				exprStmt(&Expr{Kind: "assign", Op: "+=", Args: args(ref("acc"), lit("0.25"))}),
				exprStmt(&Expr{Kind: "assign", Op: "+=", Args: args(ref("i"), lit("1"))}),
			},
		},
		{
			Kind: "if",
			Expr: &Expr{Kind: "binary", Op: ">", Args: args(&Expr{Kind: "field", Name: "x", Args: args(ref("uv"))}, lit("0.5"))},
			Then: []Stmt{{Kind: "discard"}},
			Else: []Stmt{exprStmt(assign(ref("color"), ref("acc")))},
		},
		{Kind: "block", Body: []Stmt{{Kind: "local", Name: "acc", Type: "float"}}},
	}}
	module, err := Build(fragmentUnit(main), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	fn := module.Functions[0]
	if len(fn.LocalVars) != 3 {
		t.Errorf("got %d locals, want acc, i and the shadowing acc", len(fn.LocalVars))
	}
	var loop *ir.StmtLoop
	var branch *ir.StmtIf
	for _, s := range fn.Body {
		switch k := s.Kind.(type) {
		case ir.StmtLoop:
			loop = &k
		case ir.StmtIf:
			branch = &k
		}
	}
	if loop == nil || branch == nil {
		t.Fatalf("body = %+v, want a loop and an if", fn.Body)
	}
	if _, ok := loop.Body[0].Kind.(ir.StmtEmit); !ok {
		t.Errorf("loop starts with %T, want the condition's emit", loop.Body[0].Kind)
	}
	foundGuard := false
	for _, s := range loop.Body {
		if k, ok := s.Kind.(ir.StmtIf); ok && len(k.Accept) == 0 && len(k.Reject) == 1 {
			_, foundGuard = k.Reject[0].Kind.(ir.StmtBreak)
		}
	}
	if !foundGuard {
		t.Error("loop has no break guard")
	}
	if _, ok := branch.Accept[0].Kind.(ir.StmtKill); !ok {
		t.Errorf("accept = %+v, want a kill", branch.Accept)
	}

	ep := module.EntryPoints[0].Function
	if len(ep.Arguments) != 1 || ep.Result == nil {
		t.Errorf("entry point reads %d inputs, result %v", len(ep.Arguments), ep.Result)
	}
	expectValid(t, module)
}

func TestBuildOverloadsAndPrototypes(t *testing.T) {
	u := fragmentUnit(
		Function{Name: "pick", Result: "float", Prototype: true, Params: []Param{{Name: "v", Type: "float"}}},
		Function{Name: "main", Body: []Stmt{
			exprStmt(assign(ref("color"), &Expr{Kind: "construct", Type: "vec4", Args: args(
				&Expr{Kind: "call", Name: "pick", Args: args(lit("1"))},
			)})),
		}},
		Function{Name: "pick", Result: "float", Params: []Param{{Name: "v", Type: "float"}}, Body: []Stmt{
			{Kind: "return", Expr: ref("v")},
		}},
		Function{Name: "pick", Result: "float", Params: []Param{{Name: "v", Type: "vec2"}, {Name: "w", Type: "float", Qualifier: "out"}}, Body: []Stmt{
			exprStmt(assign(ref("w"), lit("1.0"))),
			{Kind: "return", Expr: &Expr{Kind: "field", Name: "y", Args: args(ref("v"))}},
		}},
	)
	module, err := Build(u, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if n := len(module.Functions); n != 3 {
		t.Errorf("got %d functions, want the prototype slot, main and the vec2 overload", n)
	}
	if len(module.Functions[0].Body) == 0 {
		t.Error("prototype was not filled in by its definition")
	}
	expectValid(t, module)
}

func TestBuildConstantsAndGlobals(t *testing.T) {
	u := fragmentUnit(Function{Name: "main", Body: []Stmt{
		exprStmt(assign(ref("color"), &Expr{Kind: "call", Name: "texture", Args: args(
			&Expr{Kind: "call", Name: "sampler2D", Args: args(ref("tex"), ref("samp"))},
			&Expr{Kind: "binary", Op: "*", Args: args(ref("uv"), ref("SCALE"))},
		)})),
	}})
	u.Constants = []Constant{{Name: "SCALE", Type: "float", Value: "2"}}
	u.Globals = []Global{
		{Name: "tex", Type: "texture2D", Group: 0, Binding: 0},
		{Name: "samp", Type: "sampler", Group: 0, Binding: 1},
	}

	module, err := Build(u, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c := module.Constants[0]; c.Name != "SCALE" || c.Value.(ir.ScalarValue).Bits != 0x40000000 {
		t.Errorf("constant = %+v, want SCALE = 2.0", c)
	}
	for _, g := range module.GlobalVariables[:2] {
		if g.Space != ir.SpaceHandle || g.Binding == nil {
			t.Errorf("global %s = %+v, want a bound handle", g.Name, g)
		}
	}
	if module.GlobalVariables[1].Binding.Binding != 1 {
		t.Errorf("sampler binding = %d, want 1", module.GlobalVariables[1].Binding.Binding)
	}
	expectValid(t, module)
}

func TestBuildOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"unknown stage", Options{EntryPoints: map[string]string{"main": "geometry"}}, "unknown stage"},
		{"too many dimensions", Options{WorkgroupSize: []int64{1, 1, 1, 1}}, "at most 3"},
		{"negative size", Options{WorkgroupSize: []int64{-1}}, "out of range"},
		{"zero size", Options{WorkgroupSize: []int64{8, 0}}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&Unit{FormatVersion: CurrentFormat, Options: tt.opts}, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Build() error = %v, want %q", err, tt.wantErr)
			}
		})
	}

	opts, err := Options{EntryPoints: map[string]string{"cs": "compute"}, WorkgroupSize: []int64{8, 8}}.frontendOptions()
	if err != nil {
		t.Fatalf("frontendOptions() error = %v", err)
	}
	if opts.WorkgroupSize != [3]uint32{8, 8, 1} || opts.EntryPoints["cs"] != ir.StageCompute {
		t.Errorf("options = %+v", opts)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		body []Stmt
		want string
	}{
		{
			"unknown variable",
			[]Stmt{exprStmt(&Expr{Kind: "var", Name: "nope", Line: 2, Column: 9})},
			"2:9: Unknown variable: nope",
		},
		{
			"unknown function",
			[]Stmt{exprStmt(&Expr{Kind: "call", Name: "shade", Line: 3, Column: 5})},
			"3:5: Unknown function 'shade'",
		},
		{
			"void return value",
			[]Stmt{{Kind: "return", Expr: lit("1"), Line: 4, Column: 1}},
			"4:1: void function returns a value",
		},
		{
			"operand count",
			[]Stmt{exprStmt(&Expr{Kind: "binary", Op: "+", Args: args(lit("1")), Line: 1, Column: 1})},
			"binary expression expects 2 operands, found 1",
		},
		{
			"unknown statement",
			[]Stmt{{Kind: "goto", Line: 7, Column: 2}},
			`7:2: unknown statement kind "goto"`,
		},
		{
			"compound operator",
			[]Stmt{exprStmt(&Expr{Kind: "assign", Op: "%%", Args: args(ref("color"), lit("1"))})},
			"unknown assignment operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(fragmentUnit(Function{Name: "main", Body: tt.body}), nil)
			if err == nil {
				t.Fatal("Build() succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestBuildErrorRendersSource(t *testing.T) {
	u := fragmentUnit(Function{Name: "main", Body: []Stmt{
		exprStmt(&Expr{Kind: "call", Name: "shade", Line: 2, Column: 5}),
	}})
	u.Source = "void main() {\n    shade();\n}"

	_, err := Build(u, nil)
	var ferr *glsl.Error
	if !errors.As(err, &ferr) {
		t.Fatalf("error %v is not a *glsl.Error", err)
	}
	got := ferr.FormatWithContext()
	if !strings.Contains(got, "  2|     shade();") || !strings.Contains(got, "--> line 2:5") {
		t.Errorf("FormatWithContext() =\n%s", got)
	}
}
