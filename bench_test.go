package glslfront

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/gogpu/glslfront/unit"
)

// overloadedUnit declares n overloads of f, one per vector width and
// scalar type, and a fragment entry point that calls each of them.
func overloadedUnit(n int) *unit.Unit {
	types := []string{"float", "vec2", "vec3", "vec4", "int", "ivec2", "ivec3", "ivec4"}
	u := &unit.Unit{
		FormatVersion: unit.CurrentFormat,
		Options:       unit.Options{EntryPoints: map[string]string{"main": "fragment"}},
		Interface:     []unit.EntryArg{{Name: "color", Type: "vec4"}},
	}

	var calls []unit.Stmt
	for i := 0; i < n; i++ {
		ty := types[i%len(types)]
		name := fmt.Sprintf("f%d", i/len(types))
		u.Functions = append(u.Functions, unit.Function{
			Name:   name,
			Result: ty,
			Params: []unit.Param{{Name: "v", Type: ty}},
			Body:   []unit.Stmt{{Kind: "return", Expr: &unit.Expr{Kind: "var", Name: "v"}}},
		})
		calls = append(calls, unit.Stmt{Kind: "expr", Expr: &unit.Expr{
			Kind: "call",
			Name: name,
			Args: []unit.Expr{{Kind: "construct", Type: ty, Args: []unit.Expr{{Kind: "lit", Value: "1"}}}},
		}})
	}
	calls = append(calls, unit.Stmt{Kind: "expr", Expr: &unit.Expr{
		Kind: "assign",
		Args: []unit.Expr{
			{Kind: "var", Name: "color"},
			{Kind: "construct", Type: "vec4", Args: []unit.Expr{{Kind: "lit", Value: "0.5"}}},
		},
	}})
	u.Functions = append(u.Functions, unit.Function{Name: "main", Body: calls})
	return u
}

// BenchmarkCompile benchmarks building units of growing size, grouped by
// overload count.
func BenchmarkCompile(b *testing.B) {
	for _, n := range []int{8, 64, 512} {
		u := overloadedUnit(n)
		b.Run(fmt.Sprintf("overloads=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				module, err := Compile(u, CompileOptions{Validate: false})
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
				runtime.KeepAlive(module)
			}
		})
	}
}

// BenchmarkCompileWithValidation measures the overhead of the validation
// pass.
func BenchmarkCompileWithValidation(b *testing.B) {
	u := overloadedUnit(64)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		module, err := Compile(u, DefaultOptions())
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
		runtime.KeepAlive(module)
	}
}

// BenchmarkLoadAndCompile benchmarks the full pipeline from the TOML
// fixture.
func BenchmarkLoadAndCompile(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		module, err := CompileFile(fixture, DefaultOptions())
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
		runtime.KeepAlive(module)
	}
}

func TestOverloadedUnitCompiles(t *testing.T) {
	module, err := Compile(overloadedUnit(16), DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if n := len(module.Functions); n != 17 {
		t.Errorf("got %d functions, want 16 overloads and main", n)
	}
}
