package ir

import (
	"testing"
)

var (
	testF32 = ScalarType{Kind: ScalarFloat, Width: 4}
	testF64 = ScalarType{Kind: ScalarFloat, Width: 8}
	testI32 = ScalarType{Kind: ScalarSint, Width: 4}
	testU32 = ScalarType{Kind: ScalarUint, Width: 4}
)

func TestTypeRegistry_Deduplication(t *testing.T) {
	size := uint32(4)
	tests := []struct {
		name  string
		inner TypeInner
	}{
		{"scalar", testF32},
		{"vector", VectorType{Size: Vec3, Scalar: testF32}},
		{"matrix", MatrixType{Columns: Vec4, Rows: Vec3, Scalar: testF32}},
		{"array", ArrayType{Base: 0, Size: ArraySize{Constant: &size}, Stride: 4}},
		{"pointer", PointerType{Base: 0, Space: SpaceFunction}},
		{"sampler", SamplerType{Comparison: true}},
		{"image", ImageType{Dim: Dim2D, Arrayed: true, Class: ImageClassSampled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewTypeRegistry()
			registry.GetOrCreate("", testF32)
			before := registry.Count()

			first := registry.GetOrCreate("", tt.inner)
			second := registry.GetOrCreate("", tt.inner)
			if first != second {
				t.Errorf("identical types got handles %d and %d", first, second)
			}
			if tt.name != "scalar" && registry.Count() != before+1 {
				t.Errorf("Count() = %d, want %d", registry.Count(), before+1)
			}
		})
	}
}

func TestTypeRegistry_DistinctTypes(t *testing.T) {
	registry := NewTypeRegistry()

	inners := []TypeInner{
		testF32,
		testF64,
		testI32,
		testU32,
		VectorType{Size: Vec2, Scalar: testF32},
		VectorType{Size: Vec4, Scalar: testF32},
		VectorType{Size: Vec4, Scalar: testI32},
		MatrixType{Columns: Vec3, Rows: Vec3, Scalar: testF32},
		MatrixType{Columns: Vec4, Rows: Vec4, Scalar: testF32},
		ImageType{Dim: Dim2D, Class: ImageClassSampled},
		ImageType{Dim: Dim2D, Class: ImageClassSampled, Multisampled: true},
		ImageType{Dim: Dim3D, Class: ImageClassSampled},
		SamplerType{},
		SamplerType{Comparison: true},
	}

	seen := make(map[TypeHandle]int)
	for i, inner := range inners {
		h := registry.GetOrCreate("", inner)
		if j, dup := seen[h]; dup {
			t.Errorf("types %d and %d share handle %d", j, i, h)
		}
		seen[h] = i
	}
	if registry.Count() != len(inners) {
		t.Errorf("Count() = %d, want %d", registry.Count(), len(inners))
	}
}

func TestTypeRegistry_StructsKeyedByName(t *testing.T) {
	registry := NewTypeRegistry()
	f32 := registry.GetOrCreate("", testF32)

	members := []StructMember{{Name: "a", Type: f32, Offset: 0}}
	a1 := registry.GetOrCreate("A", StructType{Members: members, Span: 4})
	a2 := registry.GetOrCreate("A", StructType{Members: members, Span: 4})
	b := registry.GetOrCreate("B", StructType{Members: members, Span: 4})

	if a1 != a2 {
		t.Errorf("same named struct got handles %d and %d", a1, a2)
	}
	if a1 == b {
		t.Error("structs with different names should stay distinct")
	}

	// Non-struct names do not participate in the key.
	if h := registry.GetOrCreate("float", testF32); h != f32 {
		t.Errorf("named scalar got handle %d, want %d", h, f32)
	}
}

func TestTypeRegistry_Lookup(t *testing.T) {
	registry := NewTypeRegistry()

	f32 := registry.GetOrCreate("f32", testF32)

	typ, ok := registry.Lookup(f32)
	if !ok {
		t.Fatal("Expected to find registered type")
	}
	if typ.Name != "f32" {
		t.Errorf("Expected name 'f32', got '%s'", typ.Name)
	}

	if _, ok = registry.Lookup(TypeHandle(999)); ok {
		t.Error("Expected not to find invalid handle")
	}
	if got := len(registry.GetTypes()); got != 1 {
		t.Errorf("GetTypes() has %d types, want 1", got)
	}
}

func TestSameType(t *testing.T) {
	vec3 := Vec3
	tests := []struct {
		name string
		a, b TypeInner
		want bool
	}{
		{"equal scalars", testF32, testF32, true},
		{"width differs", testF32, testF64, false},
		{"kind differs", testI32, testU32, false},
		{"scalar vs vector", testF32, VectorType{Size: Vec2, Scalar: testF32}, false},
		{"value pointers", ValuePointerType{Size: &vec3, Scalar: testF32}, ValuePointerType{Size: &vec3, Scalar: testF32}, true},
		{"value pointer size", ValuePointerType{Scalar: testF32}, ValuePointerType{Size: &vec3, Scalar: testF32}, false},
		{"nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameType(tt.a, tt.b); got != tt.want {
				t.Errorf("SameType() = %v, want %v (keys %q, %q)", got, tt.want, TypeKey(tt.a), TypeKey(tt.b))
			}
		})
	}
}
