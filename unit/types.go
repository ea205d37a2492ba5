package unit

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/gogpu/glslfront/glsl"
	"github.com/gogpu/glslfront/ir"
)

var (
	scalarF32  = ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	scalarF64  = ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}
	scalarI32  = ir.ScalarType{Kind: ir.ScalarSint, Width: 4}
	scalarU32  = ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
	scalarBool = ir.ScalarType{Kind: ir.ScalarBool, Width: 1}
)

var scalarNames = map[string]ir.ScalarType{
	"float":  scalarF32,
	"double": scalarF64,
	"int":    scalarI32,
	"uint":   scalarU32,
	"bool":   scalarBool,
}

var vectorPrefixes = map[string]ir.ScalarType{
	"vec":  scalarF32,
	"dvec": scalarF64,
	"ivec": scalarI32,
	"uvec": scalarU32,
	"bvec": scalarBool,
}

var imageNames = map[string]ir.ImageType{
	"texture1D":        {Dim: ir.Dim1D},
	"texture1DArray":   {Dim: ir.Dim1D, Arrayed: true},
	"texture2D":        {Dim: ir.Dim2D},
	"texture2DArray":   {Dim: ir.Dim2D, Arrayed: true},
	"texture2DMS":      {Dim: ir.Dim2D, Multisampled: true},
	"texture2DMSArray": {Dim: ir.Dim2D, Arrayed: true, Multisampled: true},
	"texture3D":        {Dim: ir.Dim3D},
	"textureCube":      {Dim: ir.DimCube},
	"textureCubeArray": {Dim: ir.DimCube, Arrayed: true},
}

// resolveType returns the handle for a GLSL type name. Struct names must
// have been declared; T[N] declares a sized array of T.
func resolveType(fe *glsl.Frontend, name string) (ir.TypeHandle, error) {
	name = strings.TrimSpace(name)
	if open := strings.LastIndexByte(name, '['); open > 0 && strings.HasSuffix(name, "]") {
		base, err := resolveType(fe, name[:open])
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(strings.TrimSpace(name[open+1:len(name)-1]), 10, 64)
		if err != nil || n == 0 {
			return 0, fmt.Errorf("invalid array size in %q", name)
		}
		size, err := safecast.Conv[uint32](n)
		if err != nil {
			return 0, fmt.Errorf("array size in %q: %w", name, err)
		}
		stride := ir.TypeSize(fe.Module(), base)
		return fe.AddType("", ir.ArrayType{Base: base, Size: ir.ArraySize{Constant: &size}, Stride: stride}), nil
	}

	if h, ok := fe.LookupType(name); ok {
		return h, nil
	}
	inner, ok := builtinType(name)
	if !ok {
		return 0, fmt.Errorf("unknown type %q", name)
	}
	return fe.AddType("", inner), nil
}

// resultType resolves a function result, where void and the empty string
// mean no result.
func resultType(fe *glsl.Frontend, name string) (*ir.TypeHandle, error) {
	if name == "" || name == "void" {
		return nil, nil
	}
	h, err := resolveType(fe, name)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func builtinType(name string) (ir.TypeInner, bool) {
	if s, ok := scalarNames[name]; ok {
		return s, true
	}
	if img, ok := imageNames[name]; ok {
		return img, true
	}
	switch name {
	case "sampler":
		return ir.SamplerType{}, true
	case "samplerShadow":
		return ir.SamplerType{Comparison: true}, true
	}

	for prefix, scalar := range vectorPrefixes {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			size, ok := vectorSize(rest)
			if !ok {
				return nil, false
			}
			return ir.VectorType{Size: size, Scalar: scalar}, true
		}
	}

	scalar := scalarF32
	rest, ok := strings.CutPrefix(name, "mat")
	if !ok {
		if rest, ok = strings.CutPrefix(name, "dmat"); !ok {
			return nil, false
		}
		scalar = scalarF64
	}
	cols, rows, found := strings.Cut(rest, "x")
	if !found {
		rows = cols
	}
	c, okc := vectorSize(cols)
	r, okr := vectorSize(rows)
	if !okc || !okr {
		return nil, false
	}
	return ir.MatrixType{Columns: c, Rows: r, Scalar: scalar}, true
}

func vectorSize(s string) (ir.VectorSize, bool) {
	switch s {
	case "2":
		return ir.Vec2, true
	case "3":
		return ir.Vec3, true
	case "4":
		return ir.Vec4, true
	}
	return 0, false
}
