package ir

// TypeSize returns the size in bytes of a value of type h.
//
// Three-row matrix columns are padded to four components. Opaque types
// (images, samplers, pointers) have no size.
func TypeSize(module *Module, h TypeHandle) uint32 {
	if int(h) >= len(module.Types) {
		return 0
	}
	return InnerSize(module, module.Types[h].Inner)
}

// InnerSize is TypeSize for a type that may not be in the arena.
func InnerSize(module *Module, inner TypeInner) uint32 {
	switch t := inner.(type) {
	case ScalarType:
		return uint32(t.Width)
	case VectorType:
		return uint32(t.Size) * uint32(t.Scalar.Width)
	case MatrixType:
		rows := uint32(t.Rows)
		if t.Rows == Vec3 {
			rows = 4
		}
		return uint32(t.Columns) * rows * uint32(t.Scalar.Width)
	case ArrayType:
		if t.Size.Constant == nil {
			return t.Stride
		}
		return t.Stride * *t.Size.Constant
	case StructType:
		return t.Span
	default:
		return 0
	}
}
