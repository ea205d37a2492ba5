package ir

import (
	"strconv"
	"strings"
)

// TypeRegistry deduplicates types so that structurally equal types share
// one handle.
type TypeRegistry struct {
	types   []Type
	typeMap map[string]TypeHandle
}

// NewTypeRegistry creates a new type registry for deduplication.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make([]Type, 0, 16),
		typeMap: make(map[string]TypeHandle, 16),
	}
}

// GetOrCreate returns an existing handle for the type if it exists,
// or creates a new one if it's unique.
//
// Named structs are keyed by name as well as layout; two struct
// declarations with the same members stay distinct types.
func (r *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := TypeKey(inner)
	if _, ok := inner.(StructType); ok {
		key = name + "|" + key
	}

	if handle, exists := r.typeMap[key]; exists {
		return handle
	}

	handle := TypeHandle(len(r.types))
	r.types = append(r.types, Type{
		Name:  name,
		Inner: inner,
	})
	r.typeMap[key] = handle

	return handle
}

// GetTypes returns all registered types.
func (r *TypeRegistry) GetTypes() []Type {
	return r.types
}

// Lookup finds a type by its handle.
func (r *TypeRegistry) Lookup(handle TypeHandle) (Type, bool) {
	if int(handle) >= len(r.types) {
		return Type{}, false
	}
	return r.types[handle], true
}

// Count returns the number of unique types registered.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}

// TypeKey returns a string that is equal for two inner types exactly when
// they are structurally identical.
func TypeKey(inner TypeInner) string {
	var sb strings.Builder
	writeTypeKey(&sb, inner)
	return sb.String()
}

// SameType reports whether a and b are structurally identical.
func SameType(a, b TypeInner) bool {
	return TypeKey(a) == TypeKey(b)
}

func writeScalarKey(sb *strings.Builder, s ScalarType) {
	sb.WriteString(strconv.Itoa(int(s.Kind)))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(int(s.Width)))
}

func writeTypeKey(sb *strings.Builder, inner TypeInner) {
	switch t := inner.(type) {
	case ScalarType:
		sb.WriteString("scalar:")
		writeScalarKey(sb, t)

	case VectorType:
		sb.WriteString("vec:")
		sb.WriteString(strconv.Itoa(int(t.Size)))
		sb.WriteByte(':')
		writeScalarKey(sb, t.Scalar)

	case MatrixType:
		sb.WriteString("mat:")
		sb.WriteString(strconv.Itoa(int(t.Columns)))
		sb.WriteByte('x')
		sb.WriteString(strconv.Itoa(int(t.Rows)))
		sb.WriteByte(':')
		writeScalarKey(sb, t.Scalar)

	case ArrayType:
		sb.WriteString("array:")
		sb.WriteString(strconv.FormatUint(uint64(t.Base), 10))
		sb.WriteByte(':')
		if t.Size.Constant != nil {
			sb.WriteString(strconv.FormatUint(uint64(*t.Size.Constant), 10))
		} else {
			sb.WriteString("runtime")
		}
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(uint64(t.Stride), 10))

	case StructType:
		sb.WriteString("struct:")
		sb.WriteString(strconv.FormatUint(uint64(t.Span), 10))
		for _, m := range t.Members {
			sb.WriteString(":m(")
			sb.WriteString(m.Name)
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatUint(uint64(m.Type), 10))
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatUint(uint64(m.Offset), 10))
			sb.WriteByte(')')
		}

	case PointerType:
		sb.WriteString("ptr:")
		sb.WriteString(strconv.FormatUint(uint64(t.Base), 10))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(t.Space)))

	case ValuePointerType:
		sb.WriteString("vptr:")
		if t.Size != nil {
			sb.WriteString(strconv.Itoa(int(*t.Size)))
		}
		sb.WriteByte(':')
		writeScalarKey(sb, t.Scalar)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(t.Space)))

	case SamplerType:
		sb.WriteString("sampler:")
		sb.WriteString(strconv.FormatBool(t.Comparison))

	case ImageType:
		sb.WriteString("image:")
		sb.WriteString(strconv.Itoa(int(t.Dim)))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatBool(t.Arrayed))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(t.Class)))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatBool(t.Multisampled))

	case nil:
		sb.WriteString("none")

	default:
		sb.WriteString("unknown")
	}
}
