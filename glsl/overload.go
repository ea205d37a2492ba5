package glsl

import "github.com/gogpu/glslfront/ir"

// resolveOverload picks the declaration of name that a call with the
// given argument types binds to.
//
// The first declaration whose parameter types equal the argument types
// wins outright. Otherwise a declaration is viable when every mismatched
// argument widens to its parameter, and exactly one viable declaration
// must remain.
func (f *Frontend) resolveOverload(name string, argTypes []ir.TypeInner, span Span) (FunctionDeclaration, bool, error) {
	candidates := f.lookup[name]

	for _, decl := range candidates {
		if len(decl.Parameters) == len(argTypes) && f.exactMatch(decl, argTypes) {
			return decl, true, nil
		}
	}

	var viable []FunctionDeclaration
	for _, decl := range candidates {
		if len(decl.Parameters) == len(argTypes) && f.widensTo(decl, argTypes) {
			viable = append(viable, decl)
		}
	}

	switch len(viable) {
	case 0:
		return FunctionDeclaration{}, false, semanticError(span, "Unknown function '%s'", name)
	case 1:
		return viable[0], false, nil
	}
	return FunctionDeclaration{}, false, semanticError(span, "Ambiguous best function for '%s'", name)
}

func (f *Frontend) exactMatch(decl FunctionDeclaration, argTypes []ir.TypeInner) bool {
	for i, param := range decl.Parameters {
		if !ir.SameType(f.module.Types[param].Inner, argTypes[i]) {
			return false
		}
	}
	return true
}

func (f *Frontend) widensTo(decl FunctionDeclaration, argTypes []ir.TypeInner) bool {
	for i, param := range decl.Parameters {
		paramInner := f.module.Types[param].Inner
		if ir.SameType(paramInner, argTypes[i]) {
			continue
		}
		if !sameShape(paramInner, argTypes[i]) {
			return false
		}
		paramScalar, ok := ir.ScalarOf(paramInner)
		if !ok {
			return false
		}
		argScalar, ok := ir.ScalarOf(argTypes[i])
		if !ok || !canWiden(argScalar, paramScalar) {
			return false
		}
	}
	return true
}

// sameShape reports whether a and b are both scalars, vectors of one
// size or matrices of one size, ignoring their scalar types.
func sameShape(a, b ir.TypeInner) bool {
	switch a := a.(type) {
	case ir.ScalarType:
		_, ok := b.(ir.ScalarType)
		return ok
	case ir.VectorType:
		v, ok := b.(ir.VectorType)
		return ok && v.Size == a.Size
	case ir.MatrixType:
		m, ok := b.(ir.MatrixType)
		return ok && m.Columns == a.Columns && m.Rows == a.Rows
	}
	return false
}

// sameParameters reports whether two parameter lists declare the same
// types.
func (f *Frontend) sameParameters(a, b []ir.TypeHandle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ir.SameType(f.module.Types[a[i]].Inner, f.module.Types[b[i]].Inner) {
			return false
		}
	}
	return true
}
