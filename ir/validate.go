package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function   string
	Expression *ExpressionHandle
	Statement  int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Expression != nil {
			return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
		}
		if e.Statement >= 0 {
			return fmt.Sprintf("in function %s, statement %d: %s", e.Function, e.Statement, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	module  *Module
	errors  []ValidationError
	context validationContext
}

// validationContext holds current validation context.
type validationContext struct {
	function     *Function
	functionName string
	loopDepth    int
	switchDepth  int
	inContinuing bool
	// emitted holds every expression visible to statements validated so far.
	emitted []bool
}

// Validate checks the IR module for structural correctness: handle ranges,
// operand ordering, emission coverage and control flow placement.
// Returns validation errors if any, or nil if module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()
	v.validateConstants()
	v.validateGlobalVariables()

	for i := range v.module.Functions {
		fn := &v.module.Functions[i]
		v.validateFunction(fn.Name, fn)
	}

	v.validateEntryPoints()
}

func (v *Validator) validateTypes() {
	for i, typ := range v.module.Types {
		v.validateType(TypeHandle(i), &typ)
	}
}

// validateType checks that a type only references earlier types.
//
//nolint:gocyclo,cyclop // Type validation requires checking many type variants
func (v *Validator) validateType(handle TypeHandle, typ *Type) {
	if typ.Inner == nil {
		v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		return
	}

	validWidth := func(w uint8) bool { return w == 1 || w == 2 || w == 4 || w == 8 }
	validSize := func(s VectorSize) bool { return s == Vec2 || s == Vec3 || s == Vec4 }

	switch inner := typ.Inner.(type) {
	case ScalarType:
		if !validWidth(inner.Width) {
			v.addError(fmt.Sprintf("type %d: scalar width must be 1, 2, 4, or 8 bytes, got %d", handle, inner.Width))
		}

	case VectorType:
		if !validSize(inner.Size) {
			v.addError(fmt.Sprintf("type %d: vector size must be 2, 3, or 4, got %d", handle, inner.Size))
		}
		if !validWidth(inner.Scalar.Width) {
			v.addError(fmt.Sprintf("type %d: vector scalar width must be 1, 2, 4, or 8 bytes, got %d", handle, inner.Scalar.Width))
		}

	case MatrixType:
		if !validSize(inner.Columns) || !validSize(inner.Rows) {
			v.addError(fmt.Sprintf("type %d: matrix must be between 2x2 and 4x4, got %dx%d", handle, inner.Columns, inner.Rows))
		}
		if inner.Scalar.Kind != ScalarFloat {
			v.addError(fmt.Sprintf("type %d: matrix scalar must be float, got %v", handle, inner.Scalar.Kind))
		}

	case ArrayType:
		if inner.Base >= handle {
			v.addError(fmt.Sprintf("type %d: array base type %d is not declared before it", handle, inner.Base))
		}

	case StructType:
		memberNames := make(map[string]bool)
		for j, member := range inner.Members {
			if member.Name == "" {
				v.addError(fmt.Sprintf("type %d: struct member %d has empty name", handle, j))
			}
			if memberNames[member.Name] {
				v.addError(fmt.Sprintf("type %d: duplicate struct member name %q", handle, member.Name))
			}
			memberNames[member.Name] = true

			if member.Type >= handle {
				v.addError(fmt.Sprintf("type %d: struct member %q type %d is not declared before it", handle, member.Name, member.Type))
			}
		}

	case PointerType:
		if !v.isValidTypeHandle(inner.Base) {
			v.addError(fmt.Sprintf("type %d: pointer base type %d does not exist", handle, inner.Base))
		}
	}
}

func (v *Validator) validateConstants() {
	for i, c := range v.module.Constants {
		if !v.isValidTypeHandle(c.Type) {
			v.addError(fmt.Sprintf("constant %d (%s): type %d does not exist", i, c.Name, c.Type))
		}
		if comp, ok := c.Value.(CompositeValue); ok {
			for _, h := range comp.Components {
				if int(h) >= i {
					v.addError(fmt.Sprintf("constant %d (%s): component %d is not declared before it", i, c.Name, h))
				}
			}
		}
	}
}

func (v *Validator) validateGlobalVariables() {
	bindings := make(map[ResourceBinding]string)

	for i, gv := range v.module.GlobalVariables {
		if !v.isValidTypeHandle(gv.Type) {
			v.addError(fmt.Sprintf("global variable %d (%s): type %d does not exist", i, gv.Name, gv.Type))
		}

		if gv.Binding != nil {
			if other, dup := bindings[*gv.Binding]; dup {
				v.addError(fmt.Sprintf("global variable %q: binding (set=%d, binding=%d) already used by %q",
					gv.Name, gv.Binding.Group, gv.Binding.Binding, other))
			}
			bindings[*gv.Binding] = gv.Name
		}

		if gv.Init != nil && !v.isValidConstantHandle(*gv.Init) {
			v.addError(fmt.Sprintf("global variable %q: init constant %d does not exist", gv.Name, *gv.Init))
		}
	}
}

func (v *Validator) validateFunction(name string, fn *Function) {
	v.context = validationContext{
		function:     fn,
		functionName: name,
		emitted:      make([]bool, len(fn.Expressions)),
	}

	for i, arg := range fn.Arguments {
		if !v.isValidTypeHandle(arg.Type) {
			v.addErrorInFunction(fmt.Sprintf("argument %d (%s): type %d does not exist", i, arg.Name, arg.Type))
		}
	}

	if fn.Result != nil && !v.isValidTypeHandle(fn.Result.Type) {
		v.addErrorInFunction(fmt.Sprintf("result type %d does not exist", fn.Result.Type))
	}

	if len(fn.ExpressionTypes) != 0 && len(fn.ExpressionTypes) != len(fn.Expressions) {
		v.addErrorInFunction(fmt.Sprintf("%d expression types for %d expressions", len(fn.ExpressionTypes), len(fn.Expressions)))
	}

	for i, lv := range fn.LocalVars {
		if !v.isValidTypeHandle(lv.Type) {
			v.addErrorInFunction(fmt.Sprintf("local variable %d (%s): type %d does not exist", i, lv.Name, lv.Type))
		}
		if lv.Init != nil && !v.isValidExpressionHandle(*lv.Init) {
			v.addErrorInFunction(fmt.Sprintf("local variable %q: init expression %d does not exist", lv.Name, *lv.Init))
		}
	}

	for i, expr := range fn.Expressions {
		h := ExpressionHandle(i)
		if expr.Kind == nil {
			v.addErrorInExpression(h, "expression has nil kind")
			continue
		}
		if NeedsPreEmit(expr.Kind) {
			v.context.emitted[i] = true
		}
		v.validateExpression(h, expr.Kind)
	}

	v.validateBlock(fn.Body)
}

// validateExpression checks handle references and that every operand is
// defined before the expression using it.
//
//nolint:gocyclo,cyclop // Expression validation requires checking many expression variants
func (v *Validator) validateExpression(handle ExpressionHandle, kind ExpressionKind) {
	for _, op := range Operands(kind) {
		if op >= handle {
			v.addErrorInExpression(handle, fmt.Sprintf("operand %d is not defined before its use", op))
		}
	}

	switch k := kind.(type) {
	case ExprConstant:
		if !v.isValidConstantHandle(k.Constant) {
			v.addErrorInExpression(handle, fmt.Sprintf("constant %d does not exist", k.Constant))
		}
	case ExprZeroValue:
		if !v.isValidTypeHandle(k.Type) {
			v.addErrorInExpression(handle, fmt.Sprintf("type %d does not exist", k.Type))
		}
	case ExprCompose:
		if !v.isValidTypeHandle(k.Type) {
			v.addErrorInExpression(handle, fmt.Sprintf("compose type %d does not exist", k.Type))
		}
	case ExprSwizzle:
		if k.Size < Vec2 || k.Size > Vec4 {
			v.addErrorInExpression(handle, fmt.Sprintf("invalid swizzle size %d", k.Size))
		}
	case ExprFunctionArgument:
		if int(k.Index) >= len(v.context.function.Arguments) {
			v.addErrorInExpression(handle, fmt.Sprintf("argument %d does not exist", k.Index))
		}
	case ExprGlobalVariable:
		if !v.isValidGlobalVariableHandle(k.Variable) {
			v.addErrorInExpression(handle, fmt.Sprintf("global variable %d does not exist", k.Variable))
		}
	case ExprLocalVariable:
		if int(k.Variable) >= len(v.context.function.LocalVars) {
			v.addErrorInExpression(handle, fmt.Sprintf("local variable %d does not exist", k.Variable))
		}
	case ExprCallResult:
		if !v.isValidFunctionHandle(k.Function) {
			v.addErrorInExpression(handle, fmt.Sprintf("function %d does not exist", k.Function))
		}
	}
}

// validateBlock validates a block of statements.
func (v *Validator) validateBlock(block Block) {
	for i := range block {
		v.validateStatement(i, &block[i])
	}
}

// use checks that a statement operand exists and has been emitted.
func (v *Validator) use(index int, what string, h ExpressionHandle) {
	if !v.isValidExpressionHandle(h) {
		v.addErrorInStatement(index, fmt.Sprintf("%s expression %d does not exist", what, h))
		return
	}
	if !v.context.emitted[h] {
		v.addErrorInStatement(index, fmt.Sprintf("%s expression %d is used before it is emitted", what, h))
	}
}

// validateStatement validates a single statement.
//
//nolint:gocognit,gocyclo,cyclop,funlen // Statement validation requires checking many statement variants
func (v *Validator) validateStatement(index int, stmt *Statement) {
	if stmt.Kind == nil {
		v.addErrorInStatement(index, "statement has nil kind")
		return
	}

	switch kind := stmt.Kind.(type) {
	case StmtEmit:
		exprCount := ExpressionHandle(len(v.context.function.Expressions))
		if kind.Range.End > exprCount || kind.Range.Start >= kind.Range.End {
			v.addErrorInStatement(index, fmt.Sprintf("invalid emit range %d..%d", kind.Range.Start, kind.Range.End))
			return
		}
		for h := kind.Range.Start; h < kind.Range.End; h++ {
			k := v.context.function.Expressions[h].Kind
			if NeedsPreEmit(k) {
				v.addErrorInStatement(index, fmt.Sprintf("emit range covers pre-emitted expression %d", h))
			}
			if _, ok := k.(ExprCallResult); ok {
				v.addErrorInStatement(index, fmt.Sprintf("emit range covers call result %d", h))
			}
			if v.context.emitted[h] {
				v.addErrorInStatement(index, fmt.Sprintf("expression %d emitted twice", h))
			}
			v.context.emitted[h] = true
		}

	case StmtBlock:
		v.validateBlock(kind.Block)

	case StmtIf:
		v.use(index, "condition", kind.Condition)
		v.validateBlock(kind.Accept)
		v.validateBlock(kind.Reject)

	case StmtSwitch:
		v.use(index, "selector", kind.Selector)
		hasDefault := false
		v.context.switchDepth++
		for _, c := range kind.Cases {
			if _, ok := c.Value.(SwitchValueDefault); ok {
				if hasDefault {
					v.addErrorInStatement(index, "switch has multiple default cases")
				}
				hasDefault = true
			}
			v.validateBlock(c.Body)
		}
		v.context.switchDepth--
		if !hasDefault {
			v.addErrorInStatement(index, "switch missing default case")
		}

	case StmtLoop:
		oldDepth := v.context.loopDepth
		v.context.loopDepth++

		v.validateBlock(kind.Body)

		oldContinuing := v.context.inContinuing
		v.context.inContinuing = true
		v.validateBlock(kind.Continuing)
		if kind.BreakIf != nil {
			v.use(index, "break-if", *kind.BreakIf)
		}
		v.context.inContinuing = oldContinuing

		v.context.loopDepth = oldDepth

	case StmtBreak:
		if v.context.loopDepth == 0 && v.context.switchDepth == 0 {
			v.addErrorInStatement(index, "break outside of loop or switch")
		}
		if v.context.inContinuing {
			v.addErrorInStatement(index, "break in continuing block")
		}

	case StmtContinue:
		if v.context.loopDepth == 0 {
			v.addErrorInStatement(index, "continue outside of loop")
		}
		if v.context.inContinuing {
			v.addErrorInStatement(index, "continue in continuing block")
		}

	case StmtReturn:
		if v.context.inContinuing {
			v.addErrorInStatement(index, "return in continuing block")
		}
		if kind.Value != nil {
			v.use(index, "return value", *kind.Value)
		}

	case StmtKill:
		if v.context.inContinuing {
			v.addErrorInStatement(index, "kill in continuing block")
		}

	case StmtBarrier:

	case StmtStore:
		v.use(index, "pointer", kind.Pointer)
		v.use(index, "value", kind.Value)

	case StmtImageStore:
		v.use(index, "image", kind.Image)
		v.use(index, "coordinate", kind.Coordinate)
		if kind.ArrayIndex != nil {
			v.use(index, "array index", *kind.ArrayIndex)
		}
		v.use(index, "value", kind.Value)

	case StmtCall:
		if !v.isValidFunctionHandle(kind.Function) {
			v.addErrorInStatement(index, fmt.Sprintf("function %d does not exist", kind.Function))
			return
		}
		callee := &v.module.Functions[kind.Function]
		if len(kind.Arguments) != len(callee.Arguments) {
			v.addErrorInStatement(index, fmt.Sprintf("call to %q passes %d arguments, want %d",
				callee.Name, len(kind.Arguments), len(callee.Arguments)))
		}
		for i, arg := range kind.Arguments {
			v.use(index, fmt.Sprintf("argument %d", i), arg)
		}
		if kind.Result != nil {
			r := *kind.Result
			if !v.isValidExpressionHandle(r) {
				v.addErrorInStatement(index, fmt.Sprintf("result expression %d does not exist", r))
				return
			}
			if _, ok := v.context.function.Expressions[r].Kind.(ExprCallResult); !ok {
				v.addErrorInStatement(index, fmt.Sprintf("result expression %d is not a call result", r))
			}
			v.context.emitted[r] = true
		}
	}
}

// validateEntryPoints checks stage requirements and validates each entry
// function like any other function.
func (v *Validator) validateEntryPoints() {
	type key struct {
		name  string
		stage ShaderStage
	}
	seen := make(map[key]bool)

	for i := range v.module.EntryPoints {
		ep := &v.module.EntryPoints[i]
		if ep.Name == "" {
			v.addError(fmt.Sprintf("entry point %d has empty name", i))
		}
		k := key{ep.Name, ep.Stage}
		if seen[k] {
			v.addError(fmt.Sprintf("duplicate %s entry point %q", ep.Stage, ep.Name))
		}
		seen[k] = true

		switch ep.Stage {
		case StageCompute:
			if ep.Workgroup[0] == 0 || ep.Workgroup[1] == 0 || ep.Workgroup[2] == 0 {
				v.addError(fmt.Sprintf("entry point %q (compute): workgroup size must be non-zero", ep.Name))
			}
		case StageVertex, StageFragment:
			if ep.Workgroup != [3]uint32{} {
				v.addError(fmt.Sprintf("entry point %q (%s): workgroup size is only valid for compute", ep.Name, ep.Stage))
			}
		}
		if ep.EarlyDepthTest != nil && ep.Stage != StageFragment {
			v.addError(fmt.Sprintf("entry point %q (%s): early depth test is only valid for fragment", ep.Name, ep.Stage))
		}

		if ep.Function.Result != nil {
			v.validateEntryResult(ep)
		}

		v.validateFunction(ep.Name, &ep.Function)
	}
}

// validateEntryResult requires every member of a struct result to carry a
// binding.
func (v *Validator) validateEntryResult(ep *EntryPoint) {
	result := ep.Function.Result
	if result.Binding != nil {
		return
	}
	if !v.isValidTypeHandle(result.Type) {
		return
	}
	st, ok := v.module.Types[result.Type].Inner.(StructType)
	if !ok {
		v.addError(fmt.Sprintf("entry point %q: result without binding must be a struct", ep.Name))
		return
	}
	for _, m := range st.Members {
		if m.Binding == nil {
			v.addError(fmt.Sprintf("entry point %q: result member %q has no binding", ep.Name, m.Name))
		}
	}
}

// Helper methods for validation

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

func (v *Validator) isValidConstantHandle(handle ConstantHandle) bool {
	return int(handle) < len(v.module.Constants)
}

func (v *Validator) isValidGlobalVariableHandle(handle GlobalVariableHandle) bool {
	return int(handle) < len(v.module.GlobalVariables)
}

func (v *Validator) isValidFunctionHandle(handle FunctionHandle) bool {
	return int(handle) < len(v.module.Functions)
}

func (v *Validator) isValidExpressionHandle(handle ExpressionHandle) bool {
	if v.context.function == nil {
		return false
	}
	return int(handle) < len(v.context.function.Expressions)
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Statement: -1,
	})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Statement: -1,
	})
}

func (v *Validator) addErrorInExpression(handle ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Function:   v.context.functionName,
		Expression: &handle,
		Statement:  -1,
	})
}

func (v *Validator) addErrorInStatement(index int, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Statement: index,
	})
}
