package glsl

import (
	"errors"

	"github.com/gogpu/glslfront/ir"
)

// Finish propagates stage-interface usage through the call graph,
// synthesizes an entry point for every entry function and returns the
// module. It may only be called once.
func (f *Frontend) Finish() (*ir.Module, error) {
	if f.finished {
		return nil, errors.New("glsl: Finish called twice")
	}
	f.finished = true

	passes := 1
	for f.propagateArgUse() {
		passes++
	}
	f.logger.Debug("stage interface usage propagated", "passes", passes)

	for _, e := range f.entries {
		f.module.EntryPoints = append(f.module.EntryPoints, f.synthesizeEntry(e))
	}
	return &f.module, nil
}

// propagateArgUse merges each callee's usage into its callers once and
// reports whether any record changed. Repeating it until it reports no
// change closes usage over the call graph regardless of declaration
// order.
func (f *Frontend) propagateArgUse() bool {
	changed := false
	for i := range f.module.Functions {
		caller := arenaHandle[ir.FunctionHandle](i)
		if f.mergeCallees(caller, f.module.Functions[i].Body) {
			changed = true
		}
	}
	return changed
}

func (f *Frontend) mergeCallees(caller ir.FunctionHandle, block ir.Block) bool {
	changed := false
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case ir.StmtBlock:
			changed = f.mergeCallees(caller, s.Block) || changed
		case ir.StmtIf:
			changed = f.mergeCallees(caller, s.Accept) || changed
			changed = f.mergeCallees(caller, s.Reject) || changed
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				changed = f.mergeCallees(caller, c.Body) || changed
			}
		case ir.StmtLoop:
			changed = f.mergeCallees(caller, s.Body) || changed
			changed = f.mergeCallees(caller, s.Continuing) || changed
		case ir.StmtCall:
			changed = f.mergeArgUse(caller, s.Function) || changed
		}
	}
	return changed
}

// mergeArgUse ORs callee's usage into caller's, growing caller's record
// to cover every index callee has.
func (f *Frontend) mergeArgUse(caller, callee ir.FunctionHandle) bool {
	calleeUse := f.argUse[callee]
	callerUse := f.argUse[caller]
	changed := false
	for len(callerUse) < len(calleeUse) {
		callerUse = append(callerUse, 0)
		changed = true
	}
	for i, use := range calleeUse {
		if merged := callerUse[i] | use; merged != callerUse[i] {
			callerUse[i] = merged
			changed = true
		}
	}
	f.argUse[caller] = callerUse
	return changed
}

// synthesizeEntry builds the entry point wrapping an entry function: it
// copies the stage inputs the function reads into their globals, calls
// it, and returns the outputs it writes as one struct.
func (f *Frontend) synthesizeEntry(e entryFunction) ir.EntryPoint {
	use := f.argUse[e.function]
	fn := ir.Function{Name: e.name}
	var body ir.Block
	add := func(kind ir.ExpressionKind) ir.ExpressionHandle {
		h := arenaHandle[ir.ExpressionHandle](len(fn.Expressions))
		fn.Expressions = append(fn.Expressions, ir.Expression{Kind: kind})
		return h
	}
	emit := func(h ir.ExpressionHandle) {
		body = append(body, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: h, End: h + 1}}})
	}

	for i, arg := range f.entryArgs {
		if i >= len(use) || use[i]&EntryArgRead == 0 || !arg.Prologue.Contains(e.stage) {
			continue
		}
		index := arenaHandle[uint32](len(fn.Arguments))
		binding := arg.Binding
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
			Name:    arg.Name,
			Type:    f.module.GlobalVariables[arg.Handle].Type,
			Binding: &binding,
		})
		pointer := add(ir.ExprGlobalVariable{Variable: arg.Handle})
		value := add(ir.ExprFunctionArgument{Index: index})
		body = append(body, ir.Statement{Kind: ir.StmtStore{Pointer: pointer, Value: value}})
	}

	body = append(body, ir.Statement{Kind: ir.StmtCall{Function: e.function}})

	var members []ir.StructMember
	var components []ir.ExpressionHandle
	var span uint32
	for i, arg := range f.entryArgs {
		if i >= len(use) || use[i]&EntryArgWrite == 0 {
			continue
		}
		ty := f.module.GlobalVariables[arg.Handle].Type
		pointer := add(ir.ExprGlobalVariable{Variable: arg.Handle})
		load := add(ir.ExprLoad{Pointer: pointer})
		emit(load)

		binding := arg.Binding
		members = append(members, ir.StructMember{Name: arg.Name, Type: ty, Binding: &binding, Offset: span})
		span += ir.TypeSize(&f.module, ty)
		components = append(components, load)
	}

	if len(members) > 0 {
		ty := f.AddType("", ir.StructType{Members: members, Span: span})
		fn.Result = &ir.FunctionResult{Type: ty}
		result := add(ir.ExprCompose{Type: ty, Components: components})
		emit(result)
		body = append(body, ir.Statement{Kind: ir.StmtReturn{Value: &result}})
	} else {
		body = append(body, ir.Statement{Kind: ir.StmtReturn{}})
	}
	fn.Body = body

	fn.ExpressionTypes = make([]ir.TypeResolution, len(fn.Expressions))
	for i := range fn.Expressions {
		res, err := ir.ResolveExpressionType(&f.module, &fn, arenaHandle[ir.ExpressionHandle](i))
		if err == nil {
			fn.ExpressionTypes[i] = res
		}
	}

	ep := ir.EntryPoint{Name: e.name, Stage: e.stage, Function: fn}
	if e.stage == ir.StageFragment && f.opts.EarlyFragmentTests {
		ep.EarlyDepthTest = &ir.EarlyDepthTest{}
	}
	if e.stage == ir.StageCompute {
		ep.Workgroup = f.opts.WorkgroupSize
	}

	f.logger.Debug("entry point synthesized",
		"name", e.name,
		"stage", e.stage,
		"inputs", len(fn.Arguments),
		"outputs", len(members))
	return ep
}
