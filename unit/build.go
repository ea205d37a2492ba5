package unit

import (
	"errors"
	"fmt"
	"log/slog"

	"fortio.org/safecast"

	"github.com/gogpu/glslfront/glsl"
	"github.com/gogpu/glslfront/ir"
)

var stageNames = map[string]ir.ShaderStage{
	"vertex":   ir.StageVertex,
	"fragment": ir.StageFragment,
	"compute":  ir.StageCompute,
}

var stageMasks = map[string]glsl.StageMask{
	"vertex":   glsl.StageMaskVertex,
	"fragment": glsl.StageMaskFragment,
	"compute":  glsl.StageMaskCompute,
	"all":      glsl.StageMaskAll,
}

var builtinNames = map[string]ir.BuiltinValue{
	"position":               ir.BuiltinPosition,
	"vertex_index":           ir.BuiltinVertexIndex,
	"instance_index":         ir.BuiltinInstanceIndex,
	"front_facing":           ir.BuiltinFrontFacing,
	"frag_depth":             ir.BuiltinFragDepth,
	"sample_index":           ir.BuiltinSampleIndex,
	"sample_mask":            ir.BuiltinSampleMask,
	"local_invocation_id":    ir.BuiltinLocalInvocationID,
	"local_invocation_index": ir.BuiltinLocalInvocationIndex,
	"global_invocation_id":   ir.BuiltinGlobalInvocationID,
	"workgroup_id":           ir.BuiltinWorkGroupID,
	"num_workgroups":         ir.BuiltinNumWorkGroups,
}

var spaceNames = map[string]ir.AddressSpace{
	"":          ir.SpacePrivate,
	"private":   ir.SpacePrivate,
	"workgroup": ir.SpaceWorkGroup,
	"uniform":   ir.SpaceUniform,
	"storage":   ir.SpaceStorage,
	"handle":    ir.SpaceHandle,
}

var qualifierNames = map[string]glsl.ParameterQualifier{
	"":      glsl.QualifierIn,
	"in":    glsl.QualifierIn,
	"out":   glsl.QualifierOut,
	"inout": glsl.QualifierInOut,
	"const": glsl.QualifierConst,
}

var binaryOps = map[string]ir.BinaryOperator{
	"+":  ir.BinaryAdd,
	"-":  ir.BinarySubtract,
	"*":  ir.BinaryMultiply,
	"/":  ir.BinaryDivide,
	"%":  ir.BinaryModulo,
	"==": ir.BinaryEqual,
	"!=": ir.BinaryNotEqual,
	"<":  ir.BinaryLess,
	"<=": ir.BinaryLessEqual,
	">":  ir.BinaryGreater,
	">=": ir.BinaryGreaterEqual,
	"&":  ir.BinaryAnd,
	"^":  ir.BinaryExclusiveOr,
	"|":  ir.BinaryInclusiveOr,
	"&&": ir.BinaryLogicalAnd,
	"||": ir.BinaryLogicalOr,
	"<<": ir.BinaryShiftLeft,
	">>": ir.BinaryShiftRight,
}

var unaryOps = map[string]ir.UnaryOperator{
	"-": ir.UnaryNegate,
	"!": ir.UnaryLogicalNot,
	"~": ir.UnaryBitwiseNot,
}

// Build replays u into a glsl.Frontend and returns the finished module.
// Errors carry the position of the offending node and, when u has a
// Source, render the offending line through glsl.Error.FormatWithContext.
func Build(u *Unit, logger *slog.Logger) (*ir.Module, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts, err := u.Options.frontendOptions()
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	opts.Logger = logger

	b := &builder{fe: glsl.New(opts), logger: logger}
	if err := b.build(u); err != nil {
		return nil, withSource(err, u.Source)
	}
	module, err := b.fe.Finish()
	if err != nil {
		return nil, withSource(err, u.Source)
	}
	logger.Debug("unit built",
		"types", len(module.Types),
		"functions", len(module.Functions),
		"entry_points", len(module.EntryPoints))
	return module, nil
}

func withSource(err error, source string) error {
	var ferr *glsl.Error
	if source == "" || !errors.As(err, &ferr) {
		return err
	}
	return ferr.WithSource(source)
}

func (o Options) frontendOptions() (glsl.Options, error) {
	opts := glsl.DefaultOptions()
	for name, stage := range o.EntryPoints {
		s, ok := stageNames[stage]
		if !ok {
			return opts, fmt.Errorf("entry point %s: unknown stage %q", name, stage)
		}
		opts.EntryPoints[name] = s
	}
	opts.EarlyFragmentTests = o.EarlyFragmentTests

	if len(o.WorkgroupSize) > len(opts.WorkgroupSize) {
		return opts, fmt.Errorf("workgroup_size has %d dimensions, at most 3 allowed", len(o.WorkgroupSize))
	}
	for i, n := range o.WorkgroupSize {
		v, err := safecast.Conv[uint32](n)
		if err != nil || v == 0 {
			return opts, fmt.Errorf("workgroup_size[%d] = %d is out of range", i, n)
		}
		opts.WorkgroupSize[i] = v
	}
	return opts, nil
}

type builder struct {
	fe     *glsl.Frontend
	logger *slog.Logger

	// Set while a function body is lowered.
	ctx    *glsl.Context
	result *ir.TypeHandle
}

func (b *builder) build(u *Unit) error {
	for _, s := range u.Structs {
		if err := b.declareStruct(s); err != nil {
			return err
		}
	}
	for _, c := range u.Constants {
		if err := b.declareConstant(c); err != nil {
			return err
		}
	}
	for _, g := range u.Globals {
		if err := b.declareGlobal(g); err != nil {
			return err
		}
	}
	for _, a := range u.Interface {
		if err := b.declareEntryArg(a); err != nil {
			return err
		}
	}
	for i := range u.Functions {
		if err := b.function(&u.Functions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) declareStruct(s Struct) error {
	if _, exists := b.fe.LookupType(s.Name); exists {
		return fmt.Errorf("struct %s: type already declared", s.Name)
	}
	members := make([]ir.StructMember, len(s.Members))
	var offset uint32
	for i, m := range s.Members {
		ty, err := resolveType(b.fe, m.Type)
		if err != nil {
			return fmt.Errorf("struct %s member %s: %w", s.Name, m.Name, err)
		}
		members[i] = ir.StructMember{Name: m.Name, Type: ty, Offset: offset}
		offset += ir.TypeSize(b.fe.Module(), ty)
	}
	b.fe.AddType(s.Name, ir.StructType{Members: members, Span: offset})
	return nil
}

func (b *builder) declareConstant(c Constant) error {
	ty, err := resolveType(b.fe, c.Type)
	if err != nil {
		return fmt.Errorf("constant %s: %w", c.Name, err)
	}
	scalar, ok := b.fe.Module().Types[ty].Inner.(ir.ScalarType)
	if !ok {
		return fmt.Errorf("constant %s: %s is not a scalar type", c.Name, c.Type)
	}
	lit, err := parseLiteral(c.Value)
	if err != nil {
		return fmt.Errorf("constant %s: %w", c.Name, err)
	}
	value, err := scalarValue(lit, scalar)
	if err != nil {
		return fmt.Errorf("constant %s: %w", c.Name, err)
	}
	_, err = b.fe.AddConstant(c.Name, ty, value)
	return err
}

func (b *builder) declareGlobal(g Global) error {
	ty, err := resolveType(b.fe, g.Type)
	if err != nil {
		return fmt.Errorf("global %s: %w", g.Name, err)
	}
	space, ok := spaceNames[g.Space]
	if !ok {
		return fmt.Errorf("global %s: unknown address space %q", g.Name, g.Space)
	}
	if g.Space == "" {
		switch b.fe.Module().Types[ty].Inner.(type) {
		case ir.ImageType, ir.SamplerType:
			space = ir.SpaceHandle
		}
	}

	var binding *ir.ResourceBinding
	switch space {
	case ir.SpaceUniform, ir.SpaceStorage, ir.SpaceHandle:
		group, err := safecast.Conv[uint32](g.Group)
		if err != nil {
			return fmt.Errorf("global %s: group: %w", g.Name, err)
		}
		slot, err := safecast.Conv[uint32](g.Binding)
		if err != nil {
			return fmt.Errorf("global %s: binding: %w", g.Name, err)
		}
		binding = &ir.ResourceBinding{Group: group, Binding: slot}
	}
	_, err = b.fe.AddGlobal(g.Name, ty, space, binding)
	return err
}

func (b *builder) declareEntryArg(a EntryArg) error {
	ty, err := resolveType(b.fe, a.Type)
	if err != nil {
		return fmt.Errorf("entry argument %s: %w", a.Name, err)
	}

	var binding ir.Binding
	if a.Builtin != "" {
		v, ok := builtinNames[a.Builtin]
		if !ok {
			return fmt.Errorf("entry argument %s: unknown builtin %q", a.Name, a.Builtin)
		}
		binding = ir.BuiltinBinding{Builtin: v}
	} else {
		location, err := safecast.Conv[uint32](a.Location)
		if err != nil {
			return fmt.Errorf("entry argument %s: location: %w", a.Name, err)
		}
		binding = ir.LocationBinding{Location: location}
	}

	var prologue glsl.StageMask
	for _, stage := range a.Inputs {
		m, ok := stageMasks[stage]
		if !ok {
			return fmt.Errorf("entry argument %s: unknown stage %q", a.Name, stage)
		}
		prologue |= m
	}
	_, _, err = b.fe.AddEntryArg(a.Name, ty, binding, prologue)
	return err
}

func (b *builder) function(fn *Function) error {
	span := spanOf(fn.Line, fn.Column)
	result, err := resultType(b.fe, fn.Result)
	if err != nil {
		return semanticError(span, "function %s: %v", fn.Name, err)
	}

	b.ctx = b.fe.NewContext()
	b.result = result
	defer func() { b.ctx, b.result = nil, nil }()

	var body ir.Block
	for _, p := range fn.Params {
		ty, err := resolveType(b.fe, p.Type)
		if err != nil {
			return semanticError(span, "parameter %s: %v", p.Name, err)
		}
		q, ok := qualifierNames[p.Qualifier]
		if !ok {
			return semanticError(span, "parameter %s: unknown qualifier %q", p.Name, p.Qualifier)
		}
		b.ctx.AddParameter(&body, p.Name, ty, q)
	}

	if fn.Prototype {
		return b.fe.AddPrototype(b.ctx, fn.Name, result, span)
	}

	if err := b.block(&body, fn.Body); err != nil {
		return err
	}
	h, err := b.fe.AddFunction(b.ctx, fn.Name, result, body, span)
	if err != nil {
		return err
	}
	b.logger.Debug("function lowered", "name", fn.Name, "handle", h, "statements", len(body))
	return nil
}

func spanOf(line, column int) glsl.Span {
	return glsl.Span{Start: glsl.Position{Line: line, Column: column}}
}

func semanticError(span glsl.Span, format string, args ...any) *glsl.Error {
	return &glsl.Error{Kind: glsl.ErrSemantic, Message: fmt.Sprintf(format, args...), Span: span}
}
