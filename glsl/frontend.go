package glsl

import (
	"fmt"
	"log/slog"

	"fortio.org/safecast"

	"github.com/gogpu/glslfront/ir"
)

// FunctionDeclaration is one overload of a user function.
type FunctionDeclaration struct {
	Qualifiers []ParameterQualifier
	// Parameters holds the declared parameter types. Out and inout
	// parameters are listed by their value type, not their pointer type.
	Parameters []ir.TypeHandle
	Handle     ir.FunctionHandle
	// Defined is unset for a prototype still waiting for its body.
	Defined bool
	Void    bool
}

// EntryArg is a global that belongs to the stage interface.
type EntryArg struct {
	Name     string
	Binding  ir.Binding
	Handle   ir.GlobalVariableHandle
	Prologue StageMask // stages that read it as an input
}

type globalInfo struct {
	handle   ir.GlobalVariableHandle
	entryArg *int
	mutable  bool
}

type entryFunction struct {
	name     string
	stage    ir.ShaderStage
	function ir.FunctionHandle
}

// Frontend accumulates the declarations of one GLSL translation unit and
// turns them into an ir.Module.
type Frontend struct {
	opts     Options
	logger   *slog.Logger
	module   ir.Module
	registry *ir.TypeRegistry

	types     map[string]ir.TypeHandle
	globals   map[string]globalInfo
	constants map[string]ir.ConstantHandle
	entryArgs []EntryArg

	lookup  map[string][]FunctionDeclaration
	entries []entryFunction
	argUse  map[ir.FunctionHandle][]EntryArgUse

	finished bool
}

// New creates a Frontend.
func New(opts Options) *Frontend {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.EntryPoints == nil {
		opts.EntryPoints = map[string]ir.ShaderStage{}
	}
	return &Frontend{
		opts:      opts,
		logger:    logger,
		registry:  ir.NewTypeRegistry(),
		types:     make(map[string]ir.TypeHandle),
		globals:   make(map[string]globalInfo),
		constants: make(map[string]ir.ConstantHandle),
		lookup:    make(map[string][]FunctionDeclaration),
		argUse:    make(map[ir.FunctionHandle][]EntryArgUse),
	}
}

// Module returns the module under construction.
func (f *Frontend) Module() *ir.Module {
	return &f.module
}

// AddType returns the deduplicated handle for inner. A non-empty name
// also makes the type available through LookupType.
func (f *Frontend) AddType(name string, inner ir.TypeInner) ir.TypeHandle {
	h := f.registry.GetOrCreate(name, inner)
	f.module.Types = f.registry.GetTypes()
	if name != "" {
		f.types[name] = h
	}
	return h
}

// LookupType finds a type registered under name.
func (f *Frontend) LookupType(name string) (ir.TypeHandle, bool) {
	h, ok := f.types[name]
	return h, ok
}

// AddConstant appends a module constant. Named constants can be
// referenced through Context.Variable.
func (f *Frontend) AddConstant(name string, ty ir.TypeHandle, value ir.ConstantValue) (ir.ConstantHandle, error) {
	if name != "" {
		if err := f.checkRedefinition(name); err != nil {
			return 0, err
		}
	}
	h := arenaHandle[ir.ConstantHandle](len(f.module.Constants))
	f.module.Constants = append(f.module.Constants, ir.Constant{Name: name, Type: ty, Value: value})
	if name != "" {
		f.constants[name] = h
	}
	return h, nil
}

// AddGlobal declares a module-scope variable such as a uniform block,
// texture or sampler.
func (f *Frontend) AddGlobal(name string, ty ir.TypeHandle, space ir.AddressSpace, binding *ir.ResourceBinding) (ir.GlobalVariableHandle, error) {
	if err := f.checkRedefinition(name); err != nil {
		return 0, err
	}
	h := f.appendGlobal(ir.GlobalVariable{Name: name, Space: space, Binding: binding, Type: ty})
	mutable := space != ir.SpaceUniform && space != ir.SpaceHandle
	f.globals[name] = globalInfo{handle: h, mutable: mutable}
	f.logger.Debug("global declared", "name", name, "handle", h)
	return h, nil
}

// AddEntryArg declares a stage-interface global. Prologue lists the
// stages that receive it as an input; a global may also be written as an
// output by any stage. The returned index identifies it in usage records.
func (f *Frontend) AddEntryArg(name string, ty ir.TypeHandle, binding ir.Binding, prologue StageMask) (ir.GlobalVariableHandle, int, error) {
	if err := f.checkRedefinition(name); err != nil {
		return 0, 0, err
	}
	h := f.appendGlobal(ir.GlobalVariable{Name: name, Space: ir.SpacePrivate, Type: ty})
	idx := len(f.entryArgs)
	f.entryArgs = append(f.entryArgs, EntryArg{Name: name, Binding: binding, Handle: h, Prologue: prologue})
	f.globals[name] = globalInfo{handle: h, entryArg: &idx, mutable: true}
	f.logger.Debug("stage interface global declared", "name", name, "index", idx)
	return h, idx, nil
}

// EntryArgs returns the stage interface in declaration order.
func (f *Frontend) EntryArgs() []EntryArg {
	return f.entryArgs
}

// Declarations returns the overloads registered under name.
func (f *Frontend) Declarations(name string) []FunctionDeclaration {
	return f.lookup[name]
}

func (f *Frontend) appendGlobal(g ir.GlobalVariable) ir.GlobalVariableHandle {
	h := arenaHandle[ir.GlobalVariableHandle](len(f.module.GlobalVariables))
	f.module.GlobalVariables = append(f.module.GlobalVariables, g)
	return h
}

func (f *Frontend) checkRedefinition(name string) error {
	_, isGlobal := f.globals[name]
	_, isConstant := f.constants[name]
	if isGlobal || isConstant {
		return semanticError(Span{}, "Redefinition of %q", name)
	}
	return nil
}

// arenaHandle converts an arena length into the handle of the next
// element.
func arenaHandle[H ~uint32](n int) H {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("glsl: arena handle overflow: %w", err))
	}
	return H(v)
}
