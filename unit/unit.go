// Package unit is the serialized form of a parsed GLSL translation unit.
//
// A Unit carries what the parser and declaration collector produce:
// front-end options, struct declarations, uniform and texture globals, the
// stage interface, and functions whose bodies are expression trees. Build
// replays a Unit into a glsl.Frontend and returns the finished ir.Module.
//
// Units are stored as TOML for hand-written fixtures or as msgpack for
// tool-to-tool exchange. Both encodings carry a format_version that must
// satisfy SupportedFormat.
package unit

// Unit is one translation unit.
type Unit struct {
	FormatVersion string `toml:"format_version" msgpack:"format_version"`

	// Source is the GLSL text the unit was parsed from. When present,
	// errors render the offending line.
	Source string `toml:"source,omitempty" msgpack:"source,omitempty"`

	Options   Options    `toml:"options" msgpack:"options"`
	Structs   []Struct   `toml:"struct,omitempty" msgpack:"structs,omitempty"`
	Constants []Constant `toml:"constant,omitempty" msgpack:"constants,omitempty"`
	Globals   []Global   `toml:"global,omitempty" msgpack:"globals,omitempty"`
	Interface []EntryArg `toml:"entry_arg,omitempty" msgpack:"interface,omitempty"`
	Functions []Function `toml:"function,omitempty" msgpack:"functions,omitempty"`
}

// Options mirrors glsl.Options.
type Options struct {
	// EntryPoints maps function names to vertex, fragment or compute.
	EntryPoints        map[string]string `toml:"entry_points" msgpack:"entry_points"`
	EarlyFragmentTests bool              `toml:"early_fragment_tests,omitempty" msgpack:"early_fragment_tests,omitempty"`
	WorkgroupSize      []int64           `toml:"workgroup_size,omitempty" msgpack:"workgroup_size,omitempty"`
}

// Struct declares a named struct type.
type Struct struct {
	Name    string   `toml:"name" msgpack:"name"`
	Members []Member `toml:"member" msgpack:"members"`
}

// Member is one struct member.
type Member struct {
	Name string `toml:"name" msgpack:"name"`
	Type string `toml:"type" msgpack:"type"`
}

// Constant declares a named scalar constant.
type Constant struct {
	Name  string `toml:"name" msgpack:"name"`
	Type  string `toml:"type" msgpack:"type"`
	Value string `toml:"value" msgpack:"value"`
}

// Global declares a module-scope resource or private variable.
type Global struct {
	Name string `toml:"name" msgpack:"name"`
	Type string `toml:"type" msgpack:"type"`
	// Space is uniform, handle, storage, workgroup or private.
	Space   string `toml:"space" msgpack:"space"`
	Group   int64  `toml:"group,omitempty" msgpack:"group,omitempty"`
	Binding int64  `toml:"binding,omitempty" msgpack:"binding,omitempty"`
}

// EntryArg declares a stage-interface global.
type EntryArg struct {
	Name string `toml:"name" msgpack:"name"`
	Type string `toml:"type" msgpack:"type"`
	// Location is used unless Builtin names a builtin value.
	Location int64  `toml:"location,omitempty" msgpack:"location,omitempty"`
	Builtin  string `toml:"builtin,omitempty" msgpack:"builtin,omitempty"`
	// Inputs lists the stages that receive the global as an input.
	Inputs []string `toml:"inputs,omitempty" msgpack:"inputs,omitempty"`
}

// Function is a function definition or, with Prototype set, a
// declaration without a body.
type Function struct {
	Name      string  `toml:"name" msgpack:"name"`
	Result    string  `toml:"result,omitempty" msgpack:"result,omitempty"`
	Prototype bool    `toml:"prototype,omitempty" msgpack:"prototype,omitempty"`
	Params    []Param `toml:"param,omitempty" msgpack:"params,omitempty"`
	Body      []Stmt  `toml:"body,omitempty" msgpack:"body,omitempty"`
	Line      int     `toml:"line,omitempty" msgpack:"line,omitempty"`
	Column    int     `toml:"column,omitempty" msgpack:"column,omitempty"`
}

// Param is one function parameter.
type Param struct {
	Name string `toml:"name" msgpack:"name"`
	Type string `toml:"type" msgpack:"type"`
	// Qualifier is in (the default), out, inout or const.
	Qualifier string `toml:"qualifier,omitempty" msgpack:"qualifier,omitempty"`
}

// Stmt is one statement of a function body.
//
// Kind selects the statement: expr, local, return, if, loop, block,
// break, continue or discard. If uses Then and Else; loop and block use
// Body. A loop with an Expr exits when it is false.
type Stmt struct {
	Kind   string `toml:"kind" msgpack:"kind"`
	Name   string `toml:"name,omitempty" msgpack:"name,omitempty"`
	Type   string `toml:"type,omitempty" msgpack:"type,omitempty"`
	Expr   *Expr  `toml:"expr,omitempty" msgpack:"expr,omitempty"`
	Then   []Stmt `toml:"then,omitempty" msgpack:"then,omitempty"`
	Else   []Stmt `toml:"else,omitempty" msgpack:"else,omitempty"`
	Body   []Stmt `toml:"body,omitempty" msgpack:"body,omitempty"`
	Line   int    `toml:"line,omitempty" msgpack:"line,omitempty"`
	Column int    `toml:"column,omitempty" msgpack:"column,omitempty"`
}

// Expr is an expression tree node.
//
// Kind selects the node: lit (Value), var (Name), binary (Op, two Args),
// unary (Op, one Arg), call (Name, Args), construct (Type, Args), field
// (Name, one Arg), index (two Args), assign (target and value Args) or
// cond (three Args).
type Expr struct {
	Kind   string `toml:"kind" msgpack:"kind"`
	Value  string `toml:"value,omitempty" msgpack:"value,omitempty"`
	Name   string `toml:"name,omitempty" msgpack:"name,omitempty"`
	Type   string `toml:"type,omitempty" msgpack:"type,omitempty"`
	Op     string `toml:"op,omitempty" msgpack:"op,omitempty"`
	Args   []Expr `toml:"args,omitempty" msgpack:"args,omitempty"`
	Line   int    `toml:"line,omitempty" msgpack:"line,omitempty"`
	Column int    `toml:"column,omitempty" msgpack:"column,omitempty"`
}
