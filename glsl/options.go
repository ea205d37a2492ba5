package glsl

import (
	"log/slog"

	"github.com/gogpu/glslfront/ir"
)

// Options configures a Frontend.
type Options struct {
	// EntryPoints maps function names to the stage they are an entry
	// point for. Functions with these names are not overloadable.
	EntryPoints map[string]ir.ShaderStage

	// EarlyFragmentTests requests early depth testing for fragment
	// entry points.
	EarlyFragmentTests bool

	// WorkgroupSize is used for compute entry points.
	WorkgroupSize [3]uint32

	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns options with no entry points and a 1x1x1
// workgroup.
func DefaultOptions() Options {
	return Options{
		EntryPoints:   map[string]ir.ShaderStage{},
		WorkgroupSize: [3]uint32{1, 1, 1},
	}
}

// StageMask is a set of shader stages.
type StageMask uint8

// Stage masks.
const (
	StageMaskVertex   StageMask = 1 << ir.StageVertex
	StageMaskFragment StageMask = 1 << ir.StageFragment
	StageMaskCompute  StageMask = 1 << ir.StageCompute

	StageMaskAll = StageMaskVertex | StageMaskFragment | StageMaskCompute
)

// Contains reports whether stage is in m.
func (m StageMask) Contains(stage ir.ShaderStage) bool {
	return m&(1<<stage) != 0
}

// EntryArgUse records how a function touches a stage-interface global.
type EntryArgUse uint8

const (
	// EntryArgRead is set when the global is read.
	EntryArgRead EntryArgUse = 1 << iota
	// EntryArgWrite is set when the global is written.
	EntryArgWrite
)

// ParameterQualifier is the storage qualifier of a function parameter.
type ParameterQualifier uint8

const (
	QualifierIn ParameterQualifier = iota
	QualifierOut
	QualifierInOut
	QualifierConst
)

// IsLhs reports whether arguments for q must be l-values.
func (q ParameterQualifier) IsLhs() bool {
	return q == QualifierOut || q == QualifierInOut
}

func (q ParameterQualifier) String() string {
	switch q {
	case QualifierIn:
		return "in"
	case QualifierOut:
		return "out"
	case QualifierInOut:
		return "inout"
	case QualifierConst:
		return "const"
	}
	return "unknown"
}
