package ir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a readable listing of module to w.
func Fprint(w io.Writer, module *Module) error {
	p := &printer{module: module}

	if len(module.Types) > 0 {
		p.line(0, "types:")
		for i, t := range module.Types {
			name := ""
			if t.Name != "" {
				name = " " + t.Name
			}
			p.line(1, "t%d%s = %s", i, name, p.typeName(t.Inner))
		}
	}

	if len(module.Constants) > 0 {
		p.line(0, "constants:")
		for i, c := range module.Constants {
			p.line(1, "c%d %s: t%d = %s", i, c.Name, c.Type, constantString(c.Value))
		}
	}

	if len(module.GlobalVariables) > 0 {
		p.line(0, "globals:")
		for i, g := range module.GlobalVariables {
			binding := ""
			if g.Binding != nil {
				binding = fmt.Sprintf(" (set=%d, binding=%d)", g.Binding.Group, g.Binding.Binding)
			}
			p.line(1, "g%d %s %s: t%d%s", i, spaceName(g.Space), g.Name, g.Type, binding)
		}
	}

	for i := range module.Functions {
		fn := &module.Functions[i]
		name := ""
		if fn.Name != "" {
			name = fn.Name + " "
		}
		p.line(0, "fn f%d %s%s", i, name, p.signature(fn))
		p.function(fn)
	}

	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		extra := ""
		switch {
		case ep.Stage == StageCompute:
			extra = fmt.Sprintf(" workgroup(%d, %d, %d)", ep.Workgroup[0], ep.Workgroup[1], ep.Workgroup[2])
		case ep.EarlyDepthTest != nil:
			extra = " early_depth_test"
		}
		p.line(0, "entry %s %s%s %s", ep.Stage, ep.Name, extra, p.signature(&ep.Function))
		p.function(&ep.Function)
	}

	_, err := io.WriteString(w, p.sb.String())
	return err
}

type printer struct {
	module *Module
	sb     strings.Builder
}

func (p *printer) line(indent int, format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) signature(fn *Function) string {
	args := make([]string, len(fn.Arguments))
	for i, a := range fn.Arguments {
		args[i] = fmt.Sprintf("%s: t%d%s", a.Name, a.Type, bindingString(a.Binding))
	}
	s := "(" + strings.Join(args, ", ") + ")"
	if fn.Result != nil {
		s += fmt.Sprintf(" -> t%d%s", fn.Result.Type, bindingString(fn.Result.Binding))
	}
	return s
}

func (p *printer) function(fn *Function) {
	for i, l := range fn.LocalVars {
		p.line(1, "local l%d %s: t%d", i, l.Name, l.Type)
	}
	for i, e := range fn.Expressions {
		p.line(1, "e%d = %s", i, expressionString(e.Kind))
	}
	p.block(1, fn.Body)
}

//nolint:gocyclo,cyclop // One case per statement kind
func (p *printer) block(indent int, block Block) {
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case StmtEmit:
			p.line(indent, "emit e%d..e%d", s.Range.Start, s.Range.End)
		case StmtBlock:
			p.line(indent, "block")
			p.block(indent+1, s.Block)
		case StmtIf:
			p.line(indent, "if e%d", s.Condition)
			p.block(indent+1, s.Accept)
			if len(s.Reject) > 0 {
				p.line(indent, "else")
				p.block(indent+1, s.Reject)
			}
		case StmtSwitch:
			p.line(indent, "switch e%d", s.Selector)
			for _, c := range s.Cases {
				var label string
				switch v := c.Value.(type) {
				case SwitchValueI32:
					label = fmt.Sprintf("case %d", int32(v))
				case SwitchValueU32:
					label = fmt.Sprintf("case %du", uint32(v))
				default:
					label = "default"
				}
				if c.FallThrough {
					label += " fallthrough"
				}
				p.line(indent+1, "%s", label)
				p.block(indent+2, c.Body)
			}
		case StmtLoop:
			p.line(indent, "loop")
			p.block(indent+1, s.Body)
			if len(s.Continuing) > 0 || s.BreakIf != nil {
				p.line(indent, "continuing")
				p.block(indent+1, s.Continuing)
				if s.BreakIf != nil {
					p.line(indent+1, "break if e%d", *s.BreakIf)
				}
			}
		case StmtBreak:
			p.line(indent, "break")
		case StmtContinue:
			p.line(indent, "continue")
		case StmtReturn:
			if s.Value != nil {
				p.line(indent, "return e%d", *s.Value)
			} else {
				p.line(indent, "return")
			}
		case StmtKill:
			p.line(indent, "kill")
		case StmtBarrier:
			p.line(indent, "barrier %d", s.Flags)
		case StmtStore:
			p.line(indent, "store e%d <- e%d", s.Pointer, s.Value)
		case StmtImageStore:
			p.line(indent, "image_store e%d[e%d] <- e%d", s.Image, s.Coordinate, s.Value)
		case StmtCall:
			result := ""
			if s.Result != nil {
				result = fmt.Sprintf(" -> e%d", *s.Result)
			}
			p.line(indent, "call f%d(%s)%s", s.Function, handleList(s.Arguments), result)
		}
	}
}

func (p *printer) typeName(inner TypeInner) string {
	switch t := inner.(type) {
	case ScalarType:
		return scalarName(t)
	case VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarName(t.Scalar))
	case MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, scalarName(t.Scalar))
	case ArrayType:
		if t.Size.Constant == nil {
			return fmt.Sprintf("array<t%d>", t.Base)
		}
		return fmt.Sprintf("array<t%d, %d>", t.Base, *t.Size.Constant)
	case StructType:
		members := make([]string, len(t.Members))
		for i, m := range t.Members {
			members[i] = fmt.Sprintf("%s: t%d @%d%s", m.Name, m.Type, m.Offset, bindingString(m.Binding))
		}
		return "struct { " + strings.Join(members, ", ") + " }"
	case PointerType:
		return fmt.Sprintf("ptr<%s, t%d>", spaceName(t.Space), t.Base)
	case ValuePointerType:
		return fmt.Sprintf("ptr<%s, %s>", spaceName(t.Space), scalarName(t.Scalar))
	case SamplerType:
		if t.Comparison {
			return "sampler_comparison"
		}
		return "sampler"
	case ImageType:
		name := fmt.Sprintf("image%s", dimName(t.Dim))
		if t.Arrayed {
			name += "_array"
		}
		if t.Multisampled {
			name += "_ms"
		}
		if t.Class == ImageClassDepth {
			name += "_depth"
		}
		return name
	}
	return fmt.Sprintf("%T", inner)
}

func scalarName(s ScalarType) string {
	return fmt.Sprintf("%s%d", s.Kind, s.Width*8)
}

func dimName(d ImageDimension) string {
	switch d {
	case Dim1D:
		return "1d"
	case Dim2D:
		return "2d"
	case Dim3D:
		return "3d"
	default:
		return "cube"
	}
}

func spaceName(s AddressSpace) string {
	switch s {
	case SpaceFunction:
		return "function"
	case SpacePrivate:
		return "private"
	case SpaceWorkGroup:
		return "workgroup"
	case SpaceUniform:
		return "uniform"
	case SpaceStorage:
		return "storage"
	case SpacePushConstant:
		return "push_constant"
	default:
		return "handle"
	}
}

func bindingString(b *Binding) string {
	if b == nil {
		return ""
	}
	switch v := (*b).(type) {
	case BuiltinBinding:
		return fmt.Sprintf(" @builtin(%d)", v.Builtin)
	case LocationBinding:
		return fmt.Sprintf(" @location(%d)", v.Location)
	}
	return ""
}

func constantString(v ConstantValue) string {
	switch c := v.(type) {
	case ScalarValue:
		return fmt.Sprintf("%s(0x%x)", c.Kind, c.Bits)
	case CompositeValue:
		parts := make([]string, len(c.Components))
		for i, h := range c.Components {
			parts[i] = fmt.Sprintf("c%d", h)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}

func handleList(hs []ExpressionHandle) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = fmt.Sprintf("e%d", h)
	}
	return strings.Join(parts, ", ")
}

//nolint:gocyclo,cyclop // One case per expression kind
func expressionString(kind ExpressionKind) string {
	switch k := kind.(type) {
	case Literal:
		return fmt.Sprintf("literal %v", k.Value)
	case ExprConstant:
		return fmt.Sprintf("constant c%d", k.Constant)
	case ExprZeroValue:
		return fmt.Sprintf("zero t%d", k.Type)
	case ExprCompose:
		return fmt.Sprintf("compose t%d(%s)", k.Type, handleList(k.Components))
	case ExprAccess:
		return fmt.Sprintf("access e%d[e%d]", k.Base, k.Index)
	case ExprAccessIndex:
		return fmt.Sprintf("access e%d[%d]", k.Base, k.Index)
	case ExprSplat:
		return fmt.Sprintf("splat%d e%d", k.Size, k.Value)
	case ExprSwizzle:
		const letters = "xyzw"
		var pat strings.Builder
		for i := 0; i < int(k.Size); i++ {
			pat.WriteByte(letters[k.Pattern[i]])
		}
		return fmt.Sprintf("swizzle e%d.%s", k.Vector, pat.String())
	case ExprFunctionArgument:
		return fmt.Sprintf("argument %d", k.Index)
	case ExprGlobalVariable:
		return fmt.Sprintf("global g%d", k.Variable)
	case ExprLocalVariable:
		return fmt.Sprintf("local l%d", k.Variable)
	case ExprLoad:
		return fmt.Sprintf("load e%d", k.Pointer)
	case ExprImageSample:
		return fmt.Sprintf("sample e%d e%d e%d %T", k.Image, k.Sampler, k.Coordinate, k.Level)
	case ExprImageLoad:
		return fmt.Sprintf("image_load e%d e%d", k.Image, k.Coordinate)
	case ExprImageQuery:
		return fmt.Sprintf("image_query e%d %T", k.Image, k.Query)
	case ExprUnary:
		return fmt.Sprintf("unary(%d) e%d", k.Op, k.Expr)
	case ExprBinary:
		return fmt.Sprintf("binary(%d) e%d e%d", k.Op, k.Left, k.Right)
	case ExprSelect:
		return fmt.Sprintf("select e%d ? e%d : e%d", k.Condition, k.Accept, k.Reject)
	case ExprRelational:
		return fmt.Sprintf("relational(%d) e%d", k.Fun, k.Argument)
	case ExprMath:
		return fmt.Sprintf("math(%d) %s", k.Fun, handleList(Operands(k)))
	case ExprAs:
		if k.Convert != nil {
			return fmt.Sprintf("convert e%d to %s%d", k.Expr, k.Kind, *k.Convert*8)
		}
		return fmt.Sprintf("bitcast e%d to %s", k.Expr, k.Kind)
	case ExprCallResult:
		return fmt.Sprintf("call_result f%d", k.Function)
	}
	return fmt.Sprintf("%T", kind)
}
