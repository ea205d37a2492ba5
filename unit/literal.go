package unit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/gogpu/glslfront/ir"
)

// parseLiteral parses a GLSL literal: true, false, integers with an
// optional u suffix, and floats with an optional f or lf suffix.
func parseLiteral(s string) (ir.LiteralValue, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "true":
		return ir.LiteralBool(true), nil
	case "false":
		return ir.LiteralBool(false), nil
	case "":
		return nil, fmt.Errorf("empty literal")
	}

	lower := strings.ToLower(s)
	hex := strings.HasPrefix(lower, "0x")
	if !hex && (strings.ContainsAny(lower, ".e") || strings.HasSuffix(lower, "f")) {
		if digits, ok := strings.CutSuffix(lower, "lf"); ok {
			v, err := strconv.ParseFloat(digits, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid double literal %q", s)
			}
			return ir.LiteralF64(v), nil
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(lower, "f"), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %q", s)
		}
		return ir.LiteralF32(float32(v)), nil
	}

	if digits, ok := strings.CutSuffix(lower, "u"); ok {
		v, err := strconv.ParseUint(digits, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid uint literal %q", s)
		}
		u, err := safecast.Conv[uint32](v)
		if err != nil {
			return nil, fmt.Errorf("uint literal %q: %w", s, err)
		}
		return ir.LiteralU32(u), nil
	}

	v, err := strconv.ParseInt(lower, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid int literal %q", s)
	}
	i, err := safecast.Conv[int32](v)
	if err != nil {
		return nil, fmt.Errorf("int literal %q: %w", s, err)
	}
	return ir.LiteralI32(i), nil
}

// scalarValue converts a literal into the constant encoding for scalar,
// converting between numeric kinds as a constructor would.
func scalarValue(lit ir.LiteralValue, scalar ir.ScalarType) (ir.ScalarValue, error) {
	var f float64
	var i int64
	switch v := lit.(type) {
	case ir.LiteralBool:
		if v {
			f, i = 1, 1
		}
	case ir.LiteralI32:
		f, i = float64(v), int64(v)
	case ir.LiteralU32:
		f, i = float64(v), int64(v)
	case ir.LiteralF32:
		f, i = float64(v), int64(v)
	case ir.LiteralF64:
		f, i = float64(v), int64(v)
	}

	out := ir.ScalarValue{Kind: scalar.Kind}
	switch scalar.Kind {
	case ir.ScalarFloat:
		if scalar.Width == 8 {
			out.Bits = math.Float64bits(f)
		} else {
			out.Bits = uint64(math.Float32bits(float32(f)))
		}
	case ir.ScalarSint:
		n, err := safecast.Conv[int32](i)
		if err != nil {
			return out, err
		}
		out.Bits = uint64(uint32(n))
	case ir.ScalarUint:
		n, err := safecast.Conv[uint32](i)
		if err != nil {
			return out, err
		}
		out.Bits = uint64(n)
	case ir.ScalarBool:
		if i != 0 {
			out.Bits = 1
		}
	}
	return out, nil
}
