package unit

import (
	"github.com/gogpu/glslfront/glsl"
	"github.com/gogpu/glslfront/ir"
)

func (b *builder) block(body *ir.Block, stmts []Stmt) error {
	for i := range stmts {
		if err := b.statement(body, &stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

// nested lowers stmts into a fresh block with its own name scope.
func (b *builder) nested(stmts []Stmt) (ir.Block, error) {
	var block ir.Block
	b.ctx.PushScope()
	defer b.ctx.PopScope()
	b.ctx.EmitStart()
	if err := b.block(&block, stmts); err != nil {
		return nil, err
	}
	b.ctx.EmitFlush(&block)
	return block, nil
}

// push appends a statement that is not an expression evaluation, closing
// the open emit range first.
func (b *builder) push(body *ir.Block, kind ir.StatementKind) {
	b.ctx.EmitFlush(body)
	*body = append(*body, ir.Statement{Kind: kind})
	b.ctx.EmitStart()
}

//nolint:gocyclo,cyclop // One case per statement kind
func (b *builder) statement(body *ir.Block, s *Stmt) error {
	span := spanOf(s.Line, s.Column)
	switch s.Kind {
	case "expr":
		if s.Expr == nil {
			return semanticError(span, "expr statement without an expression")
		}
		h, err := b.hir(body, s.Expr)
		if err != nil {
			return err
		}
		_, _, err = b.ctx.Lower(body, h, false)
		return err

	case "local":
		ty, err := resolveType(b.fe, s.Type)
		if err != nil {
			return semanticError(span, "local %s: %v", s.Name, err)
		}
		var init glsl.HirHandle
		if s.Expr != nil {
			// The initializer cannot see the variable it initializes.
			if init, err = b.hir(body, s.Expr); err != nil {
				return err
			}
		}
		ref := b.ctx.AddLocal(body, s.Name, ty)
		if s.Expr == nil {
			return nil
		}
		target := b.ctx.AddHir(glsl.HirVariable{Ref: ref}, span)
		assign := b.ctx.AddHir(glsl.HirAssign{Target: target, Value: init}, span)
		_, _, err = b.ctx.Lower(body, assign, false)
		return err

	case "return":
		if s.Expr == nil {
			if b.result != nil {
				return semanticError(span, "missing return value")
			}
			b.push(body, ir.StmtReturn{})
			return nil
		}
		if b.result == nil {
			return semanticError(span, "void function returns a value")
		}
		h, err := b.hir(body, s.Expr)
		if err != nil {
			return err
		}
		value, valueSpan, err := b.ctx.LowerExpect(body, h, false)
		if err != nil {
			return err
		}
		if scalar, ok := ir.ScalarOf(b.fe.Module().Types[*b.result].Inner); ok {
			if err := b.ctx.ImplicitConversion(body, &value, valueSpan, scalar); err != nil {
				return err
			}
		}
		b.push(body, ir.StmtReturn{Value: &value})
		return nil

	case "if":
		if s.Expr == nil {
			return semanticError(span, "if statement without a condition")
		}
		h, err := b.hir(body, s.Expr)
		if err != nil {
			return err
		}
		cond, _, err := b.ctx.LowerExpect(body, h, false)
		if err != nil {
			return err
		}
		b.ctx.EmitFlush(body)
		accept, err := b.nested(s.Then)
		if err != nil {
			return err
		}
		reject, err := b.nested(s.Else)
		if err != nil {
			return err
		}
		*body = append(*body, ir.Statement{Kind: ir.StmtIf{Condition: cond, Accept: accept, Reject: reject}})
		b.ctx.EmitStart()
		return nil

	case "loop":
		b.ctx.EmitFlush(body)
		loop, err := b.loopBody(s)
		if err != nil {
			return err
		}
		*body = append(*body, ir.Statement{Kind: ir.StmtLoop{Body: loop}})
		b.ctx.EmitStart()
		return nil

	case "block":
		b.ctx.EmitFlush(body)
		block, err := b.nested(s.Body)
		if err != nil {
			return err
		}
		*body = append(*body, ir.Statement{Kind: ir.StmtBlock{Block: block}})
		b.ctx.EmitStart()
		return nil

	case "break":
		b.push(body, ir.StmtBreak{})
		return nil
	case "continue":
		b.push(body, ir.StmtContinue{})
		return nil
	case "discard":
		b.push(body, ir.StmtKill{})
		return nil
	}
	return semanticError(span, "unknown statement kind %q", s.Kind)
}

// loopBody lowers a loop. A loop with a condition checks it first and
// breaks out when it is false.
func (b *builder) loopBody(s *Stmt) (ir.Block, error) {
	var loop ir.Block
	b.ctx.PushScope()
	defer b.ctx.PopScope()
	b.ctx.EmitStart()

	if s.Expr != nil {
		h, err := b.hir(&loop, s.Expr)
		if err != nil {
			return nil, err
		}
		cond, _, err := b.ctx.LowerExpect(&loop, h, false)
		if err != nil {
			return nil, err
		}
		b.ctx.EmitFlush(&loop)
		loop = append(loop, ir.Statement{Kind: ir.StmtIf{
			Condition: cond,
			Reject:    ir.Block{{Kind: ir.StmtBreak{}}},
		}})
		b.ctx.EmitStart()
	}

	if err := b.block(&loop, s.Body); err != nil {
		return nil, err
	}
	b.ctx.EmitFlush(&loop)
	return loop, nil
}
