package templates

import (
	"quartz/internal/ast"
	"quartz/internal/constexpr"
	"quartz/internal/diag"
	"quartz/internal/source"
)

// foldExpr expands a fold expression over its pack. When every element (and
// the init operand, if any) constant-evaluates, the whole fold collapses to a
// literal; otherwise it lowers to a nested binary chain with the fold's
// associativity.
func (s *Subst) foldExpr(id ast.ExprID, node *ast.Expr) (ast.ExprID, error) {
	data := node.Data.(ast.FoldData)

	elems, dependent, err := s.packElements(node.Span, data.Pack)
	if err != nil {
		return ast.NoExprID, err
	}
	if dependent {
		// Still generic: substitute what we can inside the operands and keep
		// the fold shape.
		pattern, err := s.Expr(data.Pattern)
		if err != nil {
			return ast.NoExprID, err
		}
		init, err := s.Expr(data.Init)
		if err != nil {
			return ast.NoExprID, err
		}
		if pattern == data.Pattern && init == data.Init {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprFold, node.Span, ast.FoldData{
			Kind: data.Kind, Op: data.Op, Pack: data.Pack, Pattern: pattern, Init: init,
		}), nil
	}

	var init ast.ExprID
	hasInit := data.Kind == ast.FoldBinaryLeft || data.Kind == ast.FoldBinaryRight
	if hasInit {
		init, err = s.Expr(data.Init)
		if err != nil {
			return ast.NoExprID, err
		}
	}

	if len(elems) == 0 {
		return s.emptyFold(node.Span, data, hasInit, init)
	}

	parts := make([]ast.ExprID, 0, len(elems))
	for _, elem := range elems {
		ne, err := s.substElement(data.Pack, data.Pattern, elem)
		if err != nil {
			return ast.NoExprID, err
		}
		parts = append(parts, ne)
	}

	if folded, ok := s.constFold(node.Span, data, parts, hasInit, init); ok {
		return folded, nil
	}
	return s.chainFold(node.Span, data, parts, hasInit, init), nil
}

// emptyFold applies the identity-element rules for zero-length packs.
func (s *Subst) emptyFold(span source.Span, data ast.FoldData, hasInit bool, init ast.ExprID) (ast.ExprID, error) {
	if hasInit {
		return init, nil
	}
	switch data.Op {
	case ast.BinLogAnd:
		return s.ctx.Builder.NewExpr(ast.ExprBoolLit, span, ast.BoolLitData{Value: true}), nil
	case ast.BinLogOr:
		return s.ctx.Builder.NewExpr(ast.ExprBoolLit, span, ast.BoolLitData{Value: false}), nil
	case ast.BinComma:
		return s.ctx.Builder.NewExpr(ast.ExprVoidLit, span, ast.VoidLitData{}), nil
	default:
		return ast.NoExprID, s.ctx.errorf(diag.TplEmptyFold, span,
			"fold of an empty pack over %s has no identity element", data.Op)
	}
}

// constFold collapses the fold to a literal when every operand is constant.
func (s *Subst) constFold(span source.Span, data ast.FoldData, parts []ast.ExprID, hasInit bool, init ast.ExprID) (ast.ExprID, bool) {
	values := make([]constexpr.Value, 0, len(parts)+1)
	for _, p := range parts {
		v, err := s.ctx.Eval.Eval(s.ctx.Builder, s.ctx.Scopes, p)
		if err != nil {
			return ast.NoExprID, false
		}
		values = append(values, v)
	}
	var initValue constexpr.Value
	if hasInit {
		v, err := s.ctx.Eval.Eval(s.ctx.Builder, s.ctx.Scopes, init)
		if err != nil {
			return ast.NoExprID, false
		}
		initValue = v
	}

	var acc constexpr.Value
	var err error
	leftward := data.Kind == ast.FoldUnaryLeft || data.Kind == ast.FoldBinaryLeft
	if leftward {
		acc = values[0]
		if hasInit {
			acc, err = constexpr.ApplyBinary(data.Op, initValue, values[0])
			if err != nil {
				return ast.NoExprID, false
			}
		}
		for _, v := range values[1:] {
			acc, err = constexpr.ApplyBinary(data.Op, acc, v)
			if err != nil {
				return ast.NoExprID, false
			}
		}
	} else {
		acc = values[len(values)-1]
		if hasInit {
			acc, err = constexpr.ApplyBinary(data.Op, values[len(values)-1], initValue)
			if err != nil {
				return ast.NoExprID, false
			}
		}
		for i := len(values) - 2; i >= 0; i-- {
			acc, err = constexpr.ApplyBinary(data.Op, values[i], acc)
			if err != nil {
				return ast.NoExprID, false
			}
		}
	}
	return s.literal(span, acc), true
}

func (s *Subst) literal(span source.Span, v constexpr.Value) ast.ExprID {
	switch v.Kind {
	case constexpr.ValBool:
		return s.ctx.Builder.NewExpr(ast.ExprBoolLit, span, ast.BoolLitData{Value: v.Bool})
	case constexpr.ValVoid:
		return s.ctx.Builder.NewExpr(ast.ExprVoidLit, span, ast.VoidLitData{})
	default:
		return s.ctx.Builder.NewExpr(ast.ExprIntLit, span, ast.IntLitData{Value: v.Int, Type: v.Type})
	}
}

// chainFold lowers the fold to nested binary nodes with the declared
// associativity.
func (s *Subst) chainFold(span source.Span, data ast.FoldData, parts []ast.ExprID, hasInit bool, init ast.ExprID) ast.ExprID {
	b := s.ctx.Builder
	if data.Kind == ast.FoldUnaryLeft || data.Kind == ast.FoldBinaryLeft {
		acc := parts[0]
		if hasInit {
			acc = b.NewExpr(ast.ExprBinary, span, ast.BinaryData{Op: data.Op, Left: init, Right: parts[0]})
		}
		for _, p := range parts[1:] {
			acc = b.NewExpr(ast.ExprBinary, span, ast.BinaryData{Op: data.Op, Left: acc, Right: p})
		}
		return acc
	}
	acc := parts[len(parts)-1]
	if hasInit {
		acc = b.NewExpr(ast.ExprBinary, span, ast.BinaryData{Op: data.Op, Left: parts[len(parts)-1], Right: init})
	}
	for i := len(parts) - 2; i >= 0; i-- {
		acc = b.NewExpr(ast.ExprBinary, span, ast.BinaryData{Op: data.Op, Left: parts[i], Right: acc})
	}
	return acc
}
