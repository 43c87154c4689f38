package ast

import (
	"testing"

	"quartz/internal/source"
)

func TestArenaOneBasedIDs(t *testing.T) {
	b := NewBuilder(16)
	id := b.NewExpr(ExprIntLit, source.Span{}, IntLitData{Value: 7})
	if !id.IsValid() {
		t.Fatalf("first allocation returned invalid ID")
	}
	if got := b.Expr(id); got == nil || got.Kind != ExprIntLit {
		t.Fatalf("lookup failed for %d", id)
	}
	if b.Expr(NoExprID) != nil {
		t.Fatalf("NoExprID must resolve to nil")
	}
}

func TestMarkReleaseForgetsSpeculativeNodes(t *testing.T) {
	b := NewBuilder(16)
	keep := b.NewExpr(ExprIntLit, source.Span{}, IntLitData{Value: 1})
	m := b.Mark()
	b.NewExpr(ExprIntLit, source.Span{}, IntLitData{Value: 2})
	b.NewStmt(StmtReturn, source.Span{}, ReturnData{})
	b.ReleaseTo(m)

	if b.Exprs.Len() != 1 || b.Stmts.Len() != 0 {
		t.Fatalf("release did not truncate: exprs=%d stmts=%d", b.Exprs.Len(), b.Stmts.Len())
	}
	if got := b.Expr(keep); got == nil || got.Data.(IntLitData).Value != 1 {
		t.Fatalf("node allocated before the mark was lost")
	}
}

func TestReleaseToIsIdempotent(t *testing.T) {
	b := NewBuilder(4)
	m := b.Mark()
	b.NewExpr(ExprBoolLit, source.Span{}, BoolLitData{Value: true})
	b.ReleaseTo(m)
	b.ReleaseTo(m)
	if b.Exprs.Len() != 0 {
		t.Fatalf("double release corrupted arena")
	}
}
