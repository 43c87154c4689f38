package ast

import (
	"quartz/internal/source"
)

// Builder owns the AST arenas for one compilation.
type Builder struct {
	Exprs *Arena[Expr]
	Stmts *Arena[Stmt]
	Items *Arena[Item]
}

func NewBuilder(capHint uint) *Builder {
	return &Builder{
		Exprs: NewArena[Expr](capHint),
		Stmts: NewArena[Stmt](capHint / 2),
		Items: NewArena[Item](capHint / 8),
	}
}

func (b *Builder) NewExpr(kind ExprKind, span source.Span, data any) ExprID {
	return ExprID(b.Exprs.Allocate(Expr{Kind: kind, Span: span, Data: data}))
}

func (b *Builder) NewStmt(kind StmtKind, span source.Span, data any) StmtID {
	return StmtID(b.Stmts.Allocate(Stmt{Kind: kind, Span: span, Data: data}))
}

func (b *Builder) NewItem(kind ItemKind, span source.Span, data any) ItemID {
	return ItemID(b.Items.Allocate(Item{Kind: kind, Span: span, Data: data}))
}

func (b *Builder) Expr(id ExprID) *Expr {
	return b.Exprs.Get(uint32(id))
}

func (b *Builder) Stmt(id StmtID) *Stmt {
	return b.Stmts.Get(uint32(id))
}

func (b *Builder) Item(id ItemID) *Item {
	return b.Items.Get(uint32(id))
}

// Mark is a snapshot of all arena lengths, taken before a speculative parse.
type Mark struct {
	exprs uint32
	stmts uint32
	items uint32
}

// Mark records the current arena lengths.
func (b *Builder) Mark() Mark {
	return Mark{
		exprs: b.Exprs.Len(),
		stmts: b.Stmts.Len(),
		items: b.Items.Len(),
	}
}

// ReleaseTo discards every node allocated since the mark. Callers must not
// hold IDs handed out after the mark; they are invalid once released.
func (b *Builder) ReleaseTo(m Mark) {
	b.Exprs.TruncateTo(m.exprs)
	b.Stmts.TruncateTo(m.stmts)
	b.Items.TruncateTo(m.items)
}
