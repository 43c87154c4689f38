package ast

import (
	"quartz/internal/source"
	"quartz/internal/types"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtExpr
	StmtVar
	StmtAssign
	StmtReturn
	StmtIf
	StmtWhile
	StmtBlock
)

// Stmt is one AST statement node. Data holds the kind-specific payload.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data any
}

type ExprStmtData struct {
	Expr ExprID
}

type VarData struct {
	Name source.StringID
	Type types.TypeID
	Init ExprID
}

type AssignData struct {
	Target ExprID
	Value  ExprID
}

type ReturnData struct {
	Value ExprID
}

type IfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

type WhileData struct {
	Cond ExprID
	Body StmtID
}

type BlockData struct {
	Stmts []StmtID
}
