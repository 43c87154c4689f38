package ast

import (
	"quartz/internal/source"
	"quartz/internal/types"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIdent
	ExprIntLit
	ExprBoolLit
	ExprStringLit
	ExprTypeLit
	ExprUnary
	ExprBinary
	ExprCall
	ExprMember
	ExprIndex
	ExprCast
	ExprConstruct
	ExprQualified
	// ExprParamRef is a reference to a generic parameter of the enclosing
	// template; substitution replaces it with the bound argument.
	ExprParamRef
	// ExprPackExpand is `pattern...` in call-argument position.
	ExprPackExpand
	ExprFold
	ExprSizeofPack
	// ExprVoidLit is the unit value produced by degenerate forms such as an
	// empty comma fold.
	ExprVoidLit
)

type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
	UnaryDeref
	UnaryAddr
)

type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinLogAnd
	BinLogOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinComma
)

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinShl:
		return "<<"
	case BinShr:
		return ">>"
	case BinBitAnd:
		return "&"
	case BinBitOr:
		return "|"
	case BinBitXor:
		return "^"
	case BinLogAnd:
		return "&&"
	case BinLogOr:
		return "||"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinComma:
		return ","
	}
	return "?"
}

// Expr is one AST expression node. Data holds the kind-specific payload.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data any
}

type IdentData struct {
	Name source.StringID
}

type IntLitData struct {
	Value int64
	// Type preserves the declared value-parameter type, not a generic "int".
	Type types.TypeID
}

type BoolLitData struct {
	Value bool
}

type StringLitData struct {
	Value source.StringID
}

// TypeLitData names a type in expression position (template argument lists,
// casts written in functional form).
type TypeLitData struct {
	Type types.TypeID
}

type UnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type BinaryData struct {
	Op    BinOp
	Left  ExprID
	Right ExprID
}

type CallData struct {
	Callee ExprID
	Args   []ExprID
}

type MemberData struct {
	Object ExprID
	Name   source.StringID
	Arrow  bool
}

type IndexData struct {
	Object ExprID
	Index  ExprID
}

type CastData struct {
	Target types.TypeID
	Value  ExprID
}

// ConstructData is a constructor call T{...} / T(...) on a concrete type.
type ConstructData struct {
	Type types.TypeID
	Args []ExprID
}

// QualifiedData is a namespace-qualified reference owner::name. Owner may
// embed a generic parameter and is re-resolved after substitution.
type QualifiedData struct {
	Owner source.StringID
	Name  source.StringID
	// OwnerType is set when the qualifier is a type expression rather than a
	// plain namespace (e.g. T::value).
	OwnerType types.TypeID
}

type ParamRefData struct {
	Name source.StringID
}

type PackExpandData struct {
	Pattern ExprID
	// Pack names the parameter pack the pattern mentions.
	Pack source.StringID
}

// FoldKind distinguishes the three fold-expression shapes.
type FoldKind uint8

const (
	// FoldUnaryLeft is (... op pack).
	FoldUnaryLeft FoldKind = iota
	// FoldUnaryRight is (pack op ...).
	FoldUnaryRight
	// FoldBinaryLeft is (init op ... op pack).
	FoldBinaryLeft
	// FoldBinaryRight is (pack op ... op init).
	FoldBinaryRight
)

type FoldData struct {
	Kind    FoldKind
	Op      BinOp
	Pack    source.StringID
	Pattern ExprID
	Init    ExprID
}

type SizeofPackData struct {
	Pack source.StringID
}

type VoidLitData struct{}
