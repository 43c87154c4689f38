package ast

import (
	"quartz/internal/source"
	"quartz/internal/types"
)

type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemStruct
	ItemFn
	ItemVar
	ItemAlias
)

// Item is one top-level (or nested) declaration. Data holds the payload.
type Item struct {
	Kind ItemKind
	Span source.Span
	Data any
}

// FieldDecl is a data member. Bound carries a possibly-dependent array bound
// expression that is evaluated during substitution.
type FieldDecl struct {
	Name  source.StringID
	Type  types.TypeID
	Bound ExprID
	Span  source.Span
}

// StaticDecl is a static data member. Init may stay unevaluated until the
// member is first referenced or the class reaches the Full phase.
type StaticDecl struct {
	Name source.StringID
	Type types.TypeID
	Init ExprID
	Span source.Span
}

type ParamDecl struct {
	Name source.StringID
	Type types.TypeID
	Span source.Span
}

// MethodDecl is a member function. BodyPos is the saved source position of an
// unparsed body so it can be lexed again per instantiation; Body is set once
// the body has been parsed and substituted.
type MethodDecl struct {
	Name       source.StringID
	Params     []ParamDecl
	Result     types.TypeID
	Body       StmtID
	BodyPos    source.Span
	ReturnPos  source.Span
	ConstrPos  source.Span
	IsResolved bool
	Span       source.Span
}

// NestedDecl is a nested type declaration inside a class body.
type NestedDecl struct {
	Name source.StringID
	Decl ItemID
	Span source.Span
}

// AliasMemberDecl is a member type alias (using Name = Target).
type AliasMemberDecl struct {
	Name   source.StringID
	Target types.TypeID
	Span   source.Span
}

type StructData struct {
	Name    source.StringID
	Fields  []FieldDecl
	Statics []StaticDecl
	Methods []MethodDecl
	Nested  []NestedDecl
	Aliases []AliasMemberDecl
}

type FnData struct {
	Name      source.StringID
	Params    []ParamDecl
	Result    types.TypeID
	Body      StmtID
	BodyPos   source.Span
	ReturnPos source.Span
	ConstrPos source.Span
}

type VarItemData struct {
	Name source.StringID
	Type types.TypeID
	Init ExprID
}

type AliasItemData struct {
	Name   source.StringID
	Target types.TypeID
}
