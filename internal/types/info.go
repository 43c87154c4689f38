package types

import (
	"quartz/internal/source"
)

// Field is one data member of a nominal instance, after substitution.
type Field struct {
	Name   source.StringID
	Type   TypeID
	Offset uint32
	Span   source.Span
}

// NamedInfo is the side data of a KindNamed type: a class/struct, keyed by its
// qualified name plus the concrete template arguments it was built with.
type NamedInfo struct {
	Name      source.StringID
	TypeArgs  []TypeID
	ValueArgs []int64
	Fields    []Field
	Size      uint32
	Align     uint32
}

// ParamInfo is the side data of a KindGenericParam placeholder.
type ParamInfo struct {
	// Owner is the qualified name of the declaration the parameter belongs to.
	Owner  source.StringID
	Name   source.StringID
	Index  uint32
	IsPack bool
}

// DependentInfo is the side data of a KindDependent type (base::member).
type DependentInfo struct {
	Base   TypeID
	Member source.StringID
}

// FnInfo is the side data of a KindFn type.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}
