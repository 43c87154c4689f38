package templates

import (
	"quartz/internal/source"
	"quartz/internal/types"
)

// ParamKind discriminates template-parameter declarations.
type ParamKind uint8

const (
	ParamType ParamKind = iota
	ParamValue
	ParamTemplate
)

// GenericParameter is one declared template parameter.
type GenericParameter struct {
	Kind ParamKind
	Name source.StringID

	// ValueType is the declared type of a value parameter.
	ValueType types.TypeID

	// Default, when non-nil, fills a missing trailing argument. A default may
	// reference earlier parameters through ArgParamRef.
	Default *GenericArgument

	// IsPack marks a trailing parameter pack; it absorbs all remaining
	// arguments, possibly zero.
	IsPack bool
}

func TypeParam(name source.StringID) GenericParameter {
	return GenericParameter{Kind: ParamType, Name: name}
}

func ValueParam(name source.StringID, declared types.TypeID) GenericParameter {
	return GenericParameter{Kind: ParamValue, Name: name, ValueType: declared}
}

func TemplateParam(name source.StringID) GenericParameter {
	return GenericParameter{Kind: ParamTemplate, Name: name}
}

func TypePack(name source.StringID) GenericParameter {
	return GenericParameter{Kind: ParamType, Name: name, IsPack: true}
}

// WithDefault attaches a default argument.
func (p GenericParameter) WithDefault(def GenericArgument) GenericParameter {
	p.Default = &def
	return p
}

// accepts reports whether the argument's category fits the parameter.
func (p GenericParameter) accepts(a GenericArgument) bool {
	switch p.Kind {
	case ParamType:
		return a.Kind == ArgType
	case ParamValue:
		return a.Kind == ArgValue
	case ParamTemplate:
		return a.Kind == ArgTemplate
	}
	return false
}
