package symbols

import (
	"quartz/internal/source"
	"quartz/internal/types"
)

// Binding maps one generic-parameter name to its concrete argument while a
// body is parsed or substituted. Exactly one of the type/value/pack payloads
// is meaningful, per the flags.
type Binding struct {
	Name source.StringID

	// Type parameter: the bound concrete type.
	Type types.TypeID

	// Value parameter: the constant and its declared type.
	IsValue   bool
	Value     int64
	ValueType types.TypeID

	// Pack parameter: all bound elements, in order. The two slices are
	// parallel; element i is a value element when PackTypes[i] is invalid.
	IsPack     bool
	PackTypes  []types.TypeID
	PackValues []int64

	// Template-template parameter: the bound template's name.
	IsTemplate bool
	Template   source.StringID
}

// TypeBinding builds a plain type-parameter binding.
func TypeBinding(name source.StringID, ty types.TypeID) Binding {
	return Binding{Name: name, Type: ty}
}

// ValueBinding builds a value-parameter binding.
func ValueBinding(name source.StringID, value int64, declared types.TypeID) Binding {
	return Binding{Name: name, IsValue: true, Value: value, ValueType: declared}
}

// PackBinding builds a type-pack binding over zero or more elements.
func PackBinding(name source.StringID, elems []types.TypeID) Binding {
	return Binding{Name: name, IsPack: true, PackTypes: elems, PackValues: make([]int64, len(elems))}
}

// TemplateBinding builds a template-template binding.
func TemplateBinding(name, template source.StringID) Binding {
	return Binding{Name: name, IsTemplate: true, Template: template}
}
