package templates

import (
	"strconv"
	"strings"

	"quartz/internal/source"
	"quartz/internal/types"
)

// ArgKind discriminates the payload of a GenericArgument.
type ArgKind uint8

const (
	// ArgType carries an interned type.
	ArgType ArgKind = iota
	// ArgValue carries an integral constant plus its declared type.
	ArgValue
	// ArgTemplate names another template (template-template argument).
	ArgTemplate
	// ArgParamRef appears only in specialization patterns: a reference to one
	// of the specialization's own parameters, to be bound by matching. It is
	// never part of a normalized instantiation argument list.
	ArgParamRef
)

// GenericArgument is one entry of a template-argument list. Exactly one
// payload group is meaningful, per Kind.
type GenericArgument struct {
	Kind ArgKind

	Type types.TypeID

	Value     int64
	ValueType types.TypeID

	// Template holds the named template for ArgTemplate; the referenced
	// parameter name for ArgParamRef.
	Template source.StringID
}

func TypeArg(ty types.TypeID) GenericArgument {
	return GenericArgument{Kind: ArgType, Type: ty}
}

func ValueArg(v int64, declared types.TypeID) GenericArgument {
	return GenericArgument{Kind: ArgValue, Value: v, ValueType: declared}
}

func TemplateArg(name source.StringID) GenericArgument {
	return GenericArgument{Kind: ArgTemplate, Template: name}
}

func ParamRefArg(param source.StringID) GenericArgument {
	return GenericArgument{Kind: ArgParamRef, Template: param}
}

// Equal reports payload equality. Value arguments compare by value and
// declared type so Box<3:int> and Box<3:long> stay distinct instantiations.
func (a GenericArgument) Equal(b GenericArgument) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArgType:
		return a.Type == b.Type
	case ArgValue:
		return a.Value == b.Value && a.ValueType == b.ValueType
	case ArgTemplate, ArgParamRef:
		return a.Template == b.Template
	}
	return false
}

// IsDependent reports whether the argument still mentions an unbound generic
// parameter and therefore cannot key a concrete instantiation.
func (a GenericArgument) IsDependent(in *types.Interner) bool {
	switch a.Kind {
	case ArgType:
		return in.ContainsGenericParam(a.Type)
	case ArgParamRef:
		return true
	default:
		return false
	}
}

// ArgsEqual compares two argument lists elementwise.
func ArgsEqual(a, b []GenericArgument) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ArgsKey renders a stable textual key for an argument list. TypeIDs are
// stable within one interner, which is scoped to one compilation, so the key
// is deterministic for the whole run.
func ArgsKey(args []GenericArgument) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		switch a.Kind {
		case ArgType:
			b.WriteByte('t')
			b.WriteString(strconv.FormatUint(uint64(a.Type), 10))
		case ArgValue:
			b.WriteByte('v')
			b.WriteString(strconv.FormatInt(a.Value, 10))
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(a.ValueType), 10))
		case ArgTemplate:
			b.WriteByte('m')
			b.WriteString(strconv.FormatUint(uint64(a.Template), 10))
		case ArgParamRef:
			b.WriteByte('p')
			b.WriteString(strconv.FormatUint(uint64(a.Template), 10))
		}
	}
	return b.String()
}
