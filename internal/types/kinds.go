package types

// Kind discriminates structural type descriptors.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindString
	KindPointer
	KindReference
	KindArray
	// KindNamed is a concrete class/struct type, possibly a template instance
	// (payload indexes NamedInfo).
	KindNamed
	// KindGenericParam is a placeholder for an unbound template parameter
	// (payload indexes ParamInfo).
	KindGenericParam
	// KindDependent is a name that cannot resolve until its base is bound,
	// e.g. T::Inner (payload indexes DependentInfo).
	KindDependent
	KindFn
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindPointer:
		return "pointer"
	case KindReference:
		return "reference"
	case KindArray:
		return "array"
	case KindNamed:
		return "named"
	case KindGenericParam:
		return "generic-param"
	case KindDependent:
		return "dependent"
	case KindFn:
		return "fn"
	}
	return "unknown"
}

// Width is the bit width of a numeric type; WidthAny means platform default.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)
