package constexpr

import (
	"quartz/internal/types"
)

// ValueKind discriminates evaluation results.
type ValueKind uint8

const (
	ValInt ValueKind = iota
	ValBool
	ValVoid
)

// Value is a compile-time constant.
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	// Type is the declared type of the constant, when known.
	Type types.TypeID
}

func IntValue(v int64, ty types.TypeID) Value {
	return Value{Kind: ValInt, Int: v, Type: ty}
}

func BoolValue(v bool) Value {
	return Value{Kind: ValBool, Bool: v}
}

func VoidValue() Value {
	return Value{Kind: ValVoid}
}

// Truthy reports the boolean interpretation of the value.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValBool:
		return v.Bool
	case ValInt:
		return v.Int != 0
	default:
		return false
	}
}
