package types

// TypeID is a stable handle into an Interner. Zero is the invalid sentinel.
type TypeID uint32

const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// ArrayUnsized marks an array whose length is not (yet) a concrete constant.
const ArrayUnsized uint32 = ^uint32(0)

// Type is a structural descriptor. Composite kinds reference other TypeIDs;
// kinds with out-of-line data (named, generic-param, dependent, fn) index a
// side table through Payload.
type Type struct {
	Kind     Kind
	Elem     TypeID
	Count    uint32
	Width    Width
	Const    bool
	Volatile bool
	Payload  uint32
}

func MakeInt(w Width) Type   { return Type{Kind: KindInt, Width: w} }
func MakeUint(w Width) Type  { return Type{Kind: KindUint, Width: w} }
func MakeFloat(w Width) Type { return Type{Kind: KindFloat, Width: w} }

func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

func MakeReference(elem TypeID) Type {
	return Type{Kind: KindReference, Elem: elem}
}

func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}
