package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"quartz/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Char    TypeID
	Int     TypeID
	Int64   TypeID
	Uint    TypeID
	Uint64  TypeID
	Float   TypeID
	Double  TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins

	named      []NamedInfo
	namedIndex map[string]TypeID
	params     []ParamInfo
	paramIndex map[string]TypeID
	deps       []DependentInfo
	depIndex   map[string]TypeID
	fns        []FnInfo
	fnIndex    map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[Type]TypeID, 64),
		namedIndex: make(map[string]TypeID),
		paramIndex: make(map[string]TypeID),
		depIndex:   make(map[string]TypeID),
		fnIndex:    make(map[string]TypeID),
	}
	// Reserve payload slot 0 of every side table as the invalid sentinel.
	in.named = append(in.named, NamedInfo{})
	in.params = append(in.params, ParamInfo{})
	in.deps = append(in.deps, DependentInfo{})
	in.fns = append(in.fns, FnInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar, Width: Width8})
	in.builtins.Int = in.Intern(MakeInt(Width32))
	in.builtins.Int64 = in.Intern(MakeInt(Width64))
	in.builtins.Uint = in.Intern(MakeUint(Width32))
	in.builtins.Uint64 = in.Intern(MakeUint(Width64))
	in.builtins.Float = in.Intern(MakeFloat(Width32))
	in.builtins.Double = in.Intern(MakeFloat(Width64))
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// WithQualifiers returns id with const/volatile flags set (identity when unchanged).
func (in *Interner) WithQualifiers(id TypeID, isConst, isVolatile bool) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	if tt.Const == isConst && tt.Volatile == isVolatile {
		return id
	}
	tt.Const = isConst
	tt.Volatile = isVolatile
	return in.Intern(tt)
}

// StripQualifiers returns the unqualified form of id.
func (in *Interner) StripQualifiers(id TypeID) TypeID {
	return in.WithQualifiers(id, false, false)
}

func namedKey(name source.StringID, typeArgs []TypeID, valueArgs []int64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(name), 10))
	for _, a := range typeArgs {
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	for _, v := range valueArgs {
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// RegisterNamed interns a nominal type, deduplicating by (name, args).
func (in *Interner) RegisterNamed(name source.StringID, typeArgs []TypeID, valueArgs []int64) TypeID {
	key := namedKey(name, typeArgs, valueArgs)
	if id, ok := in.namedIndex[key]; ok {
		return id
	}
	payload, err := safecast.Conv[uint32](len(in.named))
	if err != nil {
		panic(fmt.Errorf("named table overflow: %w", err))
	}
	in.named = append(in.named, NamedInfo{
		Name:      name,
		TypeArgs:  append([]TypeID(nil), typeArgs...),
		ValueArgs: append([]int64(nil), valueArgs...),
	})
	id := in.internRaw(Type{Kind: KindNamed, Payload: payload})
	in.namedIndex[key] = id
	return id
}

// FindNamedInstance reports an already-interned nominal instance.
func (in *Interner) FindNamedInstance(name source.StringID, typeArgs []TypeID, valueArgs []int64) (TypeID, bool) {
	id, ok := in.namedIndex[namedKey(name, typeArgs, valueArgs)]
	return id, ok
}

// NamedInfo returns the side data for a KindNamed type.
func (in *Interner) NamedInfo(id TypeID) (*NamedInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNamed || int(tt.Payload) >= len(in.named) {
		return nil, false
	}
	return &in.named[tt.Payload], true
}

// SetNamedFields attaches substituted field data to a nominal instance.
func (in *Interner) SetNamedFields(id TypeID, fields []Field) {
	if info, ok := in.NamedInfo(id); ok {
		info.Fields = fields
	}
}

// RegisterParam interns a generic-parameter placeholder type.
func (in *Interner) RegisterParam(owner, name source.StringID, index uint32, isPack bool) TypeID {
	key := fmt.Sprintf("%d:%d:%d:%t", owner, name, index, isPack)
	if id, ok := in.paramIndex[key]; ok {
		return id
	}
	payload, err := safecast.Conv[uint32](len(in.params))
	if err != nil {
		panic(fmt.Errorf("param table overflow: %w", err))
	}
	in.params = append(in.params, ParamInfo{Owner: owner, Name: name, Index: index, IsPack: isPack})
	id := in.internRaw(Type{Kind: KindGenericParam, Payload: payload})
	in.paramIndex[key] = id
	return id
}

// ParamInfo returns the side data for a KindGenericParam type.
func (in *Interner) ParamInfo(id TypeID) (*ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindGenericParam || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

// RegisterDependent interns a dependent member-type reference (base::member).
func (in *Interner) RegisterDependent(base TypeID, member source.StringID) TypeID {
	key := fmt.Sprintf("%d::%d", base, member)
	if id, ok := in.depIndex[key]; ok {
		return id
	}
	payload, err := safecast.Conv[uint32](len(in.deps))
	if err != nil {
		panic(fmt.Errorf("dependent table overflow: %w", err))
	}
	in.deps = append(in.deps, DependentInfo{Base: base, Member: member})
	id := in.internRaw(Type{Kind: KindDependent, Payload: payload})
	in.depIndex[key] = id
	return id
}

// DependentInfo returns the side data for a KindDependent type.
func (in *Interner) DependentInfo(id TypeID) (*DependentInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindDependent || int(tt.Payload) >= len(in.deps) {
		return nil, false
	}
	return &in.deps[tt.Payload], true
}

// RegisterFn interns a function type.
func (in *Interner) RegisterFn(params []TypeID, result TypeID) TypeID {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(strconv.FormatUint(uint64(p), 10))
		b.WriteByte(',')
	}
	b.WriteByte('>')
	b.WriteString(strconv.FormatUint(uint64(result), 10))
	key := b.String()
	if id, ok := in.fnIndex[key]; ok {
		return id
	}
	payload, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn table overflow: %w", err))
	}
	in.fns = append(in.fns, FnInfo{Params: append([]TypeID(nil), params...), Result: result})
	id := in.internRaw(Type{Kind: KindFn, Payload: payload})
	in.fnIndex[key] = id
	return id
}

// FnInfo returns the side data for a KindFn type.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// Len returns the number of interned descriptors.
func (in *Interner) Len() int {
	return len(in.types)
}
