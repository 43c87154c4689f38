package types

import (
	"testing"

	"quartz/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Bool == NoTypeID || b.Int == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	intTT, _ := in.Lookup(b.Int)
	if intTT.Kind != KindInt || intTT.Width != Width32 {
		t.Fatalf("unexpected int descriptor: %+v", intTT)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	p1 := in.Intern(MakePointer(in.Builtins().Int))
	p2 := in.Intern(MakePointer(in.Builtins().Int))
	if p1 != p2 {
		t.Fatalf("pointer types should be deduplicated")
	}
}

func TestQualifiersAffectIdentity(t *testing.T) {
	in := NewInterner()
	plain := in.Builtins().Int
	constInt := in.WithQualifiers(plain, true, false)
	if plain == constInt {
		t.Fatalf("const int must differ from int")
	}
	if in.StripQualifiers(constInt) != plain {
		t.Fatalf("StripQualifiers did not round-trip")
	}
}

func TestNamedInstanceDedup(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	box := strs.Intern("Box")
	a := in.RegisterNamed(box, []TypeID{in.Builtins().Int}, nil)
	b := in.RegisterNamed(box, []TypeID{in.Builtins().Int}, nil)
	if a != b {
		t.Fatalf("same named instance interned twice")
	}
	c := in.RegisterNamed(box, []TypeID{in.Builtins().Bool}, nil)
	if a == c {
		t.Fatalf("Box<int> and Box<bool> must differ")
	}
}

func TestValueArgsAffectNamedIdentity(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	arr := strs.Intern("FixedArray")
	a := in.RegisterNamed(arr, []TypeID{in.Builtins().Int}, []int64{4})
	b := in.RegisterNamed(arr, []TypeID{in.Builtins().Int}, []int64{8})
	if a == b {
		t.Fatalf("value arguments must distinguish instances")
	}
}

func TestContainsGenericParam(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	owner := strs.Intern("Box")
	tName := strs.Intern("T")
	param := in.RegisterParam(owner, tName, 0, false)
	ptr := in.Intern(MakePointer(param))
	if !in.ContainsGenericParam(ptr) {
		t.Fatalf("T* should contain a generic param")
	}
	if in.ContainsGenericParam(in.Builtins().Int) {
		t.Fatalf("int should not contain a generic param")
	}
}

func TestFormat(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	box := strs.Intern("Box")
	inst := in.RegisterNamed(box, []TypeID{in.Builtins().Int}, nil)
	ptr := in.Intern(MakePointer(inst))
	if got := in.Format(ptr, strs); got != "Box<int>*" {
		t.Fatalf("Format = %q", got)
	}
	constInt := in.WithQualifiers(in.Builtins().Int, true, false)
	if got := in.Format(constInt, strs); got != "const int" {
		t.Fatalf("Format = %q", got)
	}
}
