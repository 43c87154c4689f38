package templates

import (
	"testing"

	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/types"
)

func TestFullSpecializationWinsOnExactMatch(t *testing.T) {
	ctx := testCtx()
	box := defineBox(t, ctx)

	full := &Specialization{
		Owner:    box,
		Patterns: []GenericArgument{TypeArg(ptrTo(ctx, ctx.Types.Builtins().Int))},
		Decl:     emptyStructDecl(ctx, box),
	}
	mustAddSpecialization(t, ctx, full)

	inst, err := Instantiate(ctx, box, []GenericArgument{TypeArg(ptrTo(ctx, ctx.Types.Builtins().Int))}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if inst.Spec != full {
		t.Fatalf("exact arguments did not select the full specialization")
	}

	other, err := Instantiate(ctx, box, []GenericArgument{intArg(ctx)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if other.Spec != nil {
		t.Fatalf("non-matching arguments selected a specialization")
	}
}

func TestPartialSpecializationBindsPatternParam(t *testing.T) {
	ctx := testCtx()
	box := defineBox(t, ctx)

	// Box<E*> for any E.
	eName := ctx.Strings.Intern("E")
	ePh := ctx.Types.RegisterParam(ctx.Strings.Intern("Box/ptr"), eName, 0, false)
	partial := &Specialization{
		Owner:    box,
		Params:   []GenericParameter{TypeParam(eName)},
		Patterns: []GenericArgument{TypeArg(ptrTo(ctx, ePh))},
		Decl:     emptyStructDecl(ctx, box),
	}
	mustAddSpecialization(t, ctx, partial)

	inst, err := Instantiate(ctx, box, []GenericArgument{TypeArg(ptrTo(ctx, ctx.Types.Builtins().Bool))}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if inst.Spec != partial {
		t.Fatalf("pointer argument did not select the pointer pattern")
	}
	if len(inst.Bindings) != 1 || inst.Bindings[0].Type != ctx.Types.Builtins().Bool {
		t.Fatalf("pattern parameter bound to %+v, want bool", inst.Bindings)
	}

	plain, err := Instantiate(ctx, box, []GenericArgument{intArg(ctx)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if plain.Spec != nil {
		t.Fatalf("non-pointer argument fell into the pointer pattern")
	}
}

func TestDeeperPatternOutranksShallower(t *testing.T) {
	ctx := testCtx()
	box := defineBox(t, ctx)

	eName := ctx.Strings.Intern("E")
	ePtr := ctx.Types.RegisterParam(ctx.Strings.Intern("Box/p1"), eName, 0, false)
	onePtr := &Specialization{
		Owner:    box,
		Params:   []GenericParameter{TypeParam(eName)},
		Patterns: []GenericArgument{TypeArg(ptrTo(ctx, ePtr))},
		Decl:     emptyStructDecl(ctx, box),
	}
	mustAddSpecialization(t, ctx, onePtr)

	fName := ctx.Strings.Intern("F")
	fPtr := ctx.Types.RegisterParam(ctx.Strings.Intern("Box/p2"), fName, 0, false)
	twoPtr := &Specialization{
		Owner:    box,
		Params:   []GenericParameter{TypeParam(fName)},
		Patterns: []GenericArgument{TypeArg(ptrTo(ctx, ptrTo(ctx, fPtr)))},
		Decl:     emptyStructDecl(ctx, box),
	}
	mustAddSpecialization(t, ctx, twoPtr)

	inst, err := Instantiate(ctx, box, []GenericArgument{
		TypeArg(ptrTo(ctx, ptrTo(ctx, ctx.Types.Builtins().Int)))}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if inst.Spec != twoPtr {
		t.Fatalf("T** argument picked the shallower T* pattern")
	}
}

func TestEqualScoresAreAmbiguous(t *testing.T) {
	ctx := testCtx()
	pair := definePair(t, ctx)

	// Pair<E*, F> and Pair<E, F*> both score one concrete node against
	// (int*, int*): registration order must not break the tie.
	eName := ctx.Strings.Intern("E")
	fName := ctx.Strings.Intern("F")

	e1 := ctx.Types.RegisterParam(ctx.Strings.Intern("Pair/s1"), eName, 0, false)
	f1 := ctx.Types.RegisterParam(ctx.Strings.Intern("Pair/s1"), fName, 1, false)
	mustAddSpecialization(t, ctx, &Specialization{
		Owner:    pair,
		Params:   []GenericParameter{TypeParam(eName), TypeParam(fName)},
		Patterns: []GenericArgument{TypeArg(ptrTo(ctx, e1)), TypeArg(f1)},
		Decl:     emptyStructDecl(ctx, pair),
	})

	e2 := ctx.Types.RegisterParam(ctx.Strings.Intern("Pair/s2"), eName, 0, false)
	f2 := ctx.Types.RegisterParam(ctx.Strings.Intern("Pair/s2"), fName, 1, false)
	mustAddSpecialization(t, ctx, &Specialization{
		Owner:    pair,
		Params:   []GenericParameter{TypeParam(eName), TypeParam(fName)},
		Patterns: []GenericArgument{TypeArg(e2), TypeArg(ptrTo(ctx, f2))},
		Decl:     emptyStructDecl(ctx, pair),
	})

	intPtr := ptrTo(ctx, ctx.Types.Builtins().Int)
	_, err := Instantiate(ctx, pair, []GenericArgument{TypeArg(intPtr), TypeArg(intPtr)}, source.Span{})
	if err == nil {
		t.Fatalf("expected an ambiguity error")
	}
	if !bagHasCode(ctx, diag.TplAmbiguousSpecialization) {
		t.Fatalf("missing TplAmbiguousSpecialization diagnostic")
	}
}

func TestInconsistentRepeatedParamRejectsPattern(t *testing.T) {
	ctx := testCtx()
	pair := definePair(t, ctx)

	// Pair<E, E> must not match (int, char).
	eName := ctx.Strings.Intern("E")
	ePh := ctx.Types.RegisterParam(ctx.Strings.Intern("Pair/same"), eName, 0, false)
	same := &Specialization{
		Owner:    pair,
		Params:   []GenericParameter{TypeParam(eName)},
		Patterns: []GenericArgument{TypeArg(ePh), TypeArg(ePh)},
		Decl:     emptyStructDecl(ctx, pair),
	}
	mustAddSpecialization(t, ctx, same)

	mixed, err := Instantiate(ctx, pair, []GenericArgument{
		intArg(ctx), TypeArg(ctx.Types.Builtins().Char)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if mixed.Spec != nil {
		t.Fatalf("Pair<E, E> matched inconsistent arguments")
	}

	both, err := Instantiate(ctx, pair, []GenericArgument{intArg(ctx), intArg(ctx)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if both.Spec != same {
		t.Fatalf("Pair<E, E> did not match equal arguments")
	}
}

func TestValuePatternMatchesExactConstant(t *testing.T) {
	ctx := testCtx()
	name := ctx.Strings.Intern("Ring")
	nName := ctx.Strings.Intern("N")
	mustAddTemplate(t, ctx, &Template{
		Name:   name,
		Params: []GenericParameter{ValueParam(nName, ctx.Types.Builtins().Int)},
		Decl:   emptyStructDecl(ctx, name),
	})
	zero := &Specialization{
		Owner:    name,
		Patterns: []GenericArgument{ValueArg(0, ctx.Types.Builtins().Int)},
		Decl:     emptyStructDecl(ctx, name),
	}
	mustAddSpecialization(t, ctx, zero)

	atZero, err := Instantiate(ctx, name, []GenericArgument{ValueArg(0, types.NoTypeID)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if atZero.Spec != zero {
		t.Fatalf("value 0 did not hit the zero specialization")
	}

	atOne, err := Instantiate(ctx, name, []GenericArgument{ValueArg(1, types.NoTypeID)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if atOne.Spec != nil {
		t.Fatalf("value 1 hit the zero specialization")
	}
}
