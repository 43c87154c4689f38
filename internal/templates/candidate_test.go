package templates

import (
	"testing"

	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/types"
)

// addGatedOverload registers a function template `name<N: int>` whose
// constraint clause is the given source text.
func addGatedOverload(t *testing.T, ctx *CompilationContext, name source.StringID, file, constraint string) *Template {
	t.Helper()
	nName := ctx.Strings.Intern("N")
	pos := virtualSpan(ctx, file, constraint)
	decl := ctx.Builder.NewItem(ast.ItemFn, pos, ast.FnData{
		Name:      name,
		Result:    ctx.Types.Builtins().Void,
		ConstrPos: pos,
	})
	cand := &Template{
		Name:   name,
		Params: []GenericParameter{ValueParam(nName, ctx.Types.Builtins().Int)},
		Decl:   decl,
		Span:   pos,
	}
	if err := ctx.Registry.AddOverload(cand); err != nil {
		t.Fatalf("AddOverload: %v", err)
	}
	return cand
}

func TestOverloadPicksSatisfiedConstraint(t *testing.T) {
	ctx := testCtx()
	name := ctx.Strings.Intern("clamp")
	pos := addGatedOverload(t, ctx, name, "clamp_pos.qz", "N > 0")
	neg := addGatedOverload(t, ctx, name, "clamp_neg.qz", "N <= 0")

	forPos, err := ResolveOverload(ctx, name, []GenericArgument{ValueArg(3, types.NoTypeID)}, source.Span{})
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if forPos.Template != pos {
		t.Fatalf("N=3 picked the wrong candidate")
	}

	forNeg, err := ResolveOverload(ctx, name, []GenericArgument{ValueArg(-1, types.NoTypeID)}, source.Span{})
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if forNeg.Template != neg {
		t.Fatalf("N=-1 picked the wrong candidate")
	}
	if forPos.Key == forNeg.Key {
		t.Fatalf("distinct candidates shared an instance key")
	}
	if ctx.Bag.Len() != 0 {
		t.Fatalf("successful resolution left %d diagnostics", ctx.Bag.Len())
	}
}

func TestOverloadResolutionIsCached(t *testing.T) {
	ctx := testCtx()
	name := ctx.Strings.Intern("clamp")
	addGatedOverload(t, ctx, name, "clamp.qz", "N > 0")

	args := []GenericArgument{ValueArg(5, types.NoTypeID)}
	first, err := ResolveOverload(ctx, name, args, source.Span{})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := ResolveOverload(ctx, name, args, source.Span{})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("same arguments produced distinct instances")
	}
}

func TestNoViableCandidateListsRejections(t *testing.T) {
	ctx := testCtx()
	name := ctx.Strings.Intern("grow")
	addGatedOverload(t, ctx, name, "grow_a.qz", "N > 10")
	addGatedOverload(t, ctx, name, "grow_b.qz", "N > 100")

	_, err := ResolveOverload(ctx, name, []GenericArgument{ValueArg(1, types.NoTypeID)}, source.Span{})
	if err == nil {
		t.Fatalf("expected resolution to fail")
	}
	if !bagHasCode(ctx, diag.TplNoViableCandidate) {
		t.Fatalf("missing TplNoViableCandidate diagnostic")
	}
	for _, d := range ctx.Bag.Items() {
		if d.Code != diag.TplNoViableCandidate {
			continue
		}
		if len(d.Notes) != 2 {
			t.Fatalf("got %d rejection notes, want one per candidate", len(d.Notes))
		}
	}
}

func TestRejectionLeavesNoTrace(t *testing.T) {
	ctx := testCtx()
	name := ctx.Strings.Intern("grow")
	addGatedOverload(t, ctx, name, "grow_a.qz", "N > 10")
	addGatedOverload(t, ctx, name, "grow_b.qz", "N > 100")

	exprs := ctx.Builder.Exprs.Len()
	if _, err := ResolveOverload(ctx, name, []GenericArgument{ValueArg(1, types.NoTypeID)}, source.Span{}); err == nil {
		t.Fatalf("expected resolution to fail")
	}

	if got := ctx.Builder.Exprs.Len(); got != exprs {
		t.Fatalf("speculative parses leaked %d expression nodes", got-exprs)
	}
	if ctx.Scopes.Depth() != 0 {
		t.Fatalf("binding frames leaked: depth %d", ctx.Scopes.Depth())
	}
	if ctx.Bag.Len() != 1 {
		t.Fatalf("want only the no-viable diagnostic, bag has %d", ctx.Bag.Len())
	}
}

func TestArityMismatchRejectsSoftly(t *testing.T) {
	ctx := testCtx()
	name := ctx.Strings.Intern("clamp")
	pos := addGatedOverload(t, ctx, name, "clamp.qz", "N > 0")

	// Too many arguments for the gated candidate; it must be skipped without
	// hard errors, leaving only the no-viable report.
	_, err := ResolveOverload(ctx, name, []GenericArgument{
		ValueArg(1, types.NoTypeID), ValueArg(2, types.NoTypeID)}, source.Span{})
	if err == nil {
		t.Fatalf("expected resolution to fail")
	}
	if !bagHasCode(ctx, diag.TplNoViableCandidate) {
		t.Fatalf("missing TplNoViableCandidate diagnostic")
	}

	// The candidate itself is still viable for a fitting argument list.
	inst, err := ResolveOverload(ctx, name, []GenericArgument{ValueArg(1, types.NoTypeID)}, source.Span{})
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if inst.Template != pos {
		t.Fatalf("fitting arguments did not select the candidate")
	}
}

func TestTrailingReturnTypeGatesCandidate(t *testing.T) {
	ctx := testCtx()
	holder := defineHolder(t, ctx)

	name := ctx.Strings.Intern("element_of")
	tName := ctx.Strings.Intern("T")
	pos := virtualSpan(ctx, "element_of.qz", "T::Elem")
	cand := &Template{
		Name:   name,
		Params: []GenericParameter{TypeParam(tName)},
		Decl: ctx.Builder.NewItem(ast.ItemFn, pos, ast.FnData{
			Name:      name,
			Result:    ctx.Types.Builtins().Void,
			ReturnPos: pos,
		}),
		Span: pos,
	}
	if err := ctx.Registry.AddOverload(cand); err != nil {
		t.Fatalf("AddOverload: %v", err)
	}

	// int has no member Elem, so the trailing return type never forms.
	_, err := ResolveOverload(ctx, name, []GenericArgument{intArg(ctx)}, source.Span{})
	if err == nil {
		t.Fatalf("int should not satisfy the return-type clause")
	}
	if !bagHasCode(ctx, diag.TplNoViableCandidate) {
		t.Fatalf("missing TplNoViableCandidate diagnostic")
	}

	// Holder<int> resolves T::Elem through its member alias.
	holderInt := ctx.Types.RegisterNamed(holder, []types.TypeID{ctx.Types.Builtins().Int}, nil)
	inst, err := ResolveOverload(ctx, name, []GenericArgument{TypeArg(holderInt)}, source.Span{})
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if inst.Template != cand {
		t.Fatalf("Holder<int> did not select the candidate")
	}
}

func TestSpeculativeInstantiationSurvivesRewind(t *testing.T) {
	ctx := testCtx()
	holder := defineHolder(t, ctx)

	name := ctx.Strings.Intern("element_of")
	tName := ctx.Strings.Intern("T")
	pos := virtualSpan(ctx, "element_of.qz", "T::Elem")
	cand := &Template{
		Name:   name,
		Params: []GenericParameter{TypeParam(tName)},
		Decl: ctx.Builder.NewItem(ast.ItemFn, pos, ast.FnData{
			Name:      name,
			Result:    ctx.Types.Builtins().Void,
			ReturnPos: pos,
		}),
		Span: pos,
	}
	if err := ctx.Registry.AddOverload(cand); err != nil {
		t.Fatalf("AddOverload: %v", err)
	}

	holderInt := ctx.Types.RegisterNamed(holder, []types.TypeID{ctx.Types.Builtins().Int}, nil)
	if _, err := ResolveOverload(ctx, name, []GenericArgument{TypeArg(holderInt)}, source.Span{}); err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}

	// Checking the return type instantiated Holder<int> on the way; the
	// cached record must still point at a live struct declaration after the
	// speculative rewind.
	inst, err := Instantiate(ctx, holder, []GenericArgument{intArg(ctx)}, source.Span{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	item := ctx.Builder.Item(inst.Decl)
	if item == nil || item.Kind != ast.ItemStruct {
		t.Fatalf("cached declaration is gone or aliased to another node")
	}
	if got := item.Data.(ast.StructData).Name; got != holder {
		t.Fatalf("cached declaration renamed to %v", got)
	}
	if _, err := InstantiateToPhase(ctx, holder, []GenericArgument{intArg(ctx)}, PhaseFull, source.Span{}); err != nil {
		t.Fatalf("advance to full: %v", err)
	}
}

func TestConstraintReadsStaticMember(t *testing.T) {
	ctx := testCtx()
	counter := defineCounter(t, ctx)

	name := ctx.Strings.Intern("wide_enough")
	tName := ctx.Strings.Intern("T")
	pos := virtualSpan(ctx, "wide_enough.qz", "T::total > 5")
	cand := &Template{
		Name:   name,
		Params: []GenericParameter{TypeParam(tName)},
		Decl: ctx.Builder.NewItem(ast.ItemFn, pos, ast.FnData{
			Name:      name,
			Result:    ctx.Types.Builtins().Void,
			ConstrPos: pos,
		}),
		Span: pos,
	}
	if err := ctx.Registry.AddOverload(cand); err != nil {
		t.Fatalf("AddOverload: %v", err)
	}

	// Counter<5> carries total = 10, so the constraint holds.
	counterFive := ctx.Types.RegisterNamed(counter, nil, []int64{5})
	inst, err := ResolveOverload(ctx, name, []GenericArgument{TypeArg(counterFive)}, source.Span{})
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if inst.Template != cand {
		t.Fatalf("Counter<5> did not select the candidate")
	}

	// Counter<1> carries total = 2; the constraint evaluates to false.
	counterOne := ctx.Types.RegisterNamed(counter, nil, []int64{1})
	if _, err := ResolveOverload(ctx, name, []GenericArgument{TypeArg(counterOne)}, source.Span{}); err == nil {
		t.Fatalf("Counter<1> should not satisfy the constraint")
	}
	if !bagHasCode(ctx, diag.TplNoViableCandidate) {
		t.Fatalf("missing TplNoViableCandidate diagnostic")
	}
}

func TestUnknownOverloadName(t *testing.T) {
	ctx := testCtx()
	_, err := ResolveOverload(ctx, ctx.Strings.Intern("missing"), nil, source.Span{})
	if err == nil {
		t.Fatalf("expected an unresolved-name error")
	}
	if !bagHasCode(ctx, diag.TplUnresolvedName) {
		t.Fatalf("missing TplUnresolvedName diagnostic")
	}
}
