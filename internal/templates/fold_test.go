package templates

import (
	"testing"

	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// foldFixture builds a fold node over a value pack and substitutes it under
// the given elements.
type foldFixture struct {
	ctx   *CompilationContext
	owner source.StringID
	pack  source.StringID
}

func newFoldFixture(ctx *CompilationContext) *foldFixture {
	return &foldFixture{
		ctx:   ctx,
		owner: ctx.Strings.Intern("variadic"),
		pack:  ctx.Strings.Intern("args"),
	}
}

func (f *foldFixture) packRef() ast.ExprID {
	return f.ctx.Builder.NewExpr(ast.ExprParamRef, source.Span{}, ast.ParamRefData{Name: f.pack})
}

func (f *foldFixture) fold(kind ast.FoldKind, op ast.BinOp, init ast.ExprID) ast.ExprID {
	return f.ctx.Builder.NewExpr(ast.ExprFold, source.Span{}, ast.FoldData{
		Kind: kind, Op: op, Pack: f.pack, Pattern: f.packRef(), Init: init,
	})
}

func (f *foldFixture) intLit(v int64) ast.ExprID {
	return f.ctx.Builder.NewExpr(ast.ExprIntLit, source.Span{}, ast.IntLitData{
		Value: v, Type: f.ctx.Types.Builtins().Int,
	})
}

// subst runs substitution with the pack bound to the given integer elements.
func (f *foldFixture) subst(t *testing.T, expr ast.ExprID, elems ...int64) (ast.ExprID, error) {
	t.Helper()
	args := make([]GenericArgument, len(elems))
	for i, v := range elems {
		args[i] = ValueArg(v, f.ctx.Types.Builtins().Int)
	}
	bind, err := packBindingOf(f.pack, args)
	if err != nil {
		t.Fatalf("packBindingOf: %v", err)
	}
	guard := f.ctx.Scopes.Push(bind)
	defer guard.Release()
	sub := f.ctx.NewSubst(f.owner, []GenericParameter{TypePack(f.pack)}, source.Span{})
	return sub.Expr(expr)
}

func (f *foldFixture) wantInt(t *testing.T, id ast.ExprID, want int64) {
	t.Helper()
	node := f.ctx.Builder.Expr(id)
	if node.Kind != ast.ExprIntLit {
		t.Fatalf("result kind = %v, want int literal", node.Kind)
	}
	if got := node.Data.(ast.IntLitData).Value; got != want {
		t.Fatalf("folded value = %d, want %d", got, want)
	}
}

func TestUnaryLeftFoldSums(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	got, err := f.subst(t, f.fold(ast.FoldUnaryLeft, ast.BinAdd, ast.NoExprID), 1, 2, 3)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	f.wantInt(t, got, 6)
}

func TestFoldSingleElement(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	got, err := f.subst(t, f.fold(ast.FoldUnaryRight, ast.BinMul, ast.NoExprID), 42)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	f.wantInt(t, got, 42)
}

func TestFoldAssociativityWithSubtraction(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)

	left, err := f.subst(t, f.fold(ast.FoldUnaryLeft, ast.BinSub, ast.NoExprID), 1, 2, 3)
	if err != nil {
		t.Fatalf("left fold: %v", err)
	}
	f.wantInt(t, left, -4) // (1-2)-3

	right, err := f.subst(t, f.fold(ast.FoldUnaryRight, ast.BinSub, ast.NoExprID), 1, 2, 3)
	if err != nil {
		t.Fatalf("right fold: %v", err)
	}
	f.wantInt(t, right, 2) // 1-(2-3)
}

func TestBinaryFoldsUseInit(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)

	left, err := f.subst(t, f.fold(ast.FoldBinaryLeft, ast.BinAdd, f.intLit(10)), 1, 2)
	if err != nil {
		t.Fatalf("binary left: %v", err)
	}
	f.wantInt(t, left, 13)

	right, err := f.subst(t, f.fold(ast.FoldBinaryRight, ast.BinSub, f.intLit(10)), 1, 2)
	if err != nil {
		t.Fatalf("binary right: %v", err)
	}
	f.wantInt(t, right, 9) // 1-(2-10)
}

func TestEmptyFoldIdentities(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)

	and, err := f.subst(t, f.fold(ast.FoldUnaryRight, ast.BinLogAnd, ast.NoExprID))
	if err != nil {
		t.Fatalf("empty &&: %v", err)
	}
	if node := ctx.Builder.Expr(and); node.Kind != ast.ExprBoolLit || !node.Data.(ast.BoolLitData).Value {
		t.Fatalf("empty && fold = %+v, want true", node)
	}

	or, err := f.subst(t, f.fold(ast.FoldUnaryLeft, ast.BinLogOr, ast.NoExprID))
	if err != nil {
		t.Fatalf("empty ||: %v", err)
	}
	if node := ctx.Builder.Expr(or); node.Kind != ast.ExprBoolLit || node.Data.(ast.BoolLitData).Value {
		t.Fatalf("empty || fold = %+v, want false", node)
	}

	comma, err := f.subst(t, f.fold(ast.FoldUnaryLeft, ast.BinComma, ast.NoExprID))
	if err != nil {
		t.Fatalf("empty comma: %v", err)
	}
	if node := ctx.Builder.Expr(comma); node.Kind != ast.ExprVoidLit {
		t.Fatalf("empty comma fold kind = %v, want void literal", node.Kind)
	}
}

func TestEmptyFoldWithoutIdentityFails(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	_, err := f.subst(t, f.fold(ast.FoldUnaryLeft, ast.BinAdd, ast.NoExprID))
	if err == nil {
		t.Fatalf("expected the empty + fold to fail")
	}
	if !bagHasCode(ctx, diag.TplEmptyFold) {
		t.Fatalf("missing TplEmptyFold diagnostic")
	}
}

func TestEmptyBinaryFoldCollapsesToInit(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	got, err := f.subst(t, f.fold(ast.FoldBinaryLeft, ast.BinAdd, f.intLit(10)))
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	f.wantInt(t, got, 10)
}

func TestDependentFoldStaysFold(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	expr := f.fold(ast.FoldUnaryLeft, ast.BinAdd, ast.NoExprID)

	// No binding for the pack: the fold survives substitution unchanged.
	sub := ctx.NewSubst(f.owner, []GenericParameter{TypePack(f.pack)}, source.Span{})
	got, err := sub.Expr(expr)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	if got != expr {
		t.Fatalf("dependent fold was rewritten")
	}
}

func TestSizeofPackResolvesFromBinding(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	expr := ctx.Builder.NewExpr(ast.ExprSizeofPack, source.Span{}, ast.SizeofPackData{Pack: f.pack})
	got, err := f.subst(t, expr, 4, 5, 6)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	f.wantInt(t, got, 3)
}

func TestSizeofPackResolvesFromFact(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	ctx.Registry.SetPackSize(f.owner, f.pack, 7)

	expr := ctx.Builder.NewExpr(ast.ExprSizeofPack, source.Span{}, ast.SizeofPackData{Pack: f.pack})
	sub := ctx.NewSubst(f.owner, []GenericParameter{TypePack(f.pack)}, source.Span{})
	got, err := sub.Expr(expr)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	f.wantInt(t, got, 7)
}

func TestSizeofUnknownPackFails(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	expr := ctx.Builder.NewExpr(ast.ExprSizeofPack, source.Span{}, ast.SizeofPackData{
		Pack: ctx.Strings.Intern("nothing"),
	})
	sub := ctx.NewSubst(f.owner, []GenericParameter{TypePack(f.pack)}, source.Span{})
	if _, err := sub.Expr(expr); err == nil {
		t.Fatalf("expected an unknown-pack error")
	}
}

func TestPackExpansionSplicesCallArguments(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)

	callee := ctx.Builder.NewExpr(ast.ExprIdent, source.Span{}, ast.IdentData{Name: ctx.Strings.Intern("sink")})
	expand := ctx.Builder.NewExpr(ast.ExprPackExpand, source.Span{}, ast.PackExpandData{
		Pattern: f.packRef(), Pack: f.pack,
	})
	call := ctx.Builder.NewExpr(ast.ExprCall, source.Span{}, ast.CallData{
		Callee: callee, Args: []ast.ExprID{expand},
	})

	got, err := f.subst(t, call, 1, 2, 3)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	data := ctx.Builder.Expr(got).Data.(ast.CallData)
	if len(data.Args) != 3 {
		t.Fatalf("expanded to %d arguments, want 3", len(data.Args))
	}
	for i, want := range []int64{1, 2, 3} {
		node := ctx.Builder.Expr(data.Args[i])
		if node.Kind != ast.ExprIntLit || node.Data.(ast.IntLitData).Value != want {
			t.Fatalf("argument %d = %+v", i, node)
		}
	}
}

func TestTypePackExpandsToTypeLiterals(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)

	callee := ctx.Builder.NewExpr(ast.ExprIdent, source.Span{}, ast.IdentData{Name: ctx.Strings.Intern("sink")})
	expand := ctx.Builder.NewExpr(ast.ExprPackExpand, source.Span{}, ast.PackExpandData{
		Pattern: f.packRef(), Pack: f.pack,
	})
	call := ctx.Builder.NewExpr(ast.ExprCall, source.Span{}, ast.CallData{
		Callee: callee, Args: []ast.ExprID{expand},
	})

	bind := symbols.PackBinding(f.pack, []types.TypeID{
		ctx.Types.Builtins().Int, ctx.Types.Builtins().Bool,
	})
	guard := ctx.Scopes.Push(bind)
	defer guard.Release()
	sub := ctx.NewSubst(f.owner, []GenericParameter{TypePack(f.pack)}, source.Span{})
	got, err := sub.Expr(call)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}
	data := ctx.Builder.Expr(got).Data.(ast.CallData)
	if len(data.Args) != 2 {
		t.Fatalf("expanded to %d arguments, want 2", len(data.Args))
	}
	first := ctx.Builder.Expr(data.Args[0])
	if first.Kind != ast.ExprTypeLit || first.Data.(ast.TypeLitData).Type != ctx.Types.Builtins().Int {
		t.Fatalf("first expanded argument = %+v", first)
	}
}

func TestBarePackOutsideExpansionFails(t *testing.T) {
	ctx := testCtx()
	f := newFoldFixture(ctx)
	if _, err := f.subst(t, f.packRef(), 1, 2); err == nil {
		t.Fatalf("expected a bare pack reference to fail")
	}
}
