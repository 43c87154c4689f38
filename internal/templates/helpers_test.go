package templates

import (
	"testing"

	"quartz/internal/ast"
	"quartz/internal/source"
	"quartz/internal/types"
)

func testCtx() *CompilationContext {
	return NewContext(Options{MaxDepth: 24, MaxDiagnostics: 64})
}

// defineBox registers `Box<T>` with a single field `value T`.
func defineBox(t *testing.T, ctx *CompilationContext) source.StringID {
	t.Helper()
	boxName := ctx.Strings.Intern("Box")
	tName := ctx.Strings.Intern("T")
	tPh := ctx.Types.RegisterParam(boxName, tName, 0, false)
	decl := ctx.Builder.NewItem(ast.ItemStruct, source.Span{}, ast.StructData{
		Name: boxName,
		Fields: []ast.FieldDecl{
			{Name: ctx.Strings.Intern("value"), Type: tPh},
		},
	})
	mustAddTemplate(t, ctx, &Template{
		Name:   boxName,
		Params: []GenericParameter{TypeParam(tName)},
		Decl:   decl,
	})
	return boxName
}

// definePair registers `Pair<A, B>` with fields `first A; second B`.
func definePair(t *testing.T, ctx *CompilationContext) source.StringID {
	t.Helper()
	pairName := ctx.Strings.Intern("Pair")
	aName := ctx.Strings.Intern("A")
	bName := ctx.Strings.Intern("B")
	aPh := ctx.Types.RegisterParam(pairName, aName, 0, false)
	bPh := ctx.Types.RegisterParam(pairName, bName, 1, false)
	decl := ctx.Builder.NewItem(ast.ItemStruct, source.Span{}, ast.StructData{
		Name: pairName,
		Fields: []ast.FieldDecl{
			{Name: ctx.Strings.Intern("first"), Type: aPh},
			{Name: ctx.Strings.Intern("second"), Type: bPh},
		},
	})
	mustAddTemplate(t, ctx, &Template{
		Name:   pairName,
		Params: []GenericParameter{TypeParam(aName), TypeParam(bName)},
		Decl:   decl,
	})
	return pairName
}

// defineHolder registers `Holder<T>` with a member alias `Elem = T`.
func defineHolder(t *testing.T, ctx *CompilationContext) source.StringID {
	t.Helper()
	holderName := ctx.Strings.Intern("Holder")
	tName := ctx.Strings.Intern("T")
	tPh := ctx.Types.RegisterParam(holderName, tName, 0, false)
	decl := ctx.Builder.NewItem(ast.ItemStruct, source.Span{}, ast.StructData{
		Name: holderName,
		Aliases: []ast.AliasMemberDecl{
			{Name: ctx.Strings.Intern("Elem"), Target: tPh},
		},
	})
	mustAddTemplate(t, ctx, &Template{
		Name:   holderName,
		Params: []GenericParameter{TypeParam(tName)},
		Decl:   decl,
	})
	return holderName
}

// defineCounter registers `Counter<N: int>` with a static `total = N * 2`.
func defineCounter(t *testing.T, ctx *CompilationContext) source.StringID {
	t.Helper()
	name := ctx.Strings.Intern("Counter")
	nName := ctx.Strings.Intern("N")
	init := ctx.Builder.NewExpr(ast.ExprBinary, source.Span{}, ast.BinaryData{
		Op:    ast.BinMul,
		Left:  ctx.Builder.NewExpr(ast.ExprParamRef, source.Span{}, ast.ParamRefData{Name: nName}),
		Right: ctx.Builder.NewExpr(ast.ExprIntLit, source.Span{}, ast.IntLitData{Value: 2, Type: ctx.Types.Builtins().Int}),
	})
	decl := ctx.Builder.NewItem(ast.ItemStruct, source.Span{}, ast.StructData{
		Name: name,
		Statics: []ast.StaticDecl{
			{Name: ctx.Strings.Intern("total"), Type: ctx.Types.Builtins().Int, Init: init},
		},
	})
	mustAddTemplate(t, ctx, &Template{
		Name:   name,
		Params: []GenericParameter{ValueParam(nName, ctx.Types.Builtins().Int)},
		Decl:   decl,
	})
	return name
}

func mustAddTemplate(t *testing.T, ctx *CompilationContext, tmpl *Template) {
	t.Helper()
	if err := ctx.Registry.AddTemplate(tmpl); err != nil {
		t.Fatalf("AddTemplate: %v", err)
	}
}

func mustAddSpecialization(t *testing.T, ctx *CompilationContext, s *Specialization) {
	t.Helper()
	if err := ctx.Registry.AddSpecialization(s); err != nil {
		t.Fatalf("AddSpecialization: %v", err)
	}
}

// emptyStructDecl is a body for specializations whose contents do not matter
// to the test.
func emptyStructDecl(ctx *CompilationContext, name source.StringID) ast.ItemID {
	return ctx.Builder.NewItem(ast.ItemStruct, source.Span{}, ast.StructData{Name: name})
}

func intArg(ctx *CompilationContext) GenericArgument {
	return TypeArg(ctx.Types.Builtins().Int)
}

func ptrTo(ctx *CompilationContext, elem types.TypeID) types.TypeID {
	return ctx.Types.Intern(types.MakePointer(elem))
}

// virtualSpan loads text into a fresh virtual file and returns its full span.
func virtualSpan(ctx *CompilationContext, name, text string) source.Span {
	id := ctx.Files.AddVirtual(name, []byte(text))
	return source.Span{File: id, Start: 0, End: uint32(len(text))} // #nosec G115 -- test input
}
