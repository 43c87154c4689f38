package constexpr

import (
	"errors"
	"testing"

	"quartz/internal/ast"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

func intLit(b *ast.Builder, v int64) ast.ExprID {
	return b.NewExpr(ast.ExprIntLit, source.Span{}, ast.IntLitData{Value: v})
}

func binary(b *ast.Builder, op ast.BinOp, l, r ast.ExprID) ast.ExprID {
	return b.NewExpr(ast.ExprBinary, source.Span{}, ast.BinaryData{Op: op, Left: l, Right: r})
}

func TestEvalArithmetic(t *testing.T) {
	b := ast.NewBuilder(16)
	e := binary(b, ast.BinAdd, intLit(b, 2), binary(b, ast.BinMul, intLit(b, 3), intLit(b, 4)))
	v, err := Basic{}.Eval(b, nil, e)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Int != 14 {
		t.Fatalf("2+3*4 = %d, want 14", v.Int)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	b := ast.NewBuilder(16)
	e := binary(b, ast.BinDiv, intLit(b, 1), intLit(b, 0))
	if _, err := (Basic{}).Eval(b, nil, e); err == nil || errors.Is(err, ErrDependent) {
		t.Fatalf("expected hard error, got %v", err)
	}
}

func TestEvalUnboundParamIsDependent(t *testing.T) {
	b := ast.NewBuilder(16)
	strs := source.NewInterner()
	ref := b.NewExpr(ast.ExprParamRef, source.Span{}, ast.ParamRefData{Name: strs.Intern("N")})
	_, err := Basic{}.Eval(b, symbols.NewScopeStack(), ref)
	if !errors.Is(err, ErrDependent) {
		t.Fatalf("expected ErrDependent, got %v", err)
	}
}

func TestEvalBoundValueParam(t *testing.T) {
	b := ast.NewBuilder(16)
	strs := source.NewInterner()
	tin := types.NewInterner()
	n := strs.Intern("N")
	ref := b.NewExpr(ast.ExprParamRef, source.Span{}, ast.ParamRefData{Name: n})
	e := binary(b, ast.BinShl, intLit(b, 1), ref)

	scopes := symbols.NewScopeStack()
	g := scopes.Push(symbols.ValueBinding(n, 3, tin.Builtins().Int))
	defer g.Release()

	v, err := Basic{}.Eval(b, scopes, e)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Int != 8 {
		t.Fatalf("1<<3 = %d, want 8", v.Int)
	}
}

func TestShortCircuitSkipsDependentSide(t *testing.T) {
	b := ast.NewBuilder(16)
	strs := source.NewInterner()
	dep := b.NewExpr(ast.ExprParamRef, source.Span{}, ast.ParamRefData{Name: strs.Intern("N")})
	falseLit := b.NewExpr(ast.ExprBoolLit, source.Span{}, ast.BoolLitData{Value: false})
	e := binary(b, ast.BinLogAnd, falseLit, dep)

	v, err := Basic{}.Eval(b, symbols.NewScopeStack(), e)
	if err != nil {
		t.Fatalf("short-circuit should not evaluate dependent rhs: %v", err)
	}
	if v.Truthy() {
		t.Fatalf("false && x = %v, want false", v)
	}
}
