package constexpr

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"quartz/internal/ast"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// ErrDependent marks an expression that is legitimately still generic: it
// mentions a parameter with no live binding. Callers must propagate it and
// keep the expression unresolved, never substitute a default value.
var ErrDependent = errors.New("constexpr: expression depends on unbound generic parameters")

// Evaluator resolves constant expressions for non-type arguments, array
// bounds, fold seeds, and constraint clauses. Implementations must be pure
// with respect to the instantiation state.
type Evaluator interface {
	Eval(b *ast.Builder, scopes *symbols.ScopeStack, id ast.ExprID) (Value, error)
}

// Basic is the default arithmetic evaluator over the closed expression AST.
type Basic struct{}

func (Basic) Eval(b *ast.Builder, scopes *symbols.ScopeStack, id ast.ExprID) (Value, error) {
	return eval(b, scopes, id)
}

func eval(b *ast.Builder, scopes *symbols.ScopeStack, id ast.ExprID) (Value, error) {
	node := b.Expr(id)
	if node == nil {
		return Value{}, fmt.Errorf("constexpr: invalid expression node %d", id)
	}
	switch node.Kind {
	case ast.ExprIntLit:
		data := node.Data.(ast.IntLitData)
		return IntValue(data.Value, data.Type), nil

	case ast.ExprBoolLit:
		return BoolValue(node.Data.(ast.BoolLitData).Value), nil

	case ast.ExprParamRef:
		data := node.Data.(ast.ParamRefData)
		if scopes != nil {
			if bind, ok := scopes.Lookup(data.Name); ok && bind.IsValue {
				return IntValue(bind.Value, bind.ValueType), nil
			}
		}
		return Value{}, ErrDependent

	case ast.ExprIdent:
		// A free identifier in constant position is dependent until the
		// surrounding template is instantiated.
		data := node.Data.(ast.IdentData)
		if scopes != nil {
			if bind, ok := scopes.Lookup(data.Name); ok && bind.IsValue {
				return IntValue(bind.Value, bind.ValueType), nil
			}
		}
		return Value{}, ErrDependent

	case ast.ExprUnary:
		data := node.Data.(ast.UnaryData)
		v, err := eval(b, scopes, data.Operand)
		if err != nil {
			return Value{}, err
		}
		return applyUnary(data.Op, v)

	case ast.ExprBinary:
		data := node.Data.(ast.BinaryData)
		return evalBinary(b, scopes, data)

	case ast.ExprQualified:
		// Qualified statics are rewritten to literals during substitution; one
		// that survives still hangs off an unresolved owner.
		return Value{}, ErrDependent

	default:
		return Value{}, ErrDependent
	}
}

func evalBinary(b *ast.Builder, scopes *symbols.ScopeStack, data ast.BinaryData) (Value, error) {
	lhs, err := eval(b, scopes, data.Left)
	if err != nil {
		return Value{}, err
	}
	// Short-circuit forms do not evaluate the right side when decided.
	switch data.Op {
	case ast.BinLogAnd:
		if !lhs.Truthy() {
			return BoolValue(false), nil
		}
		rhs, err := eval(b, scopes, data.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(rhs.Truthy()), nil
	case ast.BinLogOr:
		if lhs.Truthy() {
			return BoolValue(true), nil
		}
		rhs, err := eval(b, scopes, data.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(rhs.Truthy()), nil
	}

	rhs, err := eval(b, scopes, data.Right)
	if err != nil {
		return Value{}, err
	}
	return ApplyBinary(data.Op, lhs, rhs)
}

func applyUnary(op ast.UnaryOp, v Value) (Value, error) {
	switch op {
	case ast.UnaryNeg:
		return IntValue(-v.Int, v.Type), nil
	case ast.UnaryNot:
		return BoolValue(!v.Truthy()), nil
	case ast.UnaryBitNot:
		return IntValue(^v.Int, v.Type), nil
	default:
		return Value{}, fmt.Errorf("constexpr: operator not constant-evaluable")
	}
}

// ApplyBinary folds two constant operands. Exposed so fold-expression
// evaluation can reuse the exact same arithmetic.
func ApplyBinary(op ast.BinOp, lhs, rhs Value) (Value, error) {
	resultType := lhs.Type
	if resultType == types.NoTypeID {
		resultType = rhs.Type
	}
	switch op {
	case ast.BinAdd:
		return IntValue(lhs.Int+rhs.Int, resultType), nil
	case ast.BinSub:
		return IntValue(lhs.Int-rhs.Int, resultType), nil
	case ast.BinMul:
		return IntValue(lhs.Int*rhs.Int, resultType), nil
	case ast.BinDiv:
		if rhs.Int == 0 {
			return Value{}, fmt.Errorf("constexpr: division by zero")
		}
		return IntValue(lhs.Int/rhs.Int, resultType), nil
	case ast.BinMod:
		if rhs.Int == 0 {
			return Value{}, fmt.Errorf("constexpr: modulo by zero")
		}
		return IntValue(lhs.Int%rhs.Int, resultType), nil
	case ast.BinShl, ast.BinShr:
		shift, err := safecast.Conv[uint8](rhs.Int)
		if err != nil || shift >= 64 {
			return Value{}, fmt.Errorf("constexpr: shift amount %d out of range", rhs.Int)
		}
		if op == ast.BinShl {
			return IntValue(lhs.Int<<shift, resultType), nil
		}
		return IntValue(lhs.Int>>shift, resultType), nil
	case ast.BinBitAnd:
		return IntValue(lhs.Int&rhs.Int, resultType), nil
	case ast.BinBitOr:
		return IntValue(lhs.Int|rhs.Int, resultType), nil
	case ast.BinBitXor:
		return IntValue(lhs.Int^rhs.Int, resultType), nil
	case ast.BinLogAnd:
		return BoolValue(lhs.Truthy() && rhs.Truthy()), nil
	case ast.BinLogOr:
		return BoolValue(lhs.Truthy() || rhs.Truthy()), nil
	case ast.BinEq:
		return BoolValue(lhs.Int == rhs.Int && lhs.Bool == rhs.Bool), nil
	case ast.BinNe:
		return BoolValue(lhs.Int != rhs.Int || lhs.Bool != rhs.Bool), nil
	case ast.BinLt:
		return BoolValue(lhs.Int < rhs.Int), nil
	case ast.BinLe:
		return BoolValue(lhs.Int <= rhs.Int), nil
	case ast.BinGt:
		return BoolValue(lhs.Int > rhs.Int), nil
	case ast.BinGe:
		return BoolValue(lhs.Int >= rhs.Int), nil
	case ast.BinComma:
		return rhs, nil
	default:
		return Value{}, fmt.Errorf("constexpr: operator %s not constant-evaluable", op)
	}
}
