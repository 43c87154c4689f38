package templates

import (
	"quartz/internal/ast"
	"quartz/internal/constexpr"
	"quartz/internal/diag"
	"quartz/internal/source"
)

// Expr substitutes bound parameters inside an expression tree. Unchanged
// subtrees are returned by identity; a rewritten node gets a fresh arena slot
// and the original stays untouched, so speculative callers can discard work
// safely.
func (s *Subst) Expr(id ast.ExprID) (ast.ExprID, error) {
	if !id.IsValid() {
		return id, nil
	}
	node := s.ctx.Builder.Expr(id)
	if node == nil {
		return id, nil
	}

	switch node.Kind {
	case ast.ExprIntLit, ast.ExprBoolLit, ast.ExprStringLit, ast.ExprVoidLit:
		return id, nil

	case ast.ExprIdent:
		return s.substNameRef(id, node, node.Data.(ast.IdentData).Name)

	case ast.ExprParamRef:
		return s.substNameRef(id, node, node.Data.(ast.ParamRefData).Name)

	case ast.ExprTypeLit:
		data := node.Data.(ast.TypeLitData)
		ty, err := s.Type(data.Type)
		if err != nil {
			return ast.NoExprID, err
		}
		if ty == data.Type {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprTypeLit, node.Span, ast.TypeLitData{Type: ty}), nil

	case ast.ExprUnary:
		data := node.Data.(ast.UnaryData)
		operand, err := s.Expr(data.Operand)
		if err != nil {
			return ast.NoExprID, err
		}
		if operand == data.Operand {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprUnary, node.Span, ast.UnaryData{Op: data.Op, Operand: operand}), nil

	case ast.ExprBinary:
		data := node.Data.(ast.BinaryData)
		left, err := s.Expr(data.Left)
		if err != nil {
			return ast.NoExprID, err
		}
		right, err := s.Expr(data.Right)
		if err != nil {
			return ast.NoExprID, err
		}
		if left == data.Left && right == data.Right {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprBinary, node.Span, ast.BinaryData{Op: data.Op, Left: left, Right: right}), nil

	case ast.ExprCall:
		data := node.Data.(ast.CallData)
		callee, err := s.Expr(data.Callee)
		if err != nil {
			return ast.NoExprID, err
		}
		args, changed, err := s.substArgList(data.Args)
		if err != nil {
			return ast.NoExprID, err
		}
		if callee == data.Callee && !changed {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprCall, node.Span, ast.CallData{Callee: callee, Args: args}), nil

	case ast.ExprMember:
		data := node.Data.(ast.MemberData)
		object, err := s.Expr(data.Object)
		if err != nil {
			return ast.NoExprID, err
		}
		if object == data.Object {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprMember, node.Span, ast.MemberData{Object: object, Name: data.Name, Arrow: data.Arrow}), nil

	case ast.ExprIndex:
		data := node.Data.(ast.IndexData)
		object, err := s.Expr(data.Object)
		if err != nil {
			return ast.NoExprID, err
		}
		index, err := s.Expr(data.Index)
		if err != nil {
			return ast.NoExprID, err
		}
		if object == data.Object && index == data.Index {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprIndex, node.Span, ast.IndexData{Object: object, Index: index}), nil

	case ast.ExprCast:
		data := node.Data.(ast.CastData)
		target, err := s.Type(data.Target)
		if err != nil {
			return ast.NoExprID, err
		}
		value, err := s.Expr(data.Value)
		if err != nil {
			return ast.NoExprID, err
		}
		if target == data.Target && value == data.Value {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprCast, node.Span, ast.CastData{Target: target, Value: value}), nil

	case ast.ExprConstruct:
		data := node.Data.(ast.ConstructData)
		ty, err := s.Type(data.Type)
		if err != nil {
			return ast.NoExprID, err
		}
		args, changed, err := s.substArgList(data.Args)
		if err != nil {
			return ast.NoExprID, err
		}
		if ty == data.Type && !changed {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprConstruct, node.Span, ast.ConstructData{Type: ty, Args: args}), nil

	case ast.ExprQualified:
		data := node.Data.(ast.QualifiedData)
		owner := data.OwnerType
		if !owner.IsValid() {
			// The parser leaves the qualifier symbolic; a live type binding
			// turns it into a type qualifier.
			bind, ok := s.ctx.Scopes.Lookup(data.Owner)
			if !ok || bind.IsValue || bind.IsPack || bind.IsTemplate {
				return id, nil
			}
			owner = bind.Type
		}
		owner, err := s.Type(owner)
		if err != nil {
			return ast.NoExprID, err
		}
		if !s.ctx.Types.ContainsGenericParam(owner) {
			v, ok, err := s.ctx.resolveStaticRef(owner, data.Name, node.Span)
			if err != nil {
				return ast.NoExprID, err
			}
			if ok {
				return s.literalFor(v, node.Span), nil
			}
		}
		if owner == data.OwnerType {
			return id, nil
		}
		return s.ctx.Builder.NewExpr(ast.ExprQualified, node.Span, ast.QualifiedData{
			Owner: data.Owner, Name: data.Name, OwnerType: owner,
		}), nil

	case ast.ExprPackExpand:
		// Expansions are only legal in argument lists, where substArgList
		// consumes them before recursing.
		return ast.NoExprID, s.ctx.errorf(diag.TplPackUnknown, node.Span,
			"pack expansion outside an argument list")

	case ast.ExprFold:
		return s.foldExpr(id, node)

	case ast.ExprSizeofPack:
		return s.sizeofPack(id, node)

	default:
		return id, nil
	}
}

// literalFor materializes an evaluated constant as a literal node.
func (s *Subst) literalFor(v constexpr.Value, span source.Span) ast.ExprID {
	switch v.Kind {
	case constexpr.ValBool:
		return s.ctx.Builder.NewExpr(ast.ExprBoolLit, span, ast.BoolLitData{Value: v.Bool})
	case constexpr.ValVoid:
		return s.ctx.Builder.NewExpr(ast.ExprVoidLit, span, ast.VoidLitData{})
	default:
		return s.ctx.Builder.NewExpr(ast.ExprIntLit, span, ast.IntLitData{Value: v.Int, Type: v.Type})
	}
}

// substNameRef rewrites a reference to a possibly-bound parameter name.
func (s *Subst) substNameRef(id ast.ExprID, node *ast.Expr, name source.StringID) (ast.ExprID, error) {
	bind, ok := s.ctx.Scopes.Lookup(name)
	if !ok {
		return id, nil
	}
	switch {
	case bind.IsValue:
		return s.ctx.Builder.NewExpr(ast.ExprIntLit, node.Span, ast.IntLitData{
			Value: bind.Value, Type: bind.ValueType,
		}), nil
	case bind.IsPack:
		return ast.NoExprID, s.ctx.errorf(diag.TplPackUnknown, node.Span,
			"parameter pack referenced outside an expansion or fold")
	case bind.IsTemplate:
		return s.ctx.Builder.NewExpr(ast.ExprTypeLit, node.Span, ast.TypeLitData{
			Type: s.ctx.Types.RegisterNamed(bind.Template, nil, nil),
		}), nil
	default:
		return s.ctx.Builder.NewExpr(ast.ExprTypeLit, node.Span, ast.TypeLitData{Type: bind.Type}), nil
	}
}

// Stmt substitutes inside a statement tree with the same identity contract
// as Expr.
func (s *Subst) Stmt(id ast.StmtID) (ast.StmtID, error) {
	if !id.IsValid() {
		return id, nil
	}
	node := s.ctx.Builder.Stmt(id)
	if node == nil {
		return id, nil
	}

	switch node.Kind {
	case ast.StmtBlock:
		data := node.Data.(ast.BlockData)
		changed := false
		stmts := make([]ast.StmtID, len(data.Stmts))
		for i, st := range data.Stmts {
			ns, err := s.Stmt(st)
			if err != nil {
				return ast.NoStmtID, err
			}
			stmts[i] = ns
			changed = changed || ns != st
		}
		if !changed {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtBlock, node.Span, ast.BlockData{Stmts: stmts}), nil

	case ast.StmtReturn:
		data := node.Data.(ast.ReturnData)
		value, err := s.Expr(data.Value)
		if err != nil {
			return ast.NoStmtID, err
		}
		if value == data.Value {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtReturn, node.Span, ast.ReturnData{Value: value}), nil

	case ast.StmtIf:
		data := node.Data.(ast.IfData)
		cond, err := s.Expr(data.Cond)
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := s.Stmt(data.Then)
		if err != nil {
			return ast.NoStmtID, err
		}
		els, err := s.Stmt(data.Else)
		if err != nil {
			return ast.NoStmtID, err
		}
		if cond == data.Cond && then == data.Then && els == data.Else {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtIf, node.Span, ast.IfData{Cond: cond, Then: then, Else: els}), nil

	case ast.StmtWhile:
		data := node.Data.(ast.WhileData)
		cond, err := s.Expr(data.Cond)
		if err != nil {
			return ast.NoStmtID, err
		}
		body, err := s.Stmt(data.Body)
		if err != nil {
			return ast.NoStmtID, err
		}
		if cond == data.Cond && body == data.Body {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtWhile, node.Span, ast.WhileData{Cond: cond, Body: body}), nil

	case ast.StmtVar:
		data := node.Data.(ast.VarData)
		ty, err := s.Type(data.Type)
		if err != nil {
			return ast.NoStmtID, err
		}
		init, err := s.Expr(data.Init)
		if err != nil {
			return ast.NoStmtID, err
		}
		if ty == data.Type && init == data.Init {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtVar, node.Span, ast.VarData{Name: data.Name, Type: ty, Init: init}), nil

	case ast.StmtAssign:
		data := node.Data.(ast.AssignData)
		target, err := s.Expr(data.Target)
		if err != nil {
			return ast.NoStmtID, err
		}
		value, err := s.Expr(data.Value)
		if err != nil {
			return ast.NoStmtID, err
		}
		if target == data.Target && value == data.Value {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtAssign, node.Span, ast.AssignData{Target: target, Value: value}), nil

	case ast.StmtExpr:
		data := node.Data.(ast.ExprStmtData)
		expr, err := s.Expr(data.Expr)
		if err != nil {
			return ast.NoStmtID, err
		}
		if expr == data.Expr {
			return id, nil
		}
		return s.ctx.Builder.NewStmt(ast.StmtExpr, node.Span, ast.ExprStmtData{Expr: expr}), nil

	default:
		return id, nil
	}
}
