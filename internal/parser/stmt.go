package parser

import (
	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/token"
)

// ParseBlock parses '{' stmt* '}'.
func (p *Parser) ParseBlock() (ast.StmtID, error) {
	open, err := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'")
	if err != nil {
		return ast.NoStmtID, err
	}
	var stmts []ast.StmtID
	for {
		if close, ok := p.stream.Eat(token.RBrace); ok {
			span := open.Span.Cover(close.Span)
			return p.builder.NewStmt(ast.StmtBlock, span, ast.BlockData{Stmts: stmts}), nil
		}
		if p.AtEOF() {
			return ast.NoStmtID, p.fail(diag.SynUnexpectedToken, p.stream.Peek().Span, "unterminated block")
		}
		st, err := p.ParseStmt()
		if err != nil {
			return ast.NoStmtID, err
		}
		stmts = append(stmts, st)
	}
}

// ParseStmt parses one statement of the reduced body grammar.
func (p *Parser) ParseStmt() (ast.StmtID, error) {
	tok := p.stream.Peek()
	switch tok.Kind {
	case token.KwReturn:
		p.stream.Next()
		var value ast.ExprID
		if p.stream.Peek().Kind != token.Semicolon {
			v, err := p.ParseExpr(0)
			if err != nil {
				return ast.NoStmtID, err
			}
			value = v
		}
		end, err := p.expect(token.Semicolon, diag.SynUnexpectedToken, "';'")
		if err != nil {
			return ast.NoStmtID, err
		}
		return p.builder.NewStmt(ast.StmtReturn, tok.Span.Cover(end.Span), ast.ReturnData{Value: value}), nil

	case token.KwIf:
		p.stream.Next()
		if _, err := p.expect(token.LParen, diag.SynUnclosedParen, "'('"); err != nil {
			return ast.NoStmtID, err
		}
		cond, err := p.ParseExpr(0)
		if err != nil {
			return ast.NoStmtID, err
		}
		if _, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'"); err != nil {
			return ast.NoStmtID, err
		}
		then, err := p.ParseStmt()
		if err != nil {
			return ast.NoStmtID, err
		}
		var els ast.StmtID
		if _, ok := p.stream.Eat(token.KwElse); ok {
			e, err := p.ParseStmt()
			if err != nil {
				return ast.NoStmtID, err
			}
			els = e
		}
		return p.builder.NewStmt(ast.StmtIf, tok.Span, ast.IfData{Cond: cond, Then: then, Else: els}), nil

	case token.KwWhile:
		p.stream.Next()
		if _, err := p.expect(token.LParen, diag.SynUnclosedParen, "'('"); err != nil {
			return ast.NoStmtID, err
		}
		cond, err := p.ParseExpr(0)
		if err != nil {
			return ast.NoStmtID, err
		}
		if _, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'"); err != nil {
			return ast.NoStmtID, err
		}
		body, err := p.ParseStmt()
		if err != nil {
			return ast.NoStmtID, err
		}
		return p.builder.NewStmt(ast.StmtWhile, tok.Span, ast.WhileData{Cond: cond, Body: body}), nil

	case token.LBrace:
		return p.ParseBlock()
	}

	// `Type name [= init] ;` is ambiguous with an expression statement; try
	// the declaration shape first and rewind when it does not fit.
	if decl, ok := p.tryVarDecl(); ok {
		return decl, nil
	}

	expr, err := p.ParseExpr(0)
	if err != nil {
		return ast.NoStmtID, err
	}
	if _, ok := p.stream.Eat(token.Assign); ok {
		value, err := p.ParseExpr(0)
		if err != nil {
			return ast.NoStmtID, err
		}
		end, err := p.expect(token.Semicolon, diag.SynUnexpectedToken, "';'")
		if err != nil {
			return ast.NoStmtID, err
		}
		return p.builder.NewStmt(ast.StmtAssign, p.spanOf(expr).Cover(end.Span), ast.AssignData{Target: expr, Value: value}), nil
	}
	end, err := p.expect(token.Semicolon, diag.SynUnexpectedToken, "';'")
	if err != nil {
		return ast.NoStmtID, err
	}
	return p.builder.NewStmt(ast.StmtExpr, p.spanOf(expr).Cover(end.Span), ast.ExprStmtData{Expr: expr}), nil
}

func (p *Parser) tryVarDecl() (ast.StmtID, bool) {
	return speculate(p, func() (ast.StmtID, error) {
		ty, err := p.ParseType()
		if err != nil {
			return ast.NoStmtID, err
		}
		name, err := p.expect(token.Ident, diag.SynExpectIdent, "variable name")
		if err != nil {
			return ast.NoStmtID, err
		}
		var init ast.ExprID
		if _, ok := p.stream.Eat(token.Assign); ok {
			v, err := p.ParseExpr(0)
			if err != nil {
				return ast.NoStmtID, err
			}
			init = v
		}
		end, err := p.expect(token.Semicolon, diag.SynUnexpectedToken, "';'")
		if err != nil {
			return ast.NoStmtID, err
		}
		return p.builder.NewStmt(ast.StmtVar, name.Span.Cover(end.Span), ast.VarData{
			Name: name.Text, Type: ty, Init: init,
		}), nil
	})
}
