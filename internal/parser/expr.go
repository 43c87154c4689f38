package parser

import (
	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/token"
)

// Binary precedence levels; comma binds loosest so argument lists parse each
// argument with precArg.
const (
	precComma = 1
	precArg   = 2
)

func binOpFor(kind token.Kind) (ast.BinOp, int, bool) {
	switch kind {
	case token.Star:
		return ast.BinMul, 10, true
	case token.Slash:
		return ast.BinDiv, 10, true
	case token.Percent:
		return ast.BinMod, 10, true
	case token.Plus:
		return ast.BinAdd, 9, true
	case token.Minus:
		return ast.BinSub, 9, true
	case token.Shl:
		return ast.BinShl, 8, true
	case token.Lt:
		return ast.BinLt, 7, true
	case token.Le:
		return ast.BinLe, 7, true
	case token.Gt:
		return ast.BinGt, 7, true
	case token.Ge:
		return ast.BinGe, 7, true
	case token.Eq:
		return ast.BinEq, 6, true
	case token.Ne:
		return ast.BinNe, 6, true
	case token.Amp:
		return ast.BinBitAnd, 5, true
	case token.Caret:
		return ast.BinBitXor, 4, true
	case token.Pipe:
		return ast.BinBitOr, 3, true
	case token.AmpAmp:
		return ast.BinLogAnd, 2, true
	case token.PipePipe:
		return ast.BinLogOr, 2, true
	case token.Comma:
		return ast.BinComma, precComma, true
	}
	return 0, 0, false
}

// ParseExpr is a precedence-climbing expression parser.
func (p *Parser) ParseExpr(minPrec int) (ast.ExprID, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		tok := p.stream.Peek()
		op, prec, ok := binOpFor(tok.Kind)
		if !ok || prec < minPrec {
			return lhs, nil
		}
		// `op ...` belongs to an enclosing fold expression, never to us.
		if p.stream.PeekAt(1).Kind == token.Ellipsis {
			return lhs, nil
		}
		// '>' followed by '>' is two closing angles in type context but a
		// shift here; fuse lazily.
		if tok.Kind == token.Gt && p.stream.PeekAt(1).Kind == token.Gt &&
			tok.Span.End == p.stream.PeekAt(1).Span.Start {
			p.stream.Next()
			p.stream.Next()
			op = ast.BinShr
			prec = 8
		} else {
			p.stream.Next()
		}
		rhs, err := p.parseUnaryOrHigher(prec + 1)
		if err != nil {
			return ast.NoExprID, err
		}
		span := p.spanOf(lhs).Cover(p.spanOf(rhs))
		lhs = p.builder.NewExpr(ast.ExprBinary, span, ast.BinaryData{Op: op, Left: lhs, Right: rhs})
	}
}

func (p *Parser) parseUnaryOrHigher(minPrec int) (ast.ExprID, error) {
	return p.ParseExpr(minPrec)
}

func (p *Parser) parseUnary() (ast.ExprID, error) {
	tok := p.stream.Peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.Minus:
		op = ast.UnaryNeg
	case token.Bang:
		op = ast.UnaryNot
	case token.Tilde:
		op = ast.UnaryBitNot
	case token.Star:
		op = ast.UnaryDeref
	case token.Amp:
		op = ast.UnaryAddr
	default:
		return p.parsePostfix()
	}
	p.stream.Next()
	operand, err := p.parseUnary()
	if err != nil {
		return ast.NoExprID, err
	}
	span := tok.Span.Cover(p.spanOf(operand))
	return p.builder.NewExpr(ast.ExprUnary, span, ast.UnaryData{Op: op, Operand: operand}), nil
}

func (p *Parser) parsePostfix() (ast.ExprID, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		switch p.stream.Peek().Kind {
		case token.LParen:
			p.stream.Next()
			args, err := p.parseCallArgs()
			if err != nil {
				return ast.NoExprID, err
			}
			close, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'")
			if err != nil {
				return ast.NoExprID, err
			}
			span := p.spanOf(expr).Cover(close.Span)
			expr = p.builder.NewExpr(ast.ExprCall, span, ast.CallData{Callee: expr, Args: args})
		case token.Dot, token.Arrow:
			arrow := p.stream.Next().Kind == token.Arrow
			name, err := p.expect(token.Ident, diag.SynExpectIdent, "member name")
			if err != nil {
				return ast.NoExprID, err
			}
			span := p.spanOf(expr).Cover(name.Span)
			expr = p.builder.NewExpr(ast.ExprMember, span, ast.MemberData{Object: expr, Name: name.Text, Arrow: arrow})
		case token.LBracket:
			p.stream.Next()
			idx, err := p.ParseExpr(precArg)
			if err != nil {
				return ast.NoExprID, err
			}
			close, err := p.expect(token.RBracket, diag.SynUnclosedBracket, "']'")
			if err != nil {
				return ast.NoExprID, err
			}
			span := p.spanOf(expr).Cover(close.Span)
			expr = p.builder.NewExpr(ast.ExprIndex, span, ast.IndexData{Object: expr, Index: idx})
		default:
			return expr, nil
		}
	}
}

// parseCallArgs parses a comma-separated argument list; a trailing `...`
// turns the preceding argument into a pack expansion.
func (p *Parser) parseCallArgs() ([]ast.ExprID, error) {
	var args []ast.ExprID
	if p.stream.Peek().Kind == token.RParen {
		return args, nil
	}
	for {
		arg, err := p.ParseExpr(precArg)
		if err != nil {
			return nil, err
		}
		if ell, ok := p.stream.Eat(token.Ellipsis); ok {
			pack := p.findPack(arg)
			if pack == source.NoStringID {
				return nil, p.fail(diag.TplPackUnknown, ell.Span, "expansion pattern names no parameter pack")
			}
			span := p.spanOf(arg).Cover(ell.Span)
			arg = p.builder.NewExpr(ast.ExprPackExpand, span, ast.PackExpandData{Pattern: arg, Pack: pack})
		}
		args = append(args, arg)
		if _, ok := p.stream.Eat(token.Comma); !ok {
			return args, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.ExprID, error) {
	tok := p.stream.Peek()
	switch tok.Kind {
	case token.Int:
		p.stream.Next()
		return p.builder.NewExpr(ast.ExprIntLit, tok.Span, ast.IntLitData{Value: tok.IntVal, Type: p.types.Builtins().Int}), nil

	case token.KwTrue, token.KwFalse:
		p.stream.Next()
		return p.builder.NewExpr(ast.ExprBoolLit, tok.Span, ast.BoolLitData{Value: tok.Kind == token.KwTrue}), nil

	case token.String:
		p.stream.Next()
		return p.builder.NewExpr(ast.ExprStringLit, tok.Span, ast.StringLitData{Value: tok.Text}), nil

	case token.KwSizeof:
		return p.parseSizeofPack()

	case token.Ident:
		p.stream.Next()
		if p.stream.Peek().Kind == token.ColonColon {
			p.stream.Next()
			member, err := p.expect(token.Ident, diag.SynExpectIdent, "name after '::'")
			if err != nil {
				return ast.NoExprID, err
			}
			span := tok.Span.Cover(member.Span)
			return p.builder.NewExpr(ast.ExprQualified, span, ast.QualifiedData{Owner: tok.Text, Name: member.Text}), nil
		}
		if p.resolver.IsParam(tok.Text) {
			return p.builder.NewExpr(ast.ExprParamRef, tok.Span, ast.ParamRefData{Name: tok.Text}), nil
		}
		return p.builder.NewExpr(ast.ExprIdent, tok.Span, ast.IdentData{Name: tok.Text}), nil

	case token.LParen:
		return p.parseParenOrFold()
	}
	return ast.NoExprID, p.fail(diag.SynExpectExpr, tok.Span, "expected an expression")
}

func (p *Parser) parseSizeofPack() (ast.ExprID, error) {
	kw := p.stream.Next() // sizeof
	if _, err := p.expect(token.Ellipsis, diag.SynUnexpectedToken, "'...' after sizeof"); err != nil {
		return ast.NoExprID, err
	}
	if _, err := p.expect(token.LParen, diag.SynUnclosedParen, "'('"); err != nil {
		return ast.NoExprID, err
	}
	name, err := p.expect(token.Ident, diag.SynExpectIdent, "pack name")
	if err != nil {
		return ast.NoExprID, err
	}
	close, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'")
	if err != nil {
		return ast.NoExprID, err
	}
	span := kw.Span.Cover(close.Span)
	return p.builder.NewExpr(ast.ExprSizeofPack, span, ast.SizeofPackData{Pack: name.Text}), nil
}

// parseParenOrFold disambiguates the three fold-expression shapes from a
// plain parenthesized group.
func (p *Parser) parseParenOrFold() (ast.ExprID, error) {
	open := p.stream.Next() // '('

	// (... op pack)
	if _, ok := p.stream.Eat(token.Ellipsis); ok {
		op, err := p.expectFoldOp()
		if err != nil {
			return ast.NoExprID, err
		}
		pattern, err := p.ParseExpr(precArg)
		if err != nil {
			return ast.NoExprID, err
		}
		close, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'")
		if err != nil {
			return ast.NoExprID, err
		}
		pack := p.findPack(pattern)
		if pack == source.NoStringID {
			return ast.NoExprID, p.fail(diag.TplPackUnknown, close.Span, "fold pattern names no parameter pack")
		}
		span := open.Span.Cover(close.Span)
		return p.builder.NewExpr(ast.ExprFold, span, ast.FoldData{
			Kind: ast.FoldUnaryLeft, Op: op, Pack: pack, Pattern: pattern,
		}), nil
	}

	first, err := p.ParseExpr(precArg)
	if err != nil {
		return ast.NoExprID, err
	}

	op, _, isOp := binOpFor(p.stream.Peek().Kind)
	if isOp && p.stream.PeekAt(1).Kind == token.Ellipsis {
		p.stream.Next() // op
		p.stream.Next() // ...
		if close, ok := p.stream.Eat(token.RParen); ok {
			// (pack op ...)
			pack := p.findPack(first)
			if pack == source.NoStringID {
				return ast.NoExprID, p.fail(diag.TplPackUnknown, close.Span, "fold pattern names no parameter pack")
			}
			span := open.Span.Cover(close.Span)
			return p.builder.NewExpr(ast.ExprFold, span, ast.FoldData{
				Kind: ast.FoldUnaryRight, Op: op, Pack: pack, Pattern: first,
			}), nil
		}
		// binary fold: (e1 op ... op e2)
		op2, _, ok := binOpFor(p.stream.Peek().Kind)
		if !ok || op2 != op {
			return ast.NoExprID, p.fail(diag.SynUnexpectedToken, p.stream.Peek().Span, "binary fold must repeat the same operator")
		}
		p.stream.Next()
		second, err := p.ParseExpr(precArg)
		if err != nil {
			return ast.NoExprID, err
		}
		close, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'")
		if err != nil {
			return ast.NoExprID, err
		}
		span := open.Span.Cover(close.Span)
		if pack := p.findPack(first); pack != source.NoStringID {
			// (pack op ... op init) folds rightward.
			return p.builder.NewExpr(ast.ExprFold, span, ast.FoldData{
				Kind: ast.FoldBinaryRight, Op: op, Pack: pack, Pattern: first, Init: second,
			}), nil
		}
		pack := p.findPack(second)
		if pack == source.NoStringID {
			return ast.NoExprID, p.fail(diag.TplPackUnknown, span, "binary fold names no parameter pack")
		}
		return p.builder.NewExpr(ast.ExprFold, span, ast.FoldData{
			Kind: ast.FoldBinaryLeft, Op: op, Pack: pack, Pattern: second, Init: first,
		}), nil
	}

	if _, err := p.expect(token.RParen, diag.SynUnclosedParen, "')'"); err != nil {
		return ast.NoExprID, err
	}
	return first, nil
}

// expectFoldOp reads the operator token of a fold expression.
func (p *Parser) expectFoldOp() (ast.BinOp, error) {
	tok := p.stream.Peek()
	op, _, ok := binOpFor(tok.Kind)
	if !ok {
		return 0, p.fail(diag.SynUnexpectedToken, tok.Span, "expected a fold operator")
	}
	p.stream.Next()
	return op, nil
}

// findPack walks an expression pattern for the first parameter-pack name.
func (p *Parser) findPack(id ast.ExprID) source.StringID {
	node := p.builder.Expr(id)
	if node == nil {
		return source.NoStringID
	}
	switch node.Kind {
	case ast.ExprParamRef:
		data := node.Data.(ast.ParamRefData)
		if p.resolver.IsPack(data.Name) {
			return data.Name
		}
	case ast.ExprIdent:
		data := node.Data.(ast.IdentData)
		if p.resolver.IsPack(data.Name) {
			return data.Name
		}
	case ast.ExprUnary:
		return p.findPack(node.Data.(ast.UnaryData).Operand)
	case ast.ExprBinary:
		data := node.Data.(ast.BinaryData)
		if pack := p.findPack(data.Left); pack != source.NoStringID {
			return pack
		}
		return p.findPack(data.Right)
	case ast.ExprCall:
		data := node.Data.(ast.CallData)
		if pack := p.findPack(data.Callee); pack != source.NoStringID {
			return pack
		}
		for _, a := range data.Args {
			if pack := p.findPack(a); pack != source.NoStringID {
				return pack
			}
		}
	case ast.ExprMember:
		return p.findPack(node.Data.(ast.MemberData).Object)
	case ast.ExprIndex:
		data := node.Data.(ast.IndexData)
		if pack := p.findPack(data.Object); pack != source.NoStringID {
			return pack
		}
		return p.findPack(data.Index)
	}
	return source.NoStringID
}

func (p *Parser) spanOf(id ast.ExprID) source.Span {
	if node := p.builder.Expr(id); node != nil {
		return node.Span
	}
	return source.Span{}
}
