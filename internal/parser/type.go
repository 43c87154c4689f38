package parser

import (
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/token"
	"quartz/internal/types"
)

// builtinTypeNames maps spelled-out primitive names to interner builtins.
func (p *Parser) builtinType(name string) (types.TypeID, bool) {
	b := p.types.Builtins()
	switch name {
	case "void":
		return b.Void, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "int":
		return b.Int, true
	case "long":
		return b.Int64, true
	case "uint":
		return b.Uint, true
	case "ulong":
		return b.Uint64, true
	case "float":
		return b.Float, true
	case "double":
		return b.Double, true
	case "string":
		return b.String, true
	}
	return types.NoTypeID, false
}

// ParseType parses: [const] [volatile] base ('*' | '&' | '[' expr? ']')*
// where base is a builtin, a named type with an optional template-argument
// list, or a dependent qualified name.
func (p *Parser) ParseType() (types.TypeID, error) {
	isConst := false
	isVolatile := false
	for {
		if _, ok := p.stream.Eat(token.KwConst); ok {
			isConst = true
			continue
		}
		if _, ok := p.stream.Eat(token.KwVolatile); ok {
			isVolatile = true
			continue
		}
		break
	}

	base, err := p.parseBaseType()
	if err != nil {
		return types.NoTypeID, err
	}
	if isConst || isVolatile {
		base = p.types.WithQualifiers(base, isConst, isVolatile)
	}

	for {
		switch p.stream.Peek().Kind {
		case token.Star:
			p.stream.Next()
			base = p.types.Intern(types.MakePointer(base))
		case token.Amp:
			p.stream.Next()
			base = p.types.Intern(types.MakeReference(base))
		case token.LBracket:
			p.stream.Next()
			count := types.ArrayUnsized
			if p.stream.Peek().Kind != token.RBracket {
				bound, err := p.ParseExpr(0)
				if err != nil {
					return types.NoTypeID, err
				}
				if v, _, ok := p.resolver.EvalValue(bound); ok && v >= 0 {
					count = uint32(v) // #nosec G115 -- checked non-negative
				}
			}
			if _, err := p.expect(token.RBracket, diag.SynUnclosedBracket, "']'"); err != nil {
				return types.NoTypeID, err
			}
			base = p.types.Intern(types.MakeArray(base, count))
		default:
			return base, nil
		}
	}
}

func (p *Parser) parseBaseType() (types.TypeID, error) {
	tok := p.stream.Peek()
	if tok.Kind != token.Ident {
		return types.NoTypeID, p.fail(diag.SynExpectType, tok.Span, "expected a type name")
	}
	p.stream.Next()

	name, _ := p.strings.Lookup(tok.Text)
	if id, ok := p.builtinType(name); ok {
		return id, nil
	}

	var base types.TypeID
	if id, ok := p.resolver.ResolveType(tok.Text); ok {
		base = id
	}

	// Template-argument list makes this a (possibly dependent) instance type.
	if p.stream.Peek().Kind == token.Lt {
		typeArgs, valueArgs, err := p.parseTemplateArgs()
		if err != nil {
			return types.NoTypeID, err
		}
		base = p.types.RegisterNamed(tok.Text, typeArgs, valueArgs)
	} else if base == types.NoTypeID {
		// A nominal type declared elsewhere; identity is its name.
		base = p.types.RegisterNamed(tok.Text, nil, nil)
	}

	// Dependent member access: T::Inner, Holder<int>::Elem.
	for p.stream.Peek().Kind == token.ColonColon {
		p.stream.Next()
		member, err := p.expect(token.Ident, diag.SynExpectIdent, "member name after '::'")
		if err != nil {
			return types.NoTypeID, err
		}
		base = p.types.RegisterDependent(base, member.Text)
	}
	return base, nil
}

// parseTemplateArgs parses '<' (type | const-expr) {',' ...} '>'.
// Each argument is tried as a type first; on failure it is re-parsed as a
// constant expression (value argument).
func (p *Parser) parseTemplateArgs() (typeArgs []types.TypeID, valueArgs []int64, err error) {
	if _, err = p.expect(token.Lt, diag.SynUnclosedAngle, "'<'"); err != nil {
		return nil, nil, err
	}
	if _, ok := p.stream.Eat(token.Gt); ok {
		return nil, nil, nil
	}
	for {
		if ty, ok := p.tryTypeArgument(); ok {
			typeArgs = append(typeArgs, ty)
		} else {
			expr, exprErr := p.ParseExpr(0)
			if exprErr != nil {
				return nil, nil, exprErr
			}
			v, _, ok := p.resolver.EvalValue(expr)
			if !ok {
				node := p.builder.Expr(expr)
				span := source.Span{}
				if node != nil {
					span = node.Span
				}
				return nil, nil, p.fail(diag.TplDependentArgument, span,
					"template value argument is not a constant in this context")
			}
			valueArgs = append(valueArgs, v)
		}
		if _, ok := p.stream.Eat(token.Comma); ok {
			continue
		}
		if _, err = p.expect(token.Gt, diag.SynUnclosedAngle, "'>' closing template arguments"); err != nil {
			return nil, nil, err
		}
		return typeArgs, valueArgs, nil
	}
}

// tryTypeArgument speculatively parses a type argument. The attempt only
// counts when the next token is a list delimiter, so `3` or `N + 1` fall
// through to value-argument parsing.
func (p *Parser) tryTypeArgument() (types.TypeID, bool) {
	return speculate(p, func() (types.TypeID, error) {
		ty, err := p.ParseType()
		if err != nil {
			return types.NoTypeID, err
		}
		next := p.stream.Peek()
		if next.Kind != token.Comma && next.Kind != token.Gt {
			return types.NoTypeID, p.fail(diag.SynExpectType, next.Span, "not a type argument")
		}
		return ty, nil
	})
}
