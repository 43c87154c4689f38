package parser

import (
	"fmt"

	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/lexer"
	"quartz/internal/source"
	"quartz/internal/token"
	"quartz/internal/types"
)

// Resolver answers name questions the grammar cannot: whether an identifier
// is a generic parameter, a pack, or a known type. The instantiation engine
// provides the implementation; tests provide fixed tables.
type Resolver interface {
	// ResolveType maps a type name to an interned TypeID. For a bound generic
	// parameter this is the concrete argument; for a visible-but-unbound one
	// it is the KindGenericParam placeholder.
	ResolveType(name source.StringID) (types.TypeID, bool)
	// IsParam reports whether name is a generic parameter currently in scope.
	IsParam(name source.StringID) bool
	// IsPack reports whether name is a parameter pack currently in scope.
	IsPack(name source.StringID) bool
	// EvalValue constant-evaluates an already-parsed expression, for value
	// template arguments and array bounds. ok is false when the expression is
	// dependent or not constant.
	EvalValue(id ast.ExprID) (value int64, declared types.TypeID, ok bool)
}

// Parser parses the subset of the grammar the instantiation core re-parses:
// types, expressions (including folds and pack expansions), and statement
// blocks for deferred bodies.
type Parser struct {
	stream   *lexer.Stream
	builder  *ast.Builder
	types    *types.Interner
	strings  *source.Interner
	resolver Resolver
	reporter diag.Reporter
}

func New(stream *lexer.Stream, builder *ast.Builder, tin *types.Interner, strings *source.Interner, resolver Resolver, reporter diag.Reporter) *Parser {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Parser{
		stream:   stream,
		builder:  builder,
		types:    tin,
		strings:  strings,
		resolver: resolver,
		reporter: reporter,
	}
}

// AtEOF reports whether the whole input has been consumed.
func (p *Parser) AtEOF() bool {
	return p.stream.Peek().Kind == token.EOF
}

func (p *Parser) expect(kind token.Kind, code diag.Code, what string) (token.Token, error) {
	t, ok := p.stream.Eat(kind)
	if !ok {
		got := p.stream.Peek()
		err := fmt.Errorf("expected %s", what)
		p.reporter.Report(code, diag.SevError, got.Span, err.Error(), nil)
		return token.Token{}, err
	}
	return t, nil
}

func (p *Parser) fail(code diag.Code, span source.Span, msg string) error {
	p.reporter.Report(code, diag.SevError, span, msg, nil)
	return fmt.Errorf("%s", msg)
}
