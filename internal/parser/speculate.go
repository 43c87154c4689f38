package parser

import (
	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/types"
)

// speculate runs fn with the token position and arena lengths saved. On
// failure it rewinds both, so the attempt leaves no observable side effect;
// nodes allocated during the attempt become unreachable arena garbage.
func speculate[T any](p *Parser, fn func() (T, error)) (T, bool) {
	save := p.stream.Save()
	mark := p.builder.Mark()
	// Diagnostics from a speculative attempt must not reach the caller's bag.
	oldReporter := p.reporter
	p.reporter = diag.NopReporter{}
	out, err := fn()
	p.reporter = oldReporter
	if err != nil {
		p.stream.Restore(save)
		p.builder.ReleaseTo(mark)
		var zero T
		return zero, false
	}
	p.stream.Discard(save)
	return out, true
}

// TryParseType attempts a type parse and rewinds on failure.
func (p *Parser) TryParseType() (types.TypeID, bool) {
	return speculate(p, func() (types.TypeID, error) {
		return p.ParseType()
	})
}

// TryParseExpr attempts an expression parse and rewinds on failure.
func (p *Parser) TryParseExpr() (ast.ExprID, bool) {
	return speculate(p, func() (ast.ExprID, error) {
		return p.ParseExpr(0)
	})
}
