package templates

import (
	"fmt"

	"quartz/internal/ast"
	"quartz/internal/constexpr"
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// DefaultMaxDepth bounds transitive instantiation chains.
const DefaultMaxDepth = 256

// Options tunes one compilation.
type Options struct {
	MaxDepth       int
	MaxDiagnostics int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	return o
}

// CompilationContext bundles every piece of per-compilation state the engine
// touches. There are no package-level globals; tests build a fresh context
// each and never observe one another.
type CompilationContext struct {
	Files    *source.FileSet
	Strings  *source.Interner
	Types    *types.Interner
	Builder  *ast.Builder
	Scopes   *symbols.ScopeStack
	Registry *Registry
	Bag      *diag.Bag
	Reporter diag.Reporter
	Eval     constexpr.Evaluator
	Namer    Namer
	Options  Options

	depth int
}

// NewContext builds a fresh compilation context with default collaborators.
func NewContext(opts Options) *CompilationContext {
	opts = opts.withDefaults()
	bag := diag.NewBag(opts.MaxDiagnostics)
	return &CompilationContext{
		Files:    source.NewFileSet(),
		Strings:  source.NewInterner(),
		Types:    types.NewInterner(),
		Builder:  ast.NewBuilder(256),
		Scopes:   symbols.NewScopeStack(),
		Registry: NewRegistry(),
		Bag:      bag,
		Reporter: diag.BagReporter{Bag: bag},
		Eval:     constexpr.Basic{},
		Namer:    DefaultNamer{},
		Options:  opts,
	}
}

// Depth returns the current transitive instantiation depth.
func (ctx *CompilationContext) Depth() int {
	return ctx.depth
}

// enter bumps the instantiation depth, failing once the ceiling is hit. The
// diagnostic points at the use site that pushed over the limit.
func (ctx *CompilationContext) enter(span source.Span) error {
	if ctx.depth >= ctx.Options.MaxDepth {
		msg := fmt.Sprintf("instantiation depth limit (%d) exceeded", ctx.Options.MaxDepth)
		ctx.Reporter.Report(diag.TplRecursionLimit, diag.SevError, span, msg, nil)
		return fmt.Errorf("%s", msg)
	}
	ctx.depth++
	return nil
}

func (ctx *CompilationContext) leave() {
	if ctx.depth > 0 {
		ctx.depth--
	}
}

func (ctx *CompilationContext) errorf(code diag.Code, span source.Span, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	ctx.Reporter.Report(code, diag.SevError, span, msg, nil)
	return fmt.Errorf("%s", msg)
}

// bindingResolver adapts the context to the parser's name oracle: generic
// parameters resolve through the live scope stack, constants evaluate through
// the context's evaluator.
type bindingResolver struct {
	ctx *CompilationContext
}

func (r bindingResolver) ResolveType(name source.StringID) (types.TypeID, bool) {
	bind, ok := r.ctx.Scopes.Lookup(name)
	if !ok {
		return types.NoTypeID, false
	}
	switch {
	case bind.IsTemplate:
		return types.NoTypeID, false
	case bind.IsValue, bind.IsPack:
		return types.NoTypeID, false
	default:
		return bind.Type, bind.Type.IsValid()
	}
}

func (r bindingResolver) IsParam(name source.StringID) bool {
	return r.ctx.Scopes.Visible(name)
}

func (r bindingResolver) IsPack(name source.StringID) bool {
	bind, ok := r.ctx.Scopes.Lookup(name)
	return ok && bind.IsPack
}

func (r bindingResolver) EvalValue(id ast.ExprID) (int64, types.TypeID, bool) {
	v, err := r.ctx.Eval.Eval(r.ctx.Builder, r.ctx.Scopes, id)
	if err != nil || v.Kind != constexpr.ValInt {
		return 0, types.NoTypeID, false
	}
	return v.Int, v.Type, true
}
