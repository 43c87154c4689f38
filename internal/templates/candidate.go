package templates

import (
	"fmt"
	"strconv"

	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/lexer"
	"quartz/internal/parser"
	"quartz/internal/source"
)

// ResolveOverload walks the candidate set for a constraint-gated function
// name. Each candidate is checked speculatively: its constraint clause and
// trailing return type are re-parsed and evaluated under the would-be
// bindings, and any failure rejects the candidate softly with no diagnostics
// and no surviving state. Only an empty viable set is a hard error.
func ResolveOverload(ctx *CompilationContext, name source.StringID, args []GenericArgument, span source.Span) (*Instance, error) {
	cands := ctx.Registry.AllCandidates(name)
	if len(cands) == 0 {
		n, _ := ctx.Strings.Lookup(name)
		return nil, ctx.errorf(diag.TplUnresolvedName, span, "%s names no function template", n)
	}

	var notes []diag.Note
	for i, cand := range cands {
		normArgs, reason := ctx.checkCandidate(cand, args, span)
		if reason != "" {
			notes = append(notes, diag.Note{Span: cand.Span, Msg: reason})
			continue
		}
		return ctx.instantiateOverload(cand, i, normArgs, span)
	}

	n, _ := ctx.Strings.Lookup(name)
	msg := fmt.Sprintf("no viable candidate for %s: all %d overload(s) rejected", n, len(cands))
	ctx.Reporter.Report(diag.TplNoViableCandidate, diag.SevError, span, msg, notes)
	return nil, fmt.Errorf("%s", msg)
}

// checkCandidate reports "" when the candidate is viable, otherwise the soft
// rejection reason. It must leave no trace: diagnostics are suppressed, the
// binding frame is released, and speculative parses rewind their own state.
func (ctx *CompilationContext) checkCandidate(cand *Template, args []GenericArgument, span source.Span) (normArgs []GenericArgument, reason string) {
	savedReporter := ctx.Reporter
	ctx.Reporter = diag.NopReporter{}
	defer func() { ctx.Reporter = savedReporter }()

	normArgs, err := ctx.normalizeArgs(cand, args, span)
	if err != nil {
		return nil, "argument list does not fit the parameter list"
	}
	bindings, err := ctx.bindParams(cand.Params, normArgs, span)
	if err != nil {
		return nil, "arguments do not bind to the parameters"
	}

	guard := ctx.Scopes.Push(bindings...)
	defer guard.Release()

	item := ctx.Builder.Item(cand.Decl)
	if item == nil {
		return nil, "candidate has no declaration"
	}
	data, ok := item.Data.(ast.FnData)
	if !ok {
		return nil, "candidate is not a function"
	}

	if !data.ConstrPos.Empty() {
		holds, why := ctx.checkConstraint(data.ConstrPos)
		if !holds {
			return nil, why
		}
	}
	if !data.ReturnPos.Empty() {
		if !ctx.checkReturnType(data.ReturnPos) {
			return nil, "trailing return type does not form under these arguments"
		}
	}
	return normArgs, ""
}

// releaseSpeculative rewinds arena nodes allocated during a speculative
// check, unless the check registered instantiations along the way. Those
// stay cached, and their declarations live past the mark; truncating would
// leave the registry pointing at dead slots.
func (ctx *CompilationContext) releaseSpeculative(mark ast.Mark, instances int) {
	if ctx.Registry.InstanceCount() == instances {
		ctx.Builder.ReleaseTo(mark)
	}
}

// checkConstraint re-parses the saved constraint clause under the live
// bindings and constant-evaluates it.
func (ctx *CompilationContext) checkConstraint(pos source.Span) (bool, string) {
	defer ctx.releaseSpeculative(ctx.Builder.Mark(), ctx.Registry.InstanceCount())

	file := ctx.Files.Get(pos.File)
	if file == nil {
		return false, "constraint clause refers to a missing file"
	}
	stream := lexer.NewStreamAt(file, pos, ctx.Strings, diag.NopReporter{})
	p := parser.New(stream, ctx.Builder, ctx.Types, ctx.Strings, bindingResolver{ctx: ctx}, diag.NopReporter{})
	expr, ok := p.TryParseExpr()
	if !ok {
		return false, "constraint clause does not parse under these arguments"
	}
	// Substitution resolves qualified statics such as T::total into their
	// recorded constants before evaluation.
	expr, err := ctx.NewSubst(0, nil, pos).Expr(expr)
	if err != nil {
		return false, "constraint clause does not substitute under these arguments"
	}
	v, err := ctx.Eval.Eval(ctx.Builder, ctx.Scopes, expr)
	if err != nil {
		return false, "constraint clause is not a constant under these arguments"
	}
	if !v.Truthy() {
		return false, "constraint evaluates to false"
	}
	return true, ""
}

// checkReturnType re-parses the saved trailing return type; a type that
// fails to form (a member access on a type that lacks it, say) rejects the
// candidate.
func (ctx *CompilationContext) checkReturnType(pos source.Span) bool {
	defer ctx.releaseSpeculative(ctx.Builder.Mark(), ctx.Registry.InstanceCount())

	file := ctx.Files.Get(pos.File)
	if file == nil {
		return false
	}
	stream := lexer.NewStreamAt(file, pos, ctx.Strings, diag.NopReporter{})
	p := parser.New(stream, ctx.Builder, ctx.Types, ctx.Strings, bindingResolver{ctx: ctx}, diag.NopReporter{})
	ty, ok := p.TryParseType()
	if !ok {
		return false
	}
	if ctx.Types.ContainsGenericParam(ty) {
		// Concrete bindings must produce a concrete type; leftovers mean the
		// clause mentions something the arguments do not determine.
		resolved, err := ctx.NewSubst(0, nil, pos).Type(ty)
		if err != nil || ctx.Types.ContainsGenericParam(resolved) {
			return false
		}
	}
	return true
}

// instantiateOverload builds the instance for a viable candidate. Overloads
// share a source name, so the cache key carries the candidate's position in
// the overload set.
func (ctx *CompilationContext) instantiateOverload(cand *Template, ordinal int, args []GenericArgument, span source.Span) (*Instance, error) {
	srcName, _ := ctx.Strings.Lookup(cand.Name)
	keyName := ctx.Strings.Intern(srcName + "#" + strconv.Itoa(ordinal))

	key := NewKey(keyName, args)
	if inst, ok := ctx.Registry.Instance(key); ok {
		return inst, nil
	}

	if err := ctx.enter(span); err != nil {
		return nil, err
	}
	defer ctx.leave()

	bindings, err := ctx.bindParams(cand.Params, args, span)
	if err != nil {
		return nil, err
	}
	guard := ctx.Scopes.Push(bindings...)
	defer guard.Release()

	sub := ctx.NewSubst(cand.Name, cand.Params, span)
	decl, deferred, err := ctx.substDecl(sub, cand.Decl)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		Key:      key,
		Name:     ctx.Namer.InstanceName(cand.Name, args, ctx.Types, ctx.Strings),
		Template: cand,
		Args:     args,
		Bindings: bindings,
		Params:   cand.Params,
		Phase:    PhaseDeclared,
		Decl:     decl,
		Type:     ctx.instanceType(cand.Name, args),
		Deferred: deferred,
	}
	inst, _ = ctx.Registry.Register(inst)
	return inst, nil
}
