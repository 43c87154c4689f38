package templates

import (
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// selectBody picks the declaration to substitute for one instantiation:
// a full specialization on exact argument equality, otherwise the pattern
// specialization with the strictly highest specificity score, otherwise the
// primary. Two best-scoring patterns are an error, never a registration-order
// coin flip.
func (ctx *CompilationContext) selectBody(tmpl *Template, args []GenericArgument, span source.Span) (*Specialization, []symbols.Binding, error) {
	var best []patternMatch
	bestScore := -1

	for _, spec := range ctx.Registry.Specializations(tmpl.Name) {
		if spec.IsFull() {
			if ArgsEqual(spec.Patterns, args) {
				return spec, nil, nil
			}
			continue
		}
		m, ok := ctx.matchPatterns(spec, args)
		if !ok {
			continue
		}
		switch {
		case m.score > bestScore:
			bestScore = m.score
			best = best[:0]
			best = append(best, m)
		case m.score == bestScore:
			best = append(best, m)
		}
	}

	switch len(best) {
	case 0:
		bindings, err := ctx.bindParams(tmpl.Params, args, span)
		if err != nil {
			return nil, nil, err
		}
		return nil, bindings, nil
	case 1:
		return best[0].spec, best[0].bindings, nil
	default:
		name, _ := ctx.Strings.Lookup(tmpl.Name)
		return nil, nil, ctx.errorf(diag.TplAmbiguousSpecialization, span,
			"ambiguous specialization of %s: two candidates score equally (declared at %s and %s)",
			name, best[0].spec.Span, best[1].spec.Span)
	}
}

type patternMatch struct {
	spec     *Specialization
	bindings []symbols.Binding
	score    int
}

// matchPatterns structurally matches a partial specialization's pattern list
// against the use-site arguments, accumulating parameter bindings and the
// specificity score (one point per concrete node, zero for bound parameter
// leaves).
func (ctx *CompilationContext) matchPatterns(spec *Specialization, args []GenericArgument) (patternMatch, bool) {
	b := newBinder(spec)

	patterns := spec.Patterns
	// A trailing pack pattern absorbs all remaining arguments.
	var packPattern *GenericArgument
	if n := len(patterns); n > 0 {
		if p, ok := b.packParamOf(patterns[n-1]); ok && p.IsPack {
			packPattern = &patterns[n-1]
			patterns = patterns[:n-1]
		}
	}
	if packPattern == nil && len(patterns) != len(args) {
		return patternMatch{}, false
	}
	if packPattern != nil && len(args) < len(patterns) {
		return patternMatch{}, false
	}

	score := 0
	for i, pat := range patterns {
		s, ok := ctx.matchArg(b, pat, args[i])
		if !ok {
			return patternMatch{}, false
		}
		score += s
	}
	if packPattern != nil {
		rest := args[len(patterns):]
		if !b.bindPack(ctx, packPattern.Template, rest) {
			return patternMatch{}, false
		}
	}

	bindings, ok := b.finish(ctx)
	if !ok {
		return patternMatch{}, false
	}
	return patternMatch{spec: spec, bindings: bindings, score: score}, true
}

func (ctx *CompilationContext) matchArg(b *binder, pattern, arg GenericArgument) (int, bool) {
	switch pattern.Kind {
	case ArgParamRef:
		return 0, b.bindDirect(ctx, pattern.Template, arg)
	case ArgValue:
		if arg.Kind != ArgValue || arg.Value != pattern.Value {
			return 0, false
		}
		return 1, true
	case ArgTemplate:
		return 1, arg.Kind == ArgTemplate && arg.Template == pattern.Template
	case ArgType:
		if arg.Kind != ArgType {
			return 0, false
		}
		return ctx.matchType(b, pattern.Type, arg.Type)
	}
	return 0, false
}

// matchType walks pattern and argument types in lockstep. Pattern nodes that
// are the specialization's own parameters bind; every other node must agree
// structurally and contributes one specificity point.
func (ctx *CompilationContext) matchType(b *binder, pattern, arg types.TypeID) (int, bool) {
	if pattern == arg {
		return ctx.concreteDepth(arg), true
	}
	pt, ok := ctx.Types.Lookup(pattern)
	if !ok {
		return 0, false
	}

	if pt.Kind == types.KindGenericParam {
		info, ok := ctx.Types.ParamInfo(pattern)
		if !ok || !b.owns(info.Name) {
			return 0, false
		}
		// cv on the pattern param must be carried by the argument.
		if pt.Const || pt.Volatile {
			at := ctx.Types.MustLookup(arg)
			if (pt.Const && !at.Const) || (pt.Volatile && !at.Volatile) {
				return 0, false
			}
			arg = ctx.Types.WithQualifiers(arg, at.Const && !pt.Const, at.Volatile && !pt.Volatile)
		}
		return 0, b.bindType(info.Name, arg)
	}

	at, ok := ctx.Types.Lookup(arg)
	if !ok || at.Kind != pt.Kind || at.Const != pt.Const || at.Volatile != pt.Volatile {
		return 0, false
	}

	switch pt.Kind {
	case types.KindPointer, types.KindReference:
		s, ok := ctx.matchType(b, pt.Elem, at.Elem)
		if !ok {
			return 0, false
		}
		return 1 + s, true
	case types.KindArray:
		if pt.Count != types.ArrayUnsized && pt.Count != at.Count {
			return 0, false
		}
		s, ok := ctx.matchType(b, pt.Elem, at.Elem)
		if !ok {
			return 0, false
		}
		return 1 + s, true
	case types.KindNamed:
		pi, pok := ctx.Types.NamedInfo(pattern)
		ai, aok := ctx.Types.NamedInfo(arg)
		if !pok || !aok || pi.Name != ai.Name {
			return 0, false
		}
		if len(pi.TypeArgs) != len(ai.TypeArgs) || len(pi.ValueArgs) != len(ai.ValueArgs) {
			return 0, false
		}
		score := 1
		for i := range pi.TypeArgs {
			s, ok := ctx.matchType(b, pi.TypeArgs[i], ai.TypeArgs[i])
			if !ok {
				return 0, false
			}
			score += s
		}
		for i := range pi.ValueArgs {
			if pi.ValueArgs[i] != ai.ValueArgs[i] {
				return 0, false
			}
			score++
		}
		return score, true
	default:
		// Distinct leaves of the same kind (widths differ, for example).
		return 0, false
	}
}

// concreteDepth counts the structural nodes of a fully concrete type, the
// score contribution of a pattern subtree matched verbatim.
func (ctx *CompilationContext) concreteDepth(id types.TypeID) int {
	tt, ok := ctx.Types.Lookup(id)
	if !ok {
		return 0
	}
	switch tt.Kind {
	case types.KindGenericParam, types.KindDependent:
		return 0
	case types.KindPointer, types.KindReference, types.KindArray:
		return 1 + ctx.concreteDepth(tt.Elem)
	case types.KindNamed:
		info, ok := ctx.Types.NamedInfo(id)
		if !ok {
			return 1
		}
		n := 1 + len(info.ValueArgs)
		for _, a := range info.TypeArgs {
			n += ctx.concreteDepth(a)
		}
		return n
	default:
		return 1
	}
}

// binder accumulates pattern-parameter bindings with consistency checking:
// a parameter matched twice must bind the same way both times.
type binder struct {
	spec   *Specialization
	byName map[source.StringID]symbols.Binding
	order  []source.StringID
}

func newBinder(spec *Specialization) *binder {
	return &binder{spec: spec, byName: make(map[source.StringID]symbols.Binding)}
}

func (b *binder) owns(name source.StringID) bool {
	for _, p := range b.spec.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (b *binder) packParamOf(pattern GenericArgument) (GenericParameter, bool) {
	if pattern.Kind != ArgParamRef {
		return GenericParameter{}, false
	}
	for _, p := range b.spec.Params {
		if p.Name == pattern.Template {
			return p, true
		}
	}
	return GenericParameter{}, false
}

func (b *binder) bindType(name source.StringID, ty types.TypeID) bool {
	if prev, ok := b.byName[name]; ok {
		return !prev.IsValue && !prev.IsPack && prev.Type == ty
	}
	b.byName[name] = symbols.TypeBinding(name, ty)
	b.order = append(b.order, name)
	return true
}

func (b *binder) bindDirect(ctx *CompilationContext, name source.StringID, arg GenericArgument) bool {
	var param *GenericParameter
	for i := range b.spec.Params {
		if b.spec.Params[i].Name == name {
			param = &b.spec.Params[i]
			break
		}
	}
	if param == nil || !param.accepts(arg) {
		return false
	}
	switch arg.Kind {
	case ArgType:
		return b.bindType(name, arg.Type)
	case ArgValue:
		if prev, ok := b.byName[name]; ok {
			return prev.IsValue && prev.Value == arg.Value
		}
		declared := param.ValueType
		if declared == types.NoTypeID {
			declared = arg.ValueType
		}
		b.byName[name] = symbols.ValueBinding(name, arg.Value, declared)
		b.order = append(b.order, name)
		return true
	case ArgTemplate:
		if prev, ok := b.byName[name]; ok {
			return prev.IsTemplate && prev.Template == arg.Template
		}
		b.byName[name] = symbols.TemplateBinding(name, arg.Template)
		b.order = append(b.order, name)
		return true
	}
	return false
}

func (b *binder) bindPack(ctx *CompilationContext, name source.StringID, rest []GenericArgument) bool {
	if _, ok := b.byName[name]; ok {
		return false
	}
	bind, err := packBindingOf(name, rest)
	if err != nil {
		return false
	}
	b.byName[name] = bind
	b.order = append(b.order, name)
	return true
}

// finish checks that every declared parameter was bound and returns the
// bindings in declaration order.
func (b *binder) finish(ctx *CompilationContext) ([]symbols.Binding, bool) {
	out := make([]symbols.Binding, 0, len(b.spec.Params))
	for _, p := range b.spec.Params {
		bind, ok := b.byName[p.Name]
		if !ok {
			return nil, false
		}
		out = append(out, bind)
	}
	return out, true
}
