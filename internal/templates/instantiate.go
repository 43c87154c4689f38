package templates

import (
	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/types"
)

// Instantiate requests an instantiation at PhaseDeclared: the shallowest
// usable form, with member types substituted and everything else deferred.
func Instantiate(ctx *CompilationContext, name source.StringID, args []GenericArgument, span source.Span) (*Instance, error) {
	return InstantiateToPhase(ctx, name, args, PhaseDeclared, span)
}

// InstantiateToPhase drives one instantiation to at least the requested
// phase. Repeated requests hit the cache and at most advance the phase;
// the substituted declaration is built exactly once per key.
func InstantiateToPhase(ctx *CompilationContext, name source.StringID, args []GenericArgument, phase Phase, span source.Span) (*Instance, error) {
	tmpl, ok := ctx.Registry.Template(name)
	if !ok {
		n, _ := ctx.Strings.Lookup(name)
		return nil, ctx.errorf(diag.TplUnresolvedName, span, "%s is not a registered template", n)
	}

	args, err := ctx.normalizeArgs(tmpl, args, span)
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		if a.IsDependent(ctx.Types) {
			n, _ := ctx.Strings.Lookup(name)
			return nil, ctx.errorf(diag.TplDependentArgument, span,
				"cannot instantiate %s: argument list is still dependent", n)
		}
	}

	key := NewKey(name, args)
	if inst, ok := ctx.Registry.Instance(key); ok {
		return ctx.advance(inst, phase, span)
	}

	if err := ctx.enter(span); err != nil {
		return nil, err
	}
	defer ctx.leave()

	spec, bindings, err := ctx.selectBody(tmpl, args, span)
	if err != nil {
		return nil, err
	}
	decl := tmpl.Decl
	var params []GenericParameter
	switch {
	case spec == nil:
		params = tmpl.Params
	case spec.IsFull():
		decl = spec.Decl
	default:
		decl = spec.Decl
		params = spec.Params
	}

	guard := ctx.Scopes.Push(bindings...)
	defer guard.Release()

	sub := ctx.NewSubst(name, params, span)
	newDecl, deferred, err := ctx.substDecl(sub, decl)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		Key:      key,
		Name:     ctx.Namer.InstanceName(name, args, ctx.Types, ctx.Strings),
		Template: tmpl,
		Spec:     spec,
		Args:     args,
		Bindings: bindings,
		Params:   params,
		Phase:    PhaseDeclared,
		Decl:     newDecl,
		Type:     ctx.instanceType(name, args),
		Deferred: deferred,
	}
	inst, created := ctx.Registry.Register(inst)
	if !created {
		// The key was registered while we were substituting; the first record
		// wins and ours is discarded.
		return ctx.advance(inst, phase, span)
	}
	return ctx.advance(inst, phase, span)
}

// advance moves an instance forward to the requested phase. Phases are
// strictly monotonic; lower requests on a cached instance change nothing.
func (ctx *CompilationContext) advance(inst *Instance, phase Phase, span source.Span) (*Instance, error) {
	if phase >= PhaseLayout && inst.Phase < PhaseLayout {
		if err := ctx.computeLayout(inst, span); err != nil {
			return nil, err
		}
		inst.Phase = PhaseLayout
	}
	if phase >= PhaseFull && inst.Phase < PhaseFull {
		if err := ctx.forceStaticMembers(inst, span); err != nil {
			return nil, err
		}
		inst.Phase = PhaseFull
	}
	return inst, nil
}

// instanceType interns the nominal type for a concrete instantiation.
func (ctx *CompilationContext) instanceType(name source.StringID, args []GenericArgument) types.TypeID {
	var typeArgs []types.TypeID
	var valueArgs []int64
	for _, a := range args {
		switch a.Kind {
		case ArgType:
			typeArgs = append(typeArgs, a.Type)
		case ArgValue:
			valueArgs = append(valueArgs, a.Value)
		case ArgTemplate:
			typeArgs = append(typeArgs, ctx.Types.RegisterNamed(a.Template, nil, nil))
		}
	}
	return ctx.Types.RegisterNamed(name, typeArgs, valueArgs)
}

// substDecl builds the declared-phase shell of an instantiation: member types
// substituted, bodies and initializers queued as deferred work.
func (ctx *CompilationContext) substDecl(sub *Subst, decl ast.ItemID) (ast.ItemID, []DeferredEntry, error) {
	item := ctx.Builder.Item(decl)
	if item == nil {
		return ast.NoItemID, nil, ctx.errorf(diag.TplUnresolvedName, sub.span, "template has no declaration")
	}

	switch item.Kind {
	case ast.ItemStruct:
		return ctx.substStructDecl(sub, item)
	case ast.ItemFn:
		return ctx.substFnDecl(sub, item)
	default:
		return ast.NoItemID, nil, ctx.errorf(diag.TplUnresolvedName, sub.span, "declaration kind cannot be instantiated")
	}
}

func (ctx *CompilationContext) substStructDecl(sub *Subst, item *ast.Item) (ast.ItemID, []DeferredEntry, error) {
	data := item.Data.(ast.StructData)
	var deferred []DeferredEntry

	fields := make([]ast.FieldDecl, len(data.Fields))
	for i, f := range data.Fields {
		nf, err := ctx.substField(sub, f)
		if err != nil {
			return ast.NoItemID, nil, err
		}
		fields[i] = nf
	}

	statics := make([]ast.StaticDecl, len(data.Statics))
	for i, st := range data.Statics {
		ty, err := sub.Type(st.Type)
		if err != nil {
			return ast.NoItemID, nil, err
		}
		statics[i] = ast.StaticDecl{Name: st.Name, Type: ty, Init: st.Init, Span: st.Span}
		deferred = append(deferred, DeferredEntry{Kind: DeferStaticMember, Name: st.Name, Index: i})
	}

	methods := make([]ast.MethodDecl, len(data.Methods))
	for i, m := range data.Methods {
		nm := m
		nm.Params = make([]ast.ParamDecl, len(m.Params))
		for j, p := range m.Params {
			ty, err := sub.Type(p.Type)
			if err != nil {
				return ast.NoItemID, nil, err
			}
			nm.Params[j] = ast.ParamDecl{Name: p.Name, Type: ty, Span: p.Span}
		}
		ty, err := sub.Type(m.Result)
		if err != nil {
			return ast.NoItemID, nil, err
		}
		nm.Result = ty
		nm.IsResolved = false
		methods[i] = nm
		deferred = append(deferred, DeferredEntry{Kind: DeferMemberFunction, Name: m.Name, Index: i})
	}

	nested := make([]ast.NestedDecl, len(data.Nested))
	for i, n := range data.Nested {
		nested[i] = n
		deferred = append(deferred, DeferredEntry{Kind: DeferNestedType, Name: n.Name, Index: i})
	}

	aliases := make([]ast.AliasMemberDecl, len(data.Aliases))
	for i, al := range data.Aliases {
		aliases[i] = al
		deferred = append(deferred, DeferredEntry{Kind: DeferAlias, Name: al.Name, Index: i})
	}

	id := ctx.Builder.NewItem(ast.ItemStruct, item.Span, ast.StructData{
		Name:    data.Name,
		Fields:  fields,
		Statics: statics,
		Methods: methods,
		Nested:  nested,
		Aliases: aliases,
	})
	return id, deferred, nil
}

// substField substitutes a field's type and, when the declared array bound
// now constant-evaluates, fixes the outermost array count.
func (ctx *CompilationContext) substField(sub *Subst, f ast.FieldDecl) (ast.FieldDecl, error) {
	ty, err := sub.Type(f.Type)
	if err != nil {
		return ast.FieldDecl{}, err
	}
	bound := f.Bound
	if bound.IsValid() {
		nb, err := sub.Expr(bound)
		if err != nil {
			return ast.FieldDecl{}, err
		}
		bound = nb
		if v, vok, err := ctx.tryEval(nb); err == nil && vok && v >= 0 {
			ty = ctx.resizeArray(ty, uint32(v)) // #nosec G115 -- checked non-negative
			bound = ast.NoExprID
		}
	}
	return ast.FieldDecl{Name: f.Name, Type: ty, Bound: bound, Span: f.Span}, nil
}

func (ctx *CompilationContext) tryEval(id ast.ExprID) (int64, bool, error) {
	v, err := ctx.Eval.Eval(ctx.Builder, ctx.Scopes, id)
	if err != nil {
		return 0, false, nil
	}
	return v.Int, true, nil
}

// resizeArray sets the count of the outermost unsized array layer.
func (ctx *CompilationContext) resizeArray(id types.TypeID, count uint32) types.TypeID {
	tt, ok := ctx.Types.Lookup(id)
	if !ok || tt.Kind != types.KindArray || tt.Count != types.ArrayUnsized {
		return id
	}
	out := ctx.Types.Intern(types.MakeArray(tt.Elem, count))
	return ctx.Types.WithQualifiers(out, tt.Const, tt.Volatile)
}

func (ctx *CompilationContext) substFnDecl(sub *Subst, item *ast.Item) (ast.ItemID, []DeferredEntry, error) {
	data := item.Data.(ast.FnData)

	params := make([]ast.ParamDecl, len(data.Params))
	for i, p := range data.Params {
		ty, err := sub.Type(p.Type)
		if err != nil {
			return ast.NoItemID, nil, err
		}
		params[i] = ast.ParamDecl{Name: p.Name, Type: ty, Span: p.Span}
	}
	result, err := sub.Type(data.Result)
	if err != nil {
		return ast.NoItemID, nil, err
	}

	id := ctx.Builder.NewItem(ast.ItemFn, item.Span, ast.FnData{
		Name:      data.Name,
		Params:    params,
		Result:    result,
		Body:      ast.NoStmtID,
		BodyPos:   data.BodyPos,
		ReturnPos: data.ReturnPos,
		ConstrPos: data.ConstrPos,
	})
	deferred := []DeferredEntry{{Kind: DeferMemberFunction, Name: data.Name, Index: fnBodyIndex}}
	return id, deferred, nil
}

// fnBodyIndex marks the deferred entry for a function template's own body,
// as opposed to an indexed member of a struct.
const fnBodyIndex = -1
