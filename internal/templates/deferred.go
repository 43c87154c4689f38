package templates

import (
	"quartz/internal/ast"
	"quartz/internal/constexpr"
	"quartz/internal/diag"
	"quartz/internal/lexer"
	"quartz/internal/parser"
	"quartz/internal/source"
	"quartz/internal/types"
)

// DeferredKind tags one unit of postponed per-instantiation work.
type DeferredKind uint8

const (
	DeferStaticMember DeferredKind = iota
	DeferMemberFunction
	DeferNestedType
	DeferAlias
)

// DeferredEntry is one queued member of an instantiation. Entries resolve
// through ResolveDeferred exactly once; re-triggering a resolved entry is a
// no-op.
type DeferredEntry struct {
	Kind  DeferredKind
	Name  source.StringID
	Index int
	Done  bool
}

// ResolveDeferred forces the named deferred member of an instance, on first
// reference or when the Full phase demands it.
func (ctx *CompilationContext) ResolveDeferred(inst *Instance, name source.StringID) error {
	for i := range inst.Deferred {
		e := &inst.Deferred[i]
		if e.Name == name {
			return ctx.resolveEntry(inst, e)
		}
	}
	n, _ := ctx.Strings.Lookup(name)
	item := ctx.Builder.Item(inst.Decl)
	span := source.Span{}
	if item != nil {
		span = item.Span
	}
	return ctx.errorf(diag.TplDeferredMemberMissing, span, "%s has no member %s", inst.Name, n)
}

// forceStaticMembers resolves the pending static initializers when an
// instance reaches the Full phase. Method bodies, nested types, and aliases
// stay on demand; their entries resolve on first reference.
func (ctx *CompilationContext) forceStaticMembers(inst *Instance, span source.Span) error {
	for i := range inst.Deferred {
		if inst.Deferred[i].Kind != DeferStaticMember {
			continue
		}
		if err := ctx.resolveEntry(inst, &inst.Deferred[i]); err != nil {
			return err
		}
	}
	return nil
}

// resolveEntry re-enters the instance's binding scope and dispatches on the
// entry's variant. All four variants funnel through here so idempotence and
// scope discipline live in one place.
func (ctx *CompilationContext) resolveEntry(inst *Instance, e *DeferredEntry) error {
	if e.Done {
		return nil
	}

	item := ctx.Builder.Item(inst.Decl)
	if item == nil {
		return ctx.errorf(diag.TplDeferredMemberMissing, source.Span{}, "instance %s lost its declaration", inst.Name)
	}

	guard := ctx.Scopes.Push(inst.Bindings...)
	defer guard.Release()
	sub := ctx.NewSubst(inst.Key.Name, inst.Params, item.Span)

	var err error
	switch e.Kind {
	case DeferStaticMember:
		err = ctx.resolveStatic(inst, item, sub, e.Index)
	case DeferMemberFunction:
		err = ctx.resolveMemberFn(inst, item, sub, e.Index)
	case DeferNestedType:
		err = ctx.resolveNested(inst, item, sub, e.Index)
	case DeferAlias:
		err = ctx.resolveAlias(inst, item, sub, e.Index)
	}
	if err != nil {
		return err
	}
	e.Done = true
	return nil
}

func (ctx *CompilationContext) resolveStatic(inst *Instance, item *ast.Item, sub *Subst, index int) error {
	data := item.Data.(ast.StructData)
	st := &data.Statics[index]
	if !st.Init.IsValid() {
		return nil
	}
	init, err := sub.Expr(st.Init)
	if err != nil {
		return err
	}
	st.Init = init
	// A constant initializer becomes a recorded value; anything else stays as
	// a substituted runtime initializer.
	if v, evalErr := ctx.Eval.Eval(ctx.Builder, ctx.Scopes, init); evalErr == nil {
		inst.statics[st.Name] = v
	}
	return nil
}

func (ctx *CompilationContext) resolveMemberFn(inst *Instance, item *ast.Item, sub *Subst, index int) error {
	if index == fnBodyIndex {
		data := item.Data.(ast.FnData)
		body, err := ctx.bodyFor(sub, data.Body, data.BodyPos)
		if err != nil {
			return err
		}
		data.Body = body
		item.Data = data
		return nil
	}

	data := item.Data.(ast.StructData)
	m := &data.Methods[index]
	body, err := ctx.bodyFor(sub, m.Body, m.BodyPos)
	if err != nil {
		return err
	}
	m.Body = body
	m.IsResolved = true
	return nil
}

// bodyFor produces the substituted body: an already-parsed tree is rewritten
// in place, an unparsed one is lexed again from its saved span under the live
// bindings first.
func (ctx *CompilationContext) bodyFor(sub *Subst, body ast.StmtID, pos source.Span) (ast.StmtID, error) {
	if !body.IsValid() {
		if pos.Empty() {
			return ast.NoStmtID, nil
		}
		parsed, err := ctx.parseBodySpan(pos)
		if err != nil {
			return ast.NoStmtID, err
		}
		body = parsed
	}
	return sub.Stmt(body)
}

func (ctx *CompilationContext) parseBodySpan(pos source.Span) (ast.StmtID, error) {
	file := ctx.Files.Get(pos.File)
	if file == nil {
		return ast.NoStmtID, ctx.errorf(diag.TplDeferredMemberMissing, pos, "saved body position refers to a missing file")
	}
	stream := lexer.NewStreamAt(file, pos, ctx.Strings, ctx.Reporter)
	p := parser.New(stream, ctx.Builder, ctx.Types, ctx.Strings, bindingResolver{ctx: ctx}, ctx.Reporter)
	return p.ParseBlock()
}

// resolveNested instantiates a nested class the same way a top-level one is
// instantiated: the substituted declaration is registered as an instance
// under its qualified name, carrying its own deferred members.
func (ctx *CompilationContext) resolveNested(inst *Instance, item *ast.Item, sub *Subst, index int) error {
	data := item.Data.(ast.StructData)
	n := &data.Nested[index]
	decl, deferred, err := ctx.substDecl(sub, n.Decl)
	if err != nil {
		return err
	}
	n.Decl = decl

	nestedName, _ := ctx.Strings.Lookup(n.Name)
	qualifiedName := inst.Name + "::" + nestedName
	qualified := ctx.Strings.Intern(qualifiedName)
	ty := ctx.Types.RegisterNamed(qualified, nil, nil)

	nestedInst := &Instance{
		Key:      NewKey(qualified, nil),
		Name:     qualifiedName,
		Template: inst.Template,
		Bindings: inst.Bindings,
		Params:   inst.Params,
		Phase:    PhaseDeclared,
		Decl:     decl,
		Type:     ty,
		Deferred: deferred,
	}
	ctx.Registry.Register(nestedInst)
	inst.nested[n.Name] = ty
	return nil
}

func (ctx *CompilationContext) resolveAlias(inst *Instance, item *ast.Item, sub *Subst, index int) error {
	data := item.Data.(ast.StructData)
	al := &data.Aliases[index]
	ty, err := sub.Type(al.Target)
	if err != nil {
		return err
	}
	if ctx.Types.ContainsGenericParam(ty) {
		name, _ := ctx.Strings.Lookup(al.Name)
		return ctx.errorf(diag.TplUnresolvedName, al.Span,
			"alias %s of %s remains dependent after substitution", name, inst.Name)
	}
	al.Target = ty
	inst.aliases[al.Name] = ty
	return nil
}

// AliasType returns the resolved target of a member alias, forcing its
// deferred entry on first use. Results are cached per (instance, name).
func (ctx *CompilationContext) AliasType(inst *Instance, name source.StringID) (types.TypeID, error) {
	if ty, ok := inst.aliases[name]; ok {
		return ty, nil
	}
	if err := ctx.ResolveDeferred(inst, name); err != nil {
		return types.NoTypeID, err
	}
	if ty, ok := inst.aliases[name]; ok {
		return ty, nil
	}
	if ty, ok := inst.nested[name]; ok {
		return ty, nil
	}
	n, _ := ctx.Strings.Lookup(name)
	return types.NoTypeID, ctx.errorf(diag.TplDeferredMemberMissing, source.Span{},
		"%s::%s does not name a type", inst.Name, n)
}

// resolveMemberType resolves base::member once base has become a concrete
// class instance: the owner is instantiated to its declared phase and the
// member's deferred entry is forced.
func (ctx *CompilationContext) resolveMemberType(base types.TypeID, member source.StringID, span source.Span) (types.TypeID, error) {
	info, ok := ctx.Types.NamedInfo(base)
	if !ok {
		return types.NoTypeID, ctx.errorf(diag.TplUnresolvedName, span,
			"member access on a non-class type")
	}

	// Nested classes register as instances under their qualified name, not
	// as templates; their members resolve straight off the cached record.
	if inst, ok := ctx.Registry.Instance(NewKey(info.Name, argsOfNamed(info))); ok {
		return ctx.AliasType(inst, member)
	}

	if _, ok := ctx.Registry.Template(info.Name); !ok {
		n, _ := ctx.Strings.Lookup(member)
		return types.NoTypeID, ctx.errorf(diag.TplDeferredMemberMissing, span,
			"%s has no instantiable member %s", ctx.Types.Format(base, ctx.Strings), n)
	}

	inst, err := Instantiate(ctx, info.Name, argsOfNamed(info), span)
	if err != nil {
		return types.NoTypeID, err
	}
	return ctx.AliasType(inst, member)
}

// argsOfNamed rebuilds the argument list of an interned instance type.
func argsOfNamed(info *types.NamedInfo) []GenericArgument {
	args := make([]GenericArgument, 0, len(info.TypeArgs)+len(info.ValueArgs))
	for _, t := range info.TypeArgs {
		args = append(args, TypeArg(t))
	}
	for _, v := range info.ValueArgs {
		args = append(args, ValueArg(v, types.NoTypeID))
	}
	return args
}

// resolveStaticRef forces owner::member once the owner has become a concrete
// class instance and returns the member's recorded constant. ok is false when
// the owner is not a template instance or the member has no constant value;
// the reference then stays a substituted runtime expression.
func (ctx *CompilationContext) resolveStaticRef(owner types.TypeID, member source.StringID, span source.Span) (constexpr.Value, bool, error) {
	info, ok := ctx.Types.NamedInfo(owner)
	if !ok {
		return constexpr.Value{}, false, nil
	}

	inst, cached := ctx.Registry.Instance(NewKey(info.Name, argsOfNamed(info)))
	if !cached {
		if _, ok := ctx.Registry.Template(info.Name); !ok {
			return constexpr.Value{}, false, nil
		}
		var err error
		inst, err = Instantiate(ctx, info.Name, argsOfNamed(info), span)
		if err != nil {
			return constexpr.Value{}, false, err
		}
	}

	if err := ctx.ResolveDeferred(inst, member); err != nil {
		return constexpr.Value{}, false, err
	}
	v, ok := inst.StaticValue(member)
	return v, ok, nil
}
