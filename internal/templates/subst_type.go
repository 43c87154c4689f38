package templates

import (
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/types"
)

// Subst rewrites types and expressions under the current scope bindings.
// Results are memoized per Subst; a Subst is only valid for one binding
// frame, so pack element views each get a fresh one.
type Subst struct {
	ctx  *CompilationContext
	memo map[types.TypeID]types.TypeID

	// owner and params identify the template whose body is being rewritten,
	// used to tell "still generic" apart from "never declared".
	owner  source.StringID
	params map[source.StringID]GenericParameter

	// span is the use site driving this substitution; hard errors point here.
	span source.Span
}

// NewSubst builds a substitution pass for one template's body.
func (ctx *CompilationContext) NewSubst(owner source.StringID, params []GenericParameter, span source.Span) *Subst {
	byName := make(map[source.StringID]GenericParameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}
	return &Subst{
		ctx:    ctx,
		memo:   make(map[types.TypeID]types.TypeID),
		owner:  owner,
		params: byName,
		span:   span,
	}
}

// fork clones the pass for a nested binding frame (pack element views). The
// memo does not carry over; bindings differ.
func (s *Subst) fork() *Subst {
	return &Subst{
		ctx:    s.ctx,
		memo:   make(map[types.TypeID]types.TypeID),
		owner:  s.owner,
		params: s.params,
		span:   s.span,
	}
}

// Type substitutes bound generic parameters inside id. Types containing only
// unbound parameters of the owning template come back unchanged (still
// generic); fully concrete inputs are returned by identity.
func (s *Subst) Type(id types.TypeID) (types.TypeID, error) {
	if id == types.NoTypeID {
		return id, nil
	}
	if out, ok := s.memo[id]; ok {
		return out, nil
	}
	out, err := s.typeNoCache(id)
	if err != nil {
		return types.NoTypeID, err
	}
	s.memo[id] = out
	return out, nil
}

func (s *Subst) typeNoCache(id types.TypeID) (types.TypeID, error) {
	in := s.ctx.Types
	tt, ok := in.Lookup(id)
	if !ok {
		return id, nil
	}

	switch tt.Kind {
	case types.KindGenericParam:
		info, ok := in.ParamInfo(id)
		if !ok {
			return id, nil
		}
		bind, found := s.ctx.Scopes.Lookup(info.Name)
		if !found {
			// Unbound: still generic, keep the placeholder.
			return id, nil
		}
		switch {
		case bind.IsValue:
			return types.NoTypeID, s.ctx.errorf(diag.TplBadValueArgument, s.span,
				"value parameter used in type position")
		case bind.IsPack:
			// A bare pack name in type position only makes sense inside an
			// expansion, where element views rebind it as a plain type.
			return id, nil
		case bind.IsTemplate:
			return in.RegisterNamed(bind.Template, nil, nil), nil
		default:
			out := bind.Type
			if tt.Const || tt.Volatile {
				bt := in.MustLookup(out)
				out = in.WithQualifiers(out, tt.Const || bt.Const, tt.Volatile || bt.Volatile)
			}
			return out, nil
		}

	case types.KindPointer:
		elem, err := s.Type(tt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		if elem == tt.Elem {
			return id, nil
		}
		out := in.Intern(types.MakePointer(elem))
		return in.WithQualifiers(out, tt.Const, tt.Volatile), nil

	case types.KindReference:
		elem, err := s.Type(tt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		if elem == tt.Elem {
			return id, nil
		}
		out := in.Intern(types.MakeReference(elem))
		return in.WithQualifiers(out, tt.Const, tt.Volatile), nil

	case types.KindArray:
		elem, err := s.Type(tt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		if elem == tt.Elem {
			return id, nil
		}
		out := in.Intern(types.MakeArray(elem, tt.Count))
		return in.WithQualifiers(out, tt.Const, tt.Volatile), nil

	case types.KindNamed:
		info, ok := in.NamedInfo(id)
		if !ok {
			return id, nil
		}
		name := info.Name
		// A template-template binding renames the instance.
		if bind, found := s.ctx.Scopes.Lookup(name); found && bind.IsTemplate {
			name = bind.Template
		}
		changed := name != info.Name
		newArgs := make([]types.TypeID, len(info.TypeArgs))
		for i, a := range info.TypeArgs {
			na, err := s.Type(a)
			if err != nil {
				return types.NoTypeID, err
			}
			newArgs[i] = na
			changed = changed || na != a
		}
		if !changed {
			return id, nil
		}
		return in.RegisterNamed(name, newArgs, info.ValueArgs), nil

	case types.KindDependent:
		info, ok := in.DependentInfo(id)
		if !ok {
			return id, nil
		}
		base, err := s.Type(info.Base)
		if err != nil {
			return types.NoTypeID, err
		}
		if !in.ContainsGenericParam(base) {
			return s.ctx.resolveMemberType(base, info.Member, s.span)
		}
		if base == info.Base {
			return id, nil
		}
		return in.RegisterDependent(base, info.Member), nil

	case types.KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return id, nil
		}
		changed := false
		params := make([]types.TypeID, len(info.Params))
		for i, p := range info.Params {
			np, err := s.Type(p)
			if err != nil {
				return types.NoTypeID, err
			}
			params[i] = np
			changed = changed || np != p
		}
		result, err := s.Type(info.Result)
		if err != nil {
			return types.NoTypeID, err
		}
		if !changed && result == info.Result {
			return id, nil
		}
		return in.RegisterFn(params, result), nil

	default:
		return id, nil
	}
}
