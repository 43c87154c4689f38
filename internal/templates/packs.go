package templates

import (
	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// packElem is one element of a bound pack: a type or a value.
type packElem struct {
	Type  types.TypeID
	Value int64
}

func (e packElem) isType() bool { return e.Type.IsValid() }

// binding turns the element into the single-name scope view the pattern is
// substituted under.
func (e packElem) binding(name source.StringID) symbols.Binding {
	if e.isType() {
		return symbols.TypeBinding(name, e.Type)
	}
	return symbols.ValueBinding(name, e.Value, types.NoTypeID)
}

// packElements resolves a pack name to its bound elements. dependent is true
// when the pack is a declared parameter of the owning template with no live
// binding; the caller then leaves the construct unexpanded.
func (s *Subst) packElements(span source.Span, pack source.StringID) ([]packElem, bool, error) {
	if bind, ok := s.ctx.Scopes.Lookup(pack); ok && bind.IsPack {
		elems := make([]packElem, len(bind.PackTypes))
		for i := range bind.PackTypes {
			elems[i] = packElem{Type: bind.PackTypes[i], Value: bind.PackValues[i]}
		}
		return elems, false, nil
	}
	if p, ok := s.params[pack]; ok && p.IsPack {
		return nil, true, nil
	}
	name, _ := s.ctx.Strings.Lookup(pack)
	return nil, false, s.ctx.errorf(diag.TplPackUnknown, span, "%s is not a parameter pack in scope", name)
}

// packSize resolves the arity of a pack: live binding first, then a recorded
// fact, then still-generic, then a hard error.
func (s *Subst) packSize(span source.Span, pack source.StringID) (n int, dependent bool, err error) {
	if bind, ok := s.ctx.Scopes.Lookup(pack); ok && bind.IsPack {
		return len(bind.PackTypes), false, nil
	}
	if n, ok := s.ctx.Registry.PackSizeFact(s.owner, pack); ok {
		return n, false, nil
	}
	if p, ok := s.params[pack]; ok && p.IsPack {
		return 0, true, nil
	}
	name, _ := s.ctx.Strings.Lookup(pack)
	return 0, false, s.ctx.errorf(diag.TplPackUnknown, span, "sizeof... of unknown pack %s", name)
}

// sizeofPack rewrites sizeof...(pack) to an integer literal once the arity
// is known.
func (s *Subst) sizeofPack(id ast.ExprID, node *ast.Expr) (ast.ExprID, error) {
	data := node.Data.(ast.SizeofPackData)
	n, dependent, err := s.packSize(node.Span, data.Pack)
	if err != nil {
		return ast.NoExprID, err
	}
	if dependent {
		return id, nil
	}
	return s.ctx.Builder.NewExpr(ast.ExprIntLit, node.Span, ast.IntLitData{
		Value: int64(n),
		Type:  s.ctx.Types.Builtins().Uint,
	}), nil
}

// substArgList rewrites an argument list, splicing pack expansions inline:
// f(args...) with args bound to three elements yields three substituted
// copies of the pattern in place of the expansion.
func (s *Subst) substArgList(args []ast.ExprID) ([]ast.ExprID, bool, error) {
	out := make([]ast.ExprID, 0, len(args))
	changed := false
	for _, a := range args {
		node := s.ctx.Builder.Expr(a)
		if node != nil && node.Kind == ast.ExprPackExpand {
			data := node.Data.(ast.PackExpandData)
			elems, dependent, err := s.packElements(node.Span, data.Pack)
			if err != nil {
				return nil, false, err
			}
			if dependent {
				out = append(out, a)
				continue
			}
			expanded, err := s.expandPattern(data.Pack, data.Pattern, elems)
			if err != nil {
				return nil, false, err
			}
			out = append(out, expanded...)
			changed = true
			continue
		}
		na, err := s.Expr(a)
		if err != nil {
			return nil, false, err
		}
		out = append(out, na)
		changed = changed || na != a
	}
	return out, changed, nil
}

// expandPattern substitutes the pattern once per pack element, each time
// under a scope frame that views the pack name as that single element. The
// frame guard releases even when substitution of one element fails.
func (s *Subst) expandPattern(pack source.StringID, pattern ast.ExprID, elems []packElem) ([]ast.ExprID, error) {
	out := make([]ast.ExprID, 0, len(elems))
	for _, elem := range elems {
		ne, err := s.substElement(pack, pattern, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, ne)
	}
	return out, nil
}

func (s *Subst) substElement(pack source.StringID, pattern ast.ExprID, elem packElem) (ast.ExprID, error) {
	guard := s.ctx.Scopes.Push(elem.binding(pack))
	defer guard.Release()
	return s.fork().Expr(pattern)
}
