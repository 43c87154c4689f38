package templates

import (
	"fmt"

	"quartz/internal/diag"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// normalizeArgs turns a use-site argument list into the canonical list that
// keys the instantiation: defaults applied, arity verified, argument
// categories checked against the parameter list. A trailing pack absorbs all
// remaining arguments.
func (ctx *CompilationContext) normalizeArgs(tmpl *Template, args []GenericArgument, span source.Span) ([]GenericArgument, error) {
	params := tmpl.Params
	fixed := len(params)
	hasPack := fixed > 0 && params[fixed-1].IsPack
	if hasPack {
		fixed--
	}

	name, _ := ctx.Strings.Lookup(tmpl.Name)
	if len(args) > fixed && !hasPack {
		return nil, ctx.errorf(diag.TplArityMismatch, span,
			"%s takes %d template argument(s), got %d", name, fixed, len(args))
	}

	out := make([]GenericArgument, 0, len(args))
	out = append(out, args...)

	// Fill missing trailing fixed arguments from declared defaults. Defaults
	// may reference earlier parameters by name.
	for i := len(out); i < fixed; i++ {
		p := params[i]
		if p.Default == nil {
			return nil, ctx.errorf(diag.TplArityMismatch, span,
				"%s takes %d template argument(s), got %d", name, fixed, len(args))
		}
		def := *p.Default
		if def.Kind == ArgParamRef {
			resolved, ok := resolveDefaultRef(params, out, def.Template)
			if !ok {
				return nil, ctx.errorf(diag.TplArityMismatch, span,
					"default argument of %s refers to an unbound parameter", name)
			}
			def = resolved
		}
		out = append(out, def)
	}

	for i := 0; i < fixed; i++ {
		if !params[i].accepts(out[i]) {
			pname, _ := ctx.Strings.Lookup(params[i].Name)
			return nil, ctx.errorf(diag.TplBadValueArgument, span,
				"argument %d of %s does not fit parameter %s", i+1, name, pname)
		}
		// Canonicalize the declared type of value arguments so every route to
		// the same instantiation produces the same key.
		if out[i].Kind == ArgValue && params[i].ValueType.IsValid() {
			out[i].ValueType = params[i].ValueType
		}
	}
	return out, nil
}

func resolveDefaultRef(params []GenericParameter, bound []GenericArgument, ref source.StringID) (GenericArgument, bool) {
	for i, p := range params {
		if p.Name == ref && i < len(bound) {
			return bound[i], true
		}
	}
	return GenericArgument{}, false
}

// bindParams maps normalized arguments onto a parameter list, producing the
// scope bindings substitution runs under.
func (ctx *CompilationContext) bindParams(params []GenericParameter, args []GenericArgument, span source.Span) ([]symbols.Binding, error) {
	fixed := len(params)
	hasPack := fixed > 0 && params[fixed-1].IsPack
	if hasPack {
		fixed--
	}
	if (hasPack && len(args) < fixed) || (!hasPack && len(args) != fixed) {
		return nil, ctx.errorf(diag.TplArityMismatch, span,
			"expected %d template argument(s), got %d", fixed, len(args))
	}

	out := make([]symbols.Binding, 0, len(params))
	for i := 0; i < fixed; i++ {
		p := params[i]
		a := args[i]
		if !p.accepts(a) {
			pname, _ := ctx.Strings.Lookup(p.Name)
			return nil, ctx.errorf(diag.TplBadValueArgument, span,
				"argument %d does not fit parameter %s", i+1, pname)
		}
		switch a.Kind {
		case ArgType:
			out = append(out, symbols.TypeBinding(p.Name, a.Type))
		case ArgValue:
			declared := p.ValueType
			if declared == types.NoTypeID {
				declared = a.ValueType
			}
			out = append(out, symbols.ValueBinding(p.Name, a.Value, declared))
		case ArgTemplate:
			out = append(out, symbols.TemplateBinding(p.Name, a.Template))
		}
	}
	if hasPack {
		bind, err := packBindingOf(params[len(params)-1].Name, args[fixed:])
		if err != nil {
			return nil, ctx.errorf(diag.TplBadValueArgument, span, "%s", err.Error())
		}
		out = append(out, bind)
	}
	return out, nil
}

// packBindingOf flattens trailing arguments into one pack binding. The
// element slices stay parallel; a value element leaves its type slot invalid.
func packBindingOf(name source.StringID, rest []GenericArgument) (symbols.Binding, error) {
	bind := symbols.Binding{
		Name:       name,
		IsPack:     true,
		PackTypes:  make([]types.TypeID, len(rest)),
		PackValues: make([]int64, len(rest)),
	}
	for i, a := range rest {
		switch a.Kind {
		case ArgType:
			bind.PackTypes[i] = a.Type
		case ArgValue:
			bind.PackValues[i] = a.Value
		default:
			return symbols.Binding{}, fmt.Errorf("template-template arguments cannot join a parameter pack")
		}
	}
	return bind, nil
}
