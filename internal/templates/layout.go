package templates

import (
	"quartz/internal/ast"
	"quartz/internal/diag"
	"quartz/internal/layout"
	"quartz/internal/source"
	"quartz/internal/types"
)

// computeLayout fills Size, Align, and field Offsets for a declared instance.
// Field types that are themselves template instances are driven to their own
// layout phase first; the recursion rides the shared depth guard, so a
// self-referential chain ends in TplRecursionLimit instead of a stack
// overflow.
func (ctx *CompilationContext) computeLayout(inst *Instance, span source.Span) error {
	if inst.layingOut {
		return ctx.errorf(diag.TplLayoutFailed, span,
			"%s contains itself without indirection", inst.Name)
	}
	inst.layingOut = true
	defer func() { inst.layingOut = false }()

	item := ctx.Builder.Item(inst.Decl)
	if item == nil {
		return ctx.errorf(diag.TplLayoutFailed, span, "instance %s lost its declaration", inst.Name)
	}
	data, ok := item.Data.(ast.StructData)
	if !ok {
		// Function instances have no object layout.
		return nil
	}

	fields := make([]types.TypeID, len(data.Fields))
	for i, f := range data.Fields {
		if ctx.Types.ContainsGenericParam(f.Type) {
			name, _ := ctx.Strings.Lookup(f.Name)
			return ctx.errorf(diag.TplLayoutFailed, f.Span,
				"field %s of %s is still generic at layout time", name, inst.Name)
		}
		fields[i] = f.Type
	}

	res, err := layout.Compute(ctx.Types, fields, instanceSizer{ctx: ctx, span: span})
	if err != nil {
		return ctx.errorf(diag.TplLayoutFailed, item.Span, "cannot lay out %s: %v", inst.Name, err)
	}
	inst.Size = res.Size
	inst.Align = res.Align
	inst.Offsets = res.Offsets
	return nil
}

// instanceSizer resolves nominal field types by instantiating them to the
// layout phase.
type instanceSizer struct {
	ctx  *CompilationContext
	span source.Span
}

func (s instanceSizer) SizeAlign(id types.TypeID) (uint32, uint32, error) {
	info, ok := s.ctx.Types.NamedInfo(id)
	if !ok {
		return 0, 0, errNotAClass
	}
	if _, ok := s.ctx.Registry.Template(info.Name); !ok {
		// A plain nominal type with no template behind it has no known
		// layout in this compilation.
		return 0, 0, errNotAClass
	}

	args := make([]GenericArgument, 0, len(info.TypeArgs)+len(info.ValueArgs))
	for _, t := range info.TypeArgs {
		args = append(args, TypeArg(t))
	}
	for _, v := range info.ValueArgs {
		args = append(args, ValueArg(v, types.NoTypeID))
	}
	inst, err := InstantiateToPhase(s.ctx, info.Name, args, PhaseLayout, s.span)
	if err != nil {
		return 0, 0, err
	}
	return inst.Size, inst.Align, nil
}

var errNotAClass = layoutError("nominal type has no computable layout")

type layoutError string

func (e layoutError) Error() string { return string(e) }
