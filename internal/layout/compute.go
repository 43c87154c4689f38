// Package layout computes sizes, alignments, and field offsets for concrete
// class instances using C-style rules: each field aligns to its own
// alignment, the struct aligns to its widest member, and the total size
// rounds up to that alignment.
package layout

import (
	"fmt"

	"quartz/internal/types"
)

// PointerSize is the byte size of pointers and references on the target.
const PointerSize = 8

// Sizer supplies size and alignment for nominal types the walker cannot
// decompose itself; the instantiation engine implements it by driving the
// referenced instance to its layout phase.
type Sizer interface {
	SizeAlign(id types.TypeID) (size, align uint32, err error)
}

// Result is the computed layout of one field list.
type Result struct {
	Size    uint32
	Align   uint32
	Offsets []uint32
}

// Compute lays out fields in declaration order.
func Compute(in *types.Interner, fields []types.TypeID, sizer Sizer) (Result, error) {
	var offset uint32
	res := Result{Align: 1, Offsets: make([]uint32, 0, len(fields))}
	for i, f := range fields {
		size, align, err := SizeAlign(in, f, sizer)
		if err != nil {
			return Result{}, fmt.Errorf("field %d: %w", i, err)
		}
		offset = alignUp(offset, align)
		res.Offsets = append(res.Offsets, offset)
		offset += size
		if align > res.Align {
			res.Align = align
		}
	}
	res.Size = alignUp(offset, res.Align)
	return res, nil
}

// SizeAlign resolves one type's size and alignment.
func SizeAlign(in *types.Interner, id types.TypeID, sizer Sizer) (uint32, uint32, error) {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0, 0, fmt.Errorf("layout: invalid type")
	}
	switch tt.Kind {
	case types.KindBool, types.KindChar:
		return 1, 1, nil
	case types.KindInt, types.KindUint, types.KindFloat:
		n := widthBytes(tt.Width)
		return n, n, nil
	case types.KindPointer, types.KindReference:
		return PointerSize, PointerSize, nil
	case types.KindString:
		// Pointer plus length, pointer-aligned.
		return 2 * PointerSize, PointerSize, nil
	case types.KindArray:
		if tt.Count == types.ArrayUnsized {
			return 0, 0, fmt.Errorf("layout: array bound is not a constant")
		}
		size, align, err := SizeAlign(in, tt.Elem, sizer)
		if err != nil {
			return 0, 0, err
		}
		return size * tt.Count, align, nil
	case types.KindNamed:
		if sizer == nil {
			return 0, 0, fmt.Errorf("layout: no sizer for nominal type")
		}
		return sizer.SizeAlign(id)
	case types.KindGenericParam, types.KindDependent:
		return 0, 0, fmt.Errorf("layout: type is still generic")
	default:
		return 0, 0, fmt.Errorf("layout: %s has no object layout", tt.Kind)
	}
}

func widthBytes(w types.Width) uint32 {
	switch w {
	case types.Width8:
		return 1
	case types.Width16:
		return 2
	case types.Width64:
		return 8
	default:
		// 32-bit and platform-default widths.
		return 4
	}
}

func alignUp(n, align uint32) uint32 {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}
