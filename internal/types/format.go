package types

import (
	"fmt"
	"strconv"
	"strings"

	"quartz/internal/source"
)

// Format renders a TypeID for diagnostics and instantiation names.
func (in *Interner) Format(id TypeID, strs *source.Interner) string {
	if id == NoTypeID {
		return "<invalid>"
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return fmt.Sprintf("<type#%d>", id)
	}
	var b strings.Builder
	if tt.Const {
		b.WriteString("const ")
	}
	if tt.Volatile {
		b.WriteString("volatile ")
	}
	switch tt.Kind {
	case KindVoid:
		b.WriteString("void")
	case KindBool:
		b.WriteString("bool")
	case KindChar:
		b.WriteString("char")
	case KindInt:
		b.WriteString(intName("int", tt.Width))
	case KindUint:
		b.WriteString(intName("uint", tt.Width))
	case KindFloat:
		if tt.Width == Width64 {
			b.WriteString("double")
		} else {
			b.WriteString("float")
		}
	case KindString:
		b.WriteString("string")
	case KindPointer:
		b.WriteString(in.Format(tt.Elem, strs))
		b.WriteByte('*')
	case KindReference:
		b.WriteString(in.Format(tt.Elem, strs))
		b.WriteByte('&')
	case KindArray:
		b.WriteString(in.Format(tt.Elem, strs))
		if tt.Count == ArrayUnsized {
			b.WriteString("[]")
		} else {
			b.WriteByte('[')
			b.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
			b.WriteByte(']')
		}
	case KindNamed:
		info, _ := in.NamedInfo(id)
		b.WriteString(lookupName(strs, info.Name))
		if len(info.TypeArgs) > 0 || len(info.ValueArgs) > 0 {
			b.WriteByte('<')
			for i, a := range info.TypeArgs {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(in.Format(a, strs))
			}
			for i, v := range info.ValueArgs {
				if i > 0 || len(info.TypeArgs) > 0 {
					b.WriteString(", ")
				}
				b.WriteString(strconv.FormatInt(v, 10))
			}
			b.WriteByte('>')
		}
	case KindGenericParam:
		info, _ := in.ParamInfo(id)
		b.WriteString(lookupName(strs, info.Name))
	case KindDependent:
		info, _ := in.DependentInfo(id)
		b.WriteString(in.Format(info.Base, strs))
		b.WriteString("::")
		b.WriteString(lookupName(strs, info.Member))
	case KindFn:
		info, _ := in.FnInfo(id)
		b.WriteString("fn(")
		for i, p := range info.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(in.Format(p, strs))
		}
		b.WriteString(") -> ")
		b.WriteString(in.Format(info.Result, strs))
	default:
		b.WriteString(tt.Kind.String())
	}
	return b.String()
}

func intName(base string, w Width) string {
	switch w {
	case WidthAny, Width32:
		return base
	default:
		return base + strconv.Itoa(int(w))
	}
}

func lookupName(strs *source.Interner, id source.StringID) string {
	if strs == nil {
		return fmt.Sprintf("name#%d", id)
	}
	s, ok := strs.Lookup(id)
	if !ok {
		return fmt.Sprintf("name#%d", id)
	}
	return s
}
