package templates

import (
	"strconv"
	"strings"

	"quartz/internal/source"
	"quartz/internal/types"
)

// Namer derives a stable human-readable name for an instantiation. The name
// feeds presentation and linkage output only; identity always goes through
// InstantiationKey.
type Namer interface {
	InstanceName(base source.StringID, args []GenericArgument, in *types.Interner, strs *source.Interner) string
}

// DefaultNamer renders `Base<arg, arg>` with source-level type spellings.
type DefaultNamer struct{}

func (DefaultNamer) InstanceName(base source.StringID, args []GenericArgument, in *types.Interner, strs *source.Interner) string {
	name, _ := strs.Lookup(base)
	if len(args) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		switch a.Kind {
		case ArgType:
			b.WriteString(in.Format(a.Type, strs))
		case ArgValue:
			b.WriteString(strconv.FormatInt(a.Value, 10))
		case ArgTemplate, ArgParamRef:
			s, _ := strs.Lookup(a.Template)
			b.WriteString(s)
		}
	}
	b.WriteByte('>')
	return b.String()
}
