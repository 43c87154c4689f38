package templates

import (
	"quartz/internal/source"
)

// InstantiationKey identifies one instantiation: the template's name plus the
// normalized argument list rendered by ArgsKey. The key is the sole identity
// used for caching and deduplication; textual instance names are derived for
// presentation only and never compared.
type InstantiationKey struct {
	Name source.StringID
	Args string
}

// NewKey builds the key for a normalized argument list. Arguments must
// already have defaults applied and packs flattened; keys built from raw
// argument lists would alias distinct instantiations.
func NewKey(name source.StringID, args []GenericArgument) InstantiationKey {
	return InstantiationKey{Name: name, Args: ArgsKey(args)}
}
