package types

// ContainsGenericParam reports whether id transitively mentions any unbound
// generic parameter or dependent name.
func (in *Interner) ContainsGenericParam(id TypeID) bool {
	return in.containsGenericParam(id, make(map[TypeID]struct{}))
}

func (in *Interner) containsGenericParam(id TypeID, seen map[TypeID]struct{}) bool {
	if id == NoTypeID {
		return false
	}
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}

	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindGenericParam, KindDependent:
		return true
	case KindPointer, KindReference, KindArray:
		return in.containsGenericParam(tt.Elem, seen)
	case KindNamed:
		info, ok := in.NamedInfo(id)
		if !ok {
			return false
		}
		for _, a := range info.TypeArgs {
			if in.containsGenericParam(a, seen) {
				return true
			}
		}
		return false
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return false
		}
		for _, p := range info.Params {
			if in.containsGenericParam(p, seen) {
				return true
			}
		}
		return in.containsGenericParam(info.Result, seen)
	default:
		return false
	}
}
