package templates

// Phase is the lifecycle stage of one instantiation. Phases only ever move
// forward; requesting an earlier phase on a cached instance is a no-op.
type Phase uint8

const (
	PhaseNone Phase = iota
	// PhaseDeclared: the declaration shell exists with substituted member
	// types; bodies and static initializers remain deferred.
	PhaseDeclared
	// PhaseLayout: field offsets, size, and alignment are computed.
	PhaseLayout
	// PhaseFull: static initializers are resolved. Method bodies, nested
	// types, and aliases still resolve on first reference.
	PhaseFull
)

func (p Phase) String() string {
	switch p {
	case PhaseDeclared:
		return "declared"
	case PhaseLayout:
		return "layout"
	case PhaseFull:
		return "full"
	default:
		return "none"
	}
}
