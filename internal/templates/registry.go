package templates

import (
	"fmt"

	"quartz/internal/ast"
	"quartz/internal/constexpr"
	"quartz/internal/source"
	"quartz/internal/symbols"
	"quartz/internal/types"
)

// Template is a registered primary template: a class or function declaration
// parameterized over Params.
type Template struct {
	Name   source.StringID
	Params []GenericParameter
	Decl   ast.ItemID
	Span   source.Span
}

// Specialization is a user-provided alternative body for specific argument
// shapes. A full specialization has no parameters of its own and its Patterns
// are entirely concrete; a partial one declares Params bound by matching its
// Patterns against the use-site arguments.
type Specialization struct {
	Owner    source.StringID
	Params   []GenericParameter
	Patterns []GenericArgument
	Decl     ast.ItemID
	Span     source.Span
}

// IsFull reports whether the specialization fixes every argument.
func (s *Specialization) IsFull() bool {
	return len(s.Params) == 0
}

// Instance is one cached instantiation record. Creation is at-most-once per
// key; all later requests observe the same record and only advance its phase.
type Instance struct {
	Key      InstantiationKey
	Name     string
	Template *Template
	// Spec is nil when the primary body was selected.
	Spec *Specialization
	Args []GenericArgument

	// Bindings and Params capture the scope the body substitutes under, so
	// deferred members can re-enter it later.
	Bindings []symbols.Binding
	Params   []GenericParameter

	Phase Phase
	// Decl is the substituted declaration, built at PhaseDeclared.
	Decl ast.ItemID
	// Type is the interned nominal type of this instance.
	Type types.TypeID

	Size    uint32
	Align   uint32
	Offsets []uint32

	Deferred []DeferredEntry

	layingOut bool

	aliases map[source.StringID]types.TypeID
	nested  map[source.StringID]types.TypeID
	statics map[source.StringID]constexpr.Value
}

// StaticValue returns the resolved initializer of a static member, when that
// member has been forced already.
func (inst *Instance) StaticValue(name source.StringID) (constexpr.Value, bool) {
	v, ok := inst.statics[name]
	return v, ok
}

type packFactKey struct {
	owner source.StringID
	pack  source.StringID
}

// Registry holds every template declaration and instantiation of one
// compilation. It is not safe for concurrent use; the whole engine runs
// single-threaded per compilation.
type Registry struct {
	templates map[source.StringID]*Template
	specs     map[source.StringID][]*Specialization
	overloads map[source.StringID][]*Template

	instances map[InstantiationKey]*Instance
	order     []InstantiationKey

	packSizes map[packFactKey]int
}

func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[source.StringID]*Template),
		specs:     make(map[source.StringID][]*Specialization),
		overloads: make(map[source.StringID][]*Template),
		instances: make(map[InstantiationKey]*Instance),
		packSizes: make(map[packFactKey]int),
	}
}

// AddTemplate registers a primary template. Redeclaring a name is an error.
func (r *Registry) AddTemplate(t *Template) error {
	if _, ok := r.templates[t.Name]; ok {
		return fmt.Errorf("template redeclared")
	}
	if err := validateParams(t.Params); err != nil {
		return err
	}
	r.templates[t.Name] = t
	return nil
}

// AddSpecialization registers a full or partial specialization for an
// already-registered primary.
func (r *Registry) AddSpecialization(s *Specialization) error {
	primary, ok := r.templates[s.Owner]
	if !ok {
		return fmt.Errorf("specialization of an unregistered template")
	}
	if err := validateParams(s.Params); err != nil {
		return err
	}
	if !patternArityFits(primary.Params, s.Patterns) {
		return fmt.Errorf("specialization pattern arity does not fit the primary")
	}
	r.specs[s.Owner] = append(r.specs[s.Owner], s)
	return nil
}

// AddOverload registers one function template under a shared name. Overloads
// form the candidate set walked by overload resolution.
func (r *Registry) AddOverload(t *Template) error {
	if err := validateParams(t.Params); err != nil {
		return err
	}
	r.overloads[t.Name] = append(r.overloads[t.Name], t)
	return nil
}

func (r *Registry) Template(name source.StringID) (*Template, bool) {
	t, ok := r.templates[name]
	return t, ok
}

func (r *Registry) Specializations(name source.StringID) []*Specialization {
	return r.specs[name]
}

// AllCandidates returns the overload set for a function name, in declaration
// order.
func (r *Registry) AllCandidates(name source.StringID) []*Template {
	return r.overloads[name]
}

// Instance returns the cached record for a key.
func (r *Registry) Instance(key InstantiationKey) (*Instance, bool) {
	inst, ok := r.instances[key]
	return inst, ok
}

// Register stores a new instance. When the key is already present the
// existing record is returned unchanged and created is false; callers rely on
// this for the at-most-once contract.
func (r *Registry) Register(inst *Instance) (*Instance, bool) {
	if existing, ok := r.instances[inst.Key]; ok {
		return existing, false
	}
	if inst.aliases == nil {
		inst.aliases = make(map[source.StringID]types.TypeID)
	}
	if inst.nested == nil {
		inst.nested = make(map[source.StringID]types.TypeID)
	}
	if inst.statics == nil {
		inst.statics = make(map[source.StringID]constexpr.Value)
	}
	r.instances[inst.Key] = inst
	r.order = append(r.order, inst.Key)
	return inst, true
}

// InstanceCount returns how many instantiations have been registered.
// Speculative checks compare counts around a rewind to know whether any
// arena nodes are now owned by a cached instance.
func (r *Registry) InstanceCount() int {
	return len(r.order)
}

// Instances returns every instance in registration order. The slice is the
// driver's program list; exactly one entry exists per key.
func (r *Registry) Instances() []*Instance {
	out := make([]*Instance, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.instances[k])
	}
	return out
}

// SetPackSize records an externally-derived pack arity fact, consulted when
// no live binding covers the pack.
func (r *Registry) SetPackSize(owner, pack source.StringID, n int) {
	r.packSizes[packFactKey{owner: owner, pack: pack}] = n
}

// PackSizeFact looks up a recorded pack arity.
func (r *Registry) PackSizeFact(owner, pack source.StringID) (int, bool) {
	n, ok := r.packSizes[packFactKey{owner: owner, pack: pack}]
	return n, ok
}

func validateParams(params []GenericParameter) error {
	for i, p := range params {
		if p.IsPack && i != len(params)-1 {
			return fmt.Errorf("parameter pack must be the trailing parameter")
		}
	}
	return nil
}

// patternArityFits checks a specialization pattern list against the primary's
// parameter list: exact arity, or at least the non-pack prefix when the
// primary ends in a pack.
func patternArityFits(primary []GenericParameter, patterns []GenericArgument) bool {
	if len(primary) == 0 {
		return len(patterns) == 0
	}
	last := primary[len(primary)-1]
	if last.IsPack {
		return len(patterns) >= len(primary)-1
	}
	return len(patterns) == len(primary)
}
