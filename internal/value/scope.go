package value

// TypeID is a monotonically-allocated identifier assigned to a Scope
// at christening (§4.6), unique within one interpreter instance.
type TypeID uint64

// Meta holds a Scope's reserved metadata. The field set mirrors the
// reserved meta keys from §3 (parent, mixins, name, type_id, doc,
// type, examples, guards); keeping them as typed fields rather than a
// generic map catches the inherit-once and mixin-append rules at the
// Go type level instead of via string-keyed lookups everywhere.
type Meta struct {
	Parent   *Scope   // meta.parent; set at most once (inherit-once rule, §4.7)
	Mixins   []*Scope // meta.mixins; ordered, append-only via mixin()
	Name     string   // meta.name; set at christening
	TypeID   TypeID   // meta.type_id; 0 means "not yet christened"
	Doc      string   // meta.doc
	Type     Value    // meta.type; used for type-alias Scopes bound to a Sig
	Examples []Sig    // meta.examples; example signatures for synthesis/docs
	Guards   []Code   // meta.guards; guard blocks, when the Scope itself is a method-carrying object
}

// Scope is a mutable, lexically-linked environment holding user data
// and reserved metadata. Aliasing a Scope shares identity: it is
// always handled by pointer.
type Scope struct {
	Data          map[string]Value
	Order         []string // insertion order of Data keys, for deterministic iteration
	Meta          Meta
	LexicalParent *Scope
}

func (*Scope) valueTag() {}

// NewScope allocates an empty Scope with the given lexical parent
// (nil for a root scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Data:          make(map[string]Value),
		LexicalParent: parent,
	}
}

// GetOwn looks up name in this Scope's own data map only (no chain
// walk, no mixin/parent fallback) — used for simple-binding writes
// and for the first step of the property lookup chain (§4.7).
func (s *Scope) GetOwn(name string) (Value, bool) {
	v, ok := s.Data[name]
	return v, ok
}

// SetOwn writes name directly into this Scope's own data map.
func (s *Scope) SetOwn(name string, v Value) {
	if _, exists := s.Data[name]; !exists {
		s.Order = append(s.Order, name)
	}
	s.Data[name] = v
}

// DeleteOwn removes name from this Scope's own data map; ok reports
// whether it was present.
func (s *Scope) DeleteOwn(name string) bool {
	if _, exists := s.Data[name]; !exists {
		return false
	}
	delete(s.Data, name)
	for i, k := range s.Order {
		if k == name {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
	return true
}

// IsEmpty reports whether the Scope has no own bindings, used by the
// cascading-empty-Scope pruning rule on del-path (§3, §4.6).
func (s *Scope) IsEmpty() bool {
	return len(s.Data) == 0
}

// IsChristened reports whether the Scope has been assigned a TypeID.
func (s *Scope) IsChristened() bool {
	return s.Meta.TypeID != 0
}
