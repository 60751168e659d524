// Package object implements the SLIP prototype object model:
// christening (first-assignment identity), inherit/mixin, and family
// set computation for dispatch (§4.6, §4.7, §4.8).
package object

import (
	"errors"
	"fmt"
	"sync"

	"slipinterp/internal/logging"
	"slipinterp/internal/scope"
	"slipinterp/internal/value"
)

// ErrAlreadyInherited is the sentinel behind InheritanceError when a
// target Scope already has meta.parent set (inherit-once rule).
var ErrAlreadyInherited = errors.New("scope already has a parent")

// ErrMixinNotScope is the sentinel behind a TypeError raised when
// mixin() is given a non-Scope source.
var ErrMixinNotScope = errors.New("mixin source must be a scope")

// InheritanceError wraps ErrAlreadyInherited with a §6 500-class status.
type InheritanceError struct {
	Target *value.Scope
}

func (e *InheritanceError) Error() string {
	name := e.Target.Meta.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("inherit: %s already has a parent: %v", name, ErrAlreadyInherited)
}

func (e *InheritanceError) Unwrap() error { return ErrAlreadyInherited }
func (e *InheritanceError) Status() int   { return 500 }

// TypeRegistry allocates monotonic TypeIDs at christening, keyed by the
// name string passed to Christen, mutex-guarded on the same pattern as
// a tool registry: a single map behind sync.Mutex. The evaluator passes
// the binding's simple name, not a canonical absolute path, so Scopes
// christened under the same name in different scopes share one key.
// Dispatch's family-set checks walk meta.parent/mixins and do not
// consult the registry.
type TypeRegistry struct {
	mu       sync.Mutex
	next     value.TypeID
	byPath   map[string]value.TypeID
	byTypeID map[value.TypeID]*value.Scope
}

// NewTypeRegistry returns an empty registry with IDs starting at 1 (0
// is reserved to mean "not yet christened").
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		next:     1,
		byPath:   make(map[string]value.TypeID),
		byTypeID: make(map[value.TypeID]*value.Scope),
	}
}

// Christen assigns a fresh TypeID to s if it does not already have
// one, recording it under canonicalPath. Re-christening the same
// Scope is a no-op (christening is triggered once, at first
// assignment, §4.6).
func (r *TypeRegistry) Christen(s *value.Scope, canonicalPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.IsChristened() {
		return
	}
	id := r.next
	r.next++
	s.Meta.TypeID = id
	s.Meta.Name = canonicalPath
	r.byPath[canonicalPath] = id
	r.byTypeID[id] = s
	logging.ObjectDebug("christened %q as type_id %d", canonicalPath, id)
}

// Count returns how many Scopes have been christened.
func (r *TypeRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTypeID)
}

// Lookup returns the christened Scope for a canonical path.
func (r *TypeRegistry) Lookup(canonicalPath string) (*value.Scope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPath[canonicalPath]
	if !ok {
		return nil, false
	}
	s, ok := r.byTypeID[id]
	return s, ok
}

// Inherit implements the inherit-once rule (§4.7): sets target's
// meta.parent to parent, failing if it is already set.
func Inherit(target, parent *value.Scope) error {
	if target.Meta.Parent != nil {
		return &InheritanceError{Target: target}
	}
	target.Meta.Parent = parent
	return nil
}

// Mixin appends sources to target's meta.mixins in order. mixin never
// copies — it stores the Scope references directly.
func Mixin(target *value.Scope, sources ...*value.Scope) error {
	for _, src := range sources {
		if src == nil {
			return fmt.Errorf("mixin: %w", ErrMixinNotScope)
		}
		target.Meta.Mixins = append(target.Meta.Mixins, src)
	}
	return nil
}

// PropertyLookup re-exports the §4.7 chain from package scope for
// callers that only import package object.
func PropertyLookup(s *value.Scope, name string) (value.Value, bool) {
	return scope.Property(s, name)
}

// FamilySet computes the dispatch family set of an argument value
// (§4.8): for a non-Scope, the singleton of its primitive type name;
// for a Scope, the scope itself plus every ancestor reachable via
// meta.parent, plus every mixin and each mixin's own ancestor chain,
// transitively de-duplicated.
func FamilySet(v value.Value) map[interface{}]bool {
	s, isScope := v.(*value.Scope)
	if !isScope {
		return map[interface{}]bool{value.TypeName(v): true}
	}

	set := make(map[interface{}]bool)
	collectFamily(s, set)
	return set
}

func collectFamily(s *value.Scope, set map[interface{}]bool) {
	if s == nil || set[s] {
		return
	}
	set[s] = true
	for _, m := range s.Meta.Mixins {
		collectFamily(m, set)
	}
	if s.Meta.Parent != nil {
		collectFamily(s.Meta.Parent, set)
	}
}

// FamilyContains reports whether candidate (a *value.Scope or a
// primitive type name string) is a member of v's family set.
func FamilyContains(v value.Value, candidate interface{}) bool {
	return FamilySet(v)[candidate]
}
