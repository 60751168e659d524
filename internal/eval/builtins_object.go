package eval

import (
	"slipinterp/internal/object"
	"slipinterp/internal/value"
)

// installObjectBuiltins wires the prototype object model's verbs
// (§4.7): inherit/mixin mutate a Scope's meta in place; create builds a
// fresh Scope from a parent/mixin/data recipe; clone duplicates a
// Scope's own fields into a new, unchristened identity.
func installObjectBuiltins(ev *Evaluator, root *value.Scope) {
	bindPure(ev, root, "inherit", 2, false, biInherit)
	bindPure(ev, root, "mixin", 1, true, biMixin)
	bindPure(ev, root, "clone", 1, false, biClone)

	create := &value.GenericFunction{
		Name: "create",
		Meta: value.NewDict(),
		Methods: []*value.Function{
			{Sig: value.Sig{Positional: []value.Param{{Name: "parent"}, {Name: "data"}}}, Native: biCreate2},
			{Sig: value.Sig{Positional: []value.Param{{Name: "parent"}, {Name: "mixins"}, {Name: "data"}}}, Native: biCreate3},
		},
	}
	root.SetOwn("create", create)
	ev.Builtins.Register("create", create)
}

func biInherit(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "inherit", Message: "expected 2 arguments"}
	}
	target, ok := args[0].(*value.Scope)
	if !ok {
		return nil, &TypeError{Op: "inherit", Message: "expected a scope target"}
	}
	parent, ok := args[1].(*value.Scope)
	if !ok {
		return nil, &TypeError{Op: "inherit", Message: "expected a scope parent"}
	}
	if err := object.Inherit(target, parent); err != nil {
		return nil, err
	}
	return target, nil
}

// biMixin appends every source scope to target's meta.mixins, never
// copying their data (§4.7).
func biMixin(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, &TypeError{Op: "mixin", Message: "expected a scope target"}
	}
	target, ok := args[0].(*value.Scope)
	if !ok {
		return nil, &TypeError{Op: "mixin", Message: "expected a scope target"}
	}
	sources := make([]*value.Scope, 0, len(args)-1)
	for _, a := range args[1:] {
		s, ok := a.(*value.Scope)
		if !ok {
			return nil, &TypeError{Op: "mixin", Message: "every mixin source must be a scope"}
		}
		sources = append(sources, s)
	}
	if err := object.Mixin(target, sources...); err != nil {
		return nil, err
	}
	return target, nil
}

// biClone duplicates a Scope's own bindings into a fresh, unchristened
// Scope — a blank instance sharing no identity with the original,
// distinct from copy() which handles the plain value collections.
// Every List/Dict/Scope-valued binding is itself deep-copied so the
// result shares no interior mutability with the source (§8: clone(scope)
// yields a deep copy).
func biClone(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "clone", Message: "expected 1 argument"}
	}
	s, ok := args[0].(*value.Scope)
	if !ok {
		return nil, &TypeError{Op: "clone", Message: "expected a scope"}
	}
	out := value.NewScope(s.LexicalParent)
	for _, k := range s.Order {
		out.SetOwn(k, deepCopyValue(s.Data[k]))
	}
	return out, nil
}

// deepCopyValue recursively copies the mutable collection types so that
// no interior list, dict, or scope is shared between source and result.
// Scalars and other reference types (functions, views, bytes) are
// returned as-is; they're either immutable or have no "own" interior
// state clone is meant to sever.
func deepCopyValue(v value.Value) value.Value {
	switch c := v.(type) {
	case *value.List:
		items := make([]value.Value, len(c.Items))
		for i, it := range c.Items {
			items[i] = deepCopyValue(it)
		}
		return value.NewList(items)
	case *value.Dict:
		out := value.NewDict()
		for _, k := range c.Keys {
			out.Set(k, deepCopyValue(c.Values[k]))
		}
		return out
	case *value.Scope:
		out := value.NewScope(c.LexicalParent)
		for _, k := range c.Order {
			out.SetOwn(k, deepCopyValue(c.Data[k]))
		}
		return out
	default:
		return v
	}
}

// biCreate2 implements create(parent, data): a fresh Scope inheriting
// parent with data's keys copied in as own bindings.
func biCreate2(args []value.Value) (value.Value, error) {
	s := value.NewScope(nil)
	if parent, ok := args[0].(*value.Scope); ok && parent != nil {
		if err := object.Inherit(s, parent); err != nil {
			return nil, err
		}
	}
	if data, ok := args[1].(*value.Dict); ok {
		for _, k := range data.Keys {
			s.SetOwn(k, data.Values[k])
		}
	}
	return s, nil
}

// biCreate3 implements create(parent, mixins, data): as biCreate2, plus
// a list of mixin sources appended before data is applied.
func biCreate3(args []value.Value) (value.Value, error) {
	s := value.NewScope(nil)
	if parent, ok := args[0].(*value.Scope); ok && parent != nil {
		if err := object.Inherit(s, parent); err != nil {
			return nil, err
		}
	}
	if mixins, ok := args[1].(*value.List); ok {
		sources := make([]*value.Scope, 0, len(mixins.Items))
		for _, it := range mixins.Items {
			if m, ok := it.(*value.Scope); ok {
				sources = append(sources, m)
			}
		}
		if err := object.Mixin(s, sources...); err != nil {
			return nil, err
		}
	}
	if data, ok := args[2].(*value.Dict); ok {
		for _, k := range data.Keys {
			s.SetOwn(k, data.Values[k])
		}
	}
	return s, nil
}
