// Package query implements the lazy View/query engine (§4.5): View
// construction is just data (value.View, defined in package value);
// this package does the work of turning a View's query_path into a
// concrete value or a writable list of locations, against a live
// Scope and evaluator callback supplied by package eval.
package query

import (
	"errors"
	"fmt"

	"slipinterp/internal/value"
)

// ErrBadIndex is wrapped by a QueryError when a Simple/Slice index
// doesn't resolve to a usable key type for the current collection.
var ErrBadIndex = errors.New("query index type mismatch")

// QueryError reports a query-resolution failure with a 500-class
// status (§6) — views fail at materialization time, not construction.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("query: %v", e.Err) }
func (e *QueryError) Unwrap() error  { return e.Err }
func (e *QueryError) Status() int    { return 500 }

// ExprEvaluator runs a Code block (an Index/Start/End expression) in
// sc and returns its value, used for Simple/Slice bounds.
type ExprEvaluator func(code value.Code, sc *value.Scope) (value.Value, error)

// FilterEvaluator evaluates a Filter QueryNode's predicate against one
// collection item, returning its truthiness. Package eval supplies
// this: it binds the item's own fields as plain names in an overlay
// scope whose lexical parent is the enclosing scope, evaluates the
// node's RHS there, and compares the item to that value with the
// node's Op. Dot-prefixed names are not supported, and an item field
// shadows an outer binding of the same name.
type FilterEvaluator func(item value.Value, node value.QueryNode) (bool, error)

// Location is one writable pointer a resolved View addresses: either
// a List index or a Dict/Scope key.
type Location struct {
	List  *value.List
	Dict  *value.Dict
	Scope *value.Scope
	Index int
	Key   string
}

// Get reads the value a Location currently points to.
func (l Location) Get() (value.Value, bool) {
	switch {
	case l.List != nil:
		return l.List.Get(l.Index)
	case l.Dict != nil:
		return l.Dict.Get(l.Key)
	case l.Scope != nil:
		return l.Scope.GetOwn(l.Key)
	}
	return nil, false
}

// Set writes v to the location a Location currently points to.
func (l Location) Set(v value.Value) {
	switch {
	case l.List != nil:
		l.List.Set(l.Index, v)
	case l.Dict != nil:
		l.Dict.Set(l.Key, v)
	case l.Scope != nil:
		l.Scope.SetOwn(l.Key, v)
	}
}

// Resolve materializes a View by walking its QueryPath over Source in
// order (§4.5 materialization contexts).
func Resolve(v *value.View, evalCode ExprEvaluator, evalFilter FilterEvaluator, sc *value.Scope) (value.Value, error) {
	cur := v.Source
	for _, node := range v.QueryPath {
		next, err := applyNode(cur, node, evalCode, evalFilter, sc)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// ResolveToLocations materializes a View into its addressable
// locations for writes (§4.5 View.resolve_to_locations). Only the
// final QueryNode's locations are returned; intervening nodes are
// resolved to concrete values as in Resolve.
func ResolveToLocations(v *value.View, evalCode ExprEvaluator, evalFilter FilterEvaluator, sc *value.Scope) ([]Location, error) {
	if len(v.QueryPath) == 0 {
		return nil, &QueryError{Err: errors.New("view has no query path")}
	}
	cur := v.Source
	for _, node := range v.QueryPath[:len(v.QueryPath)-1] {
		next, err := applyNode(cur, node, evalCode, evalFilter, sc)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return locationsForNode(cur, v.QueryPath[len(v.QueryPath)-1], evalCode, evalFilter, sc)
}

func applyNode(cur value.Value, node value.QueryNode, evalCode ExprEvaluator, evalFilter FilterEvaluator, sc *value.Scope) (value.Value, error) {
	switch node.Kind {
	case value.QuerySimple:
		return applySimple(cur, node, evalCode, sc)
	case value.QuerySlice:
		return applySlice(cur, node, evalCode, sc)
	case value.QueryFilter:
		return applyFilter(cur, node, evalFilter)
	default:
		return nil, &QueryError{Err: fmt.Errorf("unknown query kind %v", node.Kind)}
	}
}

func applySimple(cur value.Value, node value.QueryNode, evalCode ExprEvaluator, sc *value.Scope) (value.Value, error) {
	idx, err := evalCode(node.Index, sc)
	if err != nil {
		return nil, err
	}
	switch c := cur.(type) {
	case *value.List:
		i, ok := asInt(idx)
		if !ok {
			return nil, &QueryError{Err: ErrBadIndex}
		}
		v, ok := c.Get(i)
		if !ok {
			return nil, &QueryError{Err: fmt.Errorf("index %d out of range", i)}
		}
		return v, nil
	case *value.Dict:
		k, ok := asString(idx)
		if !ok {
			return nil, &QueryError{Err: ErrBadIndex}
		}
		v, ok := c.Get(k)
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case *value.Scope:
		k, ok := asString(idx)
		if !ok {
			return nil, &QueryError{Err: ErrBadIndex}
		}
		v, ok := c.GetOwn(k)
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	default:
		return nil, &QueryError{Err: fmt.Errorf("cannot index %s", value.TypeName(cur))}
	}
}

func applySlice(cur value.Value, node value.QueryNode, evalCode ExprEvaluator, sc *value.Scope) (value.Value, error) {
	l, ok := cur.(*value.List)
	if !ok {
		if s, ok := cur.(value.Str); ok {
			return sliceString(s, node, evalCode, sc)
		}
		return nil, &QueryError{Err: fmt.Errorf("slice requires a list or string, got %s", value.TypeName(cur))}
	}
	start, end, err := sliceBounds(len(l.Items), node, evalCode, sc)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return value.NewList(nil), nil
	}
	out := make([]value.Value, end-start)
	copy(out, l.Items[start:end])
	return value.NewList(out), nil
}

func sliceString(s value.Str, node value.QueryNode, evalCode ExprEvaluator, sc *value.Scope) (value.Value, error) {
	runes := []rune(s.Text)
	start, end, err := sliceBounds(len(runes), node, evalCode, sc)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return value.Str{Text: ""}, nil
	}
	return value.Str{Text: string(runes[start:end])}, nil
}

func sliceBounds(n int, node value.QueryNode, evalCode ExprEvaluator, sc *value.Scope) (int, int, error) {
	start, end := 0, n
	if node.Start.Exprs != nil {
		v, err := evalCode(node.Start, sc)
		if err != nil {
			return 0, 0, err
		}
		i, ok := asInt(v)
		if !ok {
			return 0, 0, &QueryError{Err: ErrBadIndex}
		}
		start = normalizeIndex(i, n)
	}
	if node.End.Exprs != nil {
		v, err := evalCode(node.End, sc)
		if err != nil {
			return 0, 0, err
		}
		i, ok := asInt(v)
		if !ok {
			return 0, 0, &QueryError{Err: ErrBadIndex}
		}
		end = normalizeIndex(i, n)
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	return start, end, nil
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

// applyFilter evaluates node's predicate over each element of the
// current collection, keeping matches in order (§4.5). The overlay
// scope construction is the caller's (package eval's) responsibility,
// threaded in via evalFilter.
func applyFilter(cur value.Value, node value.QueryNode, evalFilter FilterEvaluator) (value.Value, error) {
	items, asDict, keys, err := asCollection(cur)
	if err != nil {
		return nil, err
	}

	var kept []value.Value
	for i, item := range items {
		pass, err := evalFilter(item, node)
		if err != nil {
			return nil, err
		}
		if pass {
			if asDict {
				kept = append(kept, value.Str{Text: keys[i]})
			} else {
				kept = append(kept, item)
			}
		}
	}
	return value.NewList(kept), nil
}

func asCollection(cur value.Value) (items []value.Value, isDict bool, keys []string, err error) {
	switch c := cur.(type) {
	case *value.List:
		return c.Items, false, nil, nil
	case *value.Dict:
		items := make([]value.Value, len(c.Keys))
		for i, k := range c.Keys {
			items[i] = c.Values[k]
		}
		return items, true, c.Keys, nil
	default:
		return nil, false, nil, &QueryError{Err: fmt.Errorf("filter requires a list or dict, got %s", value.TypeName(cur))}
	}
}

func locationsForNode(cur value.Value, node value.QueryNode, evalCode ExprEvaluator, evalFilter FilterEvaluator, sc *value.Scope) ([]Location, error) {
	switch node.Kind {
	case value.QuerySimple:
		idx, err := evalCode(node.Index, sc)
		if err != nil {
			return nil, err
		}
		switch c := cur.(type) {
		case *value.List:
			i, ok := asInt(idx)
			if !ok {
				return nil, &QueryError{Err: ErrBadIndex}
			}
			n := len(c.Items)
			if i < 0 {
				i += n
			}
			return []Location{{List: c, Index: i}}, nil
		case *value.Dict:
			k, ok := asString(idx)
			if !ok {
				return nil, &QueryError{Err: ErrBadIndex}
			}
			return []Location{{Dict: c, Key: k}}, nil
		case *value.Scope:
			k, ok := asString(idx)
			if !ok {
				return nil, &QueryError{Err: ErrBadIndex}
			}
			return []Location{{Scope: c, Key: k}}, nil
		}
		return nil, &QueryError{Err: fmt.Errorf("cannot address %s", value.TypeName(cur))}

	case value.QuerySlice:
		l, ok := cur.(*value.List)
		if !ok {
			return nil, &QueryError{Err: fmt.Errorf("slice assignment requires a list, got %s", value.TypeName(cur))}
		}
		start, end, err := sliceBounds(len(l.Items), node, evalCode, sc)
		if err != nil {
			return nil, err
		}
		locs := make([]Location, 0, end-start)
		for i := start; i < end; i++ {
			locs = append(locs, Location{List: l, Index: i})
		}
		return locs, nil

	case value.QueryFilter:
		items, isDict, keys, err := asCollection(cur)
		if err != nil {
			return nil, err
		}
		var locs []Location
		for i, item := range items {
			pass, err := evalFilter(item, node)
			if err != nil {
				return nil, err
			}
			if !pass {
				continue
			}
			if isDict {
				locs = append(locs, Location{Dict: cur.(*value.Dict), Key: keys[i]})
			} else {
				locs = append(locs, Location{List: cur.(*value.List), Index: i})
			}
		}
		return locs, nil
	}
	return nil, &QueryError{Err: fmt.Errorf("unknown query kind %v", node.Kind)}
}

func asInt(v value.Value) (int, bool) {
	switch n := v.(type) {
	case value.Int:
		return int(n), true
	case value.Float:
		return int(n), true
	default:
		return 0, false
	}
}

func asString(v value.Value) (string, bool) {
	if s, ok := v.(value.Str); ok {
		return s.Text, true
	}
	return "", false
}
