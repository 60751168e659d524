package eval

import (
	"sort"
	"strings"

	"slipinterp/internal/value"
)

// installCollectionBuiltins wires the List/Dict/Str primitives every
// script starts with. Shape-only operations (len, keys, join, ...) are
// pure GenericFunctions; map/filter/reduce/sort-by call back into a
// supplied callable and so need the evaluator, making them nativeFns
// (call.go's distinction between pure operators and stateful builtins).
func installCollectionBuiltins(ev *Evaluator, root *value.Scope) {
	bindPure(ev, root, "len", 1, false, biLen)
	bindPure(ev, root, "first", 1, false, biFirst)
	bindPure(ev, root, "last", 1, false, biLast)
	bindPure(ev, root, "keys", 1, false, biKeys)
	bindPure(ev, root, "values", 1, false, biValues)
	bindPure(ev, root, "push", 2, false, biPush)
	bindPure(ev, root, "pop", 1, false, biPop)
	bindPure(ev, root, "copy", 1, false, biCopy)
	bindPure(ev, root, "join", 2, false, biJoin)
	bindPure(ev, root, "split", 2, false, biSplit)
	bindPure(ev, root, "concat", 2, false, biConcat)

	bindNative(root, "map", biMap)
	bindNative(root, "filter", biFilter)
	bindNative(root, "reduce", biReduce)
	bindNative(root, "sort-by", biSortBy)
}

func biLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "len", Message: "expected 1 argument"}
	}
	switch v := args[0].(type) {
	case *value.List:
		return value.Int(len(v.Items)), nil
	case *value.Dict:
		return value.Int(v.Len()), nil
	case value.Str:
		return value.Int(len([]rune(v.Text))), nil
	case value.Bytes:
		return value.Int(len(v.Data)), nil
	default:
		return nil, &TypeError{Op: "len", Message: "expected a list, dict, string, or bytes"}
	}
}

func biFirst(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "first", Message: "expected 1 argument"}
	}
	switch v := args[0].(type) {
	case *value.List:
		if len(v.Items) == 0 {
			return value.Nil, nil
		}
		return v.Items[0], nil
	case value.Str:
		r := []rune(v.Text)
		if len(r) == 0 {
			return value.Str{Text: ""}, nil
		}
		return value.Str{Text: string(r[0])}, nil
	default:
		return nil, &TypeError{Op: "first", Message: "expected a list or string"}
	}
}

func biLast(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "last", Message: "expected 1 argument"}
	}
	switch v := args[0].(type) {
	case *value.List:
		if len(v.Items) == 0 {
			return value.Nil, nil
		}
		return v.Items[len(v.Items)-1], nil
	case value.Str:
		r := []rune(v.Text)
		if len(r) == 0 {
			return value.Str{Text: ""}, nil
		}
		return value.Str{Text: string(r[len(r)-1])}, nil
	default:
		return nil, &TypeError{Op: "last", Message: "expected a list or string"}
	}
}

func biKeys(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "keys", Message: "expected 1 argument"}
	}
	switch v := args[0].(type) {
	case *value.Dict:
		out := make([]value.Value, len(v.Keys))
		for i, k := range v.Keys {
			out[i] = value.Str{Text: k}
		}
		return value.NewList(out), nil
	case *value.Scope:
		out := make([]value.Value, len(v.Order))
		for i, k := range v.Order {
			out[i] = value.Str{Text: k}
		}
		return value.NewList(out), nil
	default:
		return nil, &TypeError{Op: "keys", Message: "expected a dict or scope"}
	}
}

func biValues(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "values", Message: "expected 1 argument"}
	}
	switch v := args[0].(type) {
	case *value.Dict:
		out := make([]value.Value, len(v.Keys))
		for i, k := range v.Keys {
			out[i] = v.Values[k]
		}
		return value.NewList(out), nil
	case *value.Scope:
		out := make([]value.Value, len(v.Order))
		for i, k := range v.Order {
			out[i] = v.Data[k]
		}
		return value.NewList(out), nil
	default:
		return nil, &TypeError{Op: "values", Message: "expected a dict or scope"}
	}
}

// biPush appends in place (Lists are reference-semantics, §3) and
// returns the same list, so `items |push x` both mutates and chains.
func biPush(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "push", Message: "expected 2 arguments"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "push", Message: "expected a list"}
	}
	l.Items = append(l.Items, args[1])
	return l, nil
}

func biPop(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "pop", Message: "expected 1 argument"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "pop", Message: "expected a list"}
	}
	if len(l.Items) == 0 {
		return value.Nil, nil
	}
	last := l.Items[len(l.Items)-1]
	l.Items = l.Items[:len(l.Items)-1]
	return last, nil
}

func biCopy(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "copy", Message: "expected 1 argument"}
	}
	switch v := args[0].(type) {
	case *value.List:
		return v.Copy(), nil
	case *value.Dict:
		out := value.NewDict()
		for _, k := range v.Keys {
			out.Set(k, v.Values[k])
		}
		return out, nil
	case value.Str:
		return value.Str{Text: v.Text, Interp: v.Interp}, nil
	case value.Bytes:
		data := make([]byte, len(v.Data))
		copy(data, v.Data)
		return value.Bytes{Elem: v.Elem, Data: data}, nil
	default:
		return nil, &TypeError{Op: "copy", Message: "expected a list, dict, string, or bytes"}
	}
}

func biJoin(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "join", Message: "expected 2 arguments"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "join", Message: "expected a list"}
	}
	sep, ok := args[1].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "join", Message: "expected a string separator"}
	}
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		s, ok := it.(value.Str)
		if !ok {
			return nil, &TypeError{Op: "join", Message: "every item must be a string"}
		}
		parts[i] = s.Text
	}
	return value.Str{Text: strings.Join(parts, sep.Text)}, nil
}

func biSplit(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "split", Message: "expected 2 arguments"}
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "split", Message: "expected a string"}
	}
	sep, ok := args[1].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "split", Message: "expected a string separator"}
	}
	parts := strings.Split(s.Text, sep.Text)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.Str{Text: p}
	}
	return value.NewList(out), nil
}

func biConcat(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "concat", Message: "expected 2 arguments"}
	}
	a, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "concat", Message: "expected a list"}
	}
	b, ok := args[1].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "concat", Message: "expected a list"}
	}
	out := make([]value.Value, 0, len(a.Items)+len(b.Items))
	out = append(out, a.Items...)
	out = append(out, b.Items...)
	return value.NewList(out), nil
}

func biMap(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "map", Message: "expected 2 arguments"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "map", Message: "expected a list"}
	}
	out := make([]value.Value, len(l.Items))
	for i, item := range l.Items {
		v, err := ev.callValue(args[1], []value.Value{item}, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return value.NewList(out), nil
}

func biFilter(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "filter", Message: "expected 2 arguments"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "filter", Message: "expected a list"}
	}
	var out []value.Value
	for _, item := range l.Items {
		v, err := ev.callValue(args[1], []value.Value{item}, sc)
		if err != nil {
			return nil, err
		}
		if value.Truthy(v) {
			out = append(out, item)
		}
	}
	return value.NewList(out), nil
}

func biReduce(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return nil, &TypeError{Op: "reduce", Message: "expected 3 arguments"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "reduce", Message: "expected a list"}
	}
	acc := args[2]
	for _, item := range l.Items {
		v, err := ev.callValue(args[1], []value.Value{acc, item}, sc)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func biSortBy(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "sort-by", Message: "expected 2 arguments"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: "sort-by", Message: "expected a list"}
	}
	items := make([]value.Value, len(l.Items))
	copy(items, l.Items)
	keys := make([]value.Value, len(items))
	for i, it := range items {
		k, err := ev.callValue(args[1], []value.Value{it}, sc)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		c, err := compareOrd("sort-by", keys[idx[a]], keys[idx[b]])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	out := make([]value.Value, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return value.NewList(out), nil
}
