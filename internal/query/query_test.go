package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
)

// fakeEvalCode ignores sc and returns the single literal term a constCode
// block holds — tests only need fixed bounds/indices, not a real
// evaluator to resolve general expressions.
func fakeEvalCode(code value.Code, _ *value.Scope) (value.Value, error) {
	if len(code.Exprs) == 0 || len(code.Exprs[0]) == 0 {
		return value.Nil, nil
	}
	return code.Exprs[0][0], nil
}

func constCode(v value.Value) value.Code {
	return value.Code{Exprs: []value.Expr{{v}}}
}

func intsList(vals ...int) *value.List {
	items := make([]value.Value, len(vals))
	for i, n := range vals {
		items[i] = value.Int(n)
	}
	return value.NewList(items)
}

// TestResolve_SliceThenSimple exercises View materialization over a
// chain of two QueryNodes (§4.5 equivalence: materializing to values
// equals resolving the source then applying each node left to right).
func TestResolve_SliceThenSimple(t *testing.T) {
	src := intsList(10, 20, 30, 40, 50)
	v := &value.View{
		Source: src,
		QueryPath: []value.QueryNode{
			{Kind: value.QuerySlice, Start: constCode(value.Int(1)), End: constCode(value.Int(4))},
			{Kind: value.QuerySimple, Index: constCode(value.Int(1))},
		},
	}

	got, err := Resolve(v, fakeEvalCode, nil, nil)
	require.NoError(t, err)

	want := value.Int(30)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

// TestResolve_FilterKeepsMatchingItemsInOrder covers the Filter
// QueryNode contract (§4.5): matching items are kept in their original
// order, and an empty source yields an empty result (§8 boundary
// behavior).
func TestResolve_FilterKeepsMatchingItemsInOrder(t *testing.T) {
	src := intsList(10, 20, 30, 40, 50)

	calls := 0
	keepEven := func(item value.Value, node value.QueryNode) (bool, error) {
		calls++
		n := int(item.(value.Int))
		return n%20 == 0, nil
	}

	v := &value.View{
		Source:    src,
		QueryPath: []value.QueryNode{{Kind: value.QueryFilter, Op: "="}},
	}

	got, err := Resolve(v, fakeEvalCode, keepEven, nil)
	require.NoError(t, err)
	require.Equal(t, 5, calls)

	gotList, ok := got.(*value.List)
	require.True(t, ok)

	want := []value.Value{value.Int(20), value.Int(40)}
	if diff := cmp.Diff(want, gotList.Items); diff != "" {
		t.Fatalf("filtered items mismatch (-want +got):\n%s", diff)
	}

	empty := &value.View{Source: value.NewList(nil), QueryPath: v.QueryPath}
	gotEmpty, err := Resolve(empty, fakeEvalCode, keepEven, nil)
	require.NoError(t, err)
	emptyList, ok := gotEmpty.(*value.List)
	require.True(t, ok)
	require.Empty(t, emptyList.Items)
}

// TestResolveToLocations_WritebackMatchesResolve covers the View
// equivalence invariant (§8): reading back through the locations
// ResolveToLocations returns equals materializing the same query to
// values directly.
func TestResolveToLocations_WritebackMatchesResolve(t *testing.T) {
	src := intsList(1, 2, 3, 4, 5)
	v := &value.View{
		Source:    src,
		QueryPath: []value.QueryNode{{Kind: value.QuerySlice, Start: constCode(value.Int(1)), End: constCode(value.Int(3))}},
	}

	resolved, err := Resolve(v, fakeEvalCode, nil, nil)
	require.NoError(t, err)
	resolvedList, ok := resolved.(*value.List)
	require.True(t, ok)

	locs, err := ResolveToLocations(v, fakeEvalCode, nil, nil)
	require.NoError(t, err)

	readBack := make([]value.Value, len(locs))
	for i, l := range locs {
		val, ok := l.Get()
		require.True(t, ok)
		readBack[i] = val
	}

	if diff := cmp.Diff(resolvedList.Items, readBack); diff != "" {
		t.Fatalf("location read-back mismatch (-resolve +locations):\n%s", diff)
	}
}
