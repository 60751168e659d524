package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
)

// TestBiClone_DeepCopiesNestedCollections is a regression test: clone
// used to share the List/Dict/Scope values it copied from its source,
// so mutating the original after cloning leaked into the clone. §4.7
// requires clone to be a genuine deep copy, distinct from copy()'s
// intentionally shallow behavior.
func TestBiClone_DeepCopiesNestedCollections(t *testing.T) {
	inner := value.NewScope(nil)
	inner.SetOwn("n", value.Int(1))

	nestedList := value.NewList([]value.Value{value.Int(1), value.Int(2)})

	src := value.NewScope(nil)
	src.SetOwn("list", value.NewList([]value.Value{nestedList}))
	src.SetOwn("dict", value.NewDict())
	src.SetOwn("scope", inner)

	d, _ := src.GetOwn("dict")
	d.(*value.Dict).Set("k", value.Int(10))

	out, err := biClone([]value.Value{src})
	require.NoError(t, err)
	clone, ok := out.(*value.Scope)
	require.True(t, ok)
	require.NotSame(t, src, clone)

	cl, _ := clone.GetOwn("list")
	cloneList := cl.(*value.List)

	srcList, _ := src.GetOwn("list")
	require.NotSame(t, srcList.(*value.List), cloneList)

	cloneNested := cloneList.Items[0].(*value.List)
	require.NotSame(t, nestedList, cloneNested)

	nestedList.Items[0] = value.Int(999)
	require.Equal(t, value.Int(1), cloneNested.Items[0])

	cd, _ := clone.GetOwn("dict")
	cloneDict := cd.(*value.Dict)
	d.(*value.Dict).Set("k", value.Int(-1))
	v, _ := cloneDict.Get("k")
	require.Equal(t, value.Int(10), v)

	cs, _ := clone.GetOwn("scope")
	cloneScope := cs.(*value.Scope)
	require.NotSame(t, inner, cloneScope)
	inner.SetOwn("n", value.Int(2))
	n, _ := cloneScope.GetOwn("n")
	require.Equal(t, value.Int(1), n)
}

// TestBiClone_RejectsNonScope covers the argument-type guard.
func TestBiClone_RejectsNonScope(t *testing.T) {
	_, err := biClone([]value.Value{value.Int(1)})
	require.Error(t, err)
	_, ok := err.(*TypeError)
	require.True(t, ok)
}

// TestBiCopy_StaysShallow pins copy()'s existing shallow-copy contract
// against the new deep biClone so the two are never accidentally
// unified: the top-level slice is duplicated, but a nested mutable
// value is still shared by reference with the source.
func TestBiCopy_StaysShallow(t *testing.T) {
	nested := value.NewList([]value.Value{value.Int(1)})
	list := value.NewList([]value.Value{nested})

	out, err := biCopy([]value.Value{list})
	require.NoError(t, err)
	copied := out.(*value.List)
	require.NotSame(t, list, copied)

	nested.Items[0] = value.Int(42)
	copiedNested := copied.Items[0].(*value.List)
	require.Equal(t, value.Int(42), copiedNested.Items[0])
}
