package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
)

func TestInherit_OnceRuleRejectsSecondParent(t *testing.T) {
	target := value.NewScope(nil)
	parentA := value.NewScope(nil)
	parentB := value.NewScope(nil)

	require.NoError(t, Inherit(target, parentA))
	err := Inherit(target, parentB)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAlreadyInherited)
	require.Same(t, parentA, target.Meta.Parent)
}

func TestMixin_AppendsWithoutCopying(t *testing.T) {
	target := value.NewScope(nil)
	m1 := value.NewScope(nil)
	m1.SetOwn("shared", value.Int(1))
	m2 := value.NewScope(nil)

	require.NoError(t, Mixin(target, m1, m2))
	require.NoError(t, Mixin(target, m2))
	require.Equal(t, []*value.Scope{m1, m2, m2}, target.Meta.Mixins)

	m1.SetOwn("shared", value.Int(2))
	v, _ := target.Meta.Mixins[0].GetOwn("shared")
	require.Equal(t, value.Int(2), v)
}

func TestFamilySet_NonScopeIsItsPrimitiveTypeName(t *testing.T) {
	set := FamilySet(value.Int(5))
	require.True(t, set["int"])
	require.Len(t, set, 1)
}

// TestFamilySet_ScopeIncludesAncestorsAndMixins covers §4.7/§4.8's
// family-set computation: a Scope's family is itself plus every
// meta.parent ancestor plus every meta.mixins entry, transitively.
func TestFamilySet_ScopeIncludesAncestorsAndMixins(t *testing.T) {
	grandparent := value.NewScope(nil)
	parent := value.NewScope(nil)
	require.NoError(t, Inherit(parent, grandparent))

	mixinScope := value.NewScope(nil)
	mixinAncestor := value.NewScope(nil)
	require.NoError(t, Inherit(mixinScope, mixinAncestor))

	child := value.NewScope(nil)
	require.NoError(t, Inherit(child, parent))
	require.NoError(t, Mixin(child, mixinScope))

	set := FamilySet(child)
	require.True(t, set[child])
	require.True(t, set[parent])
	require.True(t, set[grandparent])
	require.True(t, set[mixinScope])
	require.True(t, set[mixinAncestor])
}

func TestFamilyContains(t *testing.T) {
	parent := value.NewScope(nil)
	child := value.NewScope(nil)
	require.NoError(t, Inherit(child, parent))

	require.True(t, FamilyContains(child, parent))
	require.False(t, FamilyContains(parent, child))
}

func TestTypeRegistry_ChristenIsIdempotent(t *testing.T) {
	r := NewTypeRegistry()
	s := value.NewScope(nil)

	r.Christen(s, "/user/thing")
	firstID := s.Meta.TypeID
	require.NotZero(t, firstID)

	r.Christen(s, "/user/other-name")
	require.Equal(t, firstID, s.Meta.TypeID)
	require.Equal(t, "/user/thing", s.Meta.Name)
	require.Equal(t, 1, r.Count())

	got, ok := r.Lookup("/user/thing")
	require.True(t, ok)
	require.Same(t, s, got)
}
