package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
)

func constAnnotation(v value.Value) value.Code {
	return value.Code{Exprs: []value.Expr{{v}}}
}

// fakeResolveAnnot treats an annotation Code as a single already-built
// term (a PrimType or *Scope), skipping a real evaluator since
// annotation resolution itself isn't under test here.
func fakeResolveAnnot(code value.Code, _ *value.Scope) (value.Value, error) {
	return code.Exprs[0][0], nil
}

func allowAllGuards(_ value.Code, _ *value.Scope) (bool, error) {
	return true, nil
}

func typedParam(name string, ann value.Value) value.Param {
	return value.Param{Name: name, Typed: true, Annotations: []value.Code{constAnnotation(ann)}}
}

func untypedParam(name string) value.Param {
	return value.Param{Name: name}
}

// TestSelect_TypedMethodBeatsUntypedFallback covers §9's resolution of
// the untyped-priority ambiguity: an applicable typed method in the
// exact-arity tier always wins over an untyped method of the same
// arity, which is only ever tried as a last resort.
func TestSelect_TypedMethodBeatsUntypedFallback(t *testing.T) {
	intType := value.PrimType{Name: "int"}
	typed := &value.Function{Sig: value.Sig{Positional: []value.Param{typedParam("x", intType)}}}
	untyped := &value.Function{Sig: value.Sig{Positional: []value.Param{untypedParam("x")}}}

	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{untyped, typed}}

	winner, err := Select(gf, []value.Value{value.Int(1)}, fakeResolveAnnot, allowAllGuards)
	require.NoError(t, err)
	require.Same(t, typed, winner)
}

// TestSelect_UntypedFallbackWhenNoTypedMethodApplies ensures the
// untyped tier is still reachable when no typed candidate matches the
// argument's type.
func TestSelect_UntypedFallbackWhenNoTypedMethodApplies(t *testing.T) {
	stringType := value.PrimType{Name: "string"}
	typed := &value.Function{Sig: value.Sig{Positional: []value.Param{typedParam("x", stringType)}}}
	untyped := &value.Function{Sig: value.Sig{Positional: []value.Param{untypedParam("x")}}}

	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{typed, untyped}}

	winner, err := Select(gf, []value.Value{value.Int(1)}, fakeResolveAnnot, allowAllGuards)
	require.NoError(t, err)
	require.Same(t, untyped, winner)
}

// TestSelect_TieBreakPrefersEarlierDefinitionOrder is a regression test
// for the bug fixed this pass: two methods with identical score vectors
// used to resolve to DispatchError{Ambiguous: true} instead of the
// earlier-defined method, because order is always unique within a tier
// and the old guard could never observe a genuine tie.
func TestSelect_TieBreakPrefersEarlierDefinitionOrder(t *testing.T) {
	intType := value.PrimType{Name: "int"}
	first := &value.Function{Sig: value.Sig{Positional: []value.Param{typedParam("x", intType)}}}
	second := &value.Function{Sig: value.Sig{Positional: []value.Param{typedParam("x", intType)}}}

	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{first, second}}

	winner, err := Select(gf, []value.Value{value.Int(1)}, fakeResolveAnnot, allowAllGuards)
	require.NoError(t, err)
	require.Same(t, first, winner)
}

// TestSelect_GuardedMethodPreferredOverUnguardedOnTie covers tie-break
// step 1: when two methods have identical score vectors, the guarded
// one wins if its guard passes.
func TestSelect_GuardedMethodPreferredOverUnguardedOnTie(t *testing.T) {
	intType := value.PrimType{Name: "int"}
	unguarded := &value.Function{Sig: value.Sig{Positional: []value.Param{typedParam("x", intType)}}}
	guarded := &value.Function{
		Sig:    value.Sig{Positional: []value.Param{typedParam("x", intType)}},
		Guards: []value.Code{constAnnotation(value.Bool(true))},
	}

	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{unguarded, guarded}}

	winner, err := Select(gf, []value.Value{value.Int(1)}, fakeResolveAnnot, func(guard value.Code, _ *value.Scope) (bool, error) {
		return bool(guard.Exprs[0][0].(value.Bool)), nil
	})
	require.NoError(t, err)
	require.Same(t, guarded, winner)
}

// TestSelect_GuardFailureExcludesCandidate ensures a guarded method
// whose guard evaluates falsey is never selected, even with no other
// candidate present.
func TestSelect_GuardFailureExcludesCandidate(t *testing.T) {
	intType := value.PrimType{Name: "int"}
	guarded := &value.Function{
		Sig:    value.Sig{Positional: []value.Param{typedParam("x", intType)}},
		Guards: []value.Code{constAnnotation(value.Bool(false))},
	}
	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{guarded}}

	_, err := Select(gf, []value.Value{value.Int(1)}, fakeResolveAnnot, func(guard value.Code, _ *value.Scope) (bool, error) {
		return bool(guard.Exprs[0][0].(value.Bool)), nil
	})
	require.Error(t, err)
	de, ok := err.(*DispatchError)
	require.True(t, ok)
	require.Equal(t, "f", de.Name)
	require.Equal(t, 1, de.Argc)
}

// TestSelect_NoMatchReturnsDispatchError covers arity mismatch: no
// method in gf accepts one argument, so Select reports a DispatchError
// rather than panicking on an empty candidate slice.
func TestSelect_NoMatchReturnsDispatchError(t *testing.T) {
	twoArg := &value.Function{Sig: value.Sig{Positional: []value.Param{untypedParam("a"), untypedParam("b")}}}
	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{twoArg}}

	_, err := Select(gf, []value.Value{value.Int(1)}, fakeResolveAnnot, allowAllGuards)
	require.Error(t, err)
	de, ok := err.(*DispatchError)
	require.True(t, ok)
	require.False(t, de.Ambiguous)
}

// TestSelect_VariadicMethodAppliesWithExtraArgs covers the HasRest
// arity tier: a method with one fixed param and a rest slot matches
// any argc >= 1.
func TestSelect_VariadicMethodAppliesWithExtraArgs(t *testing.T) {
	variadic := &value.Function{Sig: value.Sig{
		Positional: []value.Param{untypedParam("first")},
		HasRest:    true,
		Rest:       "rest",
	}}
	gf := &value.GenericFunction{Name: "f", Methods: []*value.Function{variadic}}

	winner, err := Select(gf, []value.Value{value.Int(1), value.Int(2), value.Int(3)}, fakeResolveAnnot, allowAllGuards)
	require.NoError(t, err)
	require.Same(t, variadic, winner)
}

// TestRegistry_GetOrCreateIsIdempotent covers the registry's
// create-on-first-use semantics (§4.6's "merge or create" rule): two
// calls for the same name return the identical GenericFunction.
func TestRegistry_GetOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrCreate("greet")
	b := r.GetOrCreate("greet")
	require.Same(t, a, b)
	require.Equal(t, 1, r.Count())
	require.Equal(t, []string{"greet"}, r.Names())
}
