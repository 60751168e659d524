package interp_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
	"slipinterp/interp"
)

// TestScenario_MultipleDispatchLexicographicScore covers §8 scenario
// 4: a call whose arguments satisfy two methods' type annotations at
// different specificities picks the one whose first-position family
// match is tighter, even though the second method's annotation is
// satisfied too.
func TestScenario_MultipleDispatchLexicographicScore(t *testing.T) {
	in := interp.New(interp.Options{})
	ctx := context.Background()

	source := `
being: create none #{}
character: create being #{}
player: create character #{}

item: create none #{}
weapon: create item #{}

some-player: create player #{}
some-weapon: create weapon #{}

interact: fn {p: player, i: item} [ "A" ]
interact: fn {p: being, w: weapon} [ "B" ]
`
	res := in.Run(ctx, source)
	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)

	call := in.Run(ctx, "interact some-player some-weapon")
	require.Equal(t, interp.StatusSuccess, call.Status, call.ErrorMessage)
	require.Equal(t, value.Str{Text: "A"}, call.Value)
}

// TestScenario_DispatchNoMatchReportsCandidates exercises the
// dispatch-error path (§7): calling with an argument combination that
// satisfies no method's type gates fails, and the error identifies the
// generic function and arity rather than crashing the interpreter.
func TestScenario_DispatchNoMatchReportsCandidates(t *testing.T) {
	in := interp.New(interp.Options{})
	ctx := context.Background()

	source := `
point: create none #{}
describe: fn {p: point} [ "a point" ]
`
	res := in.Run(ctx, source)
	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)

	call := in.Run(ctx, `describe 42`)
	require.Equal(t, interp.StatusError, call.Status)
	if diff := cmp.Diff("", call.ErrorMessage); diff == "" {
		t.Fatalf("expected a non-empty dispatch error message")
	}
}
