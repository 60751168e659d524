package interp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
	"slipinterp/interp"
)

// TestScenario_LeftToRightNoPrecedence covers §8 scenario 1: operators
// chain strictly left to right; there is no arithmetic precedence.
func TestScenario_LeftToRightNoPrecedence(t *testing.T) {
	in := interp.New(interp.Options{})
	res := in.Run(context.Background(), `result: 10 + 5 * 2`)

	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)
	assert.Equal(t, value.Int(30), res.Value)

	v, ok := in.RootScope().GetOwn("result")
	require.True(t, ok)
	assert.Equal(t, value.Int(30), v)
}

// TestScenario_ShortCircuitAnd covers §8 scenario 2: `and` short-
// circuits on a falsey left operand, so the right operand's division
// by zero never evaluates.
func TestScenario_ShortCircuitAnd(t *testing.T) {
	in := interp.New(interp.Options{})
	res := in.Run(context.Background(), "x: 0\n(x and (1 / 0))")

	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)
	assert.Equal(t, value.Int(0), res.Value)
}

// TestScenario_VectorizedColumnUpdate covers §8 scenario 3: a pluck
// segment (`.hp`) followed by a filter query on the plucked column
// writes back through the original items, not the disposable plucked
// copy the pluck itself produces.
func TestScenario_VectorizedColumnUpdate(t *testing.T) {
	in := interp.New(interp.Options{})
	source := "players: #[ #{ hp: 40 }, #{ hp: 60 }, #{ hp: 80 } ]\n" +
		"players.hp[< 50]: + 20"
	res := in.Run(context.Background(), source)
	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)

	playersV, ok := in.RootScope().GetOwn("players")
	require.True(t, ok)
	players, ok := playersV.(*value.List)
	require.True(t, ok)
	require.Len(t, players.Items, 3)

	got := make([]value.Value, len(players.Items))
	for i, item := range players.Items {
		d, ok := item.(*value.Dict)
		require.True(t, ok)
		hp, ok := d.Get("hp")
		require.True(t, ok)
		got[i] = hp
	}
	assert.Equal(t, []value.Value{value.Int(60), value.Int(60), value.Int(80)}, got)
}

// TestScenario_ExampleDrivenSynthesis covers §8 scenario 5: typed
// clones synthesized from keyworded examples dispatch correctly, and
// an argument combination outside every synthesized clone's types
// fails to dispatch.
func TestScenario_ExampleDrivenSynthesis(t *testing.T) {
	in := interp.New(interp.Options{})
	source := `add: fn {a, b} [ a + b ] |example { a: 2, b: 3 -> 5 } |example { a: 2.0, b: 3.0 -> 5.0 }`
	res := in.Run(context.Background(), source)
	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)

	intRes := in.Run(context.Background(), "add 2 3")
	require.Equal(t, interp.StatusSuccess, intRes.Status, intRes.ErrorMessage)
	assert.Equal(t, value.Int(5), intRes.Value)

	floatRes := in.Run(context.Background(), "add 2.0 3.0")
	require.Equal(t, interp.StatusSuccess, floatRes.Status, floatRes.ErrorMessage)
	assert.Equal(t, value.Float(5.0), floatRes.Value)

	mismatchRes := in.Run(context.Background(), "add 2 3.5")
	assert.Equal(t, interp.StatusError, mismatchRes.Status)
}

// TestScenario_EffectsAsDataWithLog covers §8 scenario 6: with-log
// returns a {outcome, effects} result pairing the block's normalized
// outcome with every event it emitted during the run.
func TestScenario_EffectsAsDataWithLog(t *testing.T) {
	in := interp.New(interp.Options{})
	source := "log: with-log [\n" +
		"    emit \"debug\" \"x\"\n" +
		"    10 + 20\n" +
		"]"
	res := in.Run(context.Background(), source)
	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)

	logV, ok := in.RootScope().GetOwn("log")
	require.True(t, ok)
	logDict, ok := logV.(*value.Dict)
	require.True(t, ok)

	outcomeV, ok := logDict.Get("outcome")
	require.True(t, ok)
	resp, ok := outcomeV.(value.Response)
	require.True(t, ok)
	assert.Equal(t, "ok", resp.Status.Name)
	assert.Equal(t, value.Int(30), resp.Val)

	effectsV, ok := logDict.Get("effects")
	require.True(t, ok)
	effects, ok := effectsV.(*value.List)
	require.True(t, ok)
	require.Len(t, effects.Items, 1)

	ev, ok := effects.Items[0].(*value.Dict)
	require.True(t, ok)
	topicsV, ok := ev.Get("topics")
	require.True(t, ok)
	topics, ok := topicsV.(*value.List)
	require.True(t, ok)
	require.Len(t, topics.Items, 1)
	assert.Equal(t, value.Str{Text: "debug"}, topics.Items[0])

	msgV, ok := ev.Get("message")
	require.True(t, ok)
	assert.Equal(t, value.Str{Text: "x"}, msgV)
}

// TestScenario_DivisionPromotesToFloat exercises the numeric-promotion
// rule (§4.2 expansion): Int `/` Int promotes to Float even when the
// result would be a whole number, unlike +, -, and *.
func TestScenario_DivisionPromotesToFloat(t *testing.T) {
	in := interp.New(interp.Options{})
	res := in.Run(context.Background(), `10 / 2`)
	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)
	assert.Equal(t, value.Float(5.0), res.Value)
}

// TestScenario_TopLevelReturnStatus covers the §6 taxonomy's distinct
// `return` ExecutionResult status: a top-level `return` has no call
// boundary to catch it, so it unwinds all the way to ExecutionResult.
func TestScenario_TopLevelReturnStatus(t *testing.T) {
	in := interp.New(interp.Options{})
	res := in.Run(context.Background(), `return 42`)
	require.Equal(t, interp.StatusReturn, res.Status)
	assert.Equal(t, value.Int(42), res.Value)
}
