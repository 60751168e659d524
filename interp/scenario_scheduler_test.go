package interp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"slipinterp/interp"
)

// TestScenario_TaskAutoYieldLiveness covers §8 scenario 7: a producer
// task loops forever sending on a channel, a consumer task receives
// once and emits a "got" event, then cancels the producer so Drain
// terminates instead of hanging the test on the infinite loop. The
// host never deadlocks and the emitted event is observable afterward.
func TestScenario_TaskAutoYieldLiveness(t *testing.T) {
	in := interp.New(interp.Options{})

	source := `
c: make-channel
task [ loop [ send c 1 ] ]
task [
    x: receive c
    emit "got" x
    cancel-tasks ""
]
`
	done := make(chan interp.ExecutionResult, 1)
	go func() {
		done <- in.Run(context.Background(), source)
	}()

	var res interp.ExecutionResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("interpreter deadlocked draining tasks")
	}

	require.Equal(t, interp.StatusSuccess, res.Status, res.ErrorMessage)

	var gotTopics []string
	for _, ev := range res.SideEffects {
		gotTopics = append(gotTopics, ev.Topics...)
	}
	require.Contains(t, gotTopics, "got")
}
