package eval

import (
	"context"
	"time"

	"slipinterp/internal/scheduler"
	"slipinterp/internal/value"
)

// installSchedulerBuiltins wires the cooperative task surface (§4.11):
// task spawns a new logical thread of control; sleep/send/receive all
// suspend the current thread (top-level or task) via the Scheduler;
// make-channel allocates the message-passing primitive; cancel-tasks
// cancels every task registered under a host id.
func installSchedulerBuiltins(ev *Evaluator, root *value.Scope) {
	bindNative(root, "task", biTask)
	bindNative(root, "sleep", biSleep)
	bindPure(ev, root, "make-channel", 0, true, biMakeChannel)
	bindNative(root, "send", biSend)
	bindNative(root, "receive", biReceive)
	bindNative(root, "cancel-tasks", biCancelTasks)
}

// biTask spawns body as a new task, running on its own goroutine under
// the scheduler's single-slot baton but sharing sc as its lexical
// scope — writes inside a task are visible exactly as an ordinary
// nested Code block's would be, modulo the ordering the scheduler's
// turn-taking imposes (§4.11).
func biTask(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "task", Message: "expected a code body"}
	}
	code, ok := args[0].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "task", Message: "expected a code body"}
	}
	if ev.Scheduler == nil {
		return nil, &TypeError{Op: "task", Message: "no scheduler configured"}
	}
	handle := ev.Scheduler.Spawn(ev.ctx(), "", func(_ context.Context, self *scheduler.Task) error {
		taskEv := ev.withSchedTask(self, true)
		_, err := taskEv.Run(code, sc)
		return err
	})
	return handle, nil
}

// biSleep suspends the current task (or the top-level script, outside
// any task) for the given number of seconds; sleep(0) degrades to a
// plain yield (§4.11).
func biSleep(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "sleep", Message: "expected a duration in seconds"}
	}
	secs, _, ok := asNumber(args[0])
	if !ok {
		return nil, &TypeError{Op: "sleep", Message: "expected a number"}
	}
	if ev.Scheduler == nil {
		return value.Nil, nil
	}
	if err := ev.Scheduler.Sleep(ev.schedTask, time.Duration(float64(secs)*float64(time.Second))); err != nil {
		return nil, err
	}
	return value.Nil, nil
}

func biMakeChannel(args []value.Value) (value.Value, error) {
	capacity := 0
	if len(args) > 0 {
		n, _, ok := asNumber(args[0])
		if !ok {
			return nil, &TypeError{Op: "make-channel", Message: "expected a numeric capacity"}
		}
		capacity = int(n)
	}
	return value.NewChannel(capacity), nil
}

// channelSlotLimit treats an unbuffered (capacity 0) channel as holding
// at most one pending message: true zero-buffer CSP rendezvous would
// need the scheduler to pair a blocked sender directly with a waiting
// receiver, which the single-slot baton model here doesn't track.
// Bounding the buffer at 1 keeps send/receive symmetric and still
// round-trips the producer/consumer liveness scenario (§8) without
// that extra bookkeeping.
func channelSlotLimit(ch *value.Channel) int {
	if ch.Capacity <= 0 {
		return 1
	}
	return ch.Capacity
}

// biSend blocks (by cooperative retry) until ch has room, then appends
// val. Suspension re-queues the current task at the ready tail via
// ev.suspendRetry, giving every other ready task a turn before trying
// again (§4.11).
func biSend(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "send", Message: "expected a channel and a value"}
	}
	ch, ok := args[0].(*value.Channel)
	if !ok {
		return nil, &TypeError{Op: "send", Message: "expected a channel"}
	}
	limit := channelSlotLimit(ch)
	for {
		ch.Lock()
		if ch.Closed {
			ch.Unlock()
			return nil, &TypeError{Op: "send", Message: "channel is closed"}
		}
		if len(ch.Buffer) < limit {
			ch.Buffer = append(ch.Buffer, args[1])
			ch.Unlock()
			return value.Nil, nil
		}
		ch.Unlock()
		if err := ev.suspendRetry(); err != nil {
			return nil, err
		}
	}
}

// biReceive blocks until ch has a pending message (or is closed),
// dequeuing the oldest one FIFO.
func biReceive(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "receive", Message: "expected a channel"}
	}
	ch, ok := args[0].(*value.Channel)
	if !ok {
		return nil, &TypeError{Op: "receive", Message: "expected a channel"}
	}
	for {
		ch.Lock()
		if len(ch.Buffer) > 0 {
			v := ch.Buffer[0]
			ch.Buffer = ch.Buffer[1:]
			ch.Unlock()
			return v, nil
		}
		closed := ch.Closed
		ch.Unlock()
		if closed {
			return value.Nil, nil
		}
		if err := ev.suspendRetry(); err != nil {
			return nil, err
		}
	}
}

// biCancelTasks cancels every task registered under a host id (§4.11,
// §4.12) — the scheduler-level counterpart to a host object tearing
// down the tasks it spawned.
func biCancelTasks(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "cancel-tasks", Message: "expected a host id string"}
	}
	hostID, ok := args[0].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "cancel-tasks", Message: "expected a string host id"}
	}
	if ev.Scheduler == nil {
		return value.Nil, nil
	}
	ev.Scheduler.CancelHost(hostID.Text)
	return value.Nil, nil
}
