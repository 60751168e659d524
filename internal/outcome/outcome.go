// Package outcome implements structured outcomes and the side-effect
// queue (§3, §4.10): Response construction/normalization, the emit
// queue, and the non-local-exit signal respond() uses to unwind to a
// call boundary or to a do/with-log boundary.
package outcome

import (
	"fmt"
	"sync"

	"slipinterp/internal/value"
)

// Ok/Err/Return/NotFound/Invalid are the status paths used throughout
// this package and by builtins; they are plain PathLiteral values, not
// a closed enum — any Name is a legal Response status.
var (
	StatusOK       = value.PathLiteral{Name: "ok"}
	StatusErr      = value.PathLiteral{Name: "err"}
	StatusReturn   = value.PathLiteral{Name: "return"}
	StatusNotFound = value.PathLiteral{Name: "not-found"}
	StatusInvalid  = value.PathLiteral{Name: "invalid"}
)

// New constructs an immutable Response.
func New(status value.PathLiteral, v value.Value) value.Response {
	return value.Response{Status: status, Val: v}
}

// ReturnSignal is the Go-level non-local-exit carrier respond()
// raises. It is not a user-visible error: the evaluator's call
// boundary (dispatch execution, §4.8 step 3) unwraps a "return"-status
// signal into the function's result, do/with-log turn any signal into
// a Response value via Normalize, and interp.RunWith reports a
// top-level "return" as its return status. run/run-with pass it
// through unchanged.
type ReturnSignal struct {
	Resp value.Response
}

func (s *ReturnSignal) Error() string {
	return fmt.Sprintf("respond: status=%s", s.Resp.Status.Name)
}

// Respond builds the ReturnSignal respond(status, value) raises.
func Respond(status value.PathLiteral, v value.Value) *ReturnSignal {
	return &ReturnSignal{Resp: New(status, v)}
}

// Queue is the per-interpreter ordered side-effect log. It is
// append-only and single-writer per interpreter (§5); a mutex guards
// it only because host callbacks and task goroutines may append
// concurrently with the scheduler's driving goroutine.
type Queue struct {
	mu     sync.Mutex
	Events []value.Event
}

// NewQueue returns an empty side-effect queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Emit appends an event. Topics may be a single string or a list of
// strings at the call site; callers normalize to []string first.
func (q *Queue) Emit(topics []string, message value.Value) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Events = append(q.Events, value.Event{Topics: topics, Message: message})
}

// Len returns the current queue length, used as a with-log/do start
// index.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.Events)
}

// Snapshot returns events[start:] without removing them from the
// queue (with-log/do never truncates the global queue).
func (q *Queue) Snapshot(start int) []value.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if start >= len(q.Events) {
		return nil
	}
	out := make([]value.Event, len(q.Events)-start)
	copy(out, q.Events[start:])
	return out
}

// Normalize implements the with-log/do result normalization (§4.10):
//   - a runtime error e (not a ReturnSignal) becomes response err "<message>";
//   - a ReturnSignal carrying status "return" unwraps: if its inner
//     value is itself a Response, use that; otherwise wrap as response ok inner;
//   - a ReturnSignal carrying any other status propagates as-is;
//   - a plain successful Value v that is already a Response is kept
//     as-is (unless status "return", handled above since respond()
//     is the only return path — a directly-constructed non-return
//     Response value is passed through unchanged);
//   - any other successful Value v becomes response ok v.
func Normalize(result value.Value, err error) value.Response {
	if err != nil {
		if sig, ok := err.(*ReturnSignal); ok {
			if sig.Resp.IsReturn() {
				if inner, ok := sig.Resp.Val.(value.Response); ok {
					return inner
				}
				return New(StatusOK, sig.Resp.Val)
			}
			return sig.Resp
		}
		return New(StatusErr, value.Str{Text: err.Error()})
	}

	if resp, ok := result.(value.Response); ok {
		return resp
	}
	return New(StatusOK, result)
}

// AsDict renders a normalized outcome plus effects as the dict-like
// result with-log/do returns: {outcome, effects}.
func AsDict(outcomeResp value.Response, effects []value.Event) *value.Dict {
	d := value.NewDict()
	d.Set("outcome", outcomeResp)
	effList := make([]value.Value, len(effects))
	for i, e := range effects {
		ed := value.NewDict()
		topics := make([]value.Value, len(e.Topics))
		for j, t := range e.Topics {
			topics[j] = value.Str{Text: t}
		}
		ed.Set("topics", value.NewList(topics))
		ed.Set("message", e.Message)
		effList[i] = ed
	}
	d.Set("effects", value.NewList(effList))
	return d
}
