// Package eval implements the SLIP evaluator: the left-to-right
// accumulator loop (§4.3), path resolution, function/generic-function
// invocation, and the builtin GenericFunctions every script starts
// with. It is the hub package — the only one that imports both
// dispatch and outcome and ties them to a live value.Scope tree.
package eval

import (
	"context"
	"fmt"

	"slipinterp/internal/config"
	"slipinterp/internal/dispatch"
	"slipinterp/internal/hostbridge"
	"slipinterp/internal/logging"
	"slipinterp/internal/metaprog"
	"slipinterp/internal/object"
	"slipinterp/internal/outcome"
	"slipinterp/internal/scheduler"
	"slipinterp/internal/value"
)

// DepthError is raised when evalDepth exceeds the configured limit,
// converting what would be a Go stack overflow into an ordinary
// runtime error (§4.3 expansion).
type DepthError struct{ Limit int }

func (e *DepthError) Error() string { return fmt.Sprintf("evaluation depth exceeded %d", e.Limit) }
func (e *DepthError) Status() int   { return 500 }

// StepError is raised when the total step budget for one top-level Run
// is exhausted.
type StepError struct{ Limit int64 }

func (e *StepError) Error() string { return fmt.Sprintf("evaluation step budget exceeded %d", e.Limit) }
func (e *StepError) Status() int   { return 500 }

// Evaluator holds everything a running script shares: the builtin
// registry, the type registry, the side-effect queue, resource limits,
// and an internal-only diagnostics logger.
type Evaluator struct {
	Builtins  *dispatch.Registry
	Types     *object.TypeRegistry
	Effects   *outcome.Queue
	Limits    config.Limits
	Bridge    hostbridge.Bridge
	Scheduler *scheduler.Scheduler

	// Context carries cancellation for host-bridge calls and scheme
	// resolution; defaults to context.Background() if never set.
	Context context.Context

	// rootScopeHint is the interpreter's root scope, the fallback when no
	// scope is otherwise in hand: View resolution (§4.5) and the run and
	// import builtins use it; set once by interp.New.
	rootScopeHint *value.Scope

	// schedTask/inTaskContext carry the §4.11 scheduling identity of the
	// Go-goroutine currently running this Evaluator: schedTask is the
	// scheduler's handle for suspension (Sleep/Yield), set for both the
	// top-level script and every task() body once an interp.Interpreter
	// wires a Scheduler in; inTaskContext is false for the top-level
	// script and true only inside a task() body, since the auto-yield
	// rule applies to task bodies specifically, not the top level.
	schedTask     *scheduler.Task
	inTaskContext bool

	evalDepth int
	steps     int64

	log *logging.Logger
}

// withSchedTask returns a shallow copy of ev bound to a different
// scheduler task identity and depth/step counters, used when entering
// a new Go-goroutine's logical thread of control (the top-level script
// or a spawned task body, §4.11).
func (ev *Evaluator) withSchedTask(t *scheduler.Task, inTask bool) *Evaluator {
	clone := *ev
	clone.schedTask = t
	clone.inTaskContext = inTask
	clone.evalDepth = 0
	clone.steps = 0
	return &clone
}

// autoYieldIfTask implements the mandatory auto-yield at loop
// iteration boundaries inside task context (§4.11): a no-op at top
// level or when no Scheduler is wired (plain eval-only embedding).
func (ev *Evaluator) autoYieldIfTask() error {
	if !ev.inTaskContext || ev.Scheduler == nil {
		return nil
	}
	return ev.Scheduler.Yield(ev.schedTask)
}

// suspendRetry re-queues the current scheduling identity (top-level or
// task) at the ready tail, giving other ready work a turn before the
// caller retries a not-yet-possible operation (channel send/receive).
// A no-op when no Scheduler is wired.
func (ev *Evaluator) suspendRetry() error {
	if ev.Scheduler == nil {
		return nil
	}
	return ev.Scheduler.Sleep(ev.schedTask, 0)
}

// NewEvaluator constructs an Evaluator with fresh registries and the
// given Bridge (hostbridge.NullBridge if the embedder supplies none).
func NewEvaluator(limits config.Limits, bridge hostbridge.Bridge) *Evaluator {
	if bridge == nil {
		bridge = hostbridge.NullBridge{}
	}
	return &Evaluator{
		Builtins: dispatch.NewRegistry(),
		Types:    object.NewTypeRegistry(),
		Effects:  outcome.NewQueue(),
		Limits:   limits,
		Bridge:   bridge,
		Context:  context.Background(),
		log:      logging.Get(logging.CategoryEval),
	}
}

// SetRootScopeHint records sc as the fallback scope described on
// rootScopeHint.
func (ev *Evaluator) SetRootScopeHint(sc *value.Scope) { ev.rootScopeHint = sc }

func (ev *Evaluator) ctx() context.Context {
	if ev.Context != nil {
		return ev.Context
	}
	return context.Background()
}

// Run evaluates code in scope, returning the value of its final
// expression (or value.Nil for an empty program). This is the §4.3
// entry point, re-entered recursively for nested Code bodies.
func (ev *Evaluator) Run(code value.Code, sc *value.Scope) (value.Value, error) {
	ev.evalDepth++
	defer func() { ev.evalDepth-- }()
	if ev.Limits.MaxEvalDepth > 0 && ev.evalDepth > ev.Limits.MaxEvalDepth {
		ev.log.Warn("evaluation depth %d exceeded limit %d", ev.evalDepth, ev.Limits.MaxEvalDepth)
		return nil, &DepthError{Limit: ev.Limits.MaxEvalDepth}
	}

	expanded, err := metaprog.Expand(code, ev.evalExprForMeta(sc))
	if err != nil {
		return nil, err
	}

	var last value.Value = value.Nil
	for _, expr := range expanded.Exprs {
		if ev.Limits.MaxSteps > 0 {
			ev.steps++
			if ev.steps > ev.Limits.MaxSteps {
				ev.log.Warn("evaluation step budget %d exhausted", ev.Limits.MaxSteps)
				return nil, &StepError{Limit: ev.Limits.MaxSteps}
			}
		}
		v, err := ev.evalExpr(expr, sc)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// evalExprForMeta adapts evalExpr into the single-expression evaluator
// metaprog.Expand needs to resolve an (inject X)/(splice X) argument,
// avoiding an eval<->metaprog import cycle.
func (ev *Evaluator) evalExprForMeta(sc *value.Scope) metaprog.ExprEvaluator {
	return func(expr value.Expr) (value.Value, error) {
		return ev.evalExpr(expr, sc)
	}
}

// evalExpr runs the accumulator loop over one expression (§4.3 steps
// 1-4): term 0 decides between plain accumulation and the auto-invoke
// calling convention; subsequent terms must continue via a piped
// callable.
func (ev *Evaluator) evalExpr(expr value.Expr, sc *value.Scope) (value.Value, error) {
	if len(expr) == 0 {
		return value.Nil, nil
	}

	if assign, rest, ok := splitAssignment(expr); ok {
		return ev.evalAssignment(assign, rest, sc)
	}

	acc, rest, err := ev.evalFirstTerm(expr, sc)
	if err != nil {
		return nil, err
	}

	for len(rest) > 0 {
		acc, rest, err = ev.evalContinuation(acc, rest, sc)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// splitAssignment recognizes an expression led by a SetPath,
// MultiSetPath, DelPath, or PostPath: these consume the entire
// remainder of the expression as their RHS/payload rather than
// participating in ordinary accumulation (§4.6).
func splitAssignment(expr value.Expr) (value.Value, value.Expr, bool) {
	switch expr[0].(type) {
	case value.SetPath, value.MultiSetPath, value.DelPath, value.PostPath:
		return expr[0], expr[1:], true
	}
	return nil, nil, false
}

// evalFirstTerm evaluates term 0. If it is a GetPath resolving to a
// callable (Function/GenericFunction), the REBOL-style active-value
// convention applies: every remaining term in the expression is
// evaluated and passed as a positional argument, consuming the whole
// expression in one call (§4.3/§4.8; see DESIGN.md's Open Question
// Decision on the prefix-call active-value convention).
func (ev *Evaluator) evalFirstTerm(expr value.Expr, sc *value.Scope) (value.Value, value.Expr, error) {
	first := expr[0]

	if gp, ok := first.(value.GetPath); ok {
		v, err := ev.resolveGet(gp, sc)
		if err != nil {
			return nil, nil, err
		}
		if isCallable(v) {
			args, err := ev.evalArgs(expr[1:], sc)
			if err != nil {
				return nil, nil, err
			}
			result, err := ev.callValue(v, args, sc)
			return result, nil, err
		}
		return v, expr[1:], nil
	}

	v, err := ev.evalTerm(first, sc)
	if err != nil {
		return nil, nil, err
	}
	return v, expr[1:], nil
}

// evalContinuation consumes the next term as a pipe continuation: it
// must be a PipedPath (either a symbolic operator or a `|name` alias)
// or a GetPath bound to a PipedPath/callable; anything else is a
// syntax-level runtime error (§4.3 step 3).
func (ev *Evaluator) evalContinuation(acc value.Value, rest value.Expr, sc *value.Scope) (value.Value, value.Expr, error) {
	tk := rest[0]

	var target value.GetPath
	switch t := tk.(type) {
	case value.PipedPath:
		target = t.Target
	case value.GetPath:
		resolved, err := ev.resolveGet(t, sc)
		if err != nil {
			return nil, nil, err
		}
		if pp, ok := resolved.(value.PipedPath); ok {
			target = pp.Target
		} else if isCallable(resolved) {
			// A bare callable reference used as a pipe continuation calls
			// with acc and the rest of the expression as arguments.
			args, err := ev.evalArgs(rest[1:], sc)
			if err != nil {
				return nil, nil, err
			}
			result, err := ev.callValue(resolved, append([]value.Value{acc}, args...), sc)
			return result, nil, err
		} else {
			return nil, nil, fmt.Errorf("value at %s is not pipeable", value.CanonicalForm(t.Segments))
		}
	default:
		return nil, nil, fmt.Errorf("expected a piped operator, found %s", value.TypeName(tk))
	}

	callee, err := ev.resolveGet(target, sc)
	if err != nil {
		return nil, nil, err
	}

	if shortCircuit, result, consumed, err := ev.tryShortCircuit(target, acc, rest, sc); err != nil {
		return nil, nil, err
	} else if shortCircuit {
		return result, rest[consumed:], nil
	}

	next := rest[1:]
	rhsVal, remaining, err := ev.evalOperand(next, sc)
	if err != nil {
		return nil, nil, err
	}

	result, err := ev.callValue(callee, []value.Value{acc, rhsVal}, sc)
	if err != nil {
		return nil, nil, err
	}
	return result, remaining, nil
}

// evalOperand evaluates the single next term as a pipe's right-hand
// operand. A callable reference here is NOT auto-invoked (§4.3's
// auto-invoke convention is position-0-only) — it evaluates to itself,
// e.g. `scores |sort-by max` passes the `max` GenericFunction as a
// plain value.
func (ev *Evaluator) evalOperand(rest value.Expr, sc *value.Scope) (value.Value, value.Expr, error) {
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf("missing operand after piped operator")
	}
	v, err := ev.evalTerm(rest[0], sc)
	if err != nil {
		return nil, nil, err
	}
	return v, rest[1:], nil
}

// tryShortCircuit implements boolean and/or short-circuit: the RHS is
// only evaluated if the LHS doesn't already determine the result.
func (ev *Evaluator) tryShortCircuit(target value.GetPath, acc value.Value, rest value.Expr, sc *value.Scope) (bool, value.Value, int, error) {
	if len(target.Segments) != 1 || target.Segments[0].Kind != value.SegName {
		return false, nil, 0, nil
	}
	name := target.Segments[0].Name
	if name != "logical-and" && name != "logical-or" {
		return false, nil, 0, nil
	}

	if name == "logical-and" && !value.Truthy(acc) {
		return true, acc, 2, nil
	}
	if name == "logical-or" && value.Truthy(acc) {
		return true, acc, 2, nil
	}

	rhsVal, _, err := ev.evalOperand(rest[1:], sc)
	if err != nil {
		return false, nil, 0, err
	}
	return true, rhsVal, 2, nil
}

// evalArgs evaluates each remaining term of a prefix call as one
// positional argument. Each term is evaluated on its own (via
// evalTerm, not the accumulator loop) — the auto-invoke convention
// that turns a leading callable GetPath into a call applies only at
// position 0 of an expression (§4.3), so a callable appearing here is
// passed as a plain value, and a parenthesized group still evaluates
// its own nested expression through evalTerm/resolveGet.
func (ev *Evaluator) evalArgs(terms value.Expr, sc *value.Scope) ([]value.Value, error) {
	out := make([]value.Value, 0, len(terms))
	for _, t := range terms {
		v, err := ev.evalTerm(t, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func isCallable(v value.Value) bool {
	switch v.(type) {
	case *value.Function, *value.GenericFunction, *nativeFn:
		return true
	}
	return false
}
