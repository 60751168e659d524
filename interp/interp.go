// Package interp is the module's public entry point (§6): a host
// embeds SLIP by constructing an Interpreter and calling Run/RunWith
// on source text or a pre-parsed value.Code. Nothing below this
// package is meant to be imported directly by a host — parser, eval,
// dispatch, scheduler, and the rest are wired together here exactly
// once, the way the teacher's cmd/nerd wires its internal packages
// behind one entry point rather than letting a caller assemble them
// by hand.
package interp

import (
	"context"
	"errors"

	"slipinterp/internal/config"
	"slipinterp/internal/eval"
	"slipinterp/internal/hostbridge"
	"slipinterp/internal/logging"
	"slipinterp/internal/outcome"
	"slipinterp/internal/parser"
	"slipinterp/internal/scheduler"
	"slipinterp/internal/transformer"
	"slipinterp/internal/value"
)

// Status is the three-way outcome ExecutionResult reports (§6).
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusReturn
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Event mirrors value.Event at the public boundary so a host never
// needs to import internal/value just to read a side-effect log entry.
type Event struct {
	Topics  []string
	Message value.Value
}

// ExecutionResult is returned per script or expression (§6).
type ExecutionResult struct {
	Status        Status
	Value         value.Value
	ErrorMessage  string
	ErrorLocation string
	ErrorStatus   int // the §6 taxonomy code (400/404/500/501); 0 if Status != StatusError
	SideEffects   []Event
}

// statusError is the interface every error type in this module
// implements (parser.SyntaxError, eval.PathError/TypeError, etc.) to
// report its §6 taxonomy code.
type statusError interface {
	Status() int
}

// Options configures a new Interpreter. A zero Options uses
// config.DefaultConfig() and hostbridge.NullBridge{}.
type Options struct {
	Config  *config.Config
	Bridge  hostbridge.Bridge
	Grammar parser.Grammar
}

// Interpreter is one SLIP interpreter instance: a root Scope, an
// Evaluator wired to fresh dispatch/object/outcome/scheduler
// registries, and the Grammar used to parse source text. Per §5,
// each Interpreter is single-threaded cooperative; there is no shared
// mutable state between Interpreter instances.
type Interpreter struct {
	root      *value.Scope
	ev        *eval.Evaluator
	grammar   parser.Grammar
	scheduler *scheduler.Scheduler
	cfg       *config.Config
}

// New constructs a fresh Interpreter with its builtins installed.
func New(opts Options) *Interpreter {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := logging.Configure(logging.Options{
		Level:      cfg.Logging.Level,
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		logging.BootWarn("logging configuration rejected, continuing with defaults: %v", err)
	}

	bridge := opts.Bridge
	if bridge == nil {
		bridge = hostbridge.NullBridge{}
	}
	bridge = hostbridge.NewBounded(bridge, cfg.Scheduler.MaxConcurrentHostCalls)
	grammar := opts.Grammar
	if grammar == nil {
		grammar = parser.NewDefaultGrammar()
	}

	sched := scheduler.New()
	ev := eval.NewEvaluator(cfg.Limits, bridge)
	ev.Scheduler = sched

	root := value.NewScope(nil)
	eval.InstallBuiltins(ev, root)
	ev.SetRootScopeHint(root)

	return &Interpreter{root: root, ev: ev, grammar: grammar, scheduler: sched, cfg: cfg}
}

// RootScope exposes the interpreter's root scope, e.g. so a host can
// pre-bind capability objects before running any script.
func (in *Interpreter) RootScope() *value.Scope { return in.root }

// Run parses, transforms, and evaluates source text as a fresh set of
// top-level expressions in the interpreter's root scope, then drains
// any tasks the script spawned before returning (§4.11: the scheduler
// is driven after top-level evaluation so spawned tasks actually get
// to run).
func (in *Interpreter) Run(ctx context.Context, source string) ExecutionResult {
	raw, err := in.grammar.Parse(source)
	if err != nil {
		return in.errorResult(err)
	}
	if errs := transformer.Validate(raw.Code); len(errs) > 0 {
		return in.errorResult(errors.Join(errs...))
	}
	return in.RunWith(ctx, raw.Code, in.root)
}

// RunWith evaluates a pre-parsed/pre-expanded value.Code in the given
// scope (writes go there, not the root) and then drains spawned tasks —
// the host-side counterpart of the `run-with` builtin, which evaluates
// in its target scope directly (§4.9, §4.11).
func (in *Interpreter) RunWith(ctx context.Context, code value.Code, sc *value.Scope) ExecutionResult {
	if ctx == nil {
		ctx = context.Background()
	}
	in.ev.Context = ctx

	startEffects := in.ev.Effects.Len()
	result, err := in.ev.Run(code, sc)
	in.scheduler.Drain(ctx)

	effects := toPublicEvents(in.ev.Effects.Snapshot(startEffects))

	if err != nil {
		// A top-level `return value` / respond(`return, value) unwinds as
		// far as ev.Run without a call boundary to catch it (§4.3, §4.10);
		// that is success, not failure — ExecutionResult reports it as the
		// distinct `return` status per §6, carrying the unwrapped value.
		if sig, ok := err.(*outcome.ReturnSignal); ok && sig.Resp.IsReturn() {
			return ExecutionResult{Status: StatusReturn, Value: sig.Resp.Val, SideEffects: effects}
		}
		return in.errorResultWithEffects(err, effects)
	}
	return ExecutionResult{Status: StatusSuccess, Value: result, SideEffects: effects}
}

// Shutdown cancels every outstanding task across every host object and
// waits (bounded by ctx) for in-flight suspension-point unwinds to
// finish (§4.11 expansion).
func (in *Interpreter) Shutdown(ctx context.Context) {
	in.scheduler.ShutdownAll()
	done := make(chan struct{})
	go func() {
		in.scheduler.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (in *Interpreter) errorResult(err error) ExecutionResult {
	return in.errorResultWithEffects(err, nil)
}

func (in *Interpreter) errorResultWithEffects(err error, effects []Event) ExecutionResult {
	status := 500
	var se statusError
	if errors.As(err, &se) {
		status = se.Status()
	}
	return ExecutionResult{
		Status:       StatusError,
		ErrorMessage: err.Error(),
		ErrorStatus:  status,
		SideEffects:  effects,
	}
}

func toPublicEvents(evs []value.Event) []Event {
	if evs == nil {
		return nil
	}
	out := make([]Event, len(evs))
	for i, e := range evs {
		out[i] = Event{Topics: e.Topics, Message: e.Message}
	}
	return out
}
