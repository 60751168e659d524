package eval

import (
	"slipinterp/internal/outcome"
	"slipinterp/internal/value"
)

// installFnBuiltins wires function construction (fn), the
// example-driven-synthesis and guard annotations a Function collects
// after the fact via pipe continuations, and the outcome vocabulary
// (§4.6, §4.10).
func installFnBuiltins(ev *Evaluator, root *value.Scope) {
	bindNative(root, "fn", biFn)
	bindPure(ev, root, "example", 2, false, biExample)
	bindPure(ev, root, "guard", 2, false, biGuard)

	bindPure(ev, root, "response", 2, false, biResponse)
	bindPure(ev, root, "respond", 2, false, biRespond)
	bindPure(ev, root, "return", 1, false, biReturn)
	bindNative(root, "emit", biEmit)
	bindNative(root, "with-log", biWithLog)
	bindNative(root, "do", biWithLog)
}

// biFn builds a closure over the defining scope: `fn {a,b} [a + b]`
// auto-invokes with the signature and body as its two positional
// arguments (§4.3's auto-invoke convention, §4.8 step 1).
func biFn(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "fn", Message: "expected a signature and a body"}
	}
	sig, ok := args[0].(value.Sig)
	if !ok {
		return nil, &TypeError{Op: "fn", Message: "expected a signature literal"}
	}
	body, ok := args[1].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "fn", Message: "expected a code body"}
	}
	return &value.Function{Sig: sig, Body: body, Closure: sc}, nil
}

// biExample appends one `|example {...}` signature literal to a
// Function's metadata, returning the same Function so the pipe chain
// can continue (§4.6's synthesis recipe consumes these at merge time).
func biExample(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "example", Message: "expected a function and a signature"}
	}
	fn, ok := args[0].(*value.Function)
	if !ok {
		return nil, &TypeError{Op: "example", Message: "expected a function"}
	}
	sig, ok := args[1].(value.Sig)
	if !ok {
		return nil, &TypeError{Op: "example", Message: "expected a signature literal"}
	}
	appendExample(fn, sig)
	return fn, nil
}

// biGuard appends one `|guard [...]` predicate block to a Function's
// guard list, evaluated with the method's parameters bound before a
// dispatch candidate is accepted (§4.8 phase 2's guard gate).
func biGuard(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "guard", Message: "expected a function and a code block"}
	}
	fn, ok := args[0].(*value.Function)
	if !ok {
		return nil, &TypeError{Op: "guard", Message: "expected a function"}
	}
	code, ok := args[1].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "guard", Message: "expected a code block"}
	}
	fn.Guards = append(fn.Guards, code)
	return fn, nil
}

func biResponse(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "response", Message: "expected a status and a value"}
	}
	status, ok := args[0].(value.PathLiteral)
	if !ok {
		return nil, &TypeError{Op: "response", Message: "expected a status path literal"}
	}
	return outcome.New(status, args[1]), nil
}

func biRespond(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "respond", Message: "expected a status and a value"}
	}
	status, ok := args[0].(value.PathLiteral)
	if !ok {
		return nil, &TypeError{Op: "respond", Message: "expected a status path literal"}
	}
	return nil, outcome.Respond(status, args[1])
}

func biReturn(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "return", Message: "expected a value"}
	}
	return nil, outcome.Respond(outcome.StatusReturn, args[0])
}

// biEmit appends one event to the per-interpreter side-effect queue
// (§4.10); topics may be a single string or a list of strings.
func biEmit(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "emit", Message: "expected topics and a message"}
	}
	topics, err := normalizeTopics(args[0])
	if err != nil {
		return nil, err
	}
	if max := ev.Limits.MaxSideEffectQueue; max > 0 && ev.Effects.Len() >= max {
		return nil, &TypeError{Op: "emit", Message: "side-effect queue limit reached"}
	}
	ev.Effects.Emit(topics, args[1])
	return value.Nil, nil
}

func normalizeTopics(v value.Value) ([]string, error) {
	switch t := v.(type) {
	case value.Str:
		return []string{t.Text}, nil
	case *value.List:
		out := make([]string, len(t.Items))
		for i, it := range t.Items {
			s, ok := it.(value.Str)
			if !ok {
				return nil, &TypeError{Op: "emit", Message: "every topic must be a string"}
			}
			out[i] = s.Text
		}
		return out, nil
	default:
		return nil, &TypeError{Op: "emit", Message: "expected a string or list of strings"}
	}
}

// biWithLog runs code in a fresh child of the calling scope, normalizes
// whatever it returns (value, respond signal, or error) into a
// Response, and pairs it with the events emitted during the run — the
// {outcome, effects} dict-like result with-log/do both return (§4.10).
// `do` is bound to the same implementation: both names share identical
// effects-as-data semantics.
func biWithLog(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "with-log", Message: "expected a code block"}
	}
	code, ok := args[0].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "with-log", Message: "expected a code block"}
	}
	start := ev.Effects.Len()
	result, err := ev.Run(code, value.NewScope(sc))
	resp := outcome.Normalize(result, err)
	effects := ev.Effects.Snapshot(start)
	return outcome.AsDict(resp, effects), nil
}
