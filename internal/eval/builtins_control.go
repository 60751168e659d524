package eval

import "slipinterp/internal/value"

// installControlBuiltins wires if/while/foreach/loop. Each Code-valued
// argument self-evaluates to its own AST (term.go), so these nativeFns
// see unevaluated bodies and decide for themselves when and how many
// times to run them; while/foreach/loop yield at every iteration
// boundary inside task context (§4.11's mandatory auto-yield rule).
func installControlBuiltins(ev *Evaluator, root *value.Scope) {
	bindNative(root, "if", biIf)
	bindNative(root, "while", biWhile)
	bindNative(root, "foreach", biForeach)
	bindNative(root, "loop", biLoop)
}

func biIf(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, &TypeError{Op: "if", Message: "expected a condition and a then-block"}
	}
	thenCode, ok := args[1].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "if", Message: "expected a code then-block"}
	}
	if value.Truthy(args[0]) {
		return ev.Run(thenCode, value.NewScope(sc))
	}
	if len(args) >= 3 {
		elseCode, ok := args[2].(value.Code)
		if !ok {
			return nil, &TypeError{Op: "if", Message: "expected a code else-block"}
		}
		return ev.Run(elseCode, value.NewScope(sc))
	}
	return value.Nil, nil
}

func biWhile(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "while", Message: "expected a condition block and a body block"}
	}
	condCode, ok := args[0].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "while", Message: "expected a code condition block"}
	}
	bodyCode, ok := args[1].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "while", Message: "expected a code body block"}
	}
	for {
		if err := ev.autoYieldIfTask(); err != nil {
			return nil, err
		}
		cv, err := ev.Run(condCode, sc)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cv) {
			break
		}
		if _, err := ev.Run(bodyCode, value.NewScope(sc)); err != nil {
			return nil, err
		}
	}
	return value.Nil, nil
}

// biForeach iterates a List or Dict, binding `it` (the element) and
// `index` (its position) in a fresh child scope per iteration, plus
// `key` for Dict iteration.
func biForeach(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "foreach", Message: "expected a collection and a body block"}
	}
	bodyCode, ok := args[1].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "foreach", Message: "expected a code body block"}
	}
	switch coll := args[0].(type) {
	case *value.List:
		for i, item := range coll.Items {
			if err := ev.autoYieldIfTask(); err != nil {
				return nil, err
			}
			child := value.NewScope(sc)
			child.SetOwn("it", item)
			child.SetOwn("index", value.Int(i))
			if _, err := ev.Run(bodyCode, child); err != nil {
				return nil, err
			}
		}
	case *value.Dict:
		for i, k := range coll.Keys {
			if err := ev.autoYieldIfTask(); err != nil {
				return nil, err
			}
			child := value.NewScope(sc)
			child.SetOwn("it", coll.Values[k])
			child.SetOwn("key", value.Str{Text: k})
			child.SetOwn("index", value.Int(i))
			if _, err := ev.Run(bodyCode, child); err != nil {
				return nil, err
			}
		}
	default:
		return nil, &TypeError{Op: "foreach", Message: "expected a list or dict"}
	}
	return value.Nil, nil
}

// biLoop runs body forever, yielding at each iteration boundary; the
// only ways out are an error (including scheduler cancellation
// surfaced through autoYieldIfTask) or a respond()/return() escaping
// the body (§4.11's liveness scenario: a task-bound infinite loop is
// only safe because of the mandatory auto-yield).
func biLoop(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "loop", Message: "expected a body block"}
	}
	bodyCode, ok := args[0].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "loop", Message: "expected a code body block"}
	}
	for {
		if err := ev.autoYieldIfTask(); err != nil {
			return nil, err
		}
		if _, err := ev.Run(bodyCode, value.NewScope(sc)); err != nil {
			return nil, err
		}
	}
}
