package eval

import (
	"slipinterp/internal/parser"
	"slipinterp/internal/value"
)

// installMetaBuiltins wires run/run-with (§4.9's execution-boundary
// expansion trigger) and a reflective path parser shared with the main
// grammar (§9: "supply a first-class path parser shared with the main
// parser").
func installMetaBuiltins(ev *Evaluator, root *value.Scope) {
	bindNative(root, "run", biRun)
	bindNative(root, "run-with", biRunWith)
	bindNative(root, "parse-path", biParsePath)
}

// biRun executes code in a fresh, hermetic child of the root scope:
// it sees every builtin and top-level definition but none of the
// caller's own locals, and nothing it writes leaks back out (§4.9).
func biRun(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "run", Message: "expected a code block"}
	}
	code, ok := args[0].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "run", Message: "expected a code block"}
	}
	root := ev.rootScopeHint
	if root == nil {
		root = sc
	}
	return ev.Run(code, value.NewScope(root))
}

// biRunWith executes code directly in the scope supplied as the second
// argument, so writes land exactly where that scope's owner can see
// them (§4.9).
func biRunWith(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "run-with", Message: "expected a code block and a scope"}
	}
	code, ok := args[0].(value.Code)
	if !ok {
		return nil, &TypeError{Op: "run-with", Message: "expected a code block"}
	}
	target, ok := args[1].(*value.Scope)
	if !ok {
		return nil, &TypeError{Op: "run-with", Message: "expected a scope"}
	}
	return ev.Run(code, target)
}

// biParsePath parses a string through the same grammar the interpreter
// uses for source text, returning the first term of its first
// expression — normally a GetPath/SetPath/DelPath/PostPath literal.
func biParsePath(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "parse-path", Message: "expected a string"}
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "parse-path", Message: "expected a string"}
	}
	node, err := parser.NewDefaultGrammar().Parse(s.Text)
	if err != nil {
		return nil, err
	}
	if len(node.Code.Exprs) == 0 || len(node.Code.Exprs[0]) == 0 {
		return value.Nil, nil
	}
	return node.Code.Exprs[0][0], nil
}
