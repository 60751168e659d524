package eval

import (
	"strings"

	"slipinterp/internal/hostbridge"
	"slipinterp/internal/parser"
	"slipinterp/internal/transformer"
	"slipinterp/internal/value"
)

// installHostBuiltins wires the two entry points into the embedding
// host (§4.12): host-object looks up a capability by id, import loads
// and evaluates another module's source exactly once, caching the
// resulting scope.
func installHostBuiltins(ev *Evaluator, root *value.Scope) {
	bindNative(root, "host-object", biHostObject)
	bindNative(root, "import", biImport)
	bindNative(root, "defined-methods", biDefinedMethods)
}

func biHostObject(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "host-object", Message: "expected a host id string"}
	}
	id, ok := args[0].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "host-object", Message: "expected a string id"}
	}
	obj, ok := ev.Bridge.HostObject(id.Text)
	if !ok {
		return value.Nil, nil
	}
	return obj, nil
}

// biImport loads canonical once: a cache hit returns the scope it
// produced the first time, a cache miss reads the source through the
// bridge, parses and validates it, evaluates it into a fresh module
// scope rooted at the interpreter's root, and caches the result before
// handing it back (§4.12).
func biImport(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "import", Message: "expected a canonical module path"}
	}
	canonical, ok := args[0].(value.Str)
	if !ok {
		return nil, &TypeError{Op: "import", Message: "expected a string path"}
	}
	cached, err := ev.Bridge.Import(ev.ctx(), canonical.Text)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	rel := strings.TrimPrefix(canonical.Text, "file://")
	text, err := ev.Bridge.Resolve(ev.ctx(), "file", hostbridge.OpGet, value.PathLiteral{Name: rel}, nil, value.Nil)
	if err != nil {
		return nil, err
	}
	src, ok := text.(value.Str)
	if !ok {
		return nil, &TypeError{Op: "import", Message: "module source did not resolve to a string"}
	}

	node, err := parser.NewDefaultGrammar().Parse(src.Text)
	if err != nil {
		return nil, err
	}
	if errs := transformer.Validate(node.Code); len(errs) > 0 {
		return nil, errs[0]
	}

	root := ev.rootScopeHint
	if root == nil {
		root = sc
	}
	modScope := value.NewScope(root)
	if _, err := ev.Run(node.Code, modScope); err != nil {
		return nil, err
	}

	if fb, ok := ev.Bridge.(*hostbridge.FileBridge); ok {
		fb.CacheImport(canonical.Text, modScope)
	}
	return modScope, nil
}

// biDefinedMethods reports the dispatch registry's capability listing:
// every generic function name currently registered and how many there
// are, the surface a host embedder uses to enumerate what a script can
// call without parsing source for prefix calls.
func biDefinedMethods(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, &TypeError{Op: "defined-methods", Message: "expected 0 arguments"}
	}
	names := ev.Builtins.Names()
	items := make([]value.Value, len(names))
	for i, n := range names {
		items[i] = value.Str{Text: n}
	}
	out := value.NewDict()
	out.Set("names", value.NewList(items))
	out.Set("count", value.Int(ev.Builtins.Count()))
	return out, nil
}
