package eval

import (
	"fmt"

	"slipinterp/internal/outcome"
	"slipinterp/internal/value"
)

// InstallBuiltins populates root with every builtin SLIP starts a
// script with — arithmetic/comparison/logical operators, collection
// primitives, the object model's verbs, fn/example/guard, outcomes,
// control flow, the scheduler surface, and the host-facing verbs — and
// registers the same GenericFunctions in ev.Builtins for introspection
// (§4.8's "every operator is a pipeable generic function", §9).
//
// Installation happens once per Evaluator/root-scope pair, normally
// from interp.NewInterpreter; nothing here depends on any script
// having run yet.
func InstallBuiltins(ev *Evaluator, root *value.Scope) {
	installPrimTypes(root)
	installStatusLiterals(root)
	installValueLiterals(root)
	installOperators(ev, root)
	installCollectionBuiltins(ev, root)
	installObjectBuiltins(ev, root)
	installFnBuiltins(ev, root)
	installControlBuiltins(ev, root)
	installSchedulerBuiltins(ev, root)
	installMetaBuiltins(ev, root)
	installHostBuiltins(ev, root)
	installBytesBuiltins(ev, root)
}

// installPrimTypes binds each of the twelve reserved primitive
// annotation names to its PrimType marker, so a bare `int`/`string`/...
// term used as a Sig annotation resolves through ordinary lexical
// lookup exactly like a Scope type annotation does (§4.8, §9 shadowing
// note).
func installPrimTypes(root *value.Scope) {
	for _, name := range value.PrimitiveNames {
		root.SetOwn(name, value.PrimType{Name: name})
	}
}

// installStatusLiterals binds the reserved outcome-status path names so
// `response ok 30` and friends resolve "ok" to the PathLiteral
// outcome.Respond/outcome.New expect (§4.10).
func installStatusLiterals(root *value.Scope) {
	root.SetOwn("ok", outcome.StatusOK)
	root.SetOwn("err", outcome.StatusErr)
	root.SetOwn("return", outcome.StatusReturn)
	root.SetOwn("not-found", outcome.StatusNotFound)
	root.SetOwn("invalid", outcome.StatusInvalid)
}

// installValueLiterals binds the bare names `true`, `false`, and
// `none` to their Value forms so they resolve through the same
// lexical get-path lookup as any other name (§4.4) rather than
// needing dedicated lexer/parser tokens. Like the primitive type
// names, an inner scope may shadow them.
func installValueLiterals(root *value.Scope) {
	root.SetOwn("true", value.Bool(true))
	root.SetOwn("false", value.Bool(false))
	root.SetOwn("none", value.None{})
}

// bindPure installs a pure operator/function as a single-method
// GenericFunction: a plain value.Function carrying a Native
// implementation, wrapped so user code can add typed methods at the
// same name (§4.8). arity fixes the number of untyped positional
// parameters the method declares for dispatch's arity partitioning;
// hasRest marks a trailing rest parameter collecting any remainder.
func bindPure(ev *Evaluator, root *value.Scope, name string, arity int, hasRest bool, native func(args []value.Value) (value.Value, error)) {
	positional := make([]value.Param, arity)
	for i := range positional {
		positional[i] = value.Param{Name: fmt.Sprintf("arg%d", i)}
	}
	sig := value.Sig{Positional: positional}
	if hasRest {
		sig.HasRest = true
		sig.Rest = "rest"
	}
	fn := &value.Function{Sig: sig, Native: native}
	gf := &value.GenericFunction{Name: name, Methods: []*value.Function{fn}, Meta: value.NewDict()}
	root.SetOwn(name, gf)
	ev.Builtins.Register(name, gf)
}

// bindNative installs a stateful builtin directly at name, bypassing
// GenericFunction dispatch (call.go's nativeFn design note: "there is
// exactly one implementation of if/while, so multiple dispatch has
// nothing to add").
func bindNative(root *value.Scope, name string, call func(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error)) {
	root.SetOwn(name, &nativeFn{Name: name, Call: call})
}

func installOperators(ev *Evaluator, root *value.Scope) {
	bindPure(ev, root, "add", 2, false, biAdd)
	bindPure(ev, root, "sub", 2, false, biSub)
	bindPure(ev, root, "mul", 2, false, biMul)
	bindPure(ev, root, "div", 2, false, biDiv)
	bindPure(ev, root, "mod", 2, false, biMod)

	bindPure(ev, root, "eq", 2, false, biEq)
	bindPure(ev, root, "neq", 2, false, biNeq)
	bindPure(ev, root, "lt", 2, false, biLt)
	bindPure(ev, root, "lte", 2, false, biLte)
	bindPure(ev, root, "gt", 2, false, biGt)
	bindPure(ev, root, "gte", 2, false, biGte)

	bindPure(ev, root, "not", 1, false, biNot)
	// logical-and/logical-or are short-circuited by name inside
	// evalContinuation/tryShortCircuit before ever reaching this
	// implementation; it only runs when the name is invoked directly as
	// a prefix call rather than as a pipe operator.
	bindPure(ev, root, "logical-and", 2, false, biLogicalAnd)
	bindPure(ev, root, "logical-or", 2, false, biLogicalOr)
}

func numPair(op string, args []value.Value) (value.Float, value.Float, bool, error) {
	if len(args) != 2 {
		return 0, 0, false, &TypeError{Op: op, Message: "expected 2 arguments"}
	}
	af, aIsFloat, aok := asNumber(args[0])
	bf, bIsFloat, bok := asNumber(args[1])
	if !aok || !bok {
		return 0, 0, false, &TypeError{Op: op, Message: fmt.Sprintf("expected numbers, got %s and %s", value.TypeName(args[0]), value.TypeName(args[1]))}
	}
	return af, bf, aIsFloat || bIsFloat, nil
}

func asNumber(v value.Value) (value.Float, bool, bool) {
	switch n := v.(type) {
	case value.Int:
		return value.Float(n), false, true
	case value.Float:
		return n, true, true
	}
	return 0, false, false
}

func biAdd(args []value.Value) (value.Value, error) {
	if len(args) == 2 {
		if as, ok := args[0].(value.Str); ok {
			if bs, ok := args[1].(value.Str); ok {
				return value.Str{Text: as.Text + bs.Text}, nil
			}
		}
		if al, ok := args[0].(*value.List); ok {
			if bl, ok := args[1].(*value.List); ok {
				out := make([]value.Value, 0, len(al.Items)+len(bl.Items))
				out = append(out, al.Items...)
				out = append(out, bl.Items...)
				return value.NewList(out), nil
			}
		}
		if ad, ok := args[0].(*value.Dict); ok {
			if bd, ok := args[1].(*value.Dict); ok {
				out := value.NewDict()
				for _, k := range ad.Keys {
					out.Set(k, ad.Values[k])
				}
				for _, k := range bd.Keys {
					out.Set(k, bd.Values[k])
				}
				return out, nil
			}
		}
	}
	a, b, isFloat, err := numPair("add", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		return a + b, nil
	}
	return value.Int(a) + value.Int(b), nil
}

func biSub(args []value.Value) (value.Value, error) {
	a, b, isFloat, err := numPair("sub", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		return a - b, nil
	}
	return value.Int(a) - value.Int(b), nil
}

func biMul(args []value.Value) (value.Value, error) {
	a, b, isFloat, err := numPair("mul", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		return a * b, nil
	}
	return value.Int(a) * value.Int(b), nil
}

func biDiv(args []value.Value) (value.Value, error) {
	a, b, _, err := numPair("div", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, &TypeError{Op: "div", Message: "division by zero"}
	}
	// Division always produces a Float result (§4.3 numeric promotion).
	return a / b, nil
}

func biMod(args []value.Value) (value.Value, error) {
	a, b, isFloat, err := numPair("mod", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, &TypeError{Op: "mod", Message: "modulo by zero"}
	}
	if isFloat {
		q := a / b
		return a - value.Float(int64(q))*b, nil
	}
	ai, bi := int64(a), int64(b)
	return value.Int(ai % bi), nil
}

func biEq(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "eq", Message: "expected 2 arguments"}
	}
	return value.Bool(valuesEqual(args[0], args[1])), nil
}

func biNeq(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "neq", Message: "expected 2 arguments"}
	}
	return value.Bool(!valuesEqual(args[0], args[1])), nil
}

// compareOrd orders two values numerically or lexically; any other
// pairing is a TypeError, since ordering comparisons aren't defined for
// arbitrary SLIP values.
func compareOrd(op string, a, b value.Value) (int, error) {
	if as, ok := a.(value.Str); ok {
		if bs, ok := b.(value.Str); ok {
			switch {
			case as.Text < bs.Text:
				return -1, nil
			case as.Text > bs.Text:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	af, _, aok := asNumber(a)
	bf, _, bok := asNumber(b)
	if !aok || !bok {
		return 0, &TypeError{Op: op, Message: fmt.Sprintf("cannot compare %s and %s", value.TypeName(a), value.TypeName(b))}
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

func biLt(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "lt", Message: "expected 2 arguments"}
	}
	c, err := compareOrd("lt", args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.Bool(c < 0), nil
}

func biLte(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "lte", Message: "expected 2 arguments"}
	}
	c, err := compareOrd("lte", args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.Bool(c <= 0), nil
}

func biGt(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "gt", Message: "expected 2 arguments"}
	}
	c, err := compareOrd("gt", args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.Bool(c > 0), nil
}

func biGte(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "gte", Message: "expected 2 arguments"}
	}
	c, err := compareOrd("gte", args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.Bool(c >= 0), nil
}

func biNot(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "not", Message: "expected 1 argument"}
	}
	return value.Bool(!value.Truthy(args[0])), nil
}

func biLogicalAnd(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "logical-and", Message: "expected 2 arguments"}
	}
	if !value.Truthy(args[0]) {
		return args[0], nil
	}
	return args[1], nil
}

func biLogicalOr(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "logical-or", Message: "expected 2 arguments"}
	}
	if value.Truthy(args[0]) {
		return args[0], nil
	}
	return args[1], nil
}
