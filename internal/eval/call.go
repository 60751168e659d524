package eval

import (
	"fmt"

	"slipinterp/internal/dispatch"
	"slipinterp/internal/object"
	"slipinterp/internal/outcome"
	"slipinterp/internal/value"
)

// nativeFn is a stateful builtin — one needing the evaluator or a
// scope (control flow, effects, host capabilities) rather than a pure
// function of its arguments. It is bound directly at a name, not
// routed through GenericFunction/dispatch: there is exactly one
// implementation of `if` or `while`, so multiple dispatch has nothing
// to add. Pure operators (arithmetic, comparisons) are instead plain
// value.Function values with a Native implementation, wrapped in a
// GenericFunction, so user code can add typed methods alongside them
// (§4.8's "every operator is a pipeable generic function").
type nativeFn struct {
	value.Extern
	Name string
	Call func(ev *Evaluator, sc *value.Scope, args []value.Value) (value.Value, error)
}

// callValue invokes any callable Value with already-evaluated
// positional args. Control-flow constructs like `if`/`while`/`foreach`
// still get to treat a Code-valued argument as unevaluated data and
// decide for themselves when (or how many times) to run it: the
// term.go fix makes a bare [...] term self-evaluate to its own AST
// rather than executing, so by the time evalArgs hands nativeFn its
// []value.Value, any Code argument is still exactly that — data, not
// a result — and ordinary evaluated args suffice for both kinds of
// callable.
func (ev *Evaluator) callValue(callee value.Value, args []value.Value, sc *value.Scope) (value.Value, error) {
	switch c := callee.(type) {
	case *value.Function:
		return ev.callFunction(c, args)
	case *value.GenericFunction:
		method, err := dispatch.Select(c, args, ev.resolveAnnotation, ev.evalGuardCode)
		if err != nil {
			return nil, err
		}
		return ev.callFunction(method, args)
	case *nativeFn:
		return c.Call(ev, sc, args)
	default:
		return nil, fmt.Errorf("value of type %s is not callable", value.TypeName(callee))
	}
}

// callFunction runs fn's Native implementation if present, otherwise
// evaluates its Body in a fresh child of its Closure with positional
// (and rest) parameters bound (§4.8 step 3). A ReturnSignal with
// status "return" is caught and unwrapped into the function's ordinary
// result value; any other status keeps unwinding past this call
// boundary (respond with a non-"return" status escapes to the nearest
// do/with-log/run boundary, §4.10).
func (ev *Evaluator) callFunction(fn *value.Function, args []value.Value) (value.Value, error) {
	if fn.Native != nil {
		return fn.Native(args)
	}

	child := value.NewScope(fn.Closure)
	for i, p := range fn.Sig.Positional {
		if i < len(args) {
			child.SetOwn(p.Name, args[i])
		} else {
			child.SetOwn(p.Name, value.Nil)
		}
	}
	if fn.Sig.HasRest {
		var rest []value.Value
		if len(args) > len(fn.Sig.Positional) {
			rest = make([]value.Value, len(args)-len(fn.Sig.Positional))
			copy(rest, args[len(fn.Sig.Positional):])
		}
		child.SetOwn(fn.Sig.Rest, value.NewList(rest))
	}

	result, err := ev.Run(fn.Body, child)
	if err != nil {
		if sig, ok := err.(*outcome.ReturnSignal); ok && sig.Resp.IsReturn() {
			return sig.Resp.Val, nil
		}
		return nil, err
	}
	return result, nil
}

// resolveAnnotation implements dispatch.AnnotationResolver: evaluate
// the annotation Code in the method's closure (§9 shadowing note).
func (ev *Evaluator) resolveAnnotation(code value.Code, closure *value.Scope) (value.Value, error) {
	return ev.Run(code, closure)
}

// evalGuardCode implements dispatch.GuardEvaluator.
func (ev *Evaluator) evalGuardCode(guard value.Code, bindScope *value.Scope) (bool, error) {
	v, err := ev.Run(guard, bindScope)
	if err != nil {
		return false, err
	}
	return value.Truthy(v), nil
}

// synthesizeExamples implements example-driven synthesis (§4.6): when
// fn carries no explicit typed keyword annotations but has recorded
// `|example {...}` literals, produce one typed clone per example by
// inferring each positional parameter's annotation from the concrete
// runtime value the example supplies for it.
func synthesizeExamples(fn *value.Function, ev *Evaluator, sc *value.Scope) []*value.Function {
	if anyTyped(fn.Sig) {
		return nil
	}
	examples := getExamples(fn)
	if len(examples) == 0 {
		return nil
	}

	var out []*value.Function
	for _, ex := range examples {
		positional := make([]value.Param, len(fn.Sig.Positional))
		ok := true
		for i, p := range fn.Sig.Positional {
			found := findKeyword(ex, p.Name)
			if found == nil {
				ok = false
				break
			}
			val, err := ev.evalExampleValue(found, fn.Closure, sc)
			if err != nil {
				ok = false
				break
			}
			positional[i] = value.Param{
				Name:        p.Name,
				Typed:       true,
				Annotations: []value.Code{annotationCodeForValue(val)},
			}
		}
		if !ok {
			continue
		}
		clone := &value.Function{
			Sig:     value.Sig{Positional: positional},
			Body:    fn.Body,
			Closure: fn.Closure,
			Guards:  fn.Guards,
			Native:  fn.Native,
			Meta:    singleExampleMeta(ex),
		}
		out = append(out, clone)
	}
	return out
}

func anyTyped(sig value.Sig) bool {
	for _, p := range sig.Positional {
		if p.Typed {
			return true
		}
	}
	return false
}

func findKeyword(sig value.Sig, name string) *value.Param {
	for i := range sig.Positional {
		if sig.Positional[i].Name == name {
			return &sig.Positional[i]
		}
	}
	return nil
}

// evalExampleValue evaluates an example keyword's value-spec: the
// function's closure is tried first, falling back to the current
// (assignment-site) scope on failure (§4.6). Only a Code/path value
// needs evaluating; the parser always wraps example values as a
// single-expression Code, so this is the only shape expected here.
func (ev *Evaluator) evalExampleValue(p *value.Param, closure *value.Scope, sc *value.Scope) (value.Value, error) {
	if len(p.Annotations) == 0 {
		return value.Nil, nil
	}
	code := p.Annotations[0]
	if v, err := ev.Run(code, closure); err == nil {
		return v, nil
	}
	return ev.Run(code, sc)
}

// annotationCodeForValue wraps a concrete example value as a
// self-evaluating annotation term: a primitive value resolves to its
// PrimType tag; a Scope resolves to itself (matching precisely that
// scope's family, per §4.8's family-set applicability check).
func annotationCodeForValue(v value.Value) value.Code {
	var term value.Value
	if s, ok := v.(*value.Scope); ok {
		term = s
	} else {
		term = value.PrimType{Name: value.TypeName(v)}
	}
	return value.Code{Exprs: []value.Expr{{term}}}
}

// getExamples reads the accumulated `|example {...}` signatures off
// fn.Meta (stored under the reserved "examples" key as a *value.List
// of value.Sig entries).
func getExamples(fn *value.Function) []value.Sig {
	if fn.Meta == nil {
		return nil
	}
	v, ok := fn.Meta.Get("examples")
	if !ok {
		return nil
	}
	list, ok := v.(*value.List)
	if !ok {
		return nil
	}
	out := make([]value.Sig, 0, len(list.Items))
	for _, item := range list.Items {
		if sig, ok := item.(value.Sig); ok {
			out = append(out, sig)
		}
	}
	return out
}

// appendExample records one `|example {...}` literal on fn.Meta,
// creating the list on first use.
func appendExample(fn *value.Function, sig value.Sig) {
	if fn.Meta == nil {
		fn.Meta = value.NewDict()
	}
	var list *value.List
	if existing, ok := fn.Meta.Get("examples"); ok {
		if l, ok := existing.(*value.List); ok {
			list = l
		}
	}
	if list == nil {
		list = value.NewList(nil)
		fn.Meta.Set("examples", list)
	}
	list.Items = append(list.Items, sig)
}

// singleExampleMeta carries over one example signature for test
// discovery, per §4.6's synthesis recipe.
func singleExampleMeta(ex value.Sig) *value.Dict {
	d := value.NewDict()
	examples := value.NewList([]value.Value{ex})
	d.Set("examples", examples)
	return d
}

// valuesEqual implements `=`/`!=` structural equality: reference types
// compare by identity (aliasing is shared identity, §3); value types
// compare structurally, with numeric cross-promotion between Int and
// Float.
func valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Int:
		switch bv := b.(type) {
		case value.Int:
			return av == bv
		case value.Float:
			return value.Float(av) == bv
		}
		return false
	case value.Float:
		switch bv := b.(type) {
		case value.Int:
			return av == value.Float(bv)
		case value.Float:
			return av == bv
		}
		return false
	case value.Bool:
		bv, ok := b.(value.Bool)
		return ok && av == bv
	case value.None:
		_, ok := b.(value.None)
		return ok
	case value.Str:
		bv, ok := b.(value.Str)
		return ok && av.Text == bv.Text
	case value.PathLiteral:
		bv, ok := b.(value.PathLiteral)
		return ok && av.Name == bv.Name
	case *value.List:
		bv, ok := b.(*value.List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !valuesEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *value.Dict:
		bv, ok := b.(*value.Dict)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.Keys {
			bval, ok := bv.Get(k)
			if !ok || !valuesEqual(av.Values[k], bval) {
				return false
			}
		}
		return true
	case *value.Scope:
		bv, ok := b.(*value.Scope)
		return ok && av == bv
	case *value.Function:
		bv, ok := b.(*value.Function)
		return ok && av == bv
	case *value.GenericFunction:
		bv, ok := b.(*value.GenericFunction)
		return ok && av == bv
	case *value.View:
		bv, ok := b.(*value.View)
		return ok && av == bv
	case *value.Channel:
		bv, ok := b.(*value.Channel)
		return ok && av == bv
	case *value.TaskHandle:
		bv, ok := b.(*value.TaskHandle)
		return ok && av == bv
	case value.Bytes:
		bv, ok := b.(value.Bytes)
		return ok && av.Elem == bv.Elem && string(av.Data) == string(bv.Data)
	default:
		// Code, Sig, and the Path variants embed slices and have no
		// meaningfully spec'd equality beyond identity; two distinct
		// literals of these kinds are never equal here.
		return false
	}
}

// objectFamilyContains wraps object.FamilyContains for use inside
// package eval; nothing in the package calls it.
func objectFamilyContains(v value.Value, candidate interface{}) bool {
	return object.FamilyContains(v, candidate)
}
