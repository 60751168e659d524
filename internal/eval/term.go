package eval

import (
	"slipinterp/internal/metaprog"
	"slipinterp/internal/value"
)

// evalTerm evaluates a single term in isolation: literals and Sig
// values are self-evaluating; GetPath resolves through the scope
// chain/query engine; Code expands (if not already) and evaluates to
// the expanded Code itself without running it; List/Dict literals
// re-evaluate each Code-wrapped element into a fresh runtime
// collection (§4.3).
func (ev *Evaluator) evalTerm(term value.Value, sc *value.Scope) (value.Value, error) {
	switch t := term.(type) {
	case value.GetPath:
		return ev.resolveGet(t, sc)

	case value.Code:
		// Code is data (§3): a bare [...] term self-evaluates to its own
		// (definition-time-expanded) AST rather than running, so that
		// builtins receiving a Code argument — fn's body, if/while/loop's
		// branches, do/with-log/run's block — get the unevaluated tree and
		// decide for themselves when (or how many times) to run it.
		expanded, err := metaprog.Expand(t, ev.evalExprForMeta(sc))
		if err != nil {
			return nil, err
		}
		return expanded, nil

	case *value.List:
		items := make([]value.Value, 0, len(t.Items))
		for _, item := range t.Items {
			spliced, err := ev.evalListElementExpand(item, sc)
			if err != nil {
				return nil, err
			}
			items = append(items, spliced...)
		}
		return value.NewList(items), nil

	case *value.Dict:
		d := value.NewDict()
		for _, k := range t.Keys {
			v, err := ev.evalListElement(t.Values[k], sc)
			if err != nil {
				return nil, err
			}
			d.Set(k, v)
		}
		return d, nil

	case value.Str:
		if t.Interp {
			return ev.renderInterp(t, sc)
		}
		return t, nil

	default:
		// Int, Float, Bool, None, Bytes, Sig, PipedPath, Function,
		// GenericFunction, *Scope, Response, *View, *Channel, *TaskHandle,
		// HostObject: all self-evaluating as terms.
		return term, nil
	}
}

// evalListElement evaluates one literal-dict element, stored by the
// parser as a single-expression value.Code wrapper.
func (ev *Evaluator) evalListElement(v value.Value, sc *value.Scope) (value.Value, error) {
	c, ok := v.(value.Code)
	if !ok {
		return ev.evalTerm(v, sc)
	}
	return ev.Run(c, sc)
}

// evalListElementExpand is evalListElement for list-literal elements,
// but first checks whether the element is shaped like `(splice X)`
// (§4.9 expression-position splice): if so, X is evaluated once and
// its items replace the single element with zero or more items in the
// result list, instead of contributing exactly one value.
func (ev *Evaluator) evalListElementExpand(v value.Value, sc *value.Scope) ([]value.Value, error) {
	c, ok := v.(value.Code)
	if !ok {
		single, err := ev.evalTerm(v, sc)
		if err != nil {
			return nil, err
		}
		return []value.Value{single}, nil
	}
	if expr, ok := metaprog.SpliceOperand(c); ok {
		operand, err := ev.evalExpr(expr, sc)
		if err != nil {
			return nil, err
		}
		items, err := metaprog.SpliceItems(operand)
		if err != nil {
			return nil, err
		}
		return items, nil
	}
	single, err := ev.Run(c, sc)
	if err != nil {
		return nil, err
	}
	return []value.Value{single}, nil
}
