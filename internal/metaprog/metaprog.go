// Package metaprog implements inject/splice tree expansion (§4.9): a
// purely substitutional rewrite of an unexpanded value.Code, run once
// at the moment a Code literal is produced and again at run/run-with's
// execution boundary. Expansion never executes user code beyond
// evaluating the injected/spliced expression itself.
package metaprog

import (
	"errors"
	"fmt"

	"slipinterp/internal/logging"
	"slipinterp/internal/value"
)

// ErrSpliceType is returned when splice's operand does not evaluate to
// a List or Code.
var ErrSpliceType = errors.New("splice operand must evaluate to a list or code")

// ExprEvaluator evaluates one expression in the caller's current scope.
// Injected by package eval to avoid an eval<->metaprog import cycle.
type ExprEvaluator func(expr value.Expr) (value.Value, error)

// Expand returns code with every (inject X)/(splice X) form replaced,
// using evalExpr to evaluate each X. If code is already marked
// Expanded, it is returned unchanged (expansion is idempotent, §4.9).
func Expand(code value.Code, evalExpr ExprEvaluator) (value.Code, error) {
	if code.Expanded {
		return code, nil
	}

	out := value.Code{Exprs: make([]value.Expr, 0, len(code.Exprs)), Expanded: true}
	for _, expr := range code.Exprs {
		expanded, err := expandExprs(expr, evalExpr)
		if err != nil {
			return value.Code{}, err
		}
		out.Exprs = append(out.Exprs, expanded...)
	}
	if len(out.Exprs) != len(code.Exprs) {
		logging.MetaprogDebug("expansion changed expression count %d -> %d", len(code.Exprs), len(out.Exprs))
	}
	return out, nil
}

// expandExprs expands a single expression, returning one or more
// expressions (more than one only if the expression itself reduces to
// a statement-position splice).
func expandExprs(expr value.Expr, evalExpr ExprEvaluator) ([]value.Expr, error) {
	if form, x, ok := metaForm(expr); ok && len(expr) == 2 {
		switch form {
		case "inject":
			v, err := evalExpr(value.Expr{x})
			if err != nil {
				return nil, err
			}
			return []value.Expr{{v}}, nil
		case "splice":
			v, err := evalExpr(value.Expr{x})
			if err != nil {
				return nil, err
			}
			return spliceStatement(v)
		}
	}

	out := make(value.Expr, 0, len(expr))
	for _, term := range expr {
		rewritten, err := expandTerm(term, evalExpr)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten)
	}
	return []value.Expr{out}, nil
}

// expandTerm recursively expands nested Code (group segments, literal
// Code values, Function bodies) so inject/splice can appear anywhere
// an expression can.
func expandTerm(term value.Value, evalExpr ExprEvaluator) (value.Value, error) {
	switch t := term.(type) {
	case value.Code:
		return Expand(t, evalExpr)
	case value.GetPath:
		segs, err := expandSegments(t.Segments, evalExpr)
		if err != nil {
			return nil, err
		}
		t.Segments = segs
		return t, nil
	case value.SetPath:
		segs, err := expandSegments(t.Segments, evalExpr)
		if err != nil {
			return nil, err
		}
		t.Segments = segs
		return t, nil
	case value.DelPath:
		segs, err := expandSegments(t.Segments, evalExpr)
		if err != nil {
			return nil, err
		}
		t.Segments = segs
		return t, nil
	case value.PostPath:
		segs, err := expandSegments(t.Segments, evalExpr)
		if err != nil {
			return nil, err
		}
		t.Segments = segs
		return t, nil
	default:
		return term, nil
	}
}

func expandSegments(segs []value.Segment, evalExpr ExprEvaluator) ([]value.Segment, error) {
	out := make([]value.Segment, len(segs))
	for i, s := range segs {
		if s.Kind == value.SegGroup {
			expanded, err := Expand(s.Group, evalExpr)
			if err != nil {
				return nil, err
			}
			s.Group = expanded
		}
		out[i] = s
	}
	return out, nil
}

// metaForm recognizes an expression shaped like `inject X`/`splice X`:
// exactly two terms, the first a GetPath whose sole segment is the Name
// inject or splice.
func metaForm(expr value.Expr) (string, value.Value, bool) {
	if len(expr) != 2 {
		return "", nil, false
	}
	gp, ok := expr[0].(value.GetPath)
	if !ok || len(gp.Segments) != 1 || gp.Segments[0].Kind != value.SegName {
		return "", nil, false
	}
	name := gp.Segments[0].Name
	if name != "inject" && name != "splice" {
		return "", nil, false
	}
	return name, expr[1], true
}

// SpliceOperand reports whether code is a single expression shaped like
// `(splice X)`, returning X's expression for the caller to evaluate.
// Used by list literal construction (§4.9: splice in expression
// position flattens a List result into the surrounding literal) to
// recognize a splice element before it is run as an ordinary
// single-valued expression.
func SpliceOperand(code value.Code) (value.Expr, bool) {
	if len(code.Exprs) != 1 {
		return nil, false
	}
	form, x, ok := metaForm(code.Exprs[0])
	if !ok || form != "splice" {
		return nil, false
	}
	return value.Expr{x}, true
}

// SpliceItems normalizes a splice operand's evaluated value into the
// sequence of elements it contributes in expression position: only a
// List is legal there (§4.9).
func SpliceItems(v value.Value) ([]value.Value, error) {
	l, ok := v.(*value.List)
	if !ok {
		return nil, fmt.Errorf("splice: %w", ErrSpliceType)
	}
	return l.Items, nil
}

func spliceStatement(v value.Value) ([]value.Expr, error) {
	switch t := v.(type) {
	case *value.List:
		out := make([]value.Expr, len(t.Items))
		for i, item := range t.Items {
			out[i] = value.Expr{item}
		}
		return out, nil
	case value.Code:
		return t.Exprs, nil
	default:
		return nil, fmt.Errorf("splice: %w", ErrSpliceType)
	}
}

