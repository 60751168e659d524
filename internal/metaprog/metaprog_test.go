package metaprog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
)

func namedForm(name string) value.GetPath {
	return value.GetPath{PathSpec: value.PathSpec{Segments: []value.Segment{{Kind: value.SegName, Name: name}}}}
}

func injectExpr(operand value.Value) value.Expr {
	return value.Expr{namedForm("inject"), operand}
}

func spliceExpr(operand value.Value) value.Expr {
	return value.Expr{namedForm("splice"), operand}
}

func constOperand() value.Value {
	return namedForm("placeholder")
}

// TestExpand_InjectSubstitutesSingleValue covers §4.9's inject form:
// the operand is evaluated once and replaces the whole (inject X) term
// with a single literal node.
func TestExpand_InjectSubstitutesSingleValue(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{injectExpr(constOperand())}}

	evalExpr := func(expr value.Expr) (value.Value, error) {
		return value.Int(42), nil
	}

	out, err := Expand(code, evalExpr)
	require.NoError(t, err)
	require.True(t, out.Expanded)
	require.Len(t, out.Exprs, 1)
	require.Equal(t, value.Expr{value.Int(42)}, out.Exprs[0])
}

// TestExpand_SpliceStatementFlattensList covers §4.9's statement-
// position splice: a List operand's items replace the single (splice
// X) expression with one expression per item.
func TestExpand_SpliceStatementFlattensList(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{spliceExpr(constOperand())}}

	items := []value.Value{value.Int(1), value.Int(2), value.Int(3)}
	evalExpr := func(expr value.Expr) (value.Value, error) {
		return value.NewList(items), nil
	}

	out, err := Expand(code, evalExpr)
	require.NoError(t, err)
	require.Len(t, out.Exprs, 3)
	for i, item := range items {
		require.Equal(t, value.Expr{item}, out.Exprs[i])
	}
}

// TestExpand_SpliceStatementFlattensCode covers the Code-operand form
// of statement-position splice: the operand's own expressions replace
// the splice expression directly.
func TestExpand_SpliceStatementFlattensCode(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{spliceExpr(constOperand())}}

	inner := value.Code{Exprs: []value.Expr{{value.Int(7)}, {value.Int(8)}}}
	evalExpr := func(expr value.Expr) (value.Value, error) {
		return inner, nil
	}

	out, err := Expand(code, evalExpr)
	require.NoError(t, err)
	require.Equal(t, inner.Exprs, out.Exprs)
}

// TestExpand_SpliceRejectsNonListNonCode covers the type guard on
// splice's operand (§4.9: "X evaluate to a List... or a List/Code").
func TestExpand_SpliceRejectsNonListNonCode(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{spliceExpr(constOperand())}}

	evalExpr := func(expr value.Expr) (value.Value, error) {
		return value.Int(1), nil
	}

	_, err := Expand(code, evalExpr)
	require.ErrorIs(t, err, ErrSpliceType)
}

// TestExpand_AlreadyExpandedIsANoOp covers expansion's idempotence: a
// Code already marked Expanded returns unchanged without ever calling
// the evaluator.
func TestExpand_AlreadyExpandedIsANoOp(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{spliceExpr(constOperand())}, Expanded: true}

	evalExpr := func(expr value.Expr) (value.Value, error) {
		t.Fatal("evalExpr should not be called for already-expanded code")
		return nil, nil
	}

	out, err := Expand(code, evalExpr)
	require.NoError(t, err)
	require.Equal(t, code, out)
}

// TestSpliceOperand_RecognizesShape covers the helper eval.term.go uses
// to detect expression-position splice before running a list element
// as an ordinary single-valued expression.
func TestSpliceOperand_RecognizesShape(t *testing.T) {
	operand := constOperand()
	code := value.Code{Exprs: []value.Expr{spliceExpr(operand)}}

	expr, ok := SpliceOperand(code)
	require.True(t, ok)
	require.Equal(t, value.Expr{operand}, expr)
}

func TestSpliceOperand_RejectsOrdinaryCode(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{{value.Int(1)}}}
	_, ok := SpliceOperand(code)
	require.False(t, ok)
}

func TestSpliceOperand_RejectsInject(t *testing.T) {
	code := value.Code{Exprs: []value.Expr{injectExpr(constOperand())}}
	_, ok := SpliceOperand(code)
	require.False(t, ok)
}

// TestSpliceItems_ReturnsListItems covers expression-position splice's
// narrower contract (§4.9): only a List is legal there.
func TestSpliceItems_ReturnsListItems(t *testing.T) {
	items := []value.Value{value.Int(1), value.Str{Text: "a"}}
	got, err := SpliceItems(value.NewList(items))
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestSpliceItems_RejectsNonList(t *testing.T) {
	_, err := SpliceItems(value.Code{})
	require.ErrorIs(t, err, ErrSpliceType)
}
