// Package transformer runs a validation pass over a parsed value.Code
// tree before it is handed to the evaluator. It enforces the rules the
// grammar alone does not: signature well-formedness and path-segment
// placement. Grounded on the teacher's Tool.Validate / registry
// validation style (internal/tools, now removed — see DESIGN.md): walk
// the whole structure, collect every violation found as a
// sentinel-wrapped error, and return them all rather than stopping at
// the first.
package transformer

import (
	"errors"
	"fmt"

	"slipinterp/internal/value"
)

var (
	ErrDuplicateParam  = errors.New("duplicate parameter name")
	ErrRestNotLast     = errors.New("rest parameter must be the last positional parameter")
	ErrMisplacedRoot   = errors.New("root segment '/' may only lead a path")
	ErrMisplacedParent = errors.New("parent segment '../' may only appear in the leading run of a path")
	ErrEmptyMultiSet   = errors.New("multi-set path needs at least two targets")
)

// ValidationError wraps one violation with its approximate source
// location, when known.
type ValidationError struct {
	Err  error
	Hint string
}

func (e *ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Hint)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Status() int { return 400 }

// Validate walks code and every nested value.Code/Sig/Path it contains,
// accumulating every violation it finds.
func Validate(code value.Code) []error {
	v := &validator{}
	v.walkCode(code)
	return v.errs
}

type validator struct {
	errs []error
}

func (v *validator) fail(err error, hint string) {
	v.errs = append(v.errs, &ValidationError{Err: err, Hint: hint})
}

func (v *validator) walkCode(c value.Code) {
	for _, expr := range c.Exprs {
		for _, term := range expr {
			v.walkValue(term)
		}
	}
}

func (v *validator) walkValue(val value.Value) {
	switch t := val.(type) {
	case value.Code:
		v.walkCode(t)
	case value.Sig:
		v.checkSig(t)
	case *value.Function:
		v.checkSig(t.Sig)
		v.walkCode(t.Body)
		for _, g := range t.Guards {
			v.walkCode(g)
		}
	case value.GetPath:
		v.checkPath(t.Segments)
	case value.SetPath:
		v.checkPath(t.Segments)
	case value.DelPath:
		v.checkPath(t.Segments)
	case value.PostPath:
		v.checkPath(t.Segments)
	case value.PipedPath:
		v.checkPath(t.Target.Segments)
	case value.MultiSetPath:
		if len(t.Targets) < 2 {
			v.fail(ErrEmptyMultiSet, "")
		}
		for _, tgt := range t.Targets {
			v.checkPath(tgt.Segments)
		}
	case *value.List:
		for _, item := range t.Items {
			v.walkValue(item)
		}
	case *value.Dict:
		for _, k := range t.Keys {
			v.walkValue(t.Values[k])
		}
	}
}

// checkSig validates parameter-name uniqueness, including the rest
// parameter's name. It does not check rest placement: Sig does not
// record where the rest parameter appeared among the positional ones.
// Annotation alternatives are themselves Code and are walked too, since
// they may contain nested group expressions.
func (v *validator) checkSig(sig value.Sig) {
	seen := make(map[string]bool, len(sig.Positional))
	for _, p := range sig.Positional {
		if seen[p.Name] {
			v.fail(ErrDuplicateParam, p.Name)
		}
		seen[p.Name] = true
		for _, alt := range p.Annotations {
			v.walkCode(alt)
		}
	}
	if sig.HasRest && seen[sig.Rest] {
		v.fail(ErrDuplicateParam, sig.Rest)
	}
	if sig.HasReturn {
		v.walkCode(sig.Return)
	}
}

// checkPath enforces that '/' only ever opens a path (segment 0) and
// that '../' segments, if present, only occur in the path's leading
// run, never interleaved after a Name/Query/Group segment.
func (v *validator) checkPath(segs []value.Segment) {
	sawNonPrefix := false
	for i, s := range segs {
		switch s.Kind {
		case value.SegRoot:
			if i != 0 {
				v.fail(ErrMisplacedRoot, value.CanonicalForm(segs))
			}
		case value.SegParent:
			if sawNonPrefix {
				v.fail(ErrMisplacedParent, value.CanonicalForm(segs))
			}
		case value.SegGroup:
			v.walkCode(s.Group)
			sawNonPrefix = true
		case value.SegQuery:
			if s.Query != nil {
				v.walkCode(s.Query.Index)
				v.walkCode(s.Query.Start)
				v.walkCode(s.Query.End)
				v.walkCode(s.Query.RHS)
			}
			sawNonPrefix = true
		default:
			sawNonPrefix = true
		}
	}
}
