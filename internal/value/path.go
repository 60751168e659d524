package value

// SegmentKind distinguishes the shapes a Path segment can take.
type SegmentKind int

const (
	SegRoot SegmentKind = iota
	SegParent
	SegName
	SegQuery
	SegGroup
)

// QueryKind distinguishes the three QueryNode shapes, in the
// precedence order the grammar applies them: slice > filter > simple.
type QueryKind int

const (
	QuerySimple QueryKind = iota
	QuerySlice
	QueryFilter
)

// QueryNode is one bracketed query segment of a path, e.g. `[0]`,
// `[1:3]`, `[> 5]`.
type QueryNode struct {
	Kind QueryKind

	// QuerySimple
	Index Code

	// QuerySlice
	Start Code // may be nil (missing bound)
	End   Code // may be nil (missing bound)

	// QueryFilter
	Op  string // =, !=, >, >=, <, <=, and, or
	RHS Code
}

// Segment is one element of a Path's segment list.
type Segment struct {
	Kind  SegmentKind
	Name  string // SegName
	Query *QueryNode
	Group Code // SegGroup: an expression whose value becomes the next key/index
}

// PathSpec is the shared shape of every Path variant: an ordered
// segment list plus an optional transient configuration Dict attached
// via a `#(...)` block.
type PathSpec struct {
	Segments []Segment
	Config   *Dict
}

// GetPath reads a value at a location.
type GetPath struct{ PathSpec }

func (GetPath) valueTag() {}

// SetPath writes a value at a location.
type SetPath struct{ PathSpec }

func (SetPath) valueTag() {}

// DelPath removes a binding at a location.
type DelPath struct{ PathSpec }

func (DelPath) valueTag() {}

// PostPath submits a value to a location (host POST/submit capability).
type PostPath struct{ PathSpec }

func (PostPath) valueTag() {}

// PipedPath aliases a callable as an infix operator, e.g. the name `+`
// bound to a PipedPath wrapping the `add` GenericFunction.
type PipedPath struct {
	PathSpec
	Target GetPath // the path to the aliased callable
}

func (PipedPath) valueTag() {}

// MultiSetPath destructures a List RHS positionally into several
// target SetPaths, e.g. `(a, b): pair`.
type MultiSetPath struct {
	Targets []SetPath
	Config  *Dict
}

func (MultiSetPath) valueTag() {}

// CanonicalForm renders a path's canonical textual form; the
// transformer and the evaluator use it to name a path in error
// messages.
func CanonicalForm(segs []Segment) string {
	out := ""
	for i, s := range segs {
		switch s.Kind {
		case SegRoot:
			out += "/"
		case SegParent:
			out += "../"
		case SegName:
			if i > 0 {
				out += "."
			}
			out += s.Name
		case SegQuery:
			out += "[query]"
		case SegGroup:
			out += "(group)"
		}
	}
	return out
}
