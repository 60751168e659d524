package value

// Response is an immutable outcome value with a status path and a
// payload. Status "return" is reserved for normal function exits
// (§3, §4.10).
type Response struct {
	Status PathLiteral
	Val    Value
}

func (Response) valueTag() {}

// IsReturn reports whether this Response carries the reserved
// "return" exit status.
func (r Response) IsReturn() bool {
	return r.Status.Name == "return"
}

// PathLiteral is a bare, unresolved path literal used as data — e.g.
// a Response's status, or the argument to host-object(id). It is
// distinct from GetPath/SetPath/etc., which are resolved/written by
// the evaluator; a PathLiteral is never itself evaluated as an
// operation, only compared and passed around (§3).
type PathLiteral struct {
	Name     string // canonical dotted name, e.g. "ok", "err", "not-found"
	Segments []Segment
}

func (PathLiteral) valueTag() {}

// Event is one entry in the per-interpreter ordered side-effect queue
// populated by emit (§3, §4.10).
type Event struct {
	Topics  []string
	Message Value
}
