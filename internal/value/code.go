package value

// Expr is one expression: an ordered sequence of terms evaluated by
// the accumulator loop (§4.3). A term is any Value — literals,
// paths, nested Code (groups), Sig, etc.
type Expr []Value

// Code is an ordered sequence of expressions plus a flag recording
// whether inject/splice expansion has already run (§4.9). Expansion
// is idempotent: re-running it on an already-expanded Code is a no-op.
type Code struct {
	Exprs    []Expr
	Expanded bool
}

func (Code) valueTag() {}

// PrimType is the marker value bound to the twelve reserved primitive
// annotation names (int, float, string, i-string, list, dict, scope,
// function, code, path, boolean, none) in the root scope, so that
// Sig annotations resolve through the same lexical-lookup path as
// Scope type annotations (§4.8, §9 shadowing note).
type PrimType struct{ Name string }

func (PrimType) valueTag() {}

// PrimitiveNames lists the annotation names with a reserved
// primitive meaning.
var PrimitiveNames = []string{
	"int", "float", "string", "i-string", "list", "dict", "scope",
	"function", "code", "path", "boolean", "none",
}

// Param is one declared signature parameter.
type Param struct {
	Name        string
	Typed       bool
	Annotations []Code // union alternatives; each evaluates to PrimType or *Scope
}

// Sig is a declarative signature, inspected as data and never
// evaluated directly (§3).
type Sig struct {
	Positional []Param
	Rest       string // "" if no rest parameter
	HasRest    bool
	Return     Code // optional return annotation
	HasReturn  bool
}

func (Sig) valueTag() {}

// Arity returns the number of fixed positional parameters.
func (s Sig) Arity() int {
	return len(s.Positional)
}

// Function is a closure: a declarative signature, an unevaluated body,
// the scope it closes over, and metadata (examples, guards, doc, type).
//
// Native, when non-nil, is a Go-implemented method body used instead of
// evaluating Body: the builtin operators (arithmetic, comparison,
// collection primitives) are ordinary Functions with a Native
// implementation rather than a SLIP-code Body, so they participate in
// the same multiple-dispatch machinery as user-defined methods (§4.8
// of the expanded spec: "every operator is a pipeable generic
// function"). Native takes already-evaluated positional arguments
// (plus any rest-collected tail) and never sees a Scope.
type Function struct {
	Sig     Sig
	Body    Code
	Closure *Scope
	Guards  []Code
	Meta    *Dict
	Native  func(args []Value) (Value, error)
}

func (*Function) valueTag() {}

// GenericFunction is the single callable bound at a name; it holds an
// ordered list of methods selected by multiple dispatch (§4.8).
type GenericFunction struct {
	Name    string
	Methods []*Function
	Meta    *Dict
}

func (*GenericFunction) valueTag() {}

// AddMethod appends a method in definition order, used both by direct
// assignment merging (§4.6) and by example-driven synthesis.
func (g *GenericFunction) AddMethod(f *Function) {
	g.Methods = append(g.Methods, f)
}
