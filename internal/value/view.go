package value

// View is a lazy, immutable query object over a collection (§3, §4.5).
// Constructing or chaining a View never executes the query; resolution
// logic lives in package query, which takes an evaluator + scope as
// explicit arguments rather than storing them here, keeping View a
// pure value per §3's ownership rules.
type View struct {
	Source    Value
	QueryPath []QueryNode
}

func (*View) valueTag() {}

// Chain returns a new View with node appended, leaving the receiver
// untouched (Views are immutable; chaining never mutates in place).
func (v *View) Chain(node QueryNode) *View {
	path := make([]QueryNode, len(v.QueryPath)+1)
	copy(path, v.QueryPath)
	path[len(v.QueryPath)] = node
	return &View{Source: v.Source, QueryPath: path}
}
