package eval

import (
	"errors"
	"fmt"

	"slipinterp/internal/hostbridge"
	"slipinterp/internal/query"
	"slipinterp/internal/scope"
	"slipinterp/internal/value"
)

// PathError reports a failed Name-segment resolution with the §6
// 404-class status.
type PathError struct {
	Name string
}

func (e *PathError) Error() string { return fmt.Sprintf("path not found: %s", e.Name) }
func (e *PathError) Status() int   { return 404 }

// schemeNames lists the first-segment names the evaluator delegates to
// the host bridge rather than resolving against a live Scope (§4.4
// step 4).
var schemeNames = map[string]bool{"file": true, "http": true, "https": true}

// resolveGet implements the get-path algorithm (§4.4).
func (ev *Evaluator) resolveGet(p value.GetPath, sc *value.Scope) (value.Value, error) {
	if scheme, ok := leadingScheme(p.Segments); ok {
		return ev.resolveScheme(scheme, p, hostbridge.OpGet, sc, value.Nil)
	}

	cur, rest, err := ev.resolveRoot(p.Segments, sc)
	if err != nil {
		return nil, err
	}
	return ev.walkGet(cur, rest, sc)
}

// resolveRoot consumes the leading Root/Parent run and the first Name
// segment (resolved lexically), returning the remaining segments to
// walk as property/pluck/query steps.
func (ev *Evaluator) resolveRoot(segs []value.Segment, sc *value.Scope) (value.Value, []value.Segment, error) {
	cur := sc
	i := 0
	if i < len(segs) && segs[i].Kind == value.SegRoot {
		cur = scope.Root(sc)
		i++
	}
	for i < len(segs) && segs[i].Kind == value.SegParent {
		if cur.LexicalParent == nil {
			return nil, nil, fmt.Errorf("../: no lexical parent")
		}
		cur = cur.LexicalParent
		i++
	}
	if i >= len(segs) {
		return cur, nil, nil
	}

	first := segs[i]
	switch first.Kind {
	case value.SegName:
		v, _, ok := scope.Lexical(cur, first.Name)
		if !ok {
			return nil, nil, &PathError{Name: first.Name}
		}
		return v, segs[i+1:], nil
	case value.SegGroup:
		v, err := ev.Run(first.Group, cur)
		if err != nil {
			return nil, nil, err
		}
		return v, segs[i+1:], nil
	default:
		return cur, segs[i:], nil
	}
}

// applyRootParent consumes only the leading Root/Parent run (no name
// resolution), returning the scope it lands in plus the unconsumed
// remainder — used by set/del, which need the *owning scope* of a
// leading Name segment rather than the value it currently holds.
func applyRootParent(segs []value.Segment, sc *value.Scope) (*value.Scope, []value.Segment, error) {
	cur := sc
	i := 0
	if i < len(segs) && segs[i].Kind == value.SegRoot {
		cur = scope.Root(sc)
		i++
	}
	for i < len(segs) && segs[i].Kind == value.SegParent {
		if cur.LexicalParent == nil {
			return nil, nil, fmt.Errorf("../: no lexical parent")
		}
		cur = cur.LexicalParent
		i++
	}
	return cur, segs[i:], nil
}

// walkGet walks the remaining segments over "current value" per §4.4
// step 3.
func (ev *Evaluator) walkGet(cur value.Value, segs []value.Segment, sc *value.Scope) (value.Value, error) {
	for _, s := range segs {
		next, err := ev.stepGet(cur, s, sc)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (ev *Evaluator) stepGet(cur value.Value, s value.Segment, sc *value.Scope) (value.Value, error) {
	switch s.Kind {
	case value.SegName:
		return ev.propertyOrPluck(cur, s.Name)
	case value.SegQuery:
		return &value.View{Source: cur, QueryPath: []value.QueryNode{*s.Query}}, nil
	case value.SegGroup:
		key, err := ev.Run(s.Group, sc)
		if err != nil {
			return nil, err
		}
		return ev.dynamicGet(cur, key)
	default:
		return cur, nil
	}
}

func (ev *Evaluator) propertyOrPluck(cur value.Value, name string) (value.Value, error) {
	switch c := cur.(type) {
	case *value.Scope:
		v, ok := scope.Property(c, name)
		if !ok {
			return nil, &PathError{Name: name}
		}
		return v, nil
	case *value.Dict:
		v, ok := c.Get(name)
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case *value.List:
		out := make([]value.Value, len(c.Items))
		for i, item := range c.Items {
			v, err := ev.propertyOrPluck(item, name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return value.NewList(out), nil
	case *value.View:
		resolved, err := ev.resolveView(c, nil)
		if err != nil {
			return nil, err
		}
		return ev.propertyOrPluck(resolved, name)
	default:
		return nil, &PathError{Name: name}
	}
}

func (ev *Evaluator) dynamicGet(cur value.Value, key value.Value) (value.Value, error) {
	switch c := cur.(type) {
	case *value.Dict:
		if s, ok := key.(value.Str); ok {
			v, ok := c.Get(s.Text)
			if !ok {
				return value.Nil, nil
			}
			return v, nil
		}
	case *value.Scope:
		if s, ok := key.(value.Str); ok {
			v, ok := scope.Property(c, s.Text)
			if !ok {
				return nil, &PathError{Name: s.Text}
			}
			return v, nil
		}
	case *value.List:
		if n, ok := asIndex(key); ok {
			v, ok := c.Get(n)
			if !ok {
				return nil, fmt.Errorf("index %d out of range", n)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("cannot use %s as a dynamic key on %s", value.TypeName(key), value.TypeName(cur))
}

func asIndex(v value.Value) (int, bool) {
	switch n := v.(type) {
	case value.Int:
		return int(n), true
	case value.Float:
		return int(n), true
	default:
		return 0, false
	}
}

func leadingScheme(segs []value.Segment) (string, bool) {
	if len(segs) == 0 || segs[0].Kind != value.SegName {
		return "", false
	}
	if schemeNames[segs[0].Name] {
		return segs[0].Name, true
	}
	return "", false
}

func (ev *Evaluator) resolveScheme(scheme string, p value.PathSpec, op hostbridge.Op, sc *value.Scope, payload value.Value) (value.Value, error) {
	if ev.Bridge == nil {
		return nil, &hostbridge.HostBridgeError{Scheme: scheme, Err: hostbridge.ErrNoHostBridge}
	}
	lit := value.PathLiteral{Name: scheme, Segments: p.Segments[1:]}
	return ev.Bridge.Resolve(ev.ctx(), scheme, op, lit, p.Config, payload)
}

// resolveView materializes a View to a concrete value, using sc for
// Simple/Slice bounds (ignored here, nil means "use the view's own
// embedded scope is not tracked" — callers that need a specific scope
// for bound expressions call query.Resolve directly).
func (ev *Evaluator) resolveView(v *value.View, sc *value.Scope) (value.Value, error) {
	if sc == nil {
		sc = ev.rootScopeHint
	}
	return query.Resolve(v, ev.evalQueryExpr(sc), ev.evalQueryFilter(sc), sc)
}

func (ev *Evaluator) evalQueryExpr(sc *value.Scope) query.ExprEvaluator {
	return func(code value.Code, s *value.Scope) (value.Value, error) {
		if s == nil {
			s = sc
		}
		return ev.Run(code, s)
	}
}

// evalQueryFilter builds the §4.5 per-item overlay scope: a fresh
// child of sc holding the item's own fields (for a Scope or Dict item)
// as plain bindings, plus `self` bound to the item, so a bare name
// resolves to the item's field first and to sc's lexical chain after
// that. The filter's RHS is evaluated in that overlay and the item is
// compared to the result with the filter's operator (`[< 50]` keeps the
// items for which `item < 50` holds). Dot-prefixed names (`.field`)
// are not parsed, and a bare name that matches one of the item's
// fields never reaches an outer binding of the same name.
func (ev *Evaluator) evalQueryFilter(sc *value.Scope) query.FilterEvaluator {
	return func(item value.Value, node value.QueryNode) (bool, error) {
		overlay := value.NewScope(sc)
		if s, ok := item.(*value.Scope); ok {
			for _, k := range s.Order {
				overlay.SetOwn(k, s.Data[k])
			}
		} else if d, ok := item.(*value.Dict); ok {
			for _, k := range d.Keys {
				overlay.SetOwn(k, d.Values[k])
			}
		}
		overlay.SetOwn("self", item)

		v, err := ev.Run(node.RHS, overlay)
		if err != nil {
			return false, err
		}
		opName := map[string]string{
			"=": "eq", "==": "eq", "!=": "neq", "<": "lt", "<=": "lte",
			">": "gt", ">=": "gte", "and": "logical-and", "or": "logical-or",
		}[node.Op]
		if opName != "" {
			fn, _, ok := scope.Lexical(sc, opName)
			if !ok {
				return false, fmt.Errorf("filter operator %q is not bound", node.Op)
			}
			if v, err = ev.callValue(fn, []value.Value{item, v}, overlay); err != nil {
				return false, err
			}
		}
		return value.Truthy(v), nil
	}
}

// isUpdateRHS reports whether rhsExpr is an "update" form — led by a
// piped operator (directly, or via a GetPath bound to one) rather than
// a plain value — the shape `counter: + 1` and vectorized `prop[f]: +
// 20` both use (§4.3 assignment first-term note, §4.5 writable views).
func (ev *Evaluator) isUpdateRHS(rhsExpr value.Expr, sc *value.Scope) bool {
	if len(rhsExpr) == 0 {
		return false
	}
	switch t := rhsExpr[0].(type) {
	case value.PipedPath:
		return true
	case value.GetPath:
		v, err := ev.resolveGet(t, sc)
		if err != nil {
			return false
		}
		_, ok := v.(value.PipedPath)
		return ok
	}
	return false
}

// evalExprWithSeed runs the accumulator continuation loop starting
// from an externally supplied seed rather than EMPTY, implementing the
// "standard first-term assignment update" mechanism an update-form RHS
// invokes against the location's current value (§4.3, §4.6 case 1,
// §4.5 writable-view per-location update).
func (ev *Evaluator) evalExprWithSeed(seed value.Value, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	acc := seed
	rest := rhsExpr
	var err error
	for len(rest) > 0 {
		acc, rest, err = ev.evalContinuation(acc, rest, sc)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// evalRHS evaluates a SetPath's RHS expression, seeding the
// accumulator from the current value at the write location (via
// seedGetter) when rhsExpr is an update form, and evaluating it
// ordinarily (acc starts EMPTY) otherwise.
func (ev *Evaluator) evalRHS(seedGetter func() (value.Value, bool), rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	if ev.isUpdateRHS(rhsExpr, sc) {
		if seed, ok := seedGetter(); ok {
			return ev.evalExprWithSeed(seed, rhsExpr, sc)
		}
	}
	return ev.evalExpr(rhsExpr, sc)
}

// evalAssignment implements SetPath/MultiSetPath/DelPath/PostPath
// handling (§4.6).
func (ev *Evaluator) evalAssignment(target value.Value, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	switch t := target.(type) {
	case value.SetPath:
		return ev.evalSet(t, rhsExpr, sc)
	case value.MultiSetPath:
		return ev.evalMultiSet(t, rhsExpr, sc)
	case value.DelPath:
		return ev.evalDel(t, sc)
	case value.PostPath:
		return ev.evalPost(t, rhsExpr, sc)
	default:
		return nil, errors.New("not an assignment target")
	}
}

func (ev *Evaluator) evalSet(t value.SetPath, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	if scheme, ok := leadingScheme(t.Segments); ok {
		rhs, err := ev.evalExpr(rhsExpr, sc)
		if err != nil {
			return nil, err
		}
		return ev.resolveScheme(scheme, t.PathSpec, hostbridge.OpSet, sc, rhs)
	}

	if len(t.Segments) == 1 && t.Segments[0].Kind == value.SegName && !startsWithParent(t.Segments) {
		name := t.Segments[0].Name
		rhs, err := ev.evalRHS(func() (value.Value, bool) { return sc.GetOwn(name) }, rhsExpr, sc)
		if err != nil {
			return nil, err
		}
		ev.bindSimple(sc, name, rhs)
		return rhs, nil
	}

	return ev.evalSetPath(t.Segments, rhsExpr, sc)
}

func startsWithParent(segs []value.Segment) bool {
	return len(segs) > 0 && segs[0].Kind == value.SegParent
}

// bindSimple writes name into sc's own data, merging into an existing
// GenericFunction if rhs is a Function and the path already held one
// (or creating a fresh GenericFunction otherwise), then runs
// example-driven synthesis and the christening trigger (§4.6).
func (ev *Evaluator) bindSimple(sc *value.Scope, name string, rhs value.Value) {
	if fn, ok := rhs.(*value.Function); ok {
		ev.mergeMethod(sc, name, fn)
		return
	}

	if s, ok := rhs.(*value.Scope); ok && !s.IsChristened() {
		ev.Types.Christen(s, name)
	}

	sc.SetOwn(name, rhs)
}

func (ev *Evaluator) mergeMethod(sc *value.Scope, name string, fn *value.Function) {
	synthesized := synthesizeExamples(fn, ev, sc)

	existing, ok := sc.GetOwn(name)
	var gf *value.GenericFunction
	if ok {
		if g, isGF := existing.(*value.GenericFunction); isGF {
			gf = g
		}
	}
	if gf == nil {
		gf = &value.GenericFunction{Name: name, Meta: value.NewDict()}
	}
	if len(synthesized) > 0 {
		for _, m := range synthesized {
			gf.AddMethod(m)
		}
	} else {
		gf.AddMethod(fn)
	}
	sc.SetOwn(name, gf)
}

func (ev *Evaluator) evalSetPath(segs []value.Segment, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	base, afterPrefix, err := applyRootParent(segs, sc)
	if err != nil {
		return nil, err
	}
	if len(afterPrefix) == 1 && afterPrefix[0].Kind == value.SegName {
		// segs was Root/Parent*+Name (e.g. `../x:`): rebind the first
		// existing binding found on the lexical chain, per §4.6 case 5.
		name := afterPrefix[0].Name
		seedGetter := func() (value.Value, bool) {
			for cur := base; cur != nil; cur = cur.LexicalParent {
				if v, ok := cur.GetOwn(name); ok {
					return v, true
				}
			}
			return nil, false
		}
		rhs, err := ev.evalRHS(seedGetter, rhsExpr, sc)
		if err != nil {
			return nil, err
		}
		if !scope.SetLexical(base, name, rhs) {
			ev.bindSimple(base, name, rhs)
		}
		return rhs, nil
	}

	owner, rest, err := ev.resolveRoot(segs, sc)
	if err != nil {
		return nil, err
	}

	if rhs, handled, err := ev.evalVectorizedSet(owner, rest, rhsExpr, sc); handled {
		return rhs, err
	}

	target := owner
	for _, s := range rest[:len(rest)-1] {
		next, err := ev.stepGet(target, s, sc)
		if err != nil {
			return nil, err
		}
		target = next
	}
	last := rest[len(rest)-1]

	seedGetter := func() (value.Value, bool) {
		v, err := ev.stepGet(target, last, sc)
		if err != nil {
			return nil, false
		}
		return v, true
	}
	rhs, err := ev.evalRHS(seedGetter, rhsExpr, sc)
	if err != nil {
		return nil, err
	}
	if err := ev.setStep(target, last, rhs, sc); err != nil {
		return nil, err
	}
	return rhs, nil
}

func (ev *Evaluator) setStep(target value.Value, s value.Segment, rhs value.Value, sc *value.Scope) error {
	switch s.Kind {
	case value.SegName:
		switch t := target.(type) {
		case *value.Scope:
			ev.bindSimple(t, s.Name, rhs)
			return nil
		case *value.Dict:
			t.Set(s.Name, rhs)
			return nil
		case *value.List:
			for _, item := range t.Items {
				if err := ev.setStep(item, s, rhs, sc); err != nil {
					return err
				}
			}
			return nil
		}
	case value.SegGroup:
		key, err := ev.Run(s.Group, sc)
		if err != nil {
			return err
		}
		return ev.dynamicSet(target, key, rhs)
	}
	return fmt.Errorf("cannot set segment on %s", value.TypeName(target))
}

func (ev *Evaluator) dynamicSet(target value.Value, key value.Value, rhs value.Value) error {
	switch t := target.(type) {
	case *value.Dict:
		if s, ok := key.(value.Str); ok {
			t.Set(s.Text, rhs)
			return nil
		}
	case *value.Scope:
		if s, ok := key.(value.Str); ok {
			ev.bindSimple(t, s.Text, rhs)
			return nil
		}
	case *value.List:
		if n, ok := asIndex(key); ok {
			if !t.Set(n, rhs) {
				return fmt.Errorf("index %d out of range", n)
			}
			return nil
		}
	}
	return fmt.Errorf("cannot use %s as a dynamic key on %s", value.TypeName(key), value.TypeName(target))
}

// evalVectorizedSet implements SetPath whenever the remaining segments
// contain a Query anywhere, not only trailing (§4.5 writable views,
// §4.6 case 4). Two shapes both occur in practice and need different
// location math:
//
//   - `list[slice].property: v`  (query, then a field): the query
//     selects whole items out of list; each matched item is then
//     written through at .property.
//   - `players.hp[< 50]: v`  (a field pluck, then a query; §8 scenario
//     3): the query must filter over the *plucked column*, but the
//     write has to land back on the original item's field, not on the
//     disposable plucked copy pluck produces.
//
// handled is false when rest has no Query segment at all, so the
// caller falls back to ordinary scalar set-path.
func (ev *Evaluator) evalVectorizedSet(owner value.Value, rest []value.Segment, rhsExpr value.Expr, sc *value.Scope) (value.Value, bool, error) {
	qi := -1
	for i, s := range rest {
		if s.Kind == value.SegQuery {
			qi = i
			break
		}
	}
	if qi < 0 {
		return nil, false, nil
	}
	preSegs := rest[:qi]
	postSegs := rest[qi+1:]
	node := *rest[qi].Query

	if len(preSegs) == 1 && preSegs[0].Kind == value.SegName {
		if list, ok := owner.(*value.List); ok {
			rhs, err := ev.evalColumnSet(list, preSegs[0].Name, node, postSegs, rhsExpr, sc)
			return rhs, true, err
		}
	}

	base := owner
	for _, s := range preSegs {
		next, err := ev.stepGet(base, s, sc)
		if err != nil {
			return nil, true, err
		}
		base = next
	}
	v, ok := base.(*value.View)
	if !ok {
		v = &value.View{Source: base}
	}
	v = v.Chain(node)

	locs, err := query.ResolveToLocations(v, ev.evalQueryExpr(sc), ev.evalQueryFilter(sc), sc)
	if err != nil {
		return nil, true, err
	}
	rhs, err := ev.writeResolvedLocations(locs, postSegs, rhsExpr, sc)
	return rhs, true, err
}

// evalColumnSet resolves the query over list's plucked field column
// (so a bare-value predicate like `< 50` compares the field values
// directly) and then maps each matching column index back onto the
// original item in list at that same index, since pluck preserves
// order and length (§4.5's vectorized pluck rule).
func (ev *Evaluator) evalColumnSet(list *value.List, field string, node value.QueryNode, postSegs []value.Segment, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	column := make([]value.Value, len(list.Items))
	for i, item := range list.Items {
		v, err := ev.propertyOrPluck(item, field)
		if err != nil {
			return nil, err
		}
		column[i] = v
	}
	columnView := &value.View{Source: value.NewList(column), QueryPath: []value.QueryNode{node}}
	colLocs, err := query.ResolveToLocations(columnView, ev.evalQueryExpr(sc), ev.evalQueryFilter(sc), sc)
	if err != nil {
		return nil, err
	}

	locs := make([]query.Location, len(colLocs))
	for i, cl := range colLocs {
		loc, err := itemFieldLocation(list.Items[cl.Index], field)
		if err != nil {
			return nil, err
		}
		locs[i] = loc
	}

	return ev.writeResolvedLocations(locs, postSegs, rhsExpr, sc)
}

func itemFieldLocation(item value.Value, field string) (query.Location, error) {
	switch t := item.(type) {
	case *value.Dict:
		return query.Location{Dict: t, Key: field}, nil
	case *value.Scope:
		return query.Location{Scope: t, Key: field}, nil
	default:
		return query.Location{}, fmt.Errorf("cannot set field %q on %s", field, value.TypeName(item))
	}
}

// writeResolvedLocations implements the broadcast/pairwise/update
// write rules (§4.5) over already-resolved locations, writing through
// an optional further field path at each one (§4.6 case 4's trailing
// `.property`).
func (ev *Evaluator) writeResolvedLocations(locs []query.Location, postSegs []value.Segment, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	get := func(loc query.Location) (value.Value, bool) {
		cur, ok := loc.Get()
		if !ok || len(postSegs) == 0 {
			return cur, ok
		}
		v, err := ev.walkGet(cur, postSegs, sc)
		if err != nil {
			return nil, false
		}
		return v, true
	}
	set := func(loc query.Location, v value.Value) error {
		if len(postSegs) == 0 {
			loc.Set(v)
			return nil
		}
		cur, ok := loc.Get()
		if !ok {
			return fmt.Errorf("location has no current value")
		}
		target := cur
		for _, s := range postSegs[:len(postSegs)-1] {
			next, err := ev.stepGet(target, s, sc)
			if err != nil {
				return err
			}
			target = next
		}
		return ev.setStep(target, postSegs[len(postSegs)-1], v, sc)
	}

	if ev.isUpdateRHS(rhsExpr, sc) {
		written := make([]value.Value, len(locs))
		for i, loc := range locs {
			seed, _ := get(loc)
			nv, err := ev.evalExprWithSeed(seed, rhsExpr, sc)
			if err != nil {
				return nil, err
			}
			if err := set(loc, nv); err != nil {
				return nil, err
			}
			written[i] = nv
		}
		return value.NewList(written), nil
	}

	rhs, err := ev.evalExpr(rhsExpr, sc)
	if err != nil {
		return nil, err
	}

	if list, ok := rhs.(*value.List); ok {
		if len(list.Items) != len(locs) {
			return nil, fmt.Errorf("view assignment length mismatch: %d locations, %d values", len(locs), len(list.Items))
		}
		for i, loc := range locs {
			if err := set(loc, list.Items[i]); err != nil {
				return nil, err
			}
		}
		return rhs, nil
	}

	for _, loc := range locs {
		if err := set(loc, rhs); err != nil {
			return nil, err
		}
	}
	return rhs, nil
}

func (ev *Evaluator) evalMultiSet(t value.MultiSetPath, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	rhs, err := ev.evalExpr(rhsExpr, sc)
	if err != nil {
		return nil, err
	}
	list, ok := rhs.(*value.List)
	if !ok {
		return nil, fmt.Errorf("multi-set rhs must be a list, got %s", value.TypeName(rhs))
	}
	if len(list.Items) != len(t.Targets) {
		return nil, fmt.Errorf("multi-set length mismatch: %d targets, %d values", len(t.Targets), len(list.Items))
	}
	for i, tgt := range t.Targets {
		name := tgt.Segments[0].Name
		ev.bindSimple(sc, name, list.Items[i])
	}
	return rhs, nil
}

func (ev *Evaluator) evalDel(t value.DelPath, sc *value.Scope) (value.Value, error) {
	if scheme, ok := leadingScheme(t.Segments); ok {
		return ev.resolveScheme(scheme, t.PathSpec, hostbridge.OpDel, sc, value.Nil)
	}

	base, afterPrefix, err := applyRootParent(t.Segments, sc)
	if err != nil {
		return nil, err
	}
	if len(afterPrefix) == 1 && afterPrefix[0].Kind == value.SegName {
		name := afterPrefix[0].Name
		for cur := base; cur != nil; cur = cur.LexicalParent {
			if _, ok := cur.GetOwn(name); ok {
				cur.DeleteOwn(name)
				return value.Nil, nil
			}
		}
		return nil, &PathError{Name: name}
	}

	owner, rest, err := ev.resolveRoot(t.Segments, sc)
	if err != nil {
		return nil, err
	}
	target := owner
	for _, s := range rest[:len(rest)-1] {
		next, err := ev.stepGet(target, s, sc)
		if err != nil {
			return nil, err
		}
		target = next
	}
	last := rest[len(rest)-1]
	if last.Kind != value.SegName {
		return nil, fmt.Errorf("unsupported del-path segment")
	}
	switch owner := target.(type) {
	case *value.Scope:
		if !owner.DeleteOwn(last.Name) {
			return nil, &PathError{Name: last.Name}
		}
		scope.PruneChildIfEmpty(sc, last.Name, owner)
	case *value.Dict:
		owner.Delete(last.Name)
	default:
		return nil, fmt.Errorf("cannot delete from %s", value.TypeName(target))
	}
	return value.Nil, nil
}

func (ev *Evaluator) evalPost(t value.PostPath, rhsExpr value.Expr, sc *value.Scope) (value.Value, error) {
	rhs, err := ev.evalExpr(rhsExpr, sc)
	if err != nil {
		return nil, err
	}
	scheme, ok := leadingScheme(t.Segments)
	if !ok {
		return nil, fmt.Errorf("post-path requires a scheme-qualified target")
	}
	return ev.resolveScheme(scheme, t.PathSpec, hostbridge.OpPost, sc, rhs)
}

// renderInterp renders an interpolated string through the host bridge
// (§4.4/§4.12: Render is a host capability, not a core requirement).
// Only a nil Bridge falls back to the plain text; a Bridge that refuses
// rendering, such as the default NullBridge, makes the evaluation fail
// with its error.
func (ev *Evaluator) renderInterp(s value.Str, sc *value.Scope) (value.Value, error) {
	if ev.Bridge == nil {
		return s, nil
	}
	rendered, err := ev.Bridge.Render(s.Text, sc)
	if err != nil {
		return nil, err
	}
	return value.Str{Text: rendered, Interp: true}, nil
}

// synthesizeExamples implements example-driven synthesis (§4.6),
// defined in call.go where dispatch-adjacent helpers live.
