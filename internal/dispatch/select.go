package dispatch

import (
	"slipinterp/internal/logging"
	"slipinterp/internal/object"
	"slipinterp/internal/value"
)

// AnnotationResolver resolves one union alternative of a Param's
// Annotations (a value.Code) to either a value.PrimType or a
// *value.Scope, evaluating it in the method's closure at dispatch
// time (§9 shadowing note: annotations resolve lexically at
// definition-or-dispatch time). Injected by package eval to avoid a
// dispatch<->eval import cycle.
type AnnotationResolver func(code value.Code, closure *value.Scope) (value.Value, error)

// GuardEvaluator evaluates a guard Code block with parameters already
// bound in a fresh child scope of the candidate's closure, returning
// its truthiness. Injected by package eval for the same reason.
type GuardEvaluator func(guard value.Code, bindScope *value.Scope) (bool, error)

type candidate struct {
	fn          *value.Function
	order       int
	score       []float64
	guarded     bool
	annotDetail int
	unionSize   int
}

// Select runs the three-phase dispatch algorithm (§4.8) over gf's
// methods for a call with the given positional arguments, returning
// the winning Function or a *DispatchError.
func Select(gf *value.GenericFunction, args []value.Value, resolveAnnot AnnotationResolver, evalGuard GuardEvaluator) (*value.Function, error) {
	argc := len(args)

	exact, variadic, untyped := partitionByArity(gf.Methods, argc)

	tiers := [][]*value.Function{exact, variadic, untyped}
	for _, tier := range tiers {
		if len(tier) == 0 {
			continue
		}
		cands, err := buildCandidates(tier, args, resolveAnnot, evalGuard)
		if err != nil {
			return nil, err
		}
		if len(cands) == 0 {
			continue
		}
		winner, err := rank(cands, gf.Name, argc)
		if err != nil {
			return nil, err
		}
		return winner, nil
	}

	logging.DispatchWarn("no matching method: %s/%d", gf.Name, argc)
	return nil, &DispatchError{Name: gf.Name, Argc: argc}
}

// partitionByArity splits methods into exact-arity, variadic
// (rest-capable with enough fixed params), and fully-untyped
// last-resort tiers. An "untyped" method here means every positional
// param lacks annotations; such methods still must match arity and
// are tried only if no typed candidate in exact/variadic tiers
// applies (§9's resolution of the flagged ambiguity: untyped is
// strictly lowest priority).
func partitionByArity(methods []*value.Function, argc int) (exact, variadic, untyped []*value.Function) {
	for _, m := range methods {
		arity := m.Sig.Arity()
		isUntyped := allUntyped(m.Sig)

		switch {
		case m.Sig.HasRest && argc >= arity:
			if isUntyped {
				untyped = append(untyped, m)
			} else {
				variadic = append(variadic, m)
			}
		case !m.Sig.HasRest && argc == arity:
			if isUntyped {
				untyped = append(untyped, m)
			} else {
				exact = append(exact, m)
			}
		}
	}
	return exact, variadic, untyped
}

func allUntyped(sig value.Sig) bool {
	for _, p := range sig.Positional {
		if p.Typed {
			return false
		}
	}
	return true
}

// buildCandidates applies the applicability gates (per-parameter type
// match + guards) and computes each survivor's score vector.
func buildCandidates(methods []*value.Function, args []value.Value, resolveAnnot AnnotationResolver, evalGuard GuardEvaluator) ([]candidate, error) {
	var out []candidate

	for order, m := range methods {
		applicable, score, detail, unionSize, err := scoreMethod(m, args, resolveAnnot)
		if err != nil {
			return nil, err
		}
		if !applicable {
			continue
		}

		guarded := len(m.Guards) > 0
		if guarded {
			ok, err := allGuardsPass(m, args, evalGuard)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		out = append(out, candidate{
			fn: m, order: order, score: score,
			guarded: guarded, annotDetail: detail, unionSize: unionSize,
		})
	}
	return out, nil
}

func allGuardsPass(m *value.Function, args []value.Value, evalGuard GuardEvaluator) (bool, error) {
	bindScope := value.NewScope(m.Closure)
	bindPositional(bindScope, m.Sig, args)
	for _, g := range m.Guards {
		ok, err := evalGuard(g, bindScope)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func bindPositional(s *value.Scope, sig value.Sig, args []value.Value) {
	for i, p := range sig.Positional {
		if i < len(args) {
			s.SetOwn(p.Name, args[i])
		}
	}
	if sig.HasRest && len(args) > len(sig.Positional) {
		rest := make([]value.Value, len(args)-len(sig.Positional))
		copy(rest, args[len(sig.Positional):])
		s.SetOwn(sig.Rest, value.NewList(rest))
	}
}

// scoreMethod checks per-parameter applicability and computes the
// score vector V (§4.8 phase 2) in the same pass.
func scoreMethod(m *value.Function, args []value.Value, resolveAnnot AnnotationResolver) (applicable bool, score []float64, detail int, unionSize int, err error) {
	argc := len(args)
	score = make([]float64, argc)

	for j := 0; j < argc; j++ {
		if j >= len(m.Sig.Positional) {
			// covered by rest; untyped for scoring purposes
			score[j] = 0.0
			continue
		}
		p := m.Sig.Positional[j]
		if !p.Typed {
			score[j] = 0.0
			continue
		}

		argFamily := object.FamilySet(args[j])
		sigFamily := make(map[interface{}]bool)
		matched := false

		for _, alt := range p.Annotations {
			ann, e := resolveAnnot(alt, m.Closure)
			if e != nil {
				return false, nil, 0, 0, e
			}
			switch a := ann.(type) {
			case value.PrimType:
				sigFamily[a.Name] = true
				if argFamily[a.Name] {
					matched = true
				}
			case *value.Scope:
				collectScopeFamily(a, sigFamily)
				if argFamily[a] {
					matched = true
				}
			}
		}

		if !matched {
			return false, nil, 0, 0, nil
		}

		score[j] = float64(len(sigFamily)) / float64(len(argFamily))
		detail++
		unionSize += len(sigFamily)
	}

	return true, score, detail, unionSize, nil
}

func collectScopeFamily(s *value.Scope, set map[interface{}]bool) {
	for k := range object.FamilySet(s) {
		set[k] = true
	}
}

// rank compares candidates lexicographically and applies the
// four-step tie-break (§4.8 phase 2).
func rank(cands []candidate, name string, argc int) (*value.Function, error) {
	best := []candidate{cands[0]}
	for _, c := range cands[1:] {
		cmp := compareVectors(c.score, best[0].score)
		switch {
		case cmp > 0:
			best = []candidate{c}
		case cmp == 0:
			best = append(best, c)
		}
	}

	if len(best) == 1 {
		return best[0].fn, nil
	}

	// Tie-break step 1: guarded beats unguarded.
	best = filterBest(best, func(c candidate) float64 {
		if c.guarded {
			return 1
		}
		return 0
	})
	if len(best) == 1 {
		return best[0].fn, nil
	}

	// Tie-break step 2: greater total annotation detail.
	best = filterBest(best, func(c candidate) float64 { return float64(c.annotDetail) })
	if len(best) == 1 {
		return best[0].fn, nil
	}

	// Tie-break step 3: larger union of signature family sizes.
	best = filterBest(best, func(c candidate) float64 { return float64(c.unionSize) })
	if len(best) == 1 {
		return best[0].fn, nil
	}

	// Tie-break step 4: earlier definition order. Distinct methods always
	// have distinct order values, so this step always yields a unique
	// winner; it is the last step precisely because it cannot be tied.
	earliest := best[0]
	for _, c := range best[1:] {
		if c.order < earliest.order {
			earliest = c
		}
	}
	return earliest.fn, nil
}

func filterBest(cands []candidate, key func(candidate) float64) []candidate {
	bestVal := key(cands[0])
	for _, c := range cands[1:] {
		if v := key(c); v > bestVal {
			bestVal = v
		}
	}
	var out []candidate
	for _, c := range cands {
		if key(c) == bestVal {
			out = append(out, c)
		}
	}
	return out
}

func compareVectors(a, b []float64) int {
	for i := range a {
		if a[i] > b[i] {
			return 1
		}
		if a[i] < b[i] {
			return -1
		}
	}
	return 0
}
