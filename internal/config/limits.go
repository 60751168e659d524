package config

// Limits enforces evaluator-wide resource constraints. These exist so a
// hostile or runaway script cannot exhaust the embedding process: the
// evaluator checks them on every recursive Eval call and every
// accumulator step, converting a would-be stack overflow or infinite
// loop into an ordinary runtime error.
type Limits struct {
	// MaxEvalDepth bounds recursive Eval nesting (call frames, nested
	// groups, nested control-flow bodies).
	MaxEvalDepth int `yaml:"max_eval_depth" json:"max_eval_depth"`

	// MaxSteps bounds the total number of expression evaluations across
	// a single top-level Run/RunWith call.
	MaxSteps int64 `yaml:"max_steps" json:"max_steps"`

	// MaxSideEffectQueue bounds the length of the per-interpreter emit
	// queue; emit beyond this raises a runtime error rather than growing
	// without bound.
	MaxSideEffectQueue int `yaml:"max_side_effect_queue" json:"max_side_effect_queue"`

	// DefaultSchemeTimeout is parsed by Config.GetDefaultSchemeTimeout;
	// the evaluator does not apply it to scheme-handler calls.
	DefaultSchemeTimeout string `yaml:"default_scheme_timeout" json:"default_scheme_timeout"`
}
