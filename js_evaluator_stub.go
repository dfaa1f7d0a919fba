//go:build !js_eval

package optproxy

import "time"

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// NewJSEvaluator returns an evaluator that fails every rule with
// ErrJSUnavailable, so constraints fall back to their defaults and the failure
// shows up in diagnostics and the evaluator log. Build with -tags js_eval for
// the goja engine.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return newJSEvaluator(opts)
}

func (e *jsEvaluator) engine() string { return "js" }

func (e *jsEvaluator) Evaluate(RuleContext, string) (any, error) {
	return nil, wrapEvaluatorError("js", ErrJSUnavailable)
}

func (e *jsEvaluator) Compile(string) (CompiledRule, error) {
	return nil, wrapEvaluatorError("js", ErrJSUnavailable)
}

func jsEvaluatorAvailable() bool {
	return false
}
