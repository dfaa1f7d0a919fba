package optproxy

import (
	"errors"
	"time"
)

var (
	// ErrJSUnavailable is reported by the JS evaluator of builds without the
	// js_eval tag.
	ErrJSUnavailable = errors.New("optproxy: js evaluator requires the js_eval build tag")
	// ErrJSTimeout interrupts a JS rule that runs past its deadline.
	ErrJSTimeout = errors.New("optproxy: js evaluation timed out")
)

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsEvaluator)

// JSWithProgramCache shares compiled scripts through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(e *jsEvaluator) {
		e.cache = cache
	}
}

// JSWithFunctionRegistry exposes every registered function as a global, plus
// call(name, ...args).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(e *jsEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// JSWithTimeout interrupts any single evaluation running longer than d.
// Zero disables the deadline.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(e *jsEvaluator) {
		e.timeout = d
	}
}

// newJSEvaluator applies opts. Both build variants share it.
func newJSEvaluator(opts []JSEvaluatorOption) *jsEvaluator {
	e := &jsEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}
