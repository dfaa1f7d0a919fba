package optproxy

import (
	"fmt"
	"time"
)

// WithEvaluator replaces the host's default expr evaluator, used both for
// option constraints and for Evaluate.
func WithEvaluator(evaluator Evaluator) HostOption {
	return func(cfg *hostConfig) {
		cfg.evaluator = evaluator
	}
}

// Evaluate runs expr against the serialized snapshot of the host. Top-level
// option names are bound as variables.
func (h *Host) Evaluate(expr string) (Response[any], error) {
	return h.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx, falling back to the serialized snapshot of
// the host when ctx.Snapshot is nil.
func (h *Host) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, fmt.Errorf("expression must not be empty")
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = Serialize(h)
	}
	value, err := h.evaluate(ctx, expr)
	if err != nil {
		return Response[any]{}, err
	}
	return Response[any]{Value: value}, nil
}

func (h *Host) evaluate(ctx RuleContext, expr string) (any, error) {
	evaluator := h.resolveEvaluator()
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	err = wrapEvaluationError(engine, expr, ctx.pathLabel(), err)
	h.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		HostID:   h.ID(),
		Engine:   engine,
		Expr:     expr,
		Path:     ctx.pathLabel(),
		Duration: duration,
		Err:      err,
	})
	return value, err
}

// checkConstraint evaluates expr and fails unless the result is exactly true.
func (h *Host) checkConstraint(expr string, ctx RuleContext) error {
	value, err := h.evaluate(ctx, expr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	if ok, isBool := value.(bool); !isBool || !ok {
		return fmt.Errorf("%w: %s returned %v", ErrConstraint, describeExpression(expr), value)
	}
	return nil
}

func (h *Host) resolveEvaluator() Evaluator {
	if h == nil {
		return NewExprEvaluator()
	}
	return h.cfg.evaluator
}

func defaultEvaluator(cfg hostConfig) Evaluator {
	var opts []ExprEvaluatorOption
	if cfg.programCache != nil {
		opts = append(opts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		opts = append(opts, ExprWithFunctionRegistry(cfg.functions))
	}
	return NewExprEvaluator(opts...)
}

// evaluatorEngineName labels log events and errors. Evaluators outside this
// package are reported as "custom".
func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(interface{ engine() string }); ok {
		return named.engine()
	}
	return "custom"
}
