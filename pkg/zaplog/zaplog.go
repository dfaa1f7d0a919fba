// Package zaplog reports option loads and rule evaluations through a
// zap.Logger.
package zaplog

import (
	"go.uber.org/zap"

	optproxy "github.com/goliatone/go-optproxy"
)

// Logger implements optproxy.LoadLogger and optproxy.EvaluatorLogger.
// Loaded options are logged at debug level, defaulted options and failed
// evaluations at warn.
type Logger struct {
	logger *zap.Logger
}

// New wraps logger. A nil logger discards everything.
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger}
}

// Options returns the host options attaching l as load and evaluator logger.
func (l *Logger) Options() []optproxy.HostOption {
	return []optproxy.HostOption{
		optproxy.WithLoadLogger(l),
		optproxy.WithEvaluatorLogger(l),
	}
}

func (l *Logger) LogLoad(event optproxy.LoadEvent) {
	fields := []zap.Field{
		zap.String("host_id", event.HostID),
		zap.String("path", event.Path),
		zap.String("kind", string(event.Kind)),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		l.logger.Warn("option defaulted", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("option loaded", fields...)
}

func (l *Logger) LogEvaluation(event optproxy.EvaluatorLogEvent) {
	fields := []zap.Field{
		zap.String("host_id", event.HostID),
		zap.String("engine", event.Engine),
		zap.String("expr", event.Expr),
		zap.Duration("duration", event.Duration),
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.Err != nil {
		l.logger.Warn("rule evaluation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("rule evaluated", fields...)
}
