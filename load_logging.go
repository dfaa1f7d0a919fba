package optproxy

import "time"

// LoadEvent describes the outcome of resolving one option.
type LoadEvent struct {
	HostID   string
	Path     string
	Kind     Kind
	Loaded   bool
	Duration time.Duration
	// Err is the diagnostic recorded when the option fell back to its default.
	Err error
}

// LoadLogger records option load events.
type LoadLogger interface {
	LogLoad(LoadEvent)
}

// LoadLoggerFunc adapts a function to LoadLogger.
type LoadLoggerFunc func(LoadEvent)

// LogLoad implements LoadLogger.
func (f LoadLoggerFunc) LogLoad(event LoadEvent) {
	if f != nil {
		f(event)
	}
}

type noopLoadLogger struct{}

func (noopLoadLogger) LogLoad(LoadEvent) {}

// WithLoadLogger attaches a logger notified for every declared option.
func WithLoadLogger(logger LoadLogger) HostOption {
	return func(cfg *hostConfig) {
		if logger == nil {
			cfg.loadLogger = noopLoadLogger{}
			return
		}
		cfg.loadLogger = logger
	}
}

func (h *Host) loadLogger() LoadLogger {
	if h == nil || h.cfg.loadLogger == nil {
		return noopLoadLogger{}
	}
	return h.cfg.loadLogger
}
