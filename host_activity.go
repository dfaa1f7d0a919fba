package optproxy

import "github.com/goliatone/go-optproxy/pkg/activity"

// WithActivityHooks notifies hooks for every diagnostic recorded by the host.
// Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) HostOption {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *hostConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel sets the channel stamped on emitted events.
func WithActivityChannel(channel string) HostOption {
	return func(cfg *hostConfig) {
		cfg.activityChannel = channel
	}
}

// ActivityHooks returns a copy of the hooks configured on the host.
func (h *Host) ActivityHooks() activity.Hooks {
	if h == nil {
		return nil
	}
	return activity.CloneHooks(h.cfg.activityHooks)
}

func diagnosticEvent(hostID string, diag Diagnostic) activity.Event {
	input := activity.EventInput{
		HostID: hostID,
		Path:   diag.Path,
		Group:  diag.Group,
		Option: diag.Option,
		Reason: string(diag.Kind),
		Err:    diag.Err,
	}
	switch diag.Kind {
	case DiagnosticConversionFailure:
		input.Key = diag.Key
		return activity.BuildEntryDroppedEvent(input)
	case DiagnosticDuplicateOption:
		return activity.BuildOptionDuplicateEvent(input)
	default:
		return activity.BuildOptionDefaultedEvent(input)
	}
}
