// Package optproxy maps raw nested configuration onto typed option proxies
// declared by host objects, and serializes the live option set back into a
// mapping with the original nested shape.
//
// A host owns an ordered registry of options. Every option reads its value
// eagerly at construction time and falls back to its default when the key is
// missing or the value does not validate; nothing is ever returned as an
// error from construction. Failures are observable through Loaded and through
// the host diagnostics channel.
package optproxy

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-optproxy/pkg/activity"
	"github.com/google/uuid"
)

// HostOption configures a Host at construction time.
type HostOption func(*hostConfig)

type hostConfig struct {
	id              string
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	evalLogger      EvaluatorLogger
	loadLogger      LoadLogger
	schemaGenerator SchemaGenerator
	activityHooks   activity.Hooks
	activityChannel string
}

func applyHostOptions(opts []HostOption) hostConfig {
	cfg := hostConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithHostID overrides the generated host identifier used in logs and
// activity events.
func WithHostID(id string) HostOption {
	return func(cfg *hostConfig) {
		cfg.id = id
	}
}

// Host owns the provider and the ordered option registry.
type Host struct {
	provider Provider
	cfg      hostConfig
	emitter  *activity.Emitter

	mu          sync.RWMutex
	entries     []Proxy
	index       map[string]int
	diagnostics []Diagnostic
}

// NewHost constructs a host reading from provider. A nil provider behaves as
// an empty mapping.
func NewHost(provider Provider, opts ...HostOption) *Host {
	cfg := applyHostOptions(opts)
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.evaluator == nil {
		cfg.evaluator = defaultEvaluator(cfg)
	}
	if provider == nil {
		provider = Provider{}
	}
	return &Host{
		provider: provider,
		cfg:      cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
			Channel: cfg.activityChannel,
		}),
		index: make(map[string]int),
	}
}

// OptionHost implements HostProvider.
func (h *Host) OptionHost() *Host {
	return h
}

// ID returns the host identifier.
func (h *Host) ID() string {
	if h == nil {
		return ""
	}
	return h.cfg.id
}

// Provider returns the top-level provider options read from by default.
func (h *Host) Provider() Provider {
	if h == nil {
		return Provider{}
	}
	return h.provider
}

// Options returns the registered proxies in declaration order.
func (h *Host) Options() []Proxy {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Proxy, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of registered proxies.
func (h *Host) Len() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Lookup finds the proxy registered under name within group. When a name was
// declared twice the latest declaration is returned, matching serialization.
func (h *Host) Lookup(group, name string) (Proxy, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	idx, ok := h.index[registryKey(group, name)]
	if !ok {
		return nil, false
	}
	return h.entries[idx], true
}

// Diagnostics returns every defaulted option and dropped entry recorded so
// far, in the order they happened.
func (h *Host) Diagnostics() []Diagnostic {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.diagnostics) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(h.diagnostics))
	copy(out, h.diagnostics)
	return out
}

// Validate reports structural problems with the declared schema. Load
// failures are not errors; only duplicate declarations are.
func (h *Host) Validate() error {
	var errs []error
	for _, diag := range h.Diagnostics() {
		if diag.Kind == DiagnosticDuplicateOption {
			errs = append(errs, diag)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) register(proxy Proxy) {
	if h == nil || proxy == nil {
		return
	}
	key := registryKey(proxy.Group(), proxy.Name())
	h.mu.Lock()
	_, duplicate := h.index[key]
	h.index[key] = len(h.entries)
	h.entries = append(h.entries, proxy)
	h.mu.Unlock()

	if duplicate {
		path := joinPath(proxy.Group(), proxy.Name())
		if d, ok := proxy.(describable); ok {
			path = d.Path()
		}
		h.report(Diagnostic{
			Kind:   DiagnosticDuplicateOption,
			Path:   path,
			Group:  proxy.Group(),
			Option: proxy.Name(),
			Key:    proxy.Name(),
			Err:    ErrDuplicateOption,
		})
	}
}

func (h *Host) report(diag Diagnostic) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.diagnostics = append(h.diagnostics, diag)
	h.mu.Unlock()

	if !h.emitter.Enabled() {
		return
	}
	_ = h.emitter.Emit(context.Background(), diagnosticEvent(h.cfg.id, diag))
}

func registryKey(group, name string) string {
	return group + "\x00" + name
}

func hostOf(hp HostProvider) *Host {
	if hp == nil {
		return nil
	}
	return hp.OptionHost()
}
