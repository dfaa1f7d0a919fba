package optproxy

// ProxyOption configures a single option declaration.
type ProxyOption func(*proxyConfig)

type proxyConfig struct {
	provider    Provider
	hasProvider bool
	parent      GroupScope
	group       string
	hasGroup    bool
	groupName   string
	constraints []string
	mapping     Provider
	sequence    []any
}

func applyProxyOptions(opts []ProxyOption) proxyConfig {
	cfg := proxyConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// InGroup declares the option as a child of parent: it reads from the
// parent's wrapped mapping and serializes under the parent's group name.
func InGroup(parent GroupScope) ProxyOption {
	return func(cfg *proxyConfig) {
		cfg.parent = parent
	}
}

// FromProvider overrides the mapping the option reads from.
func FromProvider(provider Provider) ProxyOption {
	return func(cfg *proxyConfig) {
		cfg.provider = provider
		cfg.hasProvider = true
	}
}

// WithGroup tags the option as a member of group without binding it to a
// parent option. Combine with FromProvider to declare flat-tagged schemas.
func WithGroup(group string) ProxyOption {
	return func(cfg *proxyConfig) {
		cfg.group = group
		cfg.hasGroup = true
	}
}

// WithGroupName sets the tag a group-like option hands to its children. It
// defaults to the option path.
func WithGroupName(name string) ProxyOption {
	return func(cfg *proxyConfig) {
		cfg.groupName = name
	}
}

// WithConstraint attaches a rule that must evaluate to true against the
// validated value (bound as `value`) for the option to load.
func WithConstraint(expr string) ProxyOption {
	return func(cfg *proxyConfig) {
		if expr == "" {
			return
		}
		cfg.constraints = append(cfg.constraints, expr)
	}
}

// WithDefaultMapping sets the fallback mapping for group, enum-group and
// wrapper-group options.
func WithDefaultMapping(mapping Provider) ProxyOption {
	return func(cfg *proxyConfig) {
		cfg.mapping = mapping
	}
}

// WithDefaultSequence sets the fallback raw sequence for list options.
func WithDefaultSequence(sequence []any) ProxyOption {
	return func(cfg *proxyConfig) {
		cfg.sequence = sequence
	}
}

type binding struct {
	provider Provider
	group    string
	prefix   string
}

func (cfg proxyConfig) bind(host *Host) binding {
	b := binding{provider: host.Provider(), group: RootGroup}
	if cfg.parent != nil {
		b.provider = cfg.parent.Value()
		b.group = cfg.parent.GroupName()
		b.prefix = cfg.parent.Path()
	}
	if cfg.hasProvider {
		b.provider = cfg.provider
	}
	if cfg.hasGroup {
		b.group = cfg.group
		if cfg.parent == nil {
			b.prefix = cfg.group
		}
	}
	if b.provider == nil {
		b.provider = Provider{}
	}
	return b
}

func (cfg proxyConfig) defaultMapping() Provider {
	if cfg.mapping == nil {
		return Provider{}
	}
	return cfg.mapping
}

func (cfg proxyConfig) defaultSequence() []any {
	if cfg.sequence == nil {
		return []any{}
	}
	return cfg.sequence
}
