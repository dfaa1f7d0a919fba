package optproxy

const (
	// Recommended priorities for the usual configuration sources. Higher
	// numbers win.
	ScopePriorityDefaults = 100
	ScopePriorityFile     = 200
	ScopePriorityEnv      = 300
	ScopePriorityOverride = 400
)

// DefaultsFileEnvOverride assembles the canonical four-layer stack
// (defaults, file, env, override). Nil providers contribute nothing.
func DefaultsFileEnvOverride(defaults, file, env, override Provider) (*Stack, error) {
	return NewStack(
		NewLayer(NewScope("override", ScopePriorityOverride, WithScopeLabel("Overrides")), override),
		NewLayer(NewScope("env", ScopePriorityEnv, WithScopeLabel("Environment")), env),
		NewLayer(NewScope("file", ScopePriorityFile, WithScopeLabel("Config File")), file),
		NewLayer(NewScope("defaults", ScopePriorityDefaults, WithScopeLabel("Defaults")), defaults),
	)
}
