package optproxy

import (
	"fmt"
	"sync"
)

// ProgramCache stores compiled programs keyed by expression source.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, program any)
}

type syncProgramCache struct {
	programs sync.Map
}

// NewProgramCache returns a concurrency safe in-memory ProgramCache.
func NewProgramCache() ProgramCache {
	return &syncProgramCache{}
}

func (c *syncProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *syncProgramCache) Set(key string, program any) {
	c.programs.Store(key, program)
}

// registryCacheKey scopes key to a function registry. Programs compiled with
// registry functions hold the registry, so its address stays unique while the
// program is cached.
func registryCacheKey(registry *FunctionRegistry, key string) string {
	if registry == nil {
		return key
	}
	return fmt.Sprintf("fn@%p:%s", registry, key)
}

// WithProgramCache shares cache with the host's default evaluator so
// constraints compiled once are reused across options and hosts.
func WithProgramCache(cache ProgramCache) HostOption {
	return func(cfg *hostConfig) {
		cfg.programCache = cache
	}
}
