package state

import (
	"context"
	"sync/atomic"

	optproxy "github.com/goliatone/go-optproxy"
)

// Loaded is the result of one reload.
type Loaded[H any] struct {
	Value H
	Host  *optproxy.Host
	Stack *optproxy.Stack
}

// Reloader rebuilds a typed option holder from the latest stored snapshots.
// Hosts are immutable, so each reload constructs a new one and swaps it in.
type Reloader[H any] struct {
	resolver Resolver
	domain   string
	scopes   []optproxy.Scope
	build    func(*optproxy.Host) H
	current  atomic.Pointer[Loaded[H]]
}

// NewReloader returns a reloader for domain. build declares the options on
// the fresh host and returns the holder callers keep.
func NewReloader[H any](resolver Resolver, domain string, build func(*optproxy.Host) H, scopes ...optproxy.Scope) *Reloader[H] {
	return &Reloader[H]{
		resolver: resolver,
		domain:   domain,
		scopes:   append([]optproxy.Scope(nil), scopes...),
		build:    build,
	}
}

// Reload resolves the scopes and rebuilds the holder. On error the previous
// holder stays current.
func (r *Reloader[H]) Reload(ctx context.Context) (Loaded[H], error) {
	host, stack, err := r.resolver.Host(ctx, r.domain, r.scopes...)
	if err != nil {
		return Loaded[H]{}, err
	}
	loaded := &Loaded[H]{
		Value: r.build(host),
		Host:  host,
		Stack: stack,
	}
	r.current.Store(loaded)
	return *loaded, nil
}

// Current returns the last successfully loaded holder.
func (r *Reloader[H]) Current() (Loaded[H], bool) {
	loaded := r.current.Load()
	if loaded == nil {
		return Loaded[H]{}, false
	}
	return *loaded, true
}
