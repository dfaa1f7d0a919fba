package state

import (
	"context"
	"errors"
	"fmt"

	optproxy "github.com/goliatone/go-optproxy"
	"github.com/goliatone/go-optproxy/layering"
	"github.com/goliatone/go-optproxy/pkg/activity"
	"github.com/google/uuid"
)

// Schema declares the options of a domain on host and reports whether the
// provider it was built from is acceptable.
type Schema func(host *optproxy.Host) error

// Strict wraps declare into a Schema rejecting any provider that made an
// option default or an entry drop.
func Strict(declare func(host *optproxy.Host)) Schema {
	return func(host *optproxy.Host) error {
		declare(host)
		var errs []error
		for _, diag := range host.Diagnostics() {
			errs = append(errs, diag)
		}
		return errors.Join(errs...)
	}
}

// Mutator edits a provider snapshot in place.
type Mutator func(snapshot optproxy.Provider) error

// Resolver loads scoped snapshots from a Store and merges them.
type Resolver struct {
	Store Store
	// Schema, when set, validates mutated snapshots before they are saved.
	Schema Schema
	// HostOptions apply to hosts built by Host, Mutate and Reloader.
	HostOptions []optproxy.HostOption
	// Hooks receive snapshot saved and layer applied events.
	Hooks activity.Hooks
}

// Resolve loads domain for every scope and stacks the snapshots found.
// Scopes with no stored snapshot are skipped.
func (r Resolver) Resolve(ctx context.Context, domain string, scopes ...optproxy.Scope) (*optproxy.Stack, error) {
	if r.Store == nil {
		return nil, ErrStoreRequired
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w for domain %q", ErrNoLayers, domain)
	}
	return r.stack(ctx, layers)
}

// ResolveWithDefaults is Resolve with defaults stacked below every scope.
func (r Resolver) ResolveWithDefaults(ctx context.Context, domain string, defaults optproxy.Provider, scopes ...optproxy.Scope) (*optproxy.Stack, error) {
	if r.Store == nil {
		return nil, ErrStoreRequired
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}

	priority := optproxy.ScopePriorityDefaults
	taken := make(map[int]bool, len(scopes))
	for _, scope := range scopes {
		if scope.Name == "defaults" {
			return nil, fmt.Errorf("state: scope name %q is reserved", "defaults")
		}
		taken[scope.Priority] = true
		if scope.Priority <= priority {
			priority = scope.Priority - 1
		}
	}
	for taken[priority] {
		priority--
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	layers = append(layers, optproxy.NewLayer(
		optproxy.NewScope("defaults", priority, optproxy.WithScopeLabel("Defaults")),
		defaults,
	))
	return r.stack(ctx, layers)
}

// Host resolves domain and builds a host reading from the merged provider.
func (r Resolver) Host(ctx context.Context, domain string, scopes ...optproxy.Scope) (*optproxy.Host, *optproxy.Stack, error) {
	stack, err := r.Resolve(ctx, domain, scopes...)
	if err != nil {
		return nil, nil, err
	}
	host, err := stack.Host(r.HostOptions...)
	if err != nil {
		return nil, nil, err
	}
	return host, stack, nil
}

// Save serializes hp and stores it under ref.
func (r Resolver) Save(ctx context.Context, ref Ref, hp optproxy.HostProvider, meta Meta) (Meta, error) {
	if r.Store == nil {
		return Meta{}, ErrStoreRequired
	}
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	saved, err := r.Store.Save(ctx, ref, optproxy.Serialize(hp), meta)
	if err != nil {
		return Meta{}, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	r.emit(ctx, activity.BuildSnapshotSavedEvent(activity.EventInput{
		Path:  ref.Domain,
		Scope: scopeContext(ref.Scope, saved.SnapshotID),
	}))
	return saved, nil
}

// Mutate loads the snapshot for ref, applies fn, validates the result with
// Schema and saves it. A non-empty meta.ETag must match the stored one.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (optproxy.Provider, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, ErrStoreRequired
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return nil, Meta{}, err
	}

	snapshot, loaded, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	if !ok {
		snapshot, loaded = optproxy.Provider{}, Meta{}
	}
	if meta.ETag != "" && meta.ETag != loaded.ETag {
		return nil, loaded, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loaded.ETag)
	}

	snapshot = layering.Clone(snapshot)
	if snapshot == nil {
		snapshot = optproxy.Provider{}
	}
	if err := fn(snapshot); err != nil {
		return nil, loaded, err
	}
	if r.Schema != nil {
		host := optproxy.NewHost(snapshot, r.HostOptions...)
		if err := r.Schema(host); err != nil {
			return nil, loaded, err
		}
		if err := host.Validate(); err != nil {
			return nil, loaded, err
		}
	}

	request := loaded.merge(meta)
	request.SnapshotID = uuid.NewString()
	saved, err := r.Store.Save(ctx, ref, snapshot, request)
	if err != nil {
		return nil, loaded, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	r.emit(ctx, activity.BuildSnapshotSavedEvent(activity.EventInput{
		Path:  ref.Domain,
		Scope: scopeContext(ref.Scope, saved.SnapshotID),
	}))
	return snapshot, saved, nil
}

func (r Resolver) loadLayers(ctx context.Context, domain string, scopes []optproxy.Scope) ([]optproxy.Layer, error) {
	layers := make([]optproxy.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, optproxy.NewLayer(scope, snapshot, optproxy.WithSnapshotID(meta.SnapshotID)))
	}
	return layers, nil
}

func (r Resolver) stack(ctx context.Context, layers []optproxy.Layer) (*optproxy.Stack, error) {
	stack, err := optproxy.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	for _, layer := range stack.Layers() {
		r.emit(ctx, activity.BuildLayerAppliedEvent(activity.EventInput{
			Scope: scopeContext(layer.Scope, layer.SnapshotID),
		}))
	}
	return stack, nil
}

func (r Resolver) emit(ctx context.Context, event activity.Event) {
	if !r.Hooks.Enabled() {
		return
	}
	_ = activity.NewEmitter(r.Hooks, activity.Config{Enabled: true}).Emit(ctx, event)
}

func scopeContext(scope optproxy.Scope, snapshotID string) activity.ScopeContext {
	return activity.ScopeContext{
		Name:       scope.Name,
		Label:      scope.Label,
		Priority:   scope.Priority,
		SnapshotID: snapshotID,
	}
}
