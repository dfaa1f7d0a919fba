package state

import (
	"context"
	"errors"
	"testing"

	optproxy "github.com/goliatone/go-optproxy"
	"github.com/goliatone/go-optproxy/pkg/activity"
	"github.com/google/go-cmp/cmp"
)

var (
	systemScope = optproxy.NewScope("system", 10, optproxy.WithScopeLabel("System"))
	tenantScope = optproxy.NewScope("tenant", 20, optproxy.WithScopeMetadata(map[string]any{ScopeIDKey: "acme"}))
	userScope   = optproxy.NewScope("user", 30)
)

func seed(t *testing.T, store Store, scope optproxy.Scope, snapshot optproxy.Provider) Meta {
	t.Helper()
	meta, err := store.Save(context.Background(), Ref{Domain: "notifications", Scope: scope}, snapshot, Meta{})
	if err != nil {
		t.Fatalf("seed %s: %v", scope.Name, err)
	}
	return meta
}

func TestResolverMergesScopesByPriority(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, systemScope, optproxy.Provider{
		"retries": 3,
		"email":   map[string]any{"enabled": true, "from": "noreply@example.com"},
	})
	tenantMeta := seed(t, store, tenantScope, optproxy.Provider{
		"email": map[string]any{"from": "ops@acme.test"},
	})

	capture := &activity.CaptureHook{}
	resolver := Resolver{Store: store, Hooks: activity.Hooks{capture}}

	stack, err := resolver.Resolve(context.Background(), "notifications", systemScope, tenantScope, userScope)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if stack.Len() != 2 {
		t.Fatalf("expected 2 layers (user has no snapshot), got %d", stack.Len())
	}

	merged, err := stack.Merge()
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := optproxy.Provider{
		"retries": 3,
		"email":   map[string]any{"enabled": true, "from": "ops@acme.test"},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}

	effective, ok := stack.Trace("email.from").Effective()
	if !ok {
		t.Fatalf("expected email.from to resolve")
	}
	if effective.Scope.Name != "tenant" || effective.SnapshotID != tenantMeta.SnapshotID {
		t.Fatalf("unexpected provenance %+v", effective)
	}

	if diff := cmp.Diff([]string{activity.VerbLayerApplied, activity.VerbLayerApplied}, capture.Verbs()); diff != "" {
		t.Fatalf("verbs mismatch (-want +got):\n%s", diff)
	}
	if capture.Events[0].ObjectID != "tenant" {
		t.Fatalf("expected strongest layer first, got %q", capture.Events[0].ObjectID)
	}
}

func TestResolverResolveWithoutSnapshots(t *testing.T) {
	resolver := Resolver{Store: NewMemoryStore()}
	_, err := resolver.Resolve(context.Background(), "notifications", systemScope)
	if !errors.Is(err, ErrNoLayers) {
		t.Fatalf("expected ErrNoLayers, got %v", err)
	}

	if _, err := (Resolver{}).Resolve(context.Background(), "notifications"); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestResolverResolveWithDefaults(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, systemScope, optproxy.Provider{"retries": 5})

	resolver := Resolver{Store: store}
	stack, err := resolver.ResolveWithDefaults(context.Background(), "notifications",
		optproxy.Provider{"retries": 1, "timeout": "5s"}, systemScope, userScope)
	if err != nil {
		t.Fatalf("ResolveWithDefaults: %v", err)
	}

	layers := stack.Layers()
	if got := layers[len(layers)-1].Scope.Name; got != "defaults" {
		t.Fatalf("expected defaults to be the weakest layer, got %q", got)
	}
	host, err := stack.Host()
	if err != nil {
		t.Fatalf("Host: %v", err)
	}
	retries := optproxy.Int(host, "retries", 0)
	timeout := optproxy.Duration(host, "timeout", 0)
	if retries.Value() != 5 {
		t.Fatalf("expected system retries to win, got %d", retries.Value())
	}
	if timeout.Value().String() != "5s" {
		t.Fatalf("expected default timeout, got %s", timeout.Value())
	}
}

func TestResolverResolveWithDefaultsRejectsReservedScope(t *testing.T) {
	resolver := Resolver{Store: NewMemoryStore()}
	_, err := resolver.ResolveWithDefaults(context.Background(), "notifications", nil,
		optproxy.NewScope("defaults", 50))
	if err == nil {
		t.Fatalf("expected reserved scope error")
	}
}

type notificationOptions struct {
	*optproxy.Host
	Retries *optproxy.Option[int]
}

func TestResolverSaveSerializesHost(t *testing.T) {
	store := NewMemoryStore()
	capture := &activity.CaptureHook{}
	resolver := Resolver{Store: store, Hooks: activity.Hooks{capture}}

	host := optproxy.NewHost(optproxy.Provider{"retries": 7})
	opts := notificationOptions{Host: host, Retries: optproxy.Int(host, "retries", 0)}

	ref := Ref{Domain: "notifications", Scope: userScope}
	meta, err := resolver.Save(context.Background(), ref, opts, Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	snapshot, _, ok, err := store.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(optproxy.Provider{"retries": 7}, snapshot); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if len(capture.Events) != 1 || capture.Events[0].Verb != activity.VerbSnapshotSaved {
		t.Fatalf("expected snapshot saved event, got %+v", capture.Events)
	}
	if capture.Events[0].ObjectID != meta.SnapshotID {
		t.Fatalf("expected event object id %q, got %q", meta.SnapshotID, capture.Events[0].ObjectID)
	}
}
