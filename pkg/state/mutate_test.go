package state

import (
	"context"
	"errors"
	"testing"

	optproxy "github.com/goliatone/go-optproxy"
	"github.com/google/go-cmp/cmp"
)

type failingStore struct {
	Store
	err error
}

func (s failingStore) Save(context.Context, Ref, optproxy.Provider, Meta) (Meta, error) {
	return Meta{}, s.err
}

func declareNotifications(host *optproxy.Host) {
	optproxy.Int(host, "retries", 0, optproxy.WithConstraint("value >= 0"))
}

func TestResolverMutateAppliesAndSaves(t *testing.T) {
	store := NewMemoryStore()
	ref := Ref{Domain: "notifications", Scope: systemScope}
	before := seed(t, store, systemScope, optproxy.Provider{"retries": 1})

	resolver := Resolver{Store: store, Schema: Strict(declareNotifications)}
	snapshot, meta, err := resolver.Mutate(context.Background(), ref, Meta{ETag: before.ETag}, func(p optproxy.Provider) error {
		p["retries"] = 4
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if diff := cmp.Diff(optproxy.Provider{"retries": 4}, snapshot); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if meta.ETag == before.ETag || meta.SnapshotID == before.SnapshotID {
		t.Fatalf("expected new etag and snapshot id, got %+v", meta)
	}

	stored, _, _, _ := store.Load(context.Background(), ref)
	if stored["retries"] != 4 {
		t.Fatalf("expected stored retries 4, got %v", stored["retries"])
	}
}

func TestResolverMutateCreatesMissingSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ref := Ref{Domain: "notifications", Scope: userScope}

	snapshot, _, err := (Resolver{Store: store}).Mutate(context.Background(), ref, Meta{}, func(p optproxy.Provider) error {
		p["retries"] = 2
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if snapshot["retries"] != 2 || store.Len() != 1 {
		t.Fatalf("expected created snapshot, got %v (len %d)", snapshot, store.Len())
	}
}

func TestResolverMutateETagMismatch(t *testing.T) {
	store := NewMemoryStore()
	ref := Ref{Domain: "notifications", Scope: systemScope}
	seed(t, store, systemScope, optproxy.Provider{"retries": 1})

	called := false
	_, _, err := (Resolver{Store: store}).Mutate(context.Background(), ref, Meta{ETag: "stale"}, func(optproxy.Provider) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
	if called {
		t.Fatalf("mutator must not run on etag mismatch")
	}
}

func TestResolverMutateRejectsInvalidSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ref := Ref{Domain: "notifications", Scope: systemScope}
	before := seed(t, store, systemScope, optproxy.Provider{"retries": 1})

	resolver := Resolver{Store: store, Schema: Strict(declareNotifications)}
	_, _, err := resolver.Mutate(context.Background(), ref, Meta{}, func(p optproxy.Provider) error {
		p["retries"] = -1
		return nil
	})
	if !errors.Is(err, optproxy.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, meta, _, _ := store.Load(context.Background(), ref)
	if meta.ETag != before.ETag {
		t.Fatalf("invalid snapshot must not be saved")
	}
}

func TestResolverMutatePropagatesErrors(t *testing.T) {
	ref := Ref{Domain: "notifications", Scope: systemScope}
	boom := errors.New("boom")

	_, _, err := (Resolver{Store: NewMemoryStore()}).Mutate(context.Background(), ref, Meta{}, func(optproxy.Provider) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	store := failingStore{Store: NewMemoryStore(), err: boom}
	_, _, err = (Resolver{Store: store}).Mutate(context.Background(), ref, Meta{}, func(optproxy.Provider) error {
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
