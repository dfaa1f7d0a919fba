package state

import (
	"context"
	"testing"

	optproxy "github.com/goliatone/go-optproxy"
)

type retryHolder struct {
	Retries *optproxy.Option[int]
}

func TestReloaderPicksUpMutations(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, systemScope, optproxy.Provider{"retries": 1})
	resolver := Resolver{Store: store}

	reloader := NewReloader(resolver, "notifications", func(host *optproxy.Host) retryHolder {
		return retryHolder{Retries: optproxy.Int(host, "retries", 0)}
	}, systemScope)

	if _, ok := reloader.Current(); ok {
		t.Fatalf("expected no current value before the first reload")
	}

	first, err := reloader.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if first.Value.Retries.Value() != 1 {
		t.Fatalf("expected 1, got %d", first.Value.Retries.Value())
	}

	ref := Ref{Domain: "notifications", Scope: systemScope}
	if _, _, err := resolver.Mutate(context.Background(), ref, Meta{}, func(p optproxy.Provider) error {
		p["retries"] = 9
		return nil
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	if current, _ := reloader.Current(); current.Value.Retries.Value() != 1 {
		t.Fatalf("current must not change before reload")
	}
	second, err := reloader.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if second.Value.Retries.Value() != 9 {
		t.Fatalf("expected 9, got %d", second.Value.Retries.Value())
	}
	if first.Host == second.Host {
		t.Fatalf("expected a fresh host per reload")
	}
}

func TestReloaderKeepsPreviousOnError(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, systemScope, optproxy.Provider{"retries": 1})

	reloader := NewReloader(Resolver{Store: store}, "notifications", func(host *optproxy.Host) int {
		return optproxy.Int(host, "retries", 0).Value()
	}, systemScope)
	if _, err := reloader.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	broken := NewReloader(Resolver{Store: store}, "missing", func(*optproxy.Host) int { return 0 }, systemScope)
	if _, err := broken.Reload(context.Background()); err == nil {
		t.Fatalf("expected error for unknown domain")
	}
	if current, ok := reloader.Current(); !ok || current.Value != 1 {
		t.Fatalf("expected previous value to stay current, got %+v ok=%v", current, ok)
	}
}
