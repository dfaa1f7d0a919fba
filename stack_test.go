package optproxy

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewStackOrdersAndValidates(t *testing.T) {
	stack, err := NewStack(
		NewLayer(NewScope("defaults", 10), Provider{}),
		NewLayer(NewScope("override", 30), Provider{}),
		NewLayer(NewScope("file", 20), Provider{}),
	)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	names := []string{}
	for _, layer := range stack.Layers() {
		names = append(names, layer.Scope.Name)
	}
	if diff := cmp.Diff([]string{"override", "file", "defaults"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		name   string
		layers []Layer
		want   error
	}{
		{name: "missing name", layers: []Layer{NewLayer(NewScope("", 1), nil)}, want: ErrScopeNameRequired},
		{name: "duplicate name", layers: []Layer{NewLayer(NewScope("a", 1), nil), NewLayer(NewScope("a", 2), nil)}, want: ErrDuplicateScopeName},
		{name: "equal priority", layers: []Layer{NewLayer(NewScope("a", 1), nil), NewLayer(NewScope("b", 1), nil)}, want: ErrPriorityOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewStack(tc.layers...); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	var empty *Stack
	if _, err := empty.Merge(); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected ErrEmptyStack, got %v", err)
	}
}

func TestNewLayerClonesProvider(t *testing.T) {
	source := Provider{"db": map[string]any{"port": 1}}
	scope := NewScope("file", 1, WithScopeMetadata(map[string]any{"path": "a.yaml"}))
	layer := NewLayer(scope, source, WithSnapshotID("snap"))

	source["db"].(map[string]any)["port"] = 2
	scope.Metadata["path"] = "b.yaml"

	if layer.Provider["db"].(map[string]any)["port"] != 1 {
		t.Fatalf("layer must not share the provider")
	}
	if layer.Scope.Metadata["path"] != "a.yaml" {
		t.Fatalf("unexpected metadata %v", layer.Scope.Metadata)
	}
	if layer.SnapshotID != "snap" {
		t.Fatalf("SnapshotID = %q", layer.SnapshotID)
	}
}

func TestDefaultsFileEnvOverrideMergeAndTrace(t *testing.T) {
	stack, err := DefaultsFileEnvOverride(
		Provider{"port": 80, "db": map[string]any{"host": "localhost", "pool": 5}, "tags": []any{"a"}},
		Provider{"db": map[string]any{"host": "db.file"}, "tags": []any{"b", "c"}},
		Provider{"port": 8080},
		nil,
	)
	if err != nil {
		t.Fatalf("DefaultsFileEnvOverride: %v", err)
	}

	merged, err := stack.Merge()
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := Provider{
		"port": 8080,
		"db":   map[string]any{"host": "db.file", "pool": 5},
		"tags": []any{"b", "c"},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	trace := stack.Trace("db.host")
	if len(trace.Layers) != 4 {
		t.Fatalf("expected one entry per layer, got %d", len(trace.Layers))
	}
	effective, ok := trace.Effective()
	if !ok || effective.Scope.Name != "file" || effective.Value != "db.file" {
		t.Fatalf("unexpected effective layer %+v", effective)
	}
	if _, ok := stack.Trace("db.missing").Effective(); ok {
		t.Fatalf("missing path must have no effective layer")
	}

	host, err := stack.Host()
	if err != nil {
		t.Fatalf("Host: %v", err)
	}
	db := Group(host, "db")
	pool := Int(host, "pool", 1, InGroup(db))
	if pool.Value() != 5 {
		t.Fatalf("pool = %d", pool.Value())
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	stack, err := NewStack(
		NewLayer(NewScope("file", 20, WithScopeLabel("Config File")), Provider{"port": "8080"}, WithSnapshotID("s1")),
		NewLayer(NewScope("defaults", 10), Provider{}),
	)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	trace := stack.Trace("port")

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("TraceFromJSON: %v", err)
	}
	if diff := cmp.Diff(trace, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
