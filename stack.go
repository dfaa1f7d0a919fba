package optproxy

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"github.com/goliatone/go-optproxy/layering"
)

// Scope models a named precedence bucket (defaults, file, env, etc.). Higher
// priority values represent stronger layers.
type Scope struct {
	Name     string
	Label    string
	Priority int
	Metadata map[string]any
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches arbitrary metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.metadata = maps.Clone(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: cfg.metadata,
	}
}

func (s Scope) clone() Scope {
	s.Metadata = maps.Clone(s.Metadata)
	return s
}

// Layer pairs a scope with the provider captured for it.
type Layer struct {
	Scope      Scope
	Provider   Provider
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithSnapshotID sets the snapshot identifier reported by Trace.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer holding a deep copy of provider.
func NewLayer(scope Scope, provider Provider, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:    scope.clone(),
		Provider: layering.Clone(provider),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&layer)
		}
	}
	return layer
}

func (l Layer) clone() Layer {
	return Layer{
		Scope:      l.Scope.clone(),
		Provider:   layering.Clone(l.Provider),
		SnapshotID: l.SnapshotID,
	}
}

var (
	ErrScopeNameRequired  = errors.New("optproxy: scope name must be provided")
	ErrDuplicateScopeName = errors.New("optproxy: scope names must be unique")
	ErrPriorityOrder      = errors.New("optproxy: scope priorities must be strictly ordered")
	ErrEmptyStack         = errors.New("optproxy: stack must include at least one layer")
)

// Stack is an immutable set of provider layers ordered from strongest to
// weakest precedence.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so that the highest priority is first.
// Layers are deep copied.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, 0, len(layers))
	for _, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied = append(copied, layer.clone())
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority == copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i, layer := range s.layers {
		out[i] = layer.clone()
	}
	return out
}

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge resolves the stack into a single provider.
func (s *Stack) Merge() (Provider, error) {
	if s.Len() == 0 {
		return nil, ErrEmptyStack
	}
	providers := make([]map[string]any, len(s.layers))
	for i, layer := range s.layers {
		providers[i] = layer.Provider
	}
	merged := layering.MergeLayers(providers...)
	if merged == nil {
		merged = Provider{}
	}
	return merged, nil
}

// Host merges the stack and constructs a host reading from the result.
func (s *Stack) Host(opts ...HostOption) (*Host, error) {
	provider, err := s.Merge()
	if err != nil {
		return nil, err
	}
	return NewHost(provider, opts...), nil
}

// Trace reports, for every layer strongest first, whether path resolves in
// that layer and to what value. The first found entry is the effective one.
func (s *Stack) Trace(path string) Trace {
	trace := Trace{Path: path}
	if s == nil {
		return trace
	}
	for _, layer := range s.layers {
		value, found := layering.Lookup(layer.Provider, path)
		entry := Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Path:       path,
			Found:      found,
		}
		if found {
			entry.Value = value
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}
