package state

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	optproxy "github.com/goliatone/go-optproxy"
)

var (
	ErrETagMismatch  = errors.New("state: etag mismatch")
	ErrStoreRequired = errors.New("state: store is required")
	ErrNoLayers      = errors.New("state: no layers found")
)

// ScopeIDKey is the scope metadata key holding the instance identifier, for
// scopes with one snapshot per tenant, user, etc.
const ScopeIDKey = "id"

// Ref identifies one persisted snapshot for one option domain.
type Ref struct {
	Domain string
	Scope  optproxy.Scope
}

// Identifier returns the canonical storage key: scope/domain, or
// scope/id/domain when the scope carries an id.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	if r.Scope.Name == "" {
		return "", fmt.Errorf("state: scope name is required")
	}
	raw, ok := r.Scope.Metadata[ScopeIDKey]
	if !ok {
		return r.Scope.Name + "/" + r.Domain, nil
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("state: scope %q has invalid %q metadata %v", r.Scope.Name, ScopeIDKey, raw)
	}
	return r.Scope.Name + "/" + id + "/" + r.Domain, nil
}

// Meta is storage-owned metadata used for provenance and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func (m Meta) clone() Meta {
	m.Extra = maps.Clone(m.Extra)
	return m
}

// merge overlays the non-zero fields of override onto m.
func (m Meta) merge(override Meta) Meta {
	out := m.clone()
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = maps.Clone(override.Extra)
	}
	return out
}

// Store loads and saves one provider snapshot for a single Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (snapshot optproxy.Provider, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot optproxy.Provider, meta Meta) (Meta, error)
}
