package state

import (
	"context"
	"sync"
	"time"

	optproxy "github.com/goliatone/go-optproxy"
	"github.com/goliatone/go-optproxy/layering"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store keyed by Ref.Identifier. Every save gets
// a fresh ETag; the snapshot ID is generated unless the caller supplies one.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	snapshot optproxy.Provider
	meta     Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[string]memoryRecord{},
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (optproxy.Provider, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return layering.Clone(record.snapshot), record.meta.clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, snapshot optproxy.Provider, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	saved := meta.clone()
	if saved.SnapshotID == "" {
		saved.SnapshotID = uuid.NewString()
	}
	saved.ETag = uuid.NewString()
	saved.UpdatedAt = s.now()

	s.mu.Lock()
	s.records[key] = memoryRecord{snapshot: layering.Clone(snapshot), meta: saved.clone()}
	s.mu.Unlock()
	return saved, nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
