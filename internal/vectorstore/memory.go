package vectorstore

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memKey]Record
}

type memKey struct {
	contentHash string
	modelID     string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[memKey]Record)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, modelID string, contentHashes []string) (map[string]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Record, len(contentHashes))
	for _, h := range contentHashes {
		if rec, ok := s.records[memKey{h, modelID}]; ok {
			out[h] = rec
		}
	}
	return out, nil
}

// Put implements Store. First write wins for a given key.
func (s *MemoryStore) Put(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		key := memKey{rec.ContentHash, rec.ModelID}
		if _, exists := s.records[key]; exists {
			continue
		}
		s.records[key] = rec
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
