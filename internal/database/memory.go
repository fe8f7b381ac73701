package database

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. It backs tests and throwaway
// sessions where nothing needs to survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s *MemoryStore) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[string(key)] = bytes.Clone(value)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, string(key))
	return nil
}

// Scan snapshots the matching records before calling fn, so fn may write to
// the store without deadlocking.
func (s *MemoryStore) Scan(ctx context.Context, start, end []byte, fn ScanFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	type record struct{ key, value []byte }

	s.mu.RLock()
	var matched []record
	for k, v := range s.records {
		kb := []byte(k)
		if bytes.Compare(kb, start) >= 0 && bytes.Compare(kb, end) < 0 {
			matched = append(matched, record{key: kb, value: bytes.Clone(v)})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return bytes.Compare(matched[i].key, matched[j].key) < 0
	})
	for _, r := range matched {
		if err := fn(r.key, r.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
