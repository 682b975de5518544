// Package memory provides an in-memory KVStore implementation, used in
// tests and as a throwaway backend.
package memory

import (
	"context"
	"sync"

	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// KVStore implements outbound.KVStore on a plain map.
type KVStore struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewKVStore creates an empty in-memory store.
func NewKVStore() *KVStore {
	return &KVStore{
		data: make(map[string][]byte),
	}
}

var _ outbound.KVStore = (*KVStore)(nil)

// Get retrieves a stored value.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	// Copy so callers cannot mutate stored state.
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set stores a value, overwriting any previous one.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}
