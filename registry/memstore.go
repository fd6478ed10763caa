package registry

import (
	"context"
	"sync"

	"github.com/algopoap/poap-service/interfaces"
)

// MemoryBoxStore is an in-process BoxStore used by tests and local mode.
// The mutex mirrors the host ledger's serial execution guarantee for callers
// that share a store across goroutines.
type MemoryBoxStore struct {
	mu    sync.RWMutex
	boxes map[string][]byte
}

// NewMemoryBoxStore creates an empty in-memory box store.
func NewMemoryBoxStore() *MemoryBoxStore {
	return &MemoryBoxStore{boxes: make(map[string][]byte)}
}

// Get returns the value stored under key, or ErrBoxNotFound.
func (s *MemoryBoxStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.boxes[string(key)]
	if !ok {
		return nil, interfaces.ErrBoxNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores value under key, overwriting any existing value.
func (s *MemoryBoxStore) Put(ctx context.Context, key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.boxes[string(key)] = stored
	return nil
}

// Has reports whether key exists.
func (s *MemoryBoxStore) Has(ctx context.Context, key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.boxes[string(key)]
	return ok, nil
}

// Len returns the number of stored boxes.
func (s *MemoryBoxStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boxes)
}
