package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/algopoap/poap-service/interfaces"
)

// MemBackend keeps documents in process memory. It backs tests and local
// development runs where no external store is configured.
type MemBackend struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	label string
}

// NewMemBackend creates an empty in-memory backend. The label
// distinguishes multiple instances in logs and URIs.
func NewMemBackend(label string) *MemBackend {
	if label == "" {
		label = "default"
	}
	return &MemBackend{
		docs:  make(map[string][]byte),
		label: label,
	}
}

func (b *MemBackend) key(id interfaces.ContentID, kind interfaces.ContentKind) string {
	return kind.String() + "/" + id.String()
}

// Fetch returns a stored document or ErrContentNotFound.
func (b *MemBackend) Fetch(ctx context.Context, id interfaces.ContentID, kind interfaces.ContentKind) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.docs[b.key(id, kind)]
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Store saves a document under its content hash.
func (b *MemBackend) Store(ctx context.Context, data []byte, kind interfaces.ContentKind) (interfaces.ContentID, error) {
	id := interfaces.ComputeContentID(data)

	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	b.docs[b.key(id, kind)] = stored
	b.mu.Unlock()

	return id, nil
}

// Available always reports true.
func (b *MemBackend) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this backend.
func (b *MemBackend) Name() string {
	return fmt.Sprintf("mem-%s", b.label)
}

// LocationURI returns the URI that identifies this backend.
func (b *MemBackend) LocationURI() string {
	return fmt.Sprintf("mem://%s", b.label)
}

// Len reports how many documents are stored.
func (b *MemBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.docs)
}
