package blob

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	data        []byte
	etag        string
	contentType string
}

// MemoryStore is an in-process Store with full ETag semantics. It backs the
// "memory" provider for local runs and the catalog unit tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, "", ErrNotFound
	}

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, entry.etag, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, data []byte, opts SetOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.IfMatch != "" {
		entry, ok := m.entries[key]
		if !ok || entry.etag != opts.IfMatch {
			return "", ErrPreconditionFailed
		}
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	etag := uuid.NewString()
	m.entries[key] = memoryEntry{
		data:        stored,
		etag:        etag,
		contentType: opts.ContentType,
	}

	return etag, nil
}

func (m *MemoryStore) Metadata(_ context.Context, key string) (Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return Metadata{}, ErrNotFound
	}

	return Metadata{ETag: entry.etag, ContentType: entry.contentType}, nil
}

var _ Store = (*MemoryStore)(nil)
