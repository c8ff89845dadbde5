package upload

import (
	"context"
	"sync"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

type memoryEntry struct {
	meta    Metadata
	content []byte
}

type memoryStore struct {
	mu    sync.RWMutex
	files map[string]memoryEntry
}

// NewMemoryStore builds an in-memory file store for testing.
func NewMemoryStore() Store {
	return &memoryStore{files: make(map[string]memoryEntry)}
}

func (s *memoryStore) Save(_ context.Context, meta Metadata, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(content))
	copy(buf, content)
	s.files[meta.ID] = memoryEntry{meta: meta, content: buf}
	return nil
}

func (s *memoryStore) Open(_ context.Context, id string) (Metadata, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.files[id]
	if !ok {
		return Metadata{}, nil, apperr.NotFound("File not found")
	}
	return entry.meta, entry.content, nil
}
