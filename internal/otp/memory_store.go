package otp

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	rec     Record
	evictAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an in-memory OTP store for development and tests.
// Eviction is lazy: stale entries disappear on the next lookup.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryStore) Issue(_ context.Context, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[storeKey(rec.Channel, rec.Key())] = memoryEntry{
		rec:     rec,
		evictAt: s.now().Add(ttl + evictionGrace),
	}
	return nil
}

func (s *memoryStore) Find(_ context.Context, channel Channel, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := storeKey(channel, key)
	entry, ok := s.entries[k]
	if !ok {
		return Record{}, false, nil
	}
	if s.now().After(entry.evictAt) {
		delete(s.entries, k)
		return Record{}, false, nil
	}
	return entry.rec, true, nil
}

func (s *memoryStore) Consume(_ context.Context, channel Channel, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, storeKey(channel, key))
	return nil
}
