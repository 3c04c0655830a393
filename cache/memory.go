package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and when no Redis URL is
// configured. Expired entries are reaped lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *MemoryStore) GetDel(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok, err := s.get(key)
	if ok {
		delete(s.entries, key)
	}
	return val, ok, err
}

// get assumes the caller holds mu.
func (s *MemoryStore) get(key string) (string, bool, error) {
	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
