package platform

import "sync"

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage returns storage seeded with initial.
func NewMemoryStorage(initial map[string]string) *MemoryStorage {
	s := &MemoryStorage{data: make(map[string]string, len(initial))}
	for k, v := range initial {
		s.data[k] = v
	}
	return s
}

// Get implements Storage.
func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set implements Storage.
func (s *MemoryStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Remove implements Storage.
func (s *MemoryStorage) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}
