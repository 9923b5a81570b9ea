// Package memory provides an in-process gate.CacheStore.
package memory

import (
	"context"
	"sync"

	"github.com/asimihsan/manup/pkg/gate"
)

// Store keeps values in a map for the life of the process.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ gate.CacheStore = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements gate.CacheStore.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", gate.ErrCacheMiss
	}
	return v, nil
}

// Set implements gate.CacheStore.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}
