package cache

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Session is an explicit per-principal in-memory cache. Unlike ambient
// module state, it is injected into services and has a defined lifecycle:
// Forget clears a principal's entries on logout.
type Session struct {
	cache *ristretto.Cache

	mu   sync.Mutex
	keys map[string]map[string]struct{}
}

// New sizes and constructs the session cache.
func New(maxItems int64) (*Session, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Session{cache: c, keys: make(map[string]map[string]struct{})}, nil
}

// Get reads a cached value for the principal.
func (s *Session) Get(principal, key string) (any, bool) {
	return s.cache.Get(namespaced(principal, key))
}

// Set caches a value for the principal.
func (s *Session) Set(principal, key string, value any) {
	s.cache.Set(namespaced(principal, key), value, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[principal] == nil {
		s.keys[principal] = make(map[string]struct{})
	}
	s.keys[principal][key] = struct{}{}
}

// Forget drops every entry belonging to the principal.
func (s *Session) Forget(principal string) {
	s.mu.Lock()
	keys := s.keys[principal]
	delete(s.keys, principal)
	s.mu.Unlock()

	for key := range keys {
		s.cache.Del(namespaced(principal, key))
	}
}

// Close releases the underlying cache resources.
func (s *Session) Close() {
	s.cache.Close()
}

func namespaced(principal, key string) string {
	return principal + ":" + key
}
