package services

import (
	"sync"
)

// CatalogStore holds the current catalog for the HTTP layer. The catalog
// itself is immutable; a refresh swaps the pointer atomically under the
// lock, so in-flight match passes keep the snapshot they started with.
type CatalogStore struct {
	mu      sync.RWMutex
	current *Catalog
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// Current returns the active catalog, or nil if none has been loaded yet.
func (s *CatalogStore) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Swap installs a freshly built catalog.
func (s *CatalogStore) Swap(catalog *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = catalog
}
