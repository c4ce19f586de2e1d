package memory

import (
	"context"
	"sync"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// RegistryStore is an in-memory implementation of driven.RegistryStore.
type RegistryStore struct {
	mu       sync.RWMutex
	registry domain.Registry
}

// NewRegistryStore creates a new in-memory registry store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{
		registry: domain.Registry{},
	}
}

// Load returns a copy of the stored registry.
func (s *RegistryStore) Load(_ context.Context) (domain.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registry := make(domain.Registry, len(s.registry))
	for path, entry := range s.registry {
		registry[path] = entry
	}
	return registry, nil
}

// Save replaces the stored registry with a copy of the given one.
func (s *RegistryStore) Save(_ context.Context, registry domain.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(domain.Registry, len(registry))
	for path, entry := range registry {
		s.registry[path] = entry
	}
	return nil
}
