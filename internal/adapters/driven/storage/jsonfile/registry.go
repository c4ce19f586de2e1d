package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// RegistryStore is a file-based implementation of driven.RegistryStore.
// The registry is one JSON object mapping file path to its most recent
// processing outcome; per-entry updates happen in memory via
// domain.Registry.WithEntry and the whole map is written back at once.
type RegistryStore struct {
	path string
}

// NewRegistryStore creates a registry store writing to path, creating
// the parent directory if needed.
func NewRegistryStore(path string) (*RegistryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: registry path is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}
	return &RegistryStore{path: path}, nil
}

// Load reads the registry. A store that has never been written returns
// an empty registry.
func (s *RegistryStore) Load(_ context.Context) (domain.Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Registry{}, nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var registry domain.Registry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if registry == nil {
		registry = domain.Registry{}
	}

	return registry, nil
}

// Save writes the full registry.
func (s *RegistryStore) Save(_ context.Context, registry domain.Registry) error {
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// Path returns the registry file path.
func (s *RegistryStore) Path() string {
	return s.path
}
