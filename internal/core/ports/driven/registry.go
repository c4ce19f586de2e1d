package driven

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// RegistryStore persists the processed-file registry between runs.
//
// The registry is read once before a run and written after outcomes
// are known. Only the run coordinator calls Save; workers hand their
// outcomes back instead of writing here, which keeps registry updates
// race-free without locking.
type RegistryStore interface {
	// Load reads the registry. A store that has never been written
	// returns an empty registry, not an error.
	Load(ctx context.Context) (domain.Registry, error)

	// Save writes the full registry.
	Save(ctx context.Context, registry domain.Registry) error
}
