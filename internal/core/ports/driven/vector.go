package driven

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// VectorStore persists embeddings and answers nearest-neighbour
// similarity queries.
//
// The dimensionality is fixed for the life of a store instance; adding
// a vector of a different width is a caller error (one embedding model
// per store). Implementations must serialise persistence internally so
// concurrent adds from pool workers cannot corrupt the backing
// artifacts.
type VectorStore interface {
	// Add inserts a vector with its metadata. An existing entry with
	// the same id is overwritten, never duplicated.
	Add(ctx context.Context, id string, vector []float32, metadata map[string]string) error

	// Search returns the k entries nearest to the query by cosine
	// similarity, descending, ties broken by insertion order. A
	// zero-norm vector scores 0 against everything rather than
	// causing a division error.
	Search(ctx context.Context, query []float32, k int) ([]domain.VectorHit, error)

	// Delete removes an entry. Returns false if the id was absent.
	Delete(ctx context.Context, id string) (bool, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Len returns the number of stored entries.
	Len() int

	// Dimensions returns the fixed vector width of this store.
	Dimensions() int
}
