package driven

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// Catalog is the queryable index of processed documents, used to
// hydrate similarity hits into presentable results and to answer
// listing queries without scanning artifact files.
type Catalog interface {
	// Upsert inserts or replaces a catalog row by document id.
	Upsert(ctx context.Context, doc domain.CatalogDocument) error

	// Get returns one document by id.
	// Returns domain.ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*domain.CatalogDocument, error)

	// List returns all documents ordered by detected date, newest
	// first, undated documents last.
	List(ctx context.Context) ([]domain.CatalogDocument, error)

	// Close releases the underlying database handle.
	Close() error
}

// RunLog records run summaries alongside the catalog so past runs can
// be listed without scanning report artifacts.
type RunLog interface {
	// RecordRun inserts or replaces a run summary by run id.
	RecordRun(ctx context.Context, report *domain.RunReport) error

	// ListRuns returns the most recent runs, newest first. A limit of
	// zero or less returns every run.
	ListRuns(ctx context.Context, limit int) ([]domain.RunReport, error)
}
