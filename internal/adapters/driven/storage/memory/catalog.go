package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Catalog implements the catalog interfaces.
var (
	_ driven.Catalog = (*Catalog)(nil)
	_ driven.RunLog  = (*Catalog)(nil)
)

// Catalog is an in-memory implementation of driven.Catalog and
// driven.RunLog, mirroring the SQLite adapter's ordering semantics.
type Catalog struct {
	mu   sync.RWMutex
	docs map[string]domain.CatalogDocument
	runs map[string]domain.RunReport
}

// NewCatalog creates a new in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		docs: make(map[string]domain.CatalogDocument),
		runs: make(map[string]domain.RunReport),
	}
}

// Upsert inserts or replaces a catalog row by document id.
func (c *Catalog) Upsert(_ context.Context, doc domain.CatalogDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.ID] = doc
	return nil
}

// Get returns one document by id.
func (c *Catalog) Get(_ context.Context, id string) (*domain.CatalogDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// List returns all documents ordered by detected date, newest first,
// undated documents last by file name.
func (c *Catalog) List(_ context.Context) ([]domain.CatalogDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]domain.CatalogDocument, 0, len(c.docs))
	for _, doc := range c.docs {
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		di, dj := docs[i].DetectedDate, docs[j].DetectedDate
		switch {
		case di == "" && dj == "":
			return docs[i].FileName < docs[j].FileName
		case di == "":
			return false
		case dj == "":
			return true
		case di != dj:
			return di > dj
		default:
			return docs[i].FileName < docs[j].FileName
		}
	})
	return docs, nil
}

// Close is a no-op for the in-memory catalog.
func (c *Catalog) Close() error {
	return nil
}

// RecordRun inserts or replaces a run summary by run id.
func (c *Catalog) RecordRun(_ context.Context, report *domain.RunReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[report.RunID] = *report
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// or less returns every run.
func (c *Catalog) ListRuns(_ context.Context, limit int) ([]domain.RunReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	runs := make([]domain.RunReport, 0, len(c.runs))
	for _, run := range c.runs {
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
