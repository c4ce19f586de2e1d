package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsift/chartsift/internal/adapters/driven/storage/memory"
	"github.com/chartsift/chartsift/internal/core/domain"
)

// --- Mock implementations for search testing ---
// Note: These are prefixed with "search" to avoid conflicts with
// ingest_test.go mocks

// searchMockEmbedder implements driven.Embedder with call tracking.
type searchMockEmbedder struct {
	embedErr error
	calls    int
}

func (e *searchMockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return []float32{0.5, 0.5, 0.5, 0.5}, nil
}

func (e *searchMockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		emb, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = emb
	}
	return result, nil
}

func (e *searchMockEmbedder) Dimensions() int              { return 4 }
func (e *searchMockEmbedder) ModelName() string            { return "mock" }
func (e *searchMockEmbedder) Ping(_ context.Context) error { return nil }

// searchMockVectorStore implements driven.VectorStore, returning
// configured hits and recording the requested k.
type searchMockVectorStore struct {
	hits      []domain.VectorHit
	searchErr error
	lastK     int
}

func (v *searchMockVectorStore) Add(_ context.Context, _ string, _ []float32, _ map[string]string) error {
	return nil
}

func (v *searchMockVectorStore) Search(_ context.Context, _ []float32, k int) ([]domain.VectorHit, error) {
	v.lastK = k
	if v.searchErr != nil {
		return nil, v.searchErr
	}
	return v.hits, nil
}

func (v *searchMockVectorStore) Delete(_ context.Context, _ string) (bool, error) { return false, nil }
func (v *searchMockVectorStore) Clear(_ context.Context) error                    { return nil }
func (v *searchMockVectorStore) Len() int                                         { return len(v.hits) }
func (v *searchMockVectorStore) Dimensions() int                                  { return 4 }

// searchMockCatalog implements driven.Catalog with a configurable
// lookup error.
type searchMockCatalog struct {
	getErr error
}

func (c *searchMockCatalog) Upsert(_ context.Context, _ domain.CatalogDocument) error { return nil }

func (c *searchMockCatalog) Get(_ context.Context, _ string) (*domain.CatalogDocument, error) {
	return nil, c.getErr
}

func (c *searchMockCatalog) List(_ context.Context) ([]domain.CatalogDocument, error) {
	return nil, nil
}

func (c *searchMockCatalog) Close() error { return nil }

// --- Tests ---

func TestNewSearchService(t *testing.T) {
	svc := NewSearchService(&searchMockEmbedder{}, &searchMockVectorStore{}, memory.NewCatalog())
	require.NotNil(t, svc)
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	embedder := &searchMockEmbedder{}
	svc := NewSearchService(embedder, &searchMockVectorStore{}, memory.NewCatalog())

	for _, query := range []string{"", "   ", "\n\t"} {
		results, err := svc.Search(context.Background(), query, 5)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}

	// A blank query never reaches the embedder.
	assert.Equal(t, 0, embedder.calls)
}

func TestSearchService_Search_HydratesFromCatalog(t *testing.T) {
	catalog := memory.NewCatalog()
	vectors := &searchMockVectorStore{
		hits: []domain.VectorHit{
			{ID: "doc-1", Score: 0.92, Metadata: map[string]string{"source_path": "/inbox/visit.txt"}},
			{
				ID:    "doc-2",
				Score: 0.75,
				Metadata: map[string]string{
					"source_path":   "/inbox/orphan.txt",
					"detected_type": "lab_report",
					"detected_date": "2023-11-02",
				},
			},
		},
	}
	svc := NewSearchService(&searchMockEmbedder{}, vectors, catalog)

	ctx := context.Background()
	require.NoError(t, catalog.Upsert(ctx, domain.CatalogDocument{
		ID:           "doc-1",
		Path:         "/inbox/visit.txt",
		FileName:     "visit.txt",
		DetectedType: "visit_summary",
		DetectedDate: "2024-03-01",
	}))

	results, err := svc.Search(ctx, "blood pressure follow-up", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Catalogued hit takes its fields from the catalog row.
	assert.Equal(t, "doc-1", results[0].ID)
	assert.Equal(t, 0.92, results[0].Score)
	assert.Equal(t, "/inbox/visit.txt", results[0].Path)
	assert.Equal(t, "visit_summary", results[0].DetectedType)
	assert.Equal(t, "2024-03-01", results[0].DetectedDate)

	// A hit with no catalog row keeps its stored metadata instead of
	// being dropped.
	assert.Equal(t, "doc-2", results[1].ID)
	assert.Equal(t, "/inbox/orphan.txt", results[1].Path)
	assert.Equal(t, "lab_report", results[1].DetectedType)
	assert.Equal(t, "2023-11-02", results[1].DetectedDate)
}

func TestSearchService_Search_DefaultTopK(t *testing.T) {
	vectors := &searchMockVectorStore{}
	svc := NewSearchService(&searchMockEmbedder{}, vectors, memory.NewCatalog())

	_, err := svc.Search(context.Background(), "chest pain", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, vectors.lastK)

	_, err = svc.Search(context.Background(), "chest pain", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, vectors.lastK)
}

func TestSearchService_Search_EmbedError(t *testing.T) {
	embedder := &searchMockEmbedder{embedErr: errors.New("model offline")}
	svc := NewSearchService(embedder, &searchMockVectorStore{}, memory.NewCatalog())

	_, err := svc.Search(context.Background(), "chest pain", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding query")
}

func TestSearchService_Search_VectorStoreError(t *testing.T) {
	vectors := &searchMockVectorStore{searchErr: errors.New("store corrupt")}
	svc := NewSearchService(&searchMockEmbedder{}, vectors, memory.NewCatalog())

	_, err := svc.Search(context.Background(), "chest pain", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "searching vectors")
}

func TestSearchService_Search_CatalogError(t *testing.T) {
	vectors := &searchMockVectorStore{
		hits: []domain.VectorHit{{ID: "doc-1", Score: 0.9}},
	}
	catalog := &searchMockCatalog{getErr: errors.New("disk io error")}
	svc := NewSearchService(&searchMockEmbedder{}, vectors, catalog)

	// Any catalog failure other than a missing row aborts the search.
	_, err := svc.Search(context.Background(), "chest pain", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hydrating doc-1")
}
