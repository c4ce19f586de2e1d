package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/core/ports/driving"
	"github.com/chartsift/chartsift/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// DefaultTopK is the result count used when the caller asks for none.
const DefaultTopK = 10

// SearchService answers semantic similarity queries over processed
// documents.
type SearchService struct {
	embedder driven.Embedder
	vectors  driven.VectorStore
	catalog  driven.Catalog
}

// NewSearchService creates a new search service.
func NewSearchService(embedder driven.Embedder, vectors driven.VectorStore, catalog driven.Catalog) *SearchService {
	return &SearchService{
		embedder: embedder,
		vectors:  vectors,
		catalog:  catalog,
	}
}

// Search embeds the query, finds the topK nearest documents and
// hydrates each hit from the catalog. A hit whose catalog row has gone
// missing keeps its stored metadata instead of being dropped.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	logger.Section("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger.Debug("Query: %q, topK: %d, indexed: %d", query, topK, s.vectors.Len())

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.vectors.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		result := domain.SearchResult{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: hit.Metadata,
		}

		doc, err := s.catalog.Get(ctx, hit.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("No catalog row for %s, keeping stored metadata", hit.ID)
			result.Path = hit.Metadata["source_path"]
			result.DetectedType = hit.Metadata["detected_type"]
			result.DetectedDate = hit.Metadata["detected_date"]
		case err != nil:
			return nil, fmt.Errorf("hydrating %s: %w", hit.ID, err)
		default:
			result.Path = doc.Path
			result.DetectedType = doc.DetectedType
			result.DetectedDate = doc.DetectedDate
		}

		results = append(results, result)
	}

	logger.Debug("Search returned %d results", len(results))
	return results, nil
}
