package driving

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// Searcher answers semantic similarity queries over processed documents.
type Searcher interface {
	// Search embeds the query, finds the topK nearest documents and
	// hydrates each hit from the catalog.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}
