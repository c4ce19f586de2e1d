package driven

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// Extractor converts one source file into an ExtractedDocument.
// Each extractor handles one format family (plain text, tabular,
// markup, word-processor, portable-document, rich-text).
//
// Extract never fails on partially-bad input: parse failures degrade
// the document's Confidence toward zero and leave a bracketed marker
// in Content instead of returning an error. An error return is
// reserved for files that cannot be read at all.
type Extractor interface {
	// Extensions returns the lower-case file extensions this
	// extractor handles, dot included (".txt").
	Extensions() []string

	// Extract reads the file and produces its extracted form.
	Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error)
}
