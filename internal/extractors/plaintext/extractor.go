// Package plaintext extracts plain text documents.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files. Content is read as UTF-8; on
// invalid input one permissive Windows-1252 decode is attempted before
// the file is declared failed.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt"}
}

// Extract reads the file and mines its text for structure.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.ExtractedDocument, error) {
	meta, err := textscan.FileMetadata(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	content, confidence, decodeErr := textscan.DecodeText(data)
	if decodeErr != nil {
		return textscan.ComposeFailed(meta, decodeErr.Error()), nil
	}
	if len(content) == 0 {
		return textscan.ComposeFailed(meta, "empty document"), nil
	}

	return textscan.Compose(meta, content, confidence), nil
}
