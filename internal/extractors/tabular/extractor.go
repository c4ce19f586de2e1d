// Package tabular extracts delimited-table files (CSV, TSV).
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles delimited tabular files. The first row is treated
// as the header; every following row becomes a header-keyed map. Rows
// the parser rejects are counted as failed units and reduce confidence
// linearly instead of aborting the file.
type Extractor struct{}

// New creates a new tabular extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".csv", ".tsv"}
}

// Extract reads the file, parses it row by row and mines the cell text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.ExtractedDocument, error) {
	meta, err := textscan.FileMetadata(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text, decodeConf, decodeErr := textscan.DecodeText(data)
	if decodeErr != nil {
		return textscan.ComposeFailed(meta, decodeErr.Error()), nil
	}
	if strings.TrimSpace(text) == "" {
		return textscan.ComposeFailed(meta, "empty document"), nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiterFor(meta.Extension)
	// Ragged rows are data, not errors; width is checked per row below.
	reader.FieldsPerRecord = -1

	var (
		headers []string
		rows    []map[string]string
		lines   []string
		total   int
		failed  int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		total++
		if err != nil {
			failed++
			continue
		}
		lines = append(lines, strings.Join(record, " "))
		if headers == nil {
			headers = record
			continue
		}
		rows = append(rows, zipRow(headers, record))
	}

	if total == 0 {
		return textscan.ComposeFailed(meta, "no parsable rows"), nil
	}

	confidence := 1.0 - float64(failed)/float64(total)
	if decodeConf < confidence {
		confidence = decodeConf
	}

	doc := textscan.Compose(meta, strings.Join(lines, "\n"), confidence)
	table := domain.Table{
		Name:    strings.TrimSuffix(meta.FileName, filepath.Ext(meta.FileName)),
		Headers: headers,
		Rows:    rows,
	}
	if doc.Structured == nil {
		doc.Structured = &domain.StructuredContent{}
	}
	doc.Structured.Tables = []domain.Table{table}

	return doc, nil
}

func delimiterFor(ext string) rune {
	if ext == ".tsv" {
		return '\t'
	}
	return ','
}

// zipRow pairs header names with cell values. Cells beyond the header
// width get positional keys; short rows simply omit the missing keys.
func zipRow(headers, record []string) map[string]string {
	row := make(map[string]string, len(record))
	for i, value := range record {
		if i < len(headers) {
			row[headers[i]] = value
		} else {
			row[fmt.Sprintf("column_%d", i+1)] = value
		}
	}
	return row
}
