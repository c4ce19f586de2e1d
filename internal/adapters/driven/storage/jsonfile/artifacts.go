package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// Artifact subdirectories under the data directory.
const (
	extractionsDir = "extractions"
	recordsDir     = "records"
	reportsDir     = "reports"
)

// ArtifactStore is a file-based implementation of driven.ArtifactStore.
// Extraction results and normalised records are keyed by document id,
// run reports by run id, one JSON file per object.
type ArtifactStore struct {
	extractions string
	records     string
	reports     string
}

// NewArtifactStore creates a store rooted at dataDir, creating the
// artifact subdirectories if needed.
func NewArtifactStore(dataDir string) (*ArtifactStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: data directory is required", domain.ErrInvalidInput)
	}

	s := &ArtifactStore{
		extractions: filepath.Join(dataDir, extractionsDir),
		records:     filepath.Join(dataDir, recordsDir),
		reports:     filepath.Join(dataDir, reportsDir),
	}

	for _, dir := range []string{s.extractions, s.records, s.reports} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating artifact directory: %w", err)
		}
	}

	return s, nil
}

// SaveExtraction writes the extraction result for a document.
func (s *ArtifactStore) SaveExtraction(_ context.Context, id string, doc *domain.ExtractedDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is required", domain.ErrInvalidInput)
	}
	if err := validateID(id); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.extractions, id+".json"), doc)
}

// SaveRecord writes a normalised record keyed by its document id.
func (s *ArtifactStore) SaveRecord(_ context.Context, record *domain.NormalisedRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is required", domain.ErrInvalidInput)
	}
	if err := validateID(record.DocumentID); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.records, record.DocumentID+".json"), record)
}

// LoadRecord reads one normalised record by document id.
func (s *ArtifactStore) LoadRecord(_ context.Context, id string) (*domain.NormalisedRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.records, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}

	var record domain.NormalisedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}

	return &record, nil
}

// ListRecords reads every persisted normalised record, ordered by
// document id.
func (s *ArtifactStore) ListRecords(ctx context.Context) ([]*domain.NormalisedRecord, error) {
	entries, err := os.ReadDir(s.records)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make([]*domain.NormalisedRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		record, err := s.LoadRecord(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// SaveReport writes a run summary report keyed by its run id.
func (s *ArtifactStore) SaveReport(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return fmt.Errorf("%w: report is required", domain.ErrInvalidInput)
	}
	if err := validateID(report.RunID); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.reports, report.RunID+".json"), report)
}

// validateID rejects ids that are empty or would escape the artifact
// directory when used as a file name.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: id %q is not a valid file name", domain.ErrInvalidInput, id)
	}
	return nil
}

// writeJSON marshals v indented and writes it with restricted permissions.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
