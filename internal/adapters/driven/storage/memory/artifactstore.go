// Package memory provides in-memory implementations of the storage
// ports. They back tests and trial runs where nothing should touch
// disk; semantics match the file-based adapters.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
type ArtifactStore struct {
	mu          sync.RWMutex
	extractions map[string]domain.ExtractedDocument
	records     map[string]domain.NormalisedRecord
	reports     map[string]domain.RunReport
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		extractions: make(map[string]domain.ExtractedDocument),
		records:     make(map[string]domain.NormalisedRecord),
		reports:     make(map[string]domain.RunReport),
	}
}

// SaveExtraction stores the extraction result for a document.
func (s *ArtifactStore) SaveExtraction(_ context.Context, id string, doc *domain.ExtractedDocument) error {
	if id == "" || doc == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractions[id] = *doc
	return nil
}

// SaveRecord stores a normalised record keyed by its document id.
func (s *ArtifactStore) SaveRecord(_ context.Context, record *domain.NormalisedRecord) error {
	if record == nil || record.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.DocumentID] = *record
	return nil
}

// LoadRecord retrieves one normalised record by document id.
func (s *ArtifactStore) LoadRecord(_ context.Context, id string) (*domain.NormalisedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// ListRecords returns every stored record, ordered by document id.
func (s *ArtifactStore) ListRecords(_ context.Context) ([]*domain.NormalisedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]*domain.NormalisedRecord, 0, len(ids))
	for _, id := range ids {
		record := s.records[id]
		records = append(records, &record)
	}
	return records, nil
}

// SaveReport stores a run summary report keyed by its run id.
func (s *ArtifactStore) SaveReport(_ context.Context, report *domain.RunReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.RunID] = *report
	return nil
}

// Reports returns every stored report keyed by run id.
func (s *ArtifactStore) Reports() map[string]domain.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make(map[string]domain.RunReport, len(s.reports))
	for id, report := range s.reports {
		reports[id] = report
	}
	return reports
}

// Extraction returns a stored extraction result, if present.
func (s *ArtifactStore) Extraction(id string) (domain.ExtractedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.extractions[id]
	return doc, ok
}
