package driven

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// ArtifactStore persists the JSON artifacts produced by a pipeline run:
// per-document extraction results, per-document normalised records and
// per-run summary reports.
//
// Records for failed files are never written; a failed file leaves only
// a registry entry and a report line.
type ArtifactStore interface {
	// SaveExtraction writes the extraction result for a document.
	SaveExtraction(ctx context.Context, id string, doc *domain.ExtractedDocument) error

	// SaveRecord writes a normalised record.
	SaveRecord(ctx context.Context, record *domain.NormalisedRecord) error

	// LoadRecord reads one normalised record by document id.
	// Returns domain.ErrNotFound when no record exists.
	LoadRecord(ctx context.Context, id string) (*domain.NormalisedRecord, error)

	// ListRecords reads every persisted normalised record.
	ListRecords(ctx context.Context) ([]*domain.NormalisedRecord, error)

	// SaveReport writes a run summary report.
	SaveReport(ctx context.Context, report *domain.RunReport) error
}
