package driving

import (
	"context"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// Ingestor drives documents through the full pipeline:
// select -> extract -> normalise -> embed -> register.
type Ingestor interface {
	// Run processes a batch of file paths and returns the run report.
	// Per-file failures are captured in the report and registry; Run
	// itself fails only on configuration-level errors (unreadable
	// registry, unwritable output directory).
	Run(ctx context.Context, paths []string) (*domain.RunReport, error)

	// RunDir discovers recognised files under dir, optionally
	// recursing, and processes them as one batch.
	RunDir(ctx context.Context, dir string, recursive bool) (*domain.RunReport, error)

	// ProcessFile runs the pipeline for a single file and registers
	// its outcome immediately. Used by the directory watcher.
	ProcessFile(ctx context.Context, path string) (domain.FileOutcome, error)
}
