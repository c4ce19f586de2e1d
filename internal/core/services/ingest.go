package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/core/ports/driving"
	"github.com/chartsift/chartsift/internal/extractors"
	"github.com/chartsift/chartsift/internal/logger"
	"github.com/chartsift/chartsift/internal/normaliser"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService drives files through the processing pipeline and owns
// the processed-file registry recording their outcomes.
type IngestService struct {
	selector   *extractors.Selector
	normaliser *normaliser.Normaliser
	embedder   driven.Embedder
	miner      driven.EntityMiner
	vectors    driven.VectorStore
	artifacts  driven.ArtifactStore
	registry   driven.RegistryStore
	catalog    driven.Catalog
	runLog     driven.RunLog
	errorDir   string
	workers    int
}

// NewIngestService creates a new ingestion service.
// The miner and runLog parameters are optional (can be nil). A workers
// value of zero or less means one worker per CPU.
func NewIngestService(
	selector *extractors.Selector,
	norm *normaliser.Normaliser,
	embedder driven.Embedder,
	miner driven.EntityMiner,
	vectors driven.VectorStore,
	artifacts driven.ArtifactStore,
	registry driven.RegistryStore,
	catalog driven.Catalog,
	runLog driven.RunLog,
	errorDir string,
	workers int,
) *IngestService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &IngestService{
		selector:   selector,
		normaliser: norm,
		embedder:   embedder,
		miner:      miner,
		vectors:    vectors,
		artifacts:  artifacts,
		registry:   registry,
		catalog:    catalog,
		runLog:     runLog,
		errorDir:   errorDir,
		workers:    workers,
	}
}

// Run processes a batch of file paths and returns the run report.
// Per-file failures land in the report and registry; Run itself fails
// only when the registry or an output directory is unusable.
func (s *IngestService) Run(ctx context.Context, paths []string) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:        uuid.New().String(),
		StartedAt:    time.Now().UTC(),
		EntityCounts: make(map[string]int),
	}

	// 1. Load the registry once before dispatching any work.
	registry, err := s.registry.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}

	// 2. Partition out files already registered as successful.
	pending := make([]string, 0, len(paths))
	for _, path := range paths {
		abs := absolutePath(path)
		if registry.Succeeded(abs) {
			logger.Debug("Skipping %s: already processed", abs)
			report.Skipped++
			continue
		}
		pending = append(pending, abs)
	}

	logger.Section("Ingestion Run")
	logger.Info("Run %s: %d files to process, %d skipped, %d workers",
		report.RunID, len(pending), report.Skipped, s.workers)

	// 3. Fan the files out to the worker pool.
	jobs := make(chan string)
	results := make(chan domain.FileOutcome)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- s.pipeline(ctx, path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range pending {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// 4. Fold outcomes into the report and registry. Only this
	// goroutine builds registry entries, so no locking is needed.
	for outcome := range results {
		report.Merge(outcome)
		registry = registry.WithEntry(outcome.Path, registryEntry(outcome))
		if outcome.Status == domain.StatusError {
			logger.Warn("Failed %s at %s stage: %s", outcome.Path, outcome.Stage, outcome.Error)
			s.copyToErrorHold(outcome.Path)
		}
	}
	report.FinishedAt = time.Now().UTC()

	// 5. Persist the registry and the run report.
	if err := s.registry.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("saving registry: %w", err)
	}
	if err := s.artifacts.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	if s.runLog != nil {
		if err := s.runLog.RecordRun(ctx, report); err != nil {
			logger.Warn("Recording run in catalog failed: %v", err)
		}
	}

	logger.Info("Run %s complete: %d succeeded, %d failed, %d skipped",
		report.RunID, report.Succeeded, report.Failed, report.Skipped)
	return report, nil
}

// RunDir discovers files under dir, optionally recursing, and
// processes them as one batch. Hidden files are ignored; unsupported
// files surface as select-stage failures in the report.
func (s *IngestService) RunDir(ctx context.Context, dir string, recursive bool) (*domain.RunReport, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sort.Strings(paths)
	return s.Run(ctx, paths)
}

// ProcessFile runs the pipeline for a single file and registers its
// outcome immediately. Unlike Run it never skips a previously
// successful file: the watcher calls this on file events, and an event
// means the content changed.
func (s *IngestService) ProcessFile(ctx context.Context, path string) (domain.FileOutcome, error) {
	registry, err := s.registry.Load(ctx)
	if err != nil {
		return domain.FileOutcome{}, fmt.Errorf("loading registry: %w", err)
	}

	outcome := s.pipeline(ctx, absolutePath(path))
	if outcome.Status == domain.StatusError {
		logger.Warn("Failed %s at %s stage: %s", outcome.Path, outcome.Stage, outcome.Error)
		s.copyToErrorHold(outcome.Path)
	}

	registry = registry.WithEntry(outcome.Path, registryEntry(outcome))
	if err := s.registry.Save(ctx, registry); err != nil {
		return outcome, fmt.Errorf("saving registry: %w", err)
	}

	return outcome, nil
}

// pipeline runs one file through select, extract, normalise, persist
// and embed, reporting the first failing stage.
func (s *IngestService) pipeline(ctx context.Context, path string) domain.FileOutcome {
	logger.Debug("Processing %s", path)

	extractor, err := s.selector.Select(path)
	if err != nil {
		return failure(path, domain.StageSelect, err)
	}

	doc, err := extractor.Extract(ctx, path)
	if err != nil {
		return failure(path, domain.StageExtract, err)
	}
	if doc.Confidence == 0 {
		return failure(path, domain.StageExtract, errors.New("extraction produced no usable content"))
	}

	record := s.normaliser.Normalise(doc, path)
	record = s.mineEntities(ctx, doc, record)

	if err := s.artifacts.SaveExtraction(ctx, record.DocumentID, doc); err != nil {
		return failure(path, domain.StagePersist, err)
	}
	if err := s.artifacts.SaveRecord(ctx, record); err != nil {
		return failure(path, domain.StagePersist, err)
	}
	if err := s.catalog.Upsert(ctx, catalogDocument(doc, record)); err != nil {
		return failure(path, domain.StagePersist, err)
	}

	if err := s.embed(ctx, doc, record); err != nil {
		return failure(path, domain.StageEmbed, err)
	}

	return domain.FileOutcome{
		Path:         path,
		Status:       domain.StatusSuccess,
		EntityCounts: record.EntityCounts(),
	}
}

// mineEntities merges model-mined entities into the record when a
// miner is configured. A mining failure degrades to the rule-based
// record instead of failing the file.
func (s *IngestService) mineEntities(ctx context.Context, doc *domain.ExtractedDocument, record *domain.NormalisedRecord) *domain.NormalisedRecord {
	if s.miner == nil {
		return record
	}

	raw, err := s.miner.MineEntities(ctx, doc.Content, doc.Metadata.DetectedDate, doc.Metadata.DetectedType)
	if err != nil {
		logger.Warn("Entity mining failed for %s: %v", record.SourcePath, err)
		return record
	}

	mined := normaliser.ParseMinedEntities(raw)
	if mined.Empty() {
		return record
	}
	return s.normaliser.MergeEntities(record, mined)
}

// embed vectorises the document text and stores it under the record's
// document id, carrying enough metadata to render a hit on its own.
func (s *IngestService) embed(ctx context.Context, doc *domain.ExtractedDocument, record *domain.NormalisedRecord) error {
	vector, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embedding document: %w", err)
	}

	metadata := map[string]string{
		"source_path": record.SourcePath,
		"file_name":   doc.Metadata.FileName,
	}
	if doc.Metadata.DetectedType != "" {
		metadata["detected_type"] = doc.Metadata.DetectedType
	}
	if doc.Metadata.DetectedDate != "" {
		metadata["detected_date"] = doc.Metadata.DetectedDate
	}

	if err := s.vectors.Add(ctx, record.DocumentID, vector, metadata); err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}
	return nil
}

// copyToErrorHold copies a failed file into the error holding
// directory. The original is never moved; copy failures are logged,
// not raised.
func (s *IngestService) copyToErrorHold(path string) {
	if s.errorDir == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Copying %s to error hold: %v", path, err)
		return
	}
	if err := os.WriteFile(filepath.Join(s.errorDir, filepath.Base(path)), data, 0600); err != nil {
		logger.Warn("Copying %s to error hold: %v", path, err)
	}
}

// catalogDocument builds the catalog row for a processed document.
// The date prefers the filename-detected date, then the earliest date
// found in the content.
func catalogDocument(doc *domain.ExtractedDocument, record *domain.NormalisedRecord) domain.CatalogDocument {
	date := doc.Metadata.DetectedDate
	if date == "" && len(record.Dates) > 0 {
		date = record.Dates[0]
	}

	total := 0
	for _, n := range record.EntityCounts() {
		total += n
	}

	return domain.CatalogDocument{
		ID:           record.DocumentID,
		Path:         record.SourcePath,
		FileName:     doc.Metadata.FileName,
		DetectedType: doc.Metadata.DetectedType,
		DetectedDate: date,
		Confidence:   doc.Confidence,
		EntityCount:  total,
	}
}

func registryEntry(outcome domain.FileOutcome) domain.RegistryEntry {
	entry := domain.RegistryEntry{
		Timestamp: time.Now().UTC(),
		Status:    outcome.Status,
	}
	if outcome.Status == domain.StatusError {
		entry.Error = fmt.Sprintf("%s: %s", outcome.Stage, outcome.Error)
	}
	return entry
}

func failure(path, stage string, err error) domain.FileOutcome {
	return domain.FileOutcome{
		Path:   path,
		Status: domain.StatusError,
		Stage:  stage,
		Error:  err.Error(),
	}
}

// absolutePath resolves path for registry keying, falling back to the
// raw path when the working directory is unknown.
func absolutePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
