package cli

import (
	"context"
	"time"

	"github.com/chartsift/chartsift/internal/adapters/driven/storage/memory"
	"github.com/chartsift/chartsift/internal/config"
	"github.com/chartsift/chartsift/internal/core/domain"
)

// --- Mock implementations shared across command tests ---

type mockIngestor struct {
	report        *domain.RunReport
	err           error
	lastPaths     []string
	lastDir       string
	lastRecursive bool
}

func (m *mockIngestor) Run(_ context.Context, paths []string) (*domain.RunReport, error) {
	m.lastPaths = paths
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIngestor) RunDir(_ context.Context, dir string, recursive bool) (*domain.RunReport, error) {
	m.lastDir = dir
	m.lastRecursive = recursive
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIngestor) ProcessFile(_ context.Context, path string) (domain.FileOutcome, error) {
	if m.err != nil {
		return domain.FileOutcome{}, m.err
	}
	return domain.FileOutcome{Path: path, Status: domain.StatusSuccess}, nil
}

type mockSearcher struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockSearcher) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockSyncer struct {
	count int
	err   error
}

func (m *mockSyncer) SyncRecords(context.Context) (int, error) {
	return m.count, m.err
}

// --- Canned data ---

func testRunReport() *domain.RunReport {
	return &domain.RunReport{
		RunID:      "run-1",
		StartedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC),
		Total:      3,
		Succeeded:  2,
		Failed:     1,
		EntityCounts: map[string]int{
			"conditions":  2,
			"medications": 1,
		},
		Failures: []domain.FileFailure{
			{Path: "/inbox/bad.pdf", Stage: domain.StageExtract, Error: "no text layer"},
		},
	}
}

func testSearchResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			ID:           "doc-1",
			Score:        0.92,
			Path:         "/inbox/visit.txt",
			DetectedType: "visit_note",
			DetectedDate: "2024-03-01",
		},
		{
			ID:    "doc-2",
			Score: 0.87,
		},
	}
}

// setupTestServices swaps the package service variables for mocks with
// canned data and returns a cleanup that restores the originals.
func setupTestServices() func() {
	oldConfig := appConfig
	oldIngest := ingestService
	oldSearch := searchService
	oldSync := syncService
	oldCatalog := catalogStore
	oldRunLog := runLogStore

	appConfig = config.Default("/tmp/chartsift-test")
	ingestService = &mockIngestor{report: testRunReport()}
	searchService = &mockSearcher{results: testSearchResults()}
	syncService = &mockSyncer{count: 4}

	ctx := context.Background()
	catalog := memory.NewCatalog()
	_ = catalog.Upsert(ctx, domain.CatalogDocument{
		ID:           "doc-1",
		Path:         "/inbox/visit.txt",
		FileName:     "visit.txt",
		DetectedType: "visit_note",
		DetectedDate: "2024-03-01",
		Confidence:   0.9,
		EntityCount:  3,
	})
	_ = catalog.Upsert(ctx, domain.CatalogDocument{
		ID:           "doc-2",
		Path:         "/inbox/labs.csv",
		FileName:     "labs.csv",
		DetectedType: "lab_report",
		DetectedDate: "2024-02-10",
		Confidence:   0.8,
		EntityCount:  5,
	})
	_ = catalog.RecordRun(ctx, testRunReport())
	catalogStore = catalog
	runLogStore = catalog

	return func() {
		appConfig = oldConfig
		ingestService = oldIngest
		searchService = oldSearch
		syncService = oldSync
		catalogStore = oldCatalog
		runLogStore = oldRunLog
	}
}
