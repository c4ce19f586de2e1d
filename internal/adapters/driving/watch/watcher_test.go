package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// watchMockIngestor implements driving.Ingestor, recording processed
// paths and signalling each call.
type watchMockIngestor struct {
	mu        sync.Mutex
	processed []string
	calls     chan string
}

func newWatchMockIngestor() *watchMockIngestor {
	return &watchMockIngestor{calls: make(chan string, 16)}
}

func (m *watchMockIngestor) Run(_ context.Context, _ []string) (*domain.RunReport, error) {
	return &domain.RunReport{}, nil
}

func (m *watchMockIngestor) RunDir(_ context.Context, _ string, _ bool) (*domain.RunReport, error) {
	return &domain.RunReport{}, nil
}

func (m *watchMockIngestor) ProcessFile(_ context.Context, path string) (domain.FileOutcome, error) {
	m.mu.Lock()
	m.processed = append(m.processed, path)
	m.mu.Unlock()
	m.calls <- path
	return domain.FileOutcome{Path: path, Status: domain.StatusSuccess}, nil
}

func (m *watchMockIngestor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processed)
}

func TestNew_DefaultDebounce(t *testing.T) {
	w := New(newWatchMockIngestor(), 0)
	assert.Equal(t, DefaultDebounce, w.debounce)

	w = New(newWatchMockIngestor(), 50*time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, w.debounce)
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(newWatchMockIngestor(), 50*time.Millisecond)

	err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}

func TestWatcher_ProcessesNewFile(t *testing.T) {
	dir := t.TempDir()
	ingestor := newWatchMockIngestor()
	w := New(ingestor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	// Let the watch establish, then drop a file in.
	path := filepath.Join(dir, "visit.txt")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte("Patient has hypertension."), 0600)
	}()

	select {
	case got := <-ingestor.calls:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file to be processed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watch to stop")
	}
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	ingestor := newWatchMockIngestor()
	w := New(ingestor, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx, dir) }()
	time.Sleep(50 * time.Millisecond)

	// A burst of writes inside the quiet window collapses to one
	// ingestion.
	path := filepath.Join(dir, "visit.txt")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("Patient has hypertension."), 0600))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-ingestor.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file to be processed")
	}

	// Give any stray timers a chance to fire before counting.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, ingestor.count())
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	ingestor := newWatchMockIngestor()
	w := New(ingestor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx, dir) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial.txt"), []byte("x"), 0600))
	visible := filepath.Join(dir, "visible.txt")
	require.NoError(t, os.WriteFile(visible, []byte("Patient has hypertension."), 0600))

	select {
	case got := <-ingestor.calls:
		assert.Equal(t, visible, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file to be processed")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, ingestor.count())
}
