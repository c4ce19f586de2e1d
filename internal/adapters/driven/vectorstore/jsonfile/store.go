// Package jsonfile implements the vector store over two JSON
// artifacts: the ordered vector table and its metadata table.
//
// Every mutation rewrites both files whole (write-through) under one
// mutex, so the store survives a process restart with no replay step
// and concurrent pool workers cannot interleave partial writes. Search
// is a brute-force cosine scan: fine at personal-corpus scale and
// exactly reproducible.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// vectorEntry is one row of the persisted vector table. The array
// order on disk is insertion order, which Search uses to break ties.
type vectorEntry struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// Store is a write-through JSON-backed vector store.
type Store struct {
	mu         sync.RWMutex
	path       string
	metaPath   string
	dimensions int
	entries    []vectorEntry
	index      map[string]int
	metadata   map[string]map[string]string
}

// New creates a store backed by the given vectors artifact; the
// metadata artifact lives next to it with a _metadata suffix.
// Whatever is already on disk is loaded and merged. dimensions may be
// 0 to adopt the width of the first vector seen.
func New(path string, dimensions int) (*Store, error) {
	s := &Store{
		path:       path,
		metaPath:   metadataPath(path),
		dimensions: dimensions,
		index:      make(map[string]int),
		metadata:   make(map[string]map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func metadataPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_metadata" + ext
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		// Fresh store.
	case err != nil:
		return fmt.Errorf("reading vector table %s: %w", s.path, err)
	default:
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return fmt.Errorf("parsing vector table %s: %w", s.path, err)
		}
	}

	for i, entry := range s.entries {
		if s.dimensions == 0 {
			s.dimensions = len(entry.Vector)
		}
		if len(entry.Vector) != s.dimensions {
			return fmt.Errorf("vector %s has %d dimensions, store has %d: %w",
				entry.ID, len(entry.Vector), s.dimensions, domain.ErrDimensionMismatch)
		}
		s.index[entry.ID] = i
	}

	metaData, err := os.ReadFile(s.metaPath)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return fmt.Errorf("reading vector metadata %s: %w", s.metaPath, err)
	}
	if err := json.Unmarshal(metaData, &s.metadata); err != nil {
		return fmt.Errorf("parsing vector metadata %s: %w", s.metaPath, err)
	}
	return nil
}

// persist writes both artifacts whole. Caller holds the write lock.
func (s *Store) persist() error {
	vectors, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encoding vector table: %w", err)
	}
	if err := os.WriteFile(s.path, vectors, 0600); err != nil {
		return fmt.Errorf("writing vector table %s: %w", s.path, err)
	}

	metadata, err := json.Marshal(s.metadata)
	if err != nil {
		return fmt.Errorf("encoding vector metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath, metadata, 0600); err != nil {
		return fmt.Errorf("writing vector metadata %s: %w", s.metaPath, err)
	}
	return nil
}

// Add inserts or overwrites a vector. An overwrite keeps the entry's
// original insertion position.
func (s *Store) Add(_ context.Context, id string, vector []float32, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions == 0 {
		s.dimensions = len(vector)
	}
	if len(vector) != s.dimensions {
		return fmt.Errorf("vector %s has %d dimensions, store has %d: %w",
			id, len(vector), s.dimensions, domain.ErrDimensionMismatch)
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)

	if i, ok := s.index[id]; ok {
		s.entries[i].Vector = stored
	} else {
		s.index[id] = len(s.entries)
		s.entries = append(s.entries, vectorEntry{ID: id, Vector: stored})
	}

	if metadata == nil {
		delete(s.metadata, id)
	} else {
		copied := make(map[string]string, len(metadata))
		for k, v := range metadata {
			copied[k] = v
		}
		s.metadata[id] = copied
	}
	return s.persist()
}

// Search scans every entry and returns the k best by cosine
// similarity, descending. Ties keep insertion order.
func (s *Store) Search(_ context.Context, query []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimensions && s.dimensions != 0 {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), s.dimensions, domain.ErrDimensionMismatch)
	}

	hits := make([]domain.VectorHit, 0, len(s.entries))
	for _, entry := range s.entries {
		var metadata map[string]string
		if stored, ok := s.metadata[entry.ID]; ok {
			metadata = make(map[string]string, len(stored))
			for k, v := range stored {
				metadata[k] = v
			}
		}
		hits = append(hits, domain.VectorHit{
			ID:       entry.ID,
			Score:    cosine(query, entry.Vector),
			Metadata: metadata,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes an entry and persists. Returns false when the id was
// absent.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, id)
	delete(s.metadata, id)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].ID] = j
	}
	return true, s.persist()
}

// Clear removes every entry and persists the empty tables.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.index = make(map[string]int)
	s.metadata = make(map[string]map[string]string)
	return s.persist()
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimensions returns the store's fixed vector width; 0 until the
// first vector fixes it.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// cosine computes similarity in float64 for stability. Either side
// having zero norm scores 0.0.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
