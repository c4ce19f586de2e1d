// Package cache wraps an embedder with an in-memory LRU over text
// content.
//
// Re-ingesting an unchanged corpus is the common case for a personal
// archive, and provider embeddings are the slowest and most expensive
// step of the pipeline. Entries are keyed by content hash, so renames
// and re-reads of identical text all hit.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Embedder caches the vectors of an inner embedder.
type Embedder struct {
	inner   driven.Embedder
	entries *lru.Cache[string, []float32]
}

// New wraps inner with an LRU holding up to size vectors.
func New(inner driven.Embedder, size int) (*Embedder, error) {
	entries, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &Embedder{inner: inner, entries: entries}, nil
}

// Embed returns the cached vector for text, embedding on miss.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k := key(text)
	if cached, ok := e.entries.Get(k); ok {
		return clone(cached), nil
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.entries.Add(k, clone(vector))
	return vector, nil
}

// EmbedBatch serves what it can from cache and embeds the rest in one
// inner batch. Duplicate texts within the batch are embedded once.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var missTexts []string
	var missKeys []string
	positions := make(map[string][]int)
	for i, text := range texts {
		k := key(text)
		if cached, ok := e.entries.Get(k); ok {
			results[i] = clone(cached)
			continue
		}
		if _, seen := positions[k]; !seen {
			missTexts = append(missTexts, text)
			missKeys = append(missKeys, k)
		}
		positions[k] = append(positions[k], i)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(missTexts))
	}

	for j, k := range missKeys {
		e.entries.Add(k, clone(embedded[j]))
		for _, i := range positions[k] {
			results[i] = clone(embedded[j])
		}
	}
	return results, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// ModelName returns the inner embedder's model name.
func (e *Embedder) ModelName() string {
	return e.inner.ModelName()
}

// Ping checks the inner embedder's connectivity.
func (e *Embedder) Ping(ctx context.Context) error {
	return e.inner.Ping(ctx)
}

func key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clone(vector []float32) []float32 {
	copied := make([]float32, len(vector))
	copy(copied, vector)
	return copied
}
