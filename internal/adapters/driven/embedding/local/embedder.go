// Package local provides an offline embedding adapter built on
// feature hashing.
//
// Each token is hashed into a fixed-width vector (index from the
// high bits, sign from the low bit) and the result is L2-normalised.
// The vectors carry no learned semantics, only shared-vocabulary
// similarity, but they are deterministic across runs and machines and
// need no network or model download. This is the default provider so
// the pipeline always produces a searchable index; swap in Ollama or
// OpenAI for real semantic recall.
package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// DefaultDimensions is the vector width when none is configured.
const DefaultDimensions = 256

// Config holds configuration for the local embedder.
type Config struct {
	// Dimensions is the embedding vector size (default: 256).
	Dimensions int
}

// Embedder generates deterministic hash-based embeddings.
type Embedder struct {
	dimensions int
}

// New creates a local embedder.
func New(cfg Config) *Embedder {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: cfg.Dimensions}
}

// Embed generates a vector embedding for the given text. Text with no
// tokens embeds to the zero vector, which the store scores 0 against
// every query.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dimensions)

	for _, token := range tokenise(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		index := int(sum % uint64(e.dimensions))
		if sum&(1<<63) != 0 {
			vector[index]--
		} else {
			vector[index]++
		}
	}

	normalise(vector)
	return vector, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the name of the embedding model being used.
func (e *Embedder) ModelName() string {
	return fmt.Sprintf("feature-hash-%d", e.dimensions)
}

// Ping always succeeds: there is no service to reach.
func (e *Embedder) Ping(_ context.Context) error {
	return nil
}

// tokenise splits text into lowercase word tokens.
func tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalise scales the vector to unit length in place. The zero
// vector stays zero.
func normalise(vector []float32) {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	scale := 1 / math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) * scale)
	}
}
