package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor could be selected for a
	// file. The file is skipped and reported, never retried automatically.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDimensionMismatch indicates a vector whose dimensionality differs
	// from the store's fixed dimension. Mixing embedding models in one
	// store is a caller error, not silently handled.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbedderUnavailable indicates no embedding service is configured.
	// Semantic indexing and search are disabled without one.
	ErrEmbedderUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no language model client is configured.
	// Free-text entity mining is disabled without one.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSyncUnavailable indicates no workspace sync target is configured.
	ErrSyncUnavailable = errors.New("workspace sync target unavailable")
)
