package driven

import "context"

// Embedder generates vector embeddings from text.
//
// Embedders are pluggable: the store contract only cares that one
// model (hence one dimensionality) is used per store instance.
//
// Implementations may include:
//   - Local deterministic hashing (no network, always available)
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 256, 768, 1536).
	// This is determined by the model and must match the store's width.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the provider is reachable by making a lightweight
	// test request. Used at startup before committing to a run.
	Ping(ctx context.Context) error
}
