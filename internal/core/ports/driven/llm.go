package driven

import "context"

// EntityMiner asks a language model to pull medical entities out of
// free text. This is an optional collaborator - when nil, normalisation
// relies on rule-based extraction alone.
//
// The miner returns the model's raw text response. Callers must
// tolerate anything: valid JSON objects or arrays, JSON wrapped in
// markdown code fences, plain prose, or an empty string. Interpreting
// that response is the normaliser's job, not the miner's.
//
// Implementations may include:
//   - Ollama (local models)
//   - Anthropic (Claude)
//   - OpenAI (GPT)
type EntityMiner interface {
	// MineEntities requests entity extraction for one document.
	// Date and docType give the model context and may be empty.
	MineEntities(ctx context.Context, content, date, docType string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the provider is reachable by making a lightweight
	// test request. Used at startup before committing to a run.
	Ping(ctx context.Context) error
}
