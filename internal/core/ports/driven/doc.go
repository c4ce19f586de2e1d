// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns one source file into text plus metadata
//   - Embedder: Generates vector embeddings for content
//   - VectorStore: Persists embeddings and answers similarity queries
//   - RegistryStore: Persists the processed-file registry
//   - ArtifactStore: Persists extraction results, records and reports
//   - Catalog: Queryable document catalog backing search hydration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EntityMiner: LLM free-text entity extraction. Without it, only
//     rule-based entities are found.
//   - WorkspaceSync: Pushes finished records to an external workspace.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
