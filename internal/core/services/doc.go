// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestService owns the pipeline and the processed-file registry,
// SearchService answers similarity queries, SyncService pushes records
// to the external workspace.
package services
