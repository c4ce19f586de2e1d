// Package domain defines the core business entities for ChartSift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ExtractedDocument: Content and metadata pulled from a source file
//   - NormalisedRecord: The structured medical view of one document
//   - Registry: The ledger of processed files
//   - RunReport: The aggregate outcome of one ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
