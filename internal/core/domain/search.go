package domain

// VectorHit is a single similarity-search result from the vector store.
type VectorHit struct {
	// ID is the stored entry's identifier.
	ID string `json:"id"`

	// Score is the cosine similarity in [-1, 1]. A zero-norm vector on
	// either side scores 0.0 rather than raising a division error.
	Score float64 `json:"score"`

	// Metadata is the entry's stored metadata.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a vector hit hydrated with catalog information.
type SearchResult struct {
	// ID is the matched entry's identifier.
	ID string `json:"id"`

	// Score is the cosine similarity of the match.
	Score float64 `json:"score"`

	// Path is the source file of the matched document, when known.
	Path string `json:"path,omitempty"`

	// DetectedType is the document type from the catalog, when known.
	DetectedType string `json:"detected_type,omitempty"`

	// DetectedDate is the document date from the catalog, when known.
	DetectedDate string `json:"detected_date,omitempty"`

	// Metadata is the vector entry's stored metadata.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CatalogDocument is a catalog row describing one ingested document.
type CatalogDocument struct {
	// ID is the document identifier shared with the vector store.
	ID string `json:"id"`

	// Path is the source file path.
	Path string `json:"path"`

	// FileName is the base name of the source file.
	FileName string `json:"file_name"`

	// DetectedType is the inferred document type.
	DetectedType string `json:"detected_type,omitempty"`

	// DetectedDate is the document's primary ISO-8601 date.
	DetectedDate string `json:"detected_date,omitempty"`

	// Confidence is the extraction confidence.
	Confidence float64 `json:"confidence"`

	// EntityCount is the total number of entities on the record.
	EntityCount int `json:"entity_count"`
}
