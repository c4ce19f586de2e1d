package domain

import "time"

// ExtractedDocument is the output of one format extractor run over one file.
// It is created once by an extractor, owned by the orchestrator for the
// duration of a pipeline run, and never mutated afterwards; the normaliser
// reads it and produces a new NormalisedRecord.
type ExtractedDocument struct {
	// Metadata describes the source file.
	Metadata DocumentMetadata `json:"metadata"`

	// Content is the full extracted text. Partial extraction failures are
	// annotated in-band with a bracketed marker rather than raised.
	Content string `json:"content"`

	// Structured holds format-specific structures (tables, sections,
	// mined dates and provider names). Nil when the format yields none.
	Structured *StructuredContent `json:"structured,omitempty"`

	// Confidence is a 0-1 score for how much of the file was reliably
	// extracted. 1.0 means the primary parser succeeded on every unit;
	// fallback-only output is capped at 0.8; total failure is 0.
	Confidence float64 `json:"confidence"`
}

// DocumentMetadata describes the source file of an ExtractedDocument.
type DocumentMetadata struct {
	// FileName is the base name of the source file.
	FileName string `json:"file_name"`

	// Extension is the lower-cased file extension including the dot.
	Extension string `json:"extension"`

	// MIMEType is the detected content type (e.g., "application/pdf").
	MIMEType string `json:"mime_type"`

	// SizeBytes is the file size at extraction time.
	SizeBytes int64 `json:"size_bytes"`

	// ModifiedAt is the file's last modification time.
	ModifiedAt time.Time `json:"modified_at"`

	// DetectedDate is an ISO-8601 date parsed from the file name,
	// empty when no date pattern matched.
	DetectedDate string `json:"detected_date,omitempty"`

	// DetectedType is the inferred document type (e.g., "lab_report",
	// "consultation"), empty when nothing matched.
	DetectedType string `json:"detected_type,omitempty"`
}

// StructuredContent carries secondary extraction results shared by all
// format extractors: mined dates, detected sections, provider names, and
// tables for the formats that have them.
type StructuredContent struct {
	// Sections are heading-delimited regions of the document.
	Sections []Section `json:"sections,omitempty"`

	// Tables are row-oriented structures from tabular, markup and
	// word-processor formats.
	Tables []Table `json:"tables,omitempty"`

	// Dates are ISO-8601 dates mined from the body text.
	Dates []string `json:"dates,omitempty"`

	// Providers are clinician names mined via title patterns.
	Providers []string `json:"providers,omitempty"`
}

// Section is a heading-delimited region of a document.
type Section struct {
	// Heading is the section title as it appeared in the source.
	Heading string `json:"heading"`

	// Body is the text under the heading, up to the next heading.
	Body string `json:"body"`
}

// Table is a row-oriented structure extracted from a document.
// Rows are keyed by header name; ragged rows keep whatever cells they had.
type Table struct {
	// Name identifies the table within the document (sheet, caption,
	// or a positional label like "table_1").
	Name string `json:"name"`

	// Headers are the column names in source order.
	Headers []string `json:"headers"`

	// Rows map header name to cell value, one map per data row.
	Rows []map[string]string `json:"rows"`
}
