package domain

// NormalisedRecord is the canonical, entity-tagged representation of one
// document. It is a pure function of its ExtractedDocument: normalising the
// same document twice produces byte-identical JSON. Created once by the
// normaliser and immutable thereafter; enrichment steps build a new record
// rather than mutating in place.
type NormalisedRecord struct {
	// DocumentID identifies the record (stable per source path).
	DocumentID string `json:"document_id"`

	// SourcePath is the path of the file the record was built from.
	SourcePath string `json:"source_path"`

	// Dates is the ordered set (sorted, unique) of ISO-8601 dates found
	// in the document's metadata and content.
	Dates []string `json:"dates,omitempty"`

	// Specialties maps medical specialty to a 0-1 match confidence.
	// Specialties with no keyword hits are omitted entirely.
	Specialties map[string]float64 `json:"specialties,omitempty"`

	// Entities holds the typed clinical entities found in the document.
	Entities EntitySet `json:"entities"`

	// ConditionCategories maps category name to the terms that matched,
	// each with surrounding context. A category is present only when at
	// least one of its patterns matched.
	ConditionCategories map[string][]CategoryMatch `json:"condition_categories,omitempty"`
}

// EntitySet groups the clinical entities of one record by type.
type EntitySet struct {
	Conditions  []Entity    `json:"conditions,omitempty"`
	Medications []Entity    `json:"medications,omitempty"`
	Symptoms    []Entity    `json:"symptoms,omitempty"`
	LabResults  []LabResult `json:"lab_results,omitempty"`
	Providers   []string    `json:"providers,omitempty"`
}

// Entity is a single standardised clinical entity.
type Entity struct {
	// Name is the text as it appeared in the document.
	Name string `json:"name"`

	// StandardName is the canonical name from the lookup table, or the
	// original text when no canonical entry exists.
	StandardName string `json:"standard_name"`

	// Code is the taxonomy code for the canonical name, when one exists.
	// Only conditions carry codes; absence is not an error.
	Code string `json:"code,omitempty"`

	// Confidence is the standardisation confidence: 0.9 for a canonical
	// table hit, 0.5 when the original text was kept.
	Confidence float64 `json:"standardization_confidence"`
}

// CategoryMatch records one pattern hit for a condition category.
type CategoryMatch struct {
	// Term is the text that matched the category pattern.
	Term string `json:"term"`

	// Context is up to 100 characters of surrounding text on each side.
	Context string `json:"context"`
}

// LabResult is a parsed laboratory measurement.
// IsAbnormal is derived once at creation from the reference range and is
// never recomputed unless the source document is reprocessed.
type LabResult struct {
	// TestName is the canonical test name, or the raw name when no
	// canonical entry exists.
	TestName string `json:"test_name"`

	// RawName is the test name exactly as it appeared in the document.
	RawName string `json:"raw_name,omitempty"`

	// Value is the measured numeric value.
	Value float64 `json:"value"`

	// Unit is the canonicalised unit, or the original when unknown.
	Unit string `json:"unit,omitempty"`

	// ReferenceRange is the normal interval as printed in the source,
	// e.g. "70-99", ">60", "<150". Empty when none was given.
	ReferenceRange string `json:"reference_range,omitempty"`

	// IsAbnormal reports whether Value falls outside ReferenceRange.
	// An unparsable range never flags a value as abnormal.
	IsAbnormal bool `json:"is_abnormal"`
}

// EntityCounts tallies the record's entities by type, in the shape the run
// report aggregates across files.
func (r *NormalisedRecord) EntityCounts() map[string]int {
	counts := make(map[string]int, 5)
	if n := len(r.Entities.Conditions); n > 0 {
		counts["conditions"] = n
	}
	if n := len(r.Entities.Medications); n > 0 {
		counts["medications"] = n
	}
	if n := len(r.Entities.Symptoms); n > 0 {
		counts["symptoms"] = n
	}
	if n := len(r.Entities.LabResults); n > 0 {
		counts["lab_results"] = n
	}
	if n := len(r.Entities.Providers); n > 0 {
		counts["providers"] = n
	}
	return counts
}
