package services

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// WorkspaceEntry is one flattened row bound for the external
// workspace: a kind plus properties keyed by canonical field name.
type WorkspaceEntry struct {
	Kind       string
	Properties map[string]string
}

// Workspace entry kinds.
const (
	KindDocument   = "document"
	KindCondition  = "condition"
	KindMedication = "medication"
	KindSymptom    = "symptom"
	KindLabResult  = "lab_result"
)

// FlattenRecord turns one normalised record into workspace entries:
// one document row plus one row per entity. Every entry carries a
// "key" property, stable across runs, that workspace targets use to
// deduplicate upserts.
func FlattenRecord(record *domain.NormalisedRecord) []WorkspaceEntry {
	if record == nil {
		return nil
	}

	date := ""
	if len(record.Dates) > 0 {
		date = record.Dates[0]
	}

	keys := make(map[string]int)
	base := map[string]string{
		"date":        date,
		"source_file": record.SourcePath,
	}

	entries := []WorkspaceEntry{{
		Kind: KindDocument,
		Properties: withBase(base, map[string]string{
			"key":  record.DocumentID,
			"name": filepath.Base(record.SourcePath),
		}),
	}}

	for _, entity := range record.Entities.Conditions {
		entries = append(entries, WorkspaceEntry{
			Kind: KindCondition,
			Properties: withBase(base, map[string]string{
				"key":           entryKey(keys, record.DocumentID, KindCondition, entity.StandardName),
				"name":          entity.Name,
				"standard_name": entity.StandardName,
				"code":          entity.Code,
			}),
		})
	}

	for _, entity := range record.Entities.Medications {
		entries = append(entries, WorkspaceEntry{
			Kind: KindMedication,
			Properties: withBase(base, map[string]string{
				"key":           entryKey(keys, record.DocumentID, KindMedication, entity.StandardName),
				"name":          entity.Name,
				"standard_name": entity.StandardName,
			}),
		})
	}

	for _, entity := range record.Entities.Symptoms {
		entries = append(entries, WorkspaceEntry{
			Kind: KindSymptom,
			Properties: withBase(base, map[string]string{
				"key":           entryKey(keys, record.DocumentID, KindSymptom, entity.StandardName),
				"name":          entity.Name,
				"standard_name": entity.StandardName,
			}),
		})
	}

	for _, lab := range record.Entities.LabResults {
		entries = append(entries, WorkspaceEntry{
			Kind: KindLabResult,
			Properties: withBase(base, map[string]string{
				"key":             entryKey(keys, record.DocumentID, KindLabResult, lab.TestName),
				"name":            lab.TestName,
				"value":           strconv.FormatFloat(lab.Value, 'f', -1, 64),
				"unit":            lab.Unit,
				"reference_range": lab.ReferenceRange,
				"abnormal":        strconv.FormatBool(lab.IsAbnormal),
			}),
		})
	}

	return entries
}

// entryKey builds the stable dedupe key for one entity, suffixing a
// counter when the same name repeats within a record.
func entryKey(keys map[string]int, docID, kind, name string) string {
	key := fmt.Sprintf("%s/%s/%s", docID, kind, strings.ToLower(name))
	keys[key]++
	if n := keys[key]; n > 1 {
		return fmt.Sprintf("%s/%d", key, n)
	}
	return key
}

// withBase merges the shared record fields into props, dropping
// empty values.
func withBase(base, props map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(props))
	for k, v := range base {
		if v != "" {
			merged[k] = v
		}
	}
	for k, v := range props {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}
