package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsift/chartsift/internal/core/domain"
)

func TestFlattenRecord_Nil(t *testing.T) {
	assert.Nil(t, FlattenRecord(nil))
}

func TestFlattenRecord_DocumentOnly(t *testing.T) {
	entries := FlattenRecord(&domain.NormalisedRecord{
		DocumentID: "doc-1",
		SourcePath: "/inbox/visit.txt",
	})

	require.Len(t, entries, 1)
	assert.Equal(t, KindDocument, entries[0].Kind)
	assert.Equal(t, "doc-1", entries[0].Properties["key"])
	assert.Equal(t, "visit.txt", entries[0].Properties["name"])
	assert.Equal(t, "/inbox/visit.txt", entries[0].Properties["source_file"])

	// No dates on the record means no date property at all.
	_, ok := entries[0].Properties["date"]
	assert.False(t, ok)
}

func TestFlattenRecord_AllKinds(t *testing.T) {
	record := &domain.NormalisedRecord{
		DocumentID: "doc-1",
		SourcePath: "/inbox/visit.txt",
		Dates:      []string{"2024-03-01", "2024-04-15"},
		Entities: domain.EntitySet{
			Conditions:  []domain.Entity{{Name: "HTN", StandardName: "hypertension", Code: "I10", Confidence: 0.9}},
			Medications: []domain.Entity{{Name: "Zestril", StandardName: "lisinopril", Confidence: 0.9}},
			Symptoms:    []domain.Entity{{Name: "dizziness", StandardName: "dizziness", Confidence: 0.5}},
			LabResults: []domain.LabResult{
				{TestName: "glucose", Value: 112.5, Unit: "mg/dL", ReferenceRange: "70-99", IsAbnormal: true},
			},
		},
	}

	entries := FlattenRecord(record)
	require.Len(t, entries, 5)

	kinds := make([]string, len(entries))
	for i, entry := range entries {
		kinds[i] = entry.Kind
	}
	assert.Equal(t, []string{KindDocument, KindCondition, KindMedication, KindSymptom, KindLabResult}, kinds)

	// Every entry carries the record's first date and source file.
	for _, entry := range entries {
		assert.Equal(t, "2024-03-01", entry.Properties["date"], "kind %s", entry.Kind)
		assert.Equal(t, "/inbox/visit.txt", entry.Properties["source_file"], "kind %s", entry.Kind)
		assert.NotEmpty(t, entry.Properties["key"], "kind %s", entry.Kind)
	}

	condition := entries[1].Properties
	assert.Equal(t, "doc-1/condition/hypertension", condition["key"])
	assert.Equal(t, "HTN", condition["name"])
	assert.Equal(t, "hypertension", condition["standard_name"])
	assert.Equal(t, "I10", condition["code"])

	medication := entries[2].Properties
	assert.Equal(t, "doc-1/medication/lisinopril", medication["key"])
	assert.Equal(t, "Zestril", medication["name"])

	lab := entries[4].Properties
	assert.Equal(t, "doc-1/lab_result/glucose", lab["key"])
	assert.Equal(t, "glucose", lab["name"])
	assert.Equal(t, "112.5", lab["value"])
	assert.Equal(t, "mg/dL", lab["unit"])
	assert.Equal(t, "70-99", lab["reference_range"])
	assert.Equal(t, "true", lab["abnormal"])
}

func TestFlattenRecord_DuplicateNamesGetSuffixedKeys(t *testing.T) {
	record := &domain.NormalisedRecord{
		DocumentID: "doc-1",
		SourcePath: "/inbox/labs.txt",
		Entities: domain.EntitySet{
			LabResults: []domain.LabResult{
				{TestName: "glucose", Value: 95},
				{TestName: "glucose", Value: 180},
			},
		},
	}

	entries := FlattenRecord(record)
	require.Len(t, entries, 3)
	assert.Equal(t, "doc-1/lab_result/glucose", entries[1].Properties["key"])
	assert.Equal(t, "doc-1/lab_result/glucose/2", entries[2].Properties["key"])
}

func TestFlattenRecord_DropsEmptyValues(t *testing.T) {
	record := &domain.NormalisedRecord{
		DocumentID: "doc-1",
		SourcePath: "/inbox/visit.txt",
		Entities: domain.EntitySet{
			Conditions: []domain.Entity{{Name: "tiredness", StandardName: "tiredness", Confidence: 0.5}},
			LabResults: []domain.LabResult{{TestName: "glucose", Value: 95}},
		},
	}

	entries := FlattenRecord(record)
	require.Len(t, entries, 3)

	// A condition with no taxonomy code has no code property.
	_, ok := entries[1].Properties["code"]
	assert.False(t, ok)

	// A lab with no unit or range drops those, and a normal result
	// still carries its abnormal flag.
	lab := entries[2].Properties
	_, ok = lab["unit"]
	assert.False(t, ok)
	_, ok = lab["reference_range"]
	assert.False(t, ok)
	assert.Equal(t, "false", lab["abnormal"])
	assert.Equal(t, "95", lab["value"])
}
