package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// TestExtract tests a clean lab results CSV
func TestExtract(t *testing.T) {
	content := `test,value,unit,reference range
Glucose,95,mg/dL,70-100
HbA1c,5.4,%,4.0-5.6
`
	path := writeFile(t, "labs-20230415.csv", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1.0, doc.Confidence)
	assert.Equal(t, "2023-04-15", doc.Metadata.DetectedDate)
	assert.Equal(t, "lab_report", doc.Metadata.DetectedType)

	require.NotNil(t, doc.Structured)
	require.Len(t, doc.Structured.Tables, 1)
	table := doc.Structured.Tables[0]
	assert.Equal(t, "labs-20230415", table.Name)
	assert.Equal(t, []string{"test", "value", "unit", "reference range"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Glucose", table.Rows[0]["test"])
	assert.Equal(t, "95", table.Rows[0]["value"])
	assert.Equal(t, "70-100", table.Rows[0]["reference range"])
}

// TestExtract_RaggedRows tests that uneven rows are data, not failures
func TestExtract_RaggedRows(t *testing.T) {
	content := `name,dose
metformin,500 mg,twice daily
lisinopril
`
	path := writeFile(t, "medications.csv", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1.0, doc.Confidence)
	table := doc.Structured.Tables[0]
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "twice daily", table.Rows[0]["column_3"])
	assert.Equal(t, "lisinopril", table.Rows[1]["name"])
	_, hasDose := table.Rows[1]["dose"]
	assert.False(t, hasDose)
}

// TestExtract_BadQuoting tests per-row failure reducing confidence
func TestExtract_BadQuoting(t *testing.T) {
	content := "test,value\nGlucose,95\n\"broken,100\nHbA1c,5.4\n"
	path := writeFile(t, "labs.csv", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Less(t, doc.Confidence, 1.0)
	assert.Greater(t, doc.Confidence, 0.0)
}

// TestExtract_TSV tests tab-delimited input
func TestExtract_TSV(t *testing.T) {
	content := "test\tvalue\nGlucose\t95\n"
	path := writeFile(t, "labs.tsv", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	table := doc.Structured.Tables[0]
	assert.Equal(t, []string{"test", "value"}, table.Headers)
	assert.Equal(t, "95", table.Rows[0]["value"])
}

// TestExtract_Empty tests the empty-file failure marker
func TestExtract_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.Confidence)
	assert.Contains(t, doc.Content, "[EXTRACTION FAILED:")
}

// TestExtensions tests the registered extensions
func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".csv", ".tsv"}, New().Extensions())
}
