package html

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

// TestExtract tests DOM text, heading sections and script removal
func TestExtract(t *testing.T) {
	content := `<!DOCTYPE html>
<html><head><title>Portal Export</title><script>var x = 1;</script></head>
<body>
<h2>Visit Summary</h2>
<p>Seen by Dr. Ana Torres on 2024-03-10.</p>
<h2>Plan</h2>
<p>Continue metformin.</p>
</body></html>`
	path := writeFile(t, "visit-export.html", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1.0, doc.Confidence)
	assert.NotContains(t, doc.Content, "var x")
	assert.NotContains(t, doc.Content, "<p>")
	assert.Contains(t, doc.Content, "Seen by Dr. Ana Torres on 2024-03-10.")

	require.NotNil(t, doc.Structured)
	require.Len(t, doc.Structured.Sections, 2)
	assert.Equal(t, "Visit Summary", doc.Structured.Sections[0].Heading)
	assert.Contains(t, doc.Structured.Sections[0].Body, "Ana Torres")
	assert.Equal(t, "Plan", doc.Structured.Sections[1].Heading)
	assert.Equal(t, []string{"2024-03-10"}, doc.Structured.Dates)
	assert.Equal(t, []string{"Ana Torres"}, doc.Structured.Providers)
}

// TestExtract_Table tests <table> parsing with th headers
func TestExtract_Table(t *testing.T) {
	content := `<html><body>
<h1>Lab Results</h1>
<table>
<tr><th>test</th><th>value</th><th>range</th></tr>
<tr><td>Glucose</td><td>182</td><td>70-100</td></tr>
<tr><td>HbA1c</td><td>8.1</td><td>4.0-5.6</td></tr>
</table>
</body></html>`
	path := writeFile(t, "labs.html", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	require.NotNil(t, doc.Structured)
	require.Len(t, doc.Structured.Tables, 1)
	table := doc.Structured.Tables[0]
	assert.Equal(t, "labs_table_1", table.Name)
	assert.Equal(t, []string{"test", "value", "range"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "182", table.Rows[0]["value"])
	assert.Equal(t, "70-100", table.Rows[0]["range"])
}

// TestExtract_TableNoTH tests first-row headers when no <th> exists
func TestExtract_TableNoTH(t *testing.T) {
	content := `<html><body><table>
<tr><td>name</td><td>dose</td></tr>
<tr><td>metformin</td><td>500 mg</td></tr>
</table></body></html>`
	path := writeFile(t, "medications.html", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	table := doc.Structured.Tables[0]
	assert.Equal(t, []string{"name", "dose"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "500 mg", table.Rows[0]["dose"])
}

// TestExtract_NoText tests markup with no text content
func TestExtract_NoText(t *testing.T) {
	path := writeFile(t, "empty.html", `<html><head><script>1</script></head><body></body></html>`)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.Confidence)
	assert.Contains(t, doc.Content, "[EXTRACTION FAILED:")
}

// TestExtensions tests the registered extensions
func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".html", ".htm"}, New().Extensions())
}
