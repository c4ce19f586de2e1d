package rtf

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

// TestParse tests control-word interpretation and destination skipping
func TestParse(t *testing.T) {
	input := `{\rtf1\ansi{\fonttbl{\f0 Times New Roman;}}
{\info{\author Portal Export;}}
\f0\fs24 VISIT NOTE\par
Seen by Dr. Sarah Kim on 2023-11-02.\par
Caf\'e9 diet discussed.\par
}`

	text, err := Parse([]byte(input))

	require.NoError(t, err)
	assert.Contains(t, text, "VISIT NOTE")
	assert.Contains(t, text, "Seen by Dr. Sarah Kim on 2023-11-02.")
	assert.Contains(t, text, "Café diet discussed.")
	assert.NotContains(t, text, "Times New Roman")
	assert.NotContains(t, text, "Portal Export")
}

// TestParse_Unicode tests \uN escapes with ANSI fallback characters
func TestParse_Unicode(t *testing.T) {
	text, err := Parse([]byte(`{\rtf1 temperature 38葑?C normal\par}`))

	require.NoError(t, err)
	assert.Contains(t, text, "38℃C normal")
}

// TestParse_Unbalanced tests that broken group nesting is an error
func TestParse_Unbalanced(t *testing.T) {
	_, err := Parse([]byte(`{\rtf1 {\b bold text`))
	require.Error(t, err)
}

// TestParse_NotRTF tests the signature check
func TestParse_NotRTF(t *testing.T) {
	_, err := Parse([]byte("plain text, no signature"))
	require.Error(t, err)
}

// TestExtract tests the full extraction path on a parsable file
func TestExtract(t *testing.T) {
	content := `{\rtf1\ansi PROGRESS NOTE\par Follow-up on 2024-01-09 with Dr. Omar Haddad.\par}`
	path := writeFile(t, "progress-2024-01-09.rtf", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1.0, doc.Confidence)
	assert.Contains(t, doc.Content, "PROGRESS NOTE")
	assert.Equal(t, "2024-01-09", doc.Metadata.DetectedDate)
	require.NotNil(t, doc.Structured)
	assert.Equal(t, []string{"2024-01-09"}, doc.Structured.Dates)
	assert.Equal(t, []string{"Omar Haddad"}, doc.Structured.Providers)
}

// TestExtract_FallbackStrip tests that unbalanced input still yields
// text through the stripper at reduced confidence
func TestExtract_FallbackStrip(t *testing.T) {
	content := `{\rtf1\ansi \b Lisinopril refilled today.`
	path := writeFile(t, "note.rtf", content)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 0.8, doc.Confidence)
	assert.Contains(t, doc.Content, "Lisinopril refilled today.")
}

// TestExtract_Garbage tests that undecodable input records a failure
func TestExtract_Garbage(t *testing.T) {
	path := writeFile(t, "broken.rtf", `{\rtf1{\pict\picw100\pich100`)

	doc, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.Confidence)
	assert.Contains(t, doc.Content, "[EXTRACTION FAILED:")
}

// TestExtensions tests the registered extensions
func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".rtf"}, New().Extensions())
}
