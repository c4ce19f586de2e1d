package extractors

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/extractors/docx"
	"github.com/chartsift/chartsift/internal/extractors/html"
	"github.com/chartsift/chartsift/internal/extractors/markdown"
	"github.com/chartsift/chartsift/internal/extractors/pdf"
	"github.com/chartsift/chartsift/internal/extractors/plaintext"
	"github.com/chartsift/chartsift/internal/extractors/rtf"
	"github.com/chartsift/chartsift/internal/extractors/tabular"
)

func writeSample(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// TestSelect_ByExtension tests the extension table covers every
// registered format without touching file content.
func TestSelect_ByExtension(t *testing.T) {
	selector := Defaults()

	tests := []struct {
		name     string
		expected any
	}{
		{"note.txt", &plaintext.Extractor{}},
		{"vitals.csv", &tabular.Extractor{}},
		{"vitals.tsv", &tabular.Extractor{}},
		{"summary.md", &markdown.Extractor{}},
		{"summary.markdown", &markdown.Extractor{}},
		{"portal.html", &html.Extractor{}},
		{"portal.htm", &html.Extractor{}},
		{"letter.rtf", &rtf.Extractor{}},
		{"consult.docx", &docx.Extractor{}},
		{"consult.doc", &docx.Extractor{}},
		{"report.pdf", &pdf.Extractor{}},
		{"REPORT.PDF", &pdf.Extractor{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Extension lookup must not require the file to exist.
			e, err := selector.Select(filepath.Join("/nowhere", tc.name))
			require.NoError(t, err)
			assert.IsType(t, tc.expected, e)
		})
	}
}

// TestSelect_SniffMarkup tests that an unknown extension with markup
// content falls back to the HTML extractor.
func TestSelect_SniffMarkup(t *testing.T) {
	path := writeSample(t, "portal_export.dat", []byte("<html><body><p>After visit summary</p></body></html>"))

	e, err := Defaults().Select(path)
	require.NoError(t, err)
	assert.IsType(t, &html.Extractor{}, e)
}

// TestSelect_SniffSignatures tests container signature detection.
func TestSelect_SniffSignatures(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected any
	}{
		{"pdf signature", []byte("%PDF-1.7\nrest"), &pdf.Extractor{}},
		{"zip signature", []byte("PK\x03\x04rest"), &docx.Extractor{}},
		{"rtf signature", []byte(`{\rtf1\ansi rest}`), &rtf.Extractor{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSample(t, "blob.bin", tc.data)
			e, err := Defaults().Select(path)
			require.NoError(t, err)
			assert.IsType(t, tc.expected, e)
		})
	}
}

// TestSelect_SniffTextHeuristics tests delimiter and heading sniffing
// with plain text as the final default.
func TestSelect_SniffTextHeuristics(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected any
	}{
		{
			"delimited rows",
			[]byte("date,test,value\n2023-01-05,glucose,95\n2023-02-10,glucose,101\n"),
			&tabular.Extractor{},
		},
		{
			"heading markers",
			[]byte("# Visit Notes\n\nPatient doing well.\n"),
			&markdown.Extractor{},
		},
		{
			"plain prose",
			[]byte("Patient seen today for routine follow-up.\n"),
			&plaintext.Extractor{},
		},
		{
			"empty file",
			nil,
			&plaintext.Extractor{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSample(t, "export.dat", tc.data)
			e, err := Defaults().Select(path)
			require.NoError(t, err)
			assert.IsType(t, tc.expected, e)
		})
	}
}

// TestSelect_Unreadable tests that a missing file with an unknown
// extension yields the typed error.
func TestSelect_Unreadable(t *testing.T) {
	_, err := Defaults().Select(filepath.Join(t.TempDir(), "ghost.dat"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

// stubExtractor claims extensions without being able to extract.
type stubExtractor struct{ exts []string }

func (s *stubExtractor) Extensions() []string { return s.exts }
func (s *stubExtractor) Extract(_ context.Context, _ string) (*domain.ExtractedDocument, error) {
	return nil, domain.ErrUnsupportedFormat
}

// TestRegister_FirstClaimWins tests that a later extractor cannot take
// over an extension already claimed.
func TestRegister_FirstClaimWins(t *testing.T) {
	selector := NewSelector(markdown.New())
	selector.Register(&stubExtractor{exts: []string{".md", ".adoc"}})

	e, err := selector.Select("notes.md")
	require.NoError(t, err)
	assert.IsType(t, &markdown.Extractor{}, e)

	e, err = selector.Select("notes.adoc")
	require.NoError(t, err)
	assert.IsType(t, &stubExtractor{}, e)
}
