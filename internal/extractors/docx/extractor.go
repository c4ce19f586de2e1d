// Package docx extracts word-processor documents.
//
// DOCX files are parsed as ZIP archives: word/document.xml is decoded
// paragraph by paragraph, so one malformed paragraph reduces confidence
// instead of failing the file. Heading-styled paragraphs become
// sections and w:tbl elements become structured tables. When the
// archive or XML cannot be decoded at all, a raw <w:t> scan is tried
// before the file is declared failed.
//
// Legacy .doc files go through antiword when it is installed, with a
// printable-text scan of the binary as the fallback.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrAntiwordNotFound is returned when legacy .doc extraction needs
// antiword and it is not installed.
var ErrAntiwordNotFound = errors.New("antiword not found in PATH (install with: apt install antiword / brew install antiword)")

// CommandRunner executes external commands. Abstracted for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles .docx and legacy .doc files.
type Extractor struct {
	runner CommandRunner
}

// New creates a new word-processor extractor.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx", ".doc"}
}

// Extract reads the file and parses its word-processor structure.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error) {
	meta, err := textscan.FileMetadata(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if meta.Extension == ".doc" && !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return e.extractLegacy(ctx, meta, path, data), nil
	}
	return e.extractArchive(meta, data), nil
}

func (e *Extractor) extractArchive(meta domain.DocumentMetadata, data []byte) *domain.ExtractedDocument {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		if xmlData, readErr := readDocumentXML(zr); readErr == nil {
			result := parseDocument(xmlData)
			if strings.TrimSpace(result.content) != "" {
				doc := textscan.Compose(meta, result.content, result.confidence)
				attachStructure(doc, result, meta.FileName)
				return doc
			}
		}
	}

	// Fallback: scan for text runs without unpacking the archive.
	if text := scanTextRuns(data); text != "" {
		return textscan.Compose(meta, text, 0.8)
	}
	return textscan.ComposeFailed(meta, "unreadable word-processor document")
}

func (e *Extractor) extractLegacy(ctx context.Context, meta domain.DocumentMetadata, path string, data []byte) *domain.ExtractedDocument {
	out, err := e.runner.Run(ctx, "antiword", path)
	if err == nil && len(bytes.TrimSpace(out)) > 0 {
		return textscan.Compose(meta, strings.TrimSpace(string(out)), 1.0)
	}

	// Fallback: recover printable runs from the binary.
	if text := scanPrintable(data); text != "" {
		return textscan.Compose(meta, text, 0.8)
	}
	return textscan.ComposeFailed(meta, ErrAntiwordNotFound.Error())
}

// CheckAvailable verifies that antiword is installed. Only needed for
// legacy .doc files; .docx extraction has no external dependency.
func CheckAvailable() error {
	if _, err := exec.LookPath("antiword"); err != nil {
		return ErrAntiwordNotFound
	}
	return nil
}

func readDocumentXML(zr *zip.Reader) ([]byte, error) {
	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening document.xml: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errors.New("no word/document.xml in archive")
}

// paragraph mirrors w:p in document.xml.
type paragraph struct {
	Style struct {
		Val string `xml:"val,attr"`
	} `xml:"pPr>pStyle"`
	Runs []struct {
		Text []string `xml:"t"`
	} `xml:"r"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t)
		}
	}
	return strings.TrimSpace(b.String())
}

func (p paragraph) isHeading() bool {
	return strings.HasPrefix(p.Style.Val, "Heading") || p.Style.Val == "Title"
}

// tableXML mirrors w:tbl in document.xml.
type tableXML struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type parseResult struct {
	content    string
	sections   []domain.Section
	tables     []tableXML
	confidence float64
}

// parseDocument decodes document.xml unit by unit. The unit count is
// pre-counted from the raw bytes so paragraphs lost to a decoder abort
// still reduce confidence linearly.
func parseDocument(xmlData []byte) parseResult {
	expected := bytes.Count(xmlData, []byte("<w:p ")) + bytes.Count(xmlData, []byte("<w:p>")) + bytes.Count(xmlData, []byte("<w:p/"))

	var (
		lines    []string
		sections []domain.Section
		current  *domain.Section
		tables   []tableXML
		parsed   int
	)

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(current.Body)
			sections = append(sections, *current)
			current = nil
		}
	}

	dec := xml.NewDecoder(bytes.NewReader(xmlData))
	for {
		tok, err := dec.Token()
		if err != nil {
			break // EOF or a malformed stream; missing units stay uncounted
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			var para paragraph
			if err := dec.DecodeElement(&para, &start); err != nil {
				continue
			}
			parsed++
			text := para.text()
			if text == "" {
				continue
			}
			lines = append(lines, text)
			if para.isHeading() {
				flush()
				current = &domain.Section{Heading: text}
			} else if current != nil {
				current.Body += text + "\n"
			}
		case "tbl":
			var tbl tableXML
			if err := dec.DecodeElement(&tbl, &start); err != nil {
				continue
			}
			tables = append(tables, tbl)
			for _, row := range tbl.Rows {
				var cells []string
				for _, cell := range row.Cells {
					cells = append(cells, cellText(cell.Paragraphs))
				}
				line := strings.TrimSpace(strings.Join(cells, " "))
				if line != "" {
					lines = append(lines, line)
					if current != nil {
						current.Body += line + "\n"
					}
				}
				// Rows contain w:p elements too; count them as parsed.
				for _, cell := range row.Cells {
					parsed += len(cell.Paragraphs)
				}
			}
		}
	}
	flush()

	confidence := 1.0
	if expected > 0 {
		confidence = float64(parsed) / float64(expected)
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	return parseResult{
		content:    strings.Join(lines, "\n"),
		sections:   sections,
		tables:     tables,
		confidence: confidence,
	}
}

func cellText(paragraphs []paragraph) string {
	var parts []string
	for _, p := range paragraphs {
		if t := p.text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func attachStructure(doc *domain.ExtractedDocument, result parseResult, fileName string) {
	tables := make([]domain.Table, 0, len(result.tables))
	base := strings.TrimSuffix(fileName, ".docx")
	for _, tbl := range result.tables {
		if converted, ok := convertTable(tbl, fmt.Sprintf("%s_table_%d", base, len(tables)+1)); ok {
			tables = append(tables, converted)
		}
	}

	if len(result.sections) == 0 && len(tables) == 0 {
		return
	}
	if doc.Structured == nil {
		doc.Structured = &domain.StructuredContent{}
	}
	if len(result.sections) > 0 {
		// Style-derived sections beat the generic text scan.
		doc.Structured.Sections = result.sections
	}
	if len(tables) > 0 {
		doc.Structured.Tables = tables
	}
}

// convertTable turns a w:tbl into a header-keyed table. The first row
// is the header.
func convertTable(tbl tableXML, name string) (domain.Table, bool) {
	if len(tbl.Rows) < 2 {
		return domain.Table{}, false
	}

	var headers []string
	for _, cell := range tbl.Rows[0].Cells {
		headers = append(headers, cellText(cell.Paragraphs))
	}

	table := domain.Table{Name: name, Headers: headers}
	for _, row := range tbl.Rows[1:] {
		m := make(map[string]string, len(row.Cells))
		for i, cell := range row.Cells {
			value := cellText(cell.Paragraphs)
			if i < len(headers) && headers[i] != "" {
				m[headers[i]] = value
			} else {
				m[fmt.Sprintf("column_%d", i+1)] = value
			}
		}
		table.Rows = append(table.Rows, m)
	}
	return table, true
}

var wtPattern = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// scanTextRuns recovers text from raw bytes when the archive cannot be
// opened. Only works when the XML is stored uncompressed, which is why
// it is a fallback and not the primary path.
func scanTextRuns(data []byte) string {
	matches := wtPattern.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if t := strings.TrimSpace(html.UnescapeString(string(m[1]))); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// scanPrintable recovers runs of printable single-byte text from a
// legacy binary. Runs must be long enough and letter-heavy to drop
// format noise.
func scanPrintable(data []byte) string {
	var lines []string
	var run []byte
	flush := func() {
		if len(run) >= 5 && letterHeavy(run) {
			lines = append(lines, strings.TrimSpace(string(run)))
		}
		run = run[:0]
	}
	for _, c := range data {
		if c >= 0x20 && c <= 0x7E {
			run = append(run, c)
			continue
		}
		flush()
	}
	flush()
	return strings.Join(lines, "\n")
}

func letterHeavy(run []byte) bool {
	letters := 0
	for _, c := range run {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == ' ' {
			letters++
		}
	}
	return letters*10 >= len(run)*6
}
