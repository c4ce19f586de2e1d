// Package markdown extracts Markdown documents.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown files. Headings drive section detection,
// pipe tables become structured tables, and the mined content is the
// text with markdown formatting simplified away.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract reads the file, strips formatting and mines its structure.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.ExtractedDocument, error) {
	meta, err := textscan.FileMetadata(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	raw, confidence, decodeErr := textscan.DecodeText(data)
	if decodeErr != nil {
		return textscan.ComposeFailed(meta, decodeErr.Error()), nil
	}
	if strings.TrimSpace(raw) == "" {
		return textscan.ComposeFailed(meta, "empty document"), nil
	}

	doc := textscan.Compose(meta, stripMarkdown(raw), confidence)

	sections := headingSections(raw)
	tables := pipeTables(raw, meta.FileName)
	if len(sections) > 0 || len(tables) > 0 {
		if doc.Structured == nil {
			doc.Structured = &domain.StructuredContent{}
		}
		if len(sections) > 0 {
			// Markdown's own headings beat the generic text scan.
			doc.Structured.Sections = sections
		}
		doc.Structured.Tables = tables
	}

	return doc, nil
}

// headingSections splits markdown into sections at ATX headings.
func headingSections(content string) []domain.Section {
	var sections []domain.Section
	var current *domain.Section

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			if heading != "" {
				if current != nil {
					current.Body = strings.TrimSpace(current.Body)
					sections = append(sections, *current)
				}
				current = &domain.Section{Heading: heading}
				continue
			}
		}
		if current != nil {
			current.Body += line + "\n"
		}
	}
	if current != nil {
		current.Body = strings.TrimSpace(current.Body)
		sections = append(sections, *current)
	}
	return sections
}

var tableSeparator = regexp.MustCompile(`^\s*\|?[\s:|-]+\|?\s*$`)

// pipeTables parses GitHub-style pipe tables into row maps.
func pipeTables(content, fileName string) []domain.Table {
	var tables []domain.Table
	lines := strings.Split(content, "\n")

	for i := 0; i < len(lines); i++ {
		if !isTableRow(lines[i]) || i+1 >= len(lines) {
			continue
		}
		if !tableSeparator.MatchString(lines[i+1]) || !strings.Contains(lines[i+1], "-") {
			continue
		}

		headers := splitTableRow(lines[i])
		table := domain.Table{
			Name:    fmt.Sprintf("%s_table_%d", strings.TrimSuffix(fileName, filepath.Ext(fileName)), len(tables)+1),
			Headers: headers,
		}

		i += 2
		for i < len(lines) && isTableRow(lines[i]) {
			cells := splitTableRow(lines[i])
			row := make(map[string]string, len(cells))
			for j, cell := range cells {
				if j < len(headers) {
					row[headers[j]] = cell
				} else {
					row[fmt.Sprintf("column_%d", j+1)] = cell
				}
			}
			table.Rows = append(table.Rows, row)
			i++
		}
		tables = append(tables, table)
	}

	return tables
}

func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

func splitTableRow(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// stripMarkdown removes common markdown formatting for plain text
// content. This is a simplified implementation that handles common
// cases.
func stripMarkdown(content string) string {
	// Remove code blocks (```...```)
	codeBlock := regexp.MustCompile("(?s)```[^`]*```")
	content = codeBlock.ReplaceAllString(content, "")

	// Remove inline code (`code`)
	inlineCode := regexp.MustCompile("`[^`]+`")
	content = inlineCode.ReplaceAllString(content, "")

	// Remove images ![alt](url)
	images := regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	content = images.ReplaceAllString(content, "")

	// Convert links [text](url) to just text
	links := regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	content = links.ReplaceAllString(content, "$1")

	// Drop heading markers, emphasis and list bullets line by line.
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimLeft(line, "#")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "__", "")
		line = strings.ReplaceAll(line, "*", "")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "+ ") {
			line = strings.Replace(line, trimmed, trimmed[2:], 1)
		}
		out = append(out, strings.TrimSpace(line))
	}
	return strings.Join(out, "\n")
}
