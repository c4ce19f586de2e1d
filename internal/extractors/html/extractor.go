// Package html extracts markup documents.
//
// The primary parser builds a DOM with goquery: headings become
// sections, <table> elements become structured tables, and text is
// rendered with block-level separators so downstream regex mining
// still sees line boundaries. If the DOM yields no text, a regex
// tag-stripper is tried before the file is declared failed; stripper
// output is capped at 0.8 confidence.
package html

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract parses the file's DOM and mines text, sections and tables.
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

	gq, gqErr := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if gqErr == nil {
		content := tidyText(renderDocument(gq))
		if content != "" {
			doc := textscan.Compose(meta, content, confidence)
			attachStructure(doc, gq, meta.FileName)
			return doc, nil
		}
	}

	// Fallback: regex tag stripping, no structure beyond the text scan.
	content := tidyText(stripHTML(raw))
	if content == "" {
		return textscan.ComposeFailed(meta, "no text content"), nil
	}
	if confidence > 0.8 {
		confidence = 0.8
	}
	return textscan.Compose(meta, content, confidence), nil
}

var headingSelector = "h1, h2, h3, h4, h5, h6"

// attachStructure adds DOM-derived sections and tables to the document,
// replacing the generic text-scan sections when headings exist.
func attachStructure(doc *domain.ExtractedDocument, gq *goquery.Document, fileName string) {
	sections := domSections(gq)
	tables := domTables(gq, fileName)
	if len(sections) == 0 && len(tables) == 0 {
		return
	}
	if doc.Structured == nil {
		doc.Structured = &domain.StructuredContent{}
	}
	if len(sections) > 0 {
		doc.Structured.Sections = sections
	}
	doc.Structured.Tables = tables
}

func domSections(gq *goquery.Document) []domain.Section {
	var sections []domain.Section
	gq.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		heading := strings.TrimSpace(h.Text())
		if heading == "" {
			return
		}
		var b strings.Builder
		h.NextUntil(headingSelector).Each(func(_ int, sib *goquery.Selection) {
			for _, n := range sib.Nodes {
				renderNode(n, &b)
			}
		})
		sections = append(sections, domain.Section{
			Heading: heading,
			Body:    tidyText(b.String()),
		})
	})
	return sections
}

func domTables(gq *goquery.Document, fileName string) []domain.Table {
	var tables []domain.Table
	gq.Find("table").Each(func(_ int, t *goquery.Selection) {
		var headers []string
		t.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(th.Text()))
		})

		table := domain.Table{
			Name: fmt.Sprintf("%s_table_%d", strings.TrimSuffix(fileName, ".html"), len(tables)+1),
		}

		t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			var values []string
			cells.Each(func(_ int, td *goquery.Selection) {
				values = append(values, strings.TrimSpace(td.Text()))
			})
			if headers == nil {
				// No <th> row: the first <td> row is the header.
				headers = values
				return
			}
			row := make(map[string]string, len(values))
			for i, v := range values {
				if i < len(headers) {
					row[headers[i]] = v
				} else {
					row[fmt.Sprintf("column_%d", i+1)] = v
				}
			}
			table.Rows = append(table.Rows, row)
		})

		table.Headers = headers
		if len(table.Rows) > 0 {
			tables = append(tables, table)
		}
	})
	return tables
}

// blockTags get a newline after their content so regex mining sees
// line boundaries between block elements.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "table": true, "section": true,
	"article": true, "blockquote": true, "pre": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true, "svg": true,
}

func renderDocument(gq *goquery.Document) string {
	var b strings.Builder
	for _, n := range gq.Nodes {
		renderNode(n, &b)
	}
	return b.String()
}

func renderNode(n *xhtml.Node, b *strings.Builder) {
	if n.Type == xhtml.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == xhtml.ElementNode && skipTags[n.Data] {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, b)
	}
	if n.Type == xhtml.ElementNode {
		switch {
		case n.Data == "td" || n.Data == "th":
			// Space between cells so row text does not run together.
			b.WriteString(" ")
		case blockTags[n.Data]:
			b.WriteString("\n")
		}
	}
}

// Pre-compiled regular expressions for the fallback stripper.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<(?:br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes tags with regexes. Block-element closes become
// newlines first, so text from adjacent blocks does not run together.
func stripHTML(content string) string {
	content = headTag.ReplaceAllString(content, "")
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockClose.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	return allTags.ReplaceAllString(content, "")
}

// tidyText collapses runs of spaces, trims line edges and squeezes
// blank-line runs down to one blank line.
func tidyText(s string) string {
	s = multiSpaces.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = multiNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
