// Package extractors routes files to format extractors.
//
// Selection is extension-first: each extractor registers the
// extensions it claims. Files with an unknown or missing extension are
// sniffed by content, container signatures before text heuristics, and
// fall back to plain text so the pipeline reaches the extraction
// failure path instead of erroring early.
package extractors

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/docx"
	"github.com/chartsift/chartsift/internal/extractors/html"
	"github.com/chartsift/chartsift/internal/extractors/markdown"
	"github.com/chartsift/chartsift/internal/extractors/pdf"
	"github.com/chartsift/chartsift/internal/extractors/plaintext"
	"github.com/chartsift/chartsift/internal/extractors/rtf"
	"github.com/chartsift/chartsift/internal/extractors/tabular"
)

// sniffLen bounds how much of a file is read for content sniffing.
const sniffLen = 4096

// Selector maps file extensions to extractors.
type Selector struct {
	byExt map[string]driven.Extractor
}

// NewSelector creates a selector over the given extractors. The first
// extractor to claim an extension keeps it.
func NewSelector(extractors ...driven.Extractor) *Selector {
	s := &Selector{byExt: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		s.Register(e)
	}
	return s
}

// Defaults returns a selector over every built-in format extractor.
func Defaults() *Selector {
	return NewSelector(
		plaintext.New(),
		tabular.New(),
		markdown.New(),
		html.New(),
		rtf.New(),
		docx.New(),
		pdf.New(),
	)
}

// Register adds an extractor for each extension it claims. Already
// claimed extensions are left alone.
func (s *Selector) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		if _, taken := s.byExt[ext]; !taken {
			s.byExt[ext] = e
		}
	}
}

// Select returns the extractor for a file. Extension lookup wins;
// otherwise the file's leading bytes decide. Returns
// ErrUnsupportedFormat when the file cannot be read for sniffing or no
// extractor is registered for the sniffed kind.
func (s *Selector) Select(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if e, ok := s.byExt[ext]; ok {
		return e, nil
	}

	prefix, err := readPrefix(path)
	if err != nil {
		return nil, fmt.Errorf("sniffing %s: %w", path, domain.ErrUnsupportedFormat)
	}

	if e, ok := s.byExt[sniff(prefix)]; ok {
		return e, nil
	}
	if e, ok := s.byExt[".txt"]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("no extractor for %s: %w", path, domain.ErrUnsupportedFormat)
}

func readPrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

var headingPattern = regexp.MustCompile(`(?m)^#{1,6} \S`)

// sniff maps leading bytes to a canonical extension. Container
// signatures are checked before text heuristics.
func sniff(prefix []byte) string {
	switch {
	case bytes.HasPrefix(prefix, []byte("%PDF-")):
		return ".pdf"
	case bytes.HasPrefix(prefix, []byte("PK\x03\x04")):
		return ".docx"
	case bytes.HasPrefix(prefix, []byte(`{\rtf`)):
		return ".rtf"
	}

	text := string(prefix)
	lower := strings.ToLower(text)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<body") {
		return ".html"
	}
	if delimited(text) {
		return ".csv"
	}
	if headingPattern.MatchString(text) {
		return ".md"
	}
	return ".txt"
}

// delimited reports whether the sample reads like delimiter-separated
// rows: most of the first lines carry repeated commas or tabs.
func delimited(text string) bool {
	var total, hits int
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		total++
		if strings.Count(line, ",") >= 2 || strings.Contains(line, "\t") {
			hits++
		}
		if total == 10 {
			break
		}
	}
	return total >= 2 && hits*10 >= total*8
}
