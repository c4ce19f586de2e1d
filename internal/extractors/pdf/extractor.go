// Package pdf extracts PDF files through pdftotext, with a pure-Go
// literal scan as the fallback when the tool is missing or fails.
//
// pdftotext output is split on form feeds so each page is a
// confidence unit: a page with no text (typically a scanned image)
// reduces the score without failing the file. The fallback scanner
// reads uncompressed text-showing operators straight from the raw
// bytes and is capped at 0.8.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
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

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes external commands. Abstracted for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles .pdf files.
type Extractor struct {
	runner CommandRunner
}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable verifies that pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return "pdftotext is part of poppler: brew install poppler (macOS) or apt install poppler-utils (Debian/Ubuntu)"
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract converts the PDF to text. pdftotext is tried first; any
// failure there falls through to the literal scanner before the file
// is declared failed.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error) {
	meta, err := textscan.FileMetadata(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return textscan.ComposeFailed(meta, "missing %PDF header"), nil
	}

	out, runErr := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if runErr == nil {
		if content, confidence, ok := joinPages(string(out)); ok {
			return textscan.Compose(meta, content, confidence), nil
		}
	}

	// Fallback: scan uncompressed content streams for text operators.
	if text := scanLiterals(data); text != "" {
		return textscan.Compose(meta, text, 0.8), nil
	}

	if runErr != nil {
		return textscan.ComposeFailed(meta, "pdftotext failed: "+runErr.Error()), nil
	}
	return textscan.ComposeFailed(meta, "no extractable text"), nil
}

// joinPages splits pdftotext output on form feeds and scores one unit
// per page. Returns ok=false when every page is empty.
func joinPages(out string) (string, float64, bool) {
	pages := strings.Split(out, "\f")
	// pdftotext terminates the last page with a form feed too.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	var kept []string
	for _, page := range pages {
		if trimmed := strings.TrimSpace(page); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return "", 0, false
	}

	confidence := float64(len(kept)) / float64(len(pages))
	return strings.Join(kept, "\n\n"), confidence, true
}

var (
	showPattern    = regexp.MustCompile(`(?s)\((?:[^()\\]|\\.)*\)\s*Tj|\[(?:[^\[\]\\]|\\.)*\]\s*TJ`)
	literalPattern = regexp.MustCompile(`(?s)\((?:[^()\\]|\\.)*\)`)
	lineOpPattern  = regexp.MustCompile(`T\*|Td|TD`)
)

// scanLiterals pulls string literals out of Tj/TJ text-showing
// operators. Only works on uncompressed content streams.
func scanLiterals(data []byte) string {
	locs := showPattern.FindAllIndex(data, -1)
	if len(locs) == 0 {
		return ""
	}

	var b strings.Builder
	prevEnd := -1
	for _, loc := range locs {
		if prevEnd >= 0 {
			if lineOpPattern.Match(data[prevEnd:loc[0]]) {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		for _, lit := range literalPattern.FindAll(data[loc[0]:loc[1]], -1) {
			b.WriteString(unescapeLiteral(string(lit[1 : len(lit)-1])))
		}
		prevEnd = loc[1]
	}
	return strings.TrimSpace(b.String())
}

// unescapeLiteral resolves PDF string escapes: named escapes, octal
// codes, and escaped delimiters.
func unescapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b', 'f':
			// Backspace and form feed carry no text.
		case '(', ')', '\\':
			b.WriteByte(s[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			code := 0
			digits := 0
			for digits < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7' {
				code = code*8 + int(s[i]-'0')
				i++
				digits++
			}
			i--
			b.WriteByte(byte(code))
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
