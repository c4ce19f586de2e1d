// Package rtf extracts rich-text documents.
//
// The primary parser tokenises RTF control words and groups, decoding
// escaped characters and skipping non-text destinations (font tables,
// stylesheets, embedded pictures). If it fails, a crude control-word
// stripper is tried before the file is declared failed; stripper
// output is capped at 0.8 confidence.
package rtf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles rich-text files.
type Extractor struct{}

// New creates a new rich-text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".rtf"}
}

// Extract parses the file's control-word stream into plain text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.ExtractedDocument, error) {
	meta, err := textscan.FileMetadata(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text, parseErr := Parse(data)
	if parseErr == nil && strings.TrimSpace(text) != "" {
		return textscan.Compose(meta, tidy(text), 1.0), nil
	}

	// Fallback: strip control words without honouring group structure.
	stripped := tidy(strip(string(data)))
	if strings.TrimSpace(stripped) == "" {
		reason := "no text content"
		if parseErr != nil {
			reason = parseErr.Error()
		}
		return textscan.ComposeFailed(meta, reason), nil
	}
	return textscan.Compose(meta, stripped, 0.8), nil
}

// skipDestinations are groups whose content is formatting data, not
// document text.
var skipDestinations = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"object":     true,
	"themedata":  true,
	"generator":  true,
	"header":     true,
	"footer":     true,
}

// Parse converts an RTF byte stream to plain text. It fails on input
// that does not open with the RTF signature or whose groups are
// unbalanced at end of input.
func Parse(data []byte) (string, error) {
	if !strings.HasPrefix(string(data), `{\rtf`) {
		return "", errors.New("missing rtf signature")
	}

	var b strings.Builder
	depth := 0
	skipDepth := -1 // depth of the group being skipped, -1 when not skipping
	i := 0

	for i < len(data) {
		c := data[i]
		switch c {
		case '{':
			depth++
			i++
		case '}':
			depth--
			if depth < 0 {
				return "", errors.New("unbalanced closing brace")
			}
			if skipDepth >= 0 && depth < skipDepth {
				skipDepth = -1
			}
			i++
		case '\\':
			word, consumed := controlWord(data, i, skipDepth == -1, &b)
			if (skipDestinations[word] || word == "*") && skipDepth == -1 {
				skipDepth = depth
			}
			i += consumed
		case '\r', '\n':
			i++
		default:
			if skipDepth == -1 {
				b.WriteByte(c)
			}
			i++
		}
	}

	if depth != 0 {
		return "", errors.New("unbalanced groups at end of input")
	}
	return b.String(), nil
}

// controlWord consumes one control word or symbol starting at the
// backslash at data[i]. Text-producing words write into b when emit is
// true. It returns the word name (for destination handling) and the
// number of bytes consumed.
func controlWord(data []byte, i int, emit bool, b *strings.Builder) (string, int) {
	j := i + 1
	if j >= len(data) {
		return "", 1
	}

	c := data[j]

	// Control symbols.
	switch c {
	case '\\', '{', '}':
		if emit {
			b.WriteByte(c)
		}
		return "", 2
	case '~':
		if emit {
			b.WriteByte(' ')
		}
		return "", 2
	case '-':
		return "", 2 // optional hyphen
	case '_':
		if emit {
			b.WriteByte('-')
		}
		return "", 2
	case '*':
		return "*", 2
	case '\'':
		// \'hh hex escape, Windows-1252.
		if j+2 < len(data) {
			if v, err := strconv.ParseUint(string(data[j+1:j+3]), 16, 8); err == nil {
				if emit {
					r := charmap.Windows1252.DecodeByte(byte(v))
					b.WriteRune(r)
				}
				return "", 4
			}
		}
		return "", 2
	}

	// Control word: letters then an optional signed parameter.
	start := j
	for j < len(data) && isLetter(data[j]) {
		j++
	}
	if j == start {
		return "", 2 // lone backslash before non-word byte
	}
	word := string(data[start:j])

	param := 0
	hasParam := false
	if j < len(data) && (data[j] == '-' || isDigit(data[j])) {
		numStart := j
		if data[j] == '-' {
			j++
		}
		for j < len(data) && isDigit(data[j]) {
			j++
		}
		if n, err := strconv.Atoi(string(data[numStart:j])); err == nil {
			param = n
			hasParam = true
		}
	}
	// A single trailing space is part of the control word.
	if j < len(data) && data[j] == ' ' {
		j++
	}

	if emit {
		switch word {
		case "par", "line", "sect", "page", "row":
			b.WriteByte('\n')
		case "cell", "tab":
			b.WriteByte('\t')
		case "emdash", "endash":
			b.WriteByte('-')
		case "bullet":
			b.WriteString("- ")
		case "lquote", "rquote":
			b.WriteByte('\'')
		case "ldblquote", "rdblquote":
			b.WriteByte('"')
		case "u":
			if hasParam {
				r := rune(param)
				if param < 0 {
					r = rune(65536 + param)
				}
				b.WriteRune(r)
				// The character after \uN is the ANSI fallback.
				if j < len(data) && data[j] == '?' {
					j++
				}
			}
		}
	}

	if word == "bin" && hasParam && param > 0 {
		// Raw binary payload follows; skip it wholesale.
		if j+param < len(data) {
			j += param
		} else {
			j = len(data)
		}
	}

	return word, j - i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

var (
	parPattern     = regexp.MustCompile(`\\par\b`)
	controlPattern = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	hexPattern     = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	multiBlank     = regexp.MustCompile(`\n{3,}`)
	spaceRuns      = regexp.MustCompile(`[ \t]+`)
)

// strip is the fallback parser: delete control words and braces
// without interpreting group structure.
func strip(content string) string {
	content = hexPattern.ReplaceAllString(content, "")
	content = parPattern.ReplaceAllString(content, "\n")
	content = controlPattern.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "{", "")
	content = strings.ReplaceAll(content, "}", "")
	return content
}

func tidy(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = multiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
