// Package textscan provides the secondary extraction helpers shared by
// every format extractor: date mining, section detection, provider
// mining, document-type detection and file metadata.
//
// All functions are pure with respect to their text input; only
// FileMetadata touches the filesystem.
package textscan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/charmap"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// filenameDatePatterns are tried in order; the first candidate that
// parses as a real date wins.
var filenameDatePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	{regexp.MustCompile(`(?:^|[^0-9])(\d{8})(?:[^0-9]|$)`), "20060102"},
	{regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`), "01-02-2006"},
}

// bodyDatePatterns find date-shaped fragments in free text. Matches are
// normalised through ParseDate, so a fragment that looks like a date but
// is not one (month 13) is dropped.
var bodyDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`(?:^|[^0-9])(\d{2}-\d{2}-\d{4})(?:[^0-9]|$)`),
	regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2},?\s+\d{4}\b`),
}

// dateLayouts is the fixed ordered list of formats ParseDate attempts.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"01-02-2006",
	"1/2/2006",
	"01/02/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
}

var (
	providerDrPattern     = regexp.MustCompile(`\bDr\.\s+([A-Z][A-Za-z'\-]+(?:\s+[A-Z][A-Za-z'\-]+){0,2})`)
	providerSuffixPattern = regexp.MustCompile(`\b([A-Z][A-Za-z'\-]+(?:\s+[A-Z][A-Za-z'\-]+){0,2}),\s*(?:M\.?D\.?|D\.?O\.?|NP|PA-?C?|RN)\b`)
)

// docTypeRules map indicator terms to a document type. Rules are
// applied in order against the filename first, then the content, so
// detection stays deterministic.
var docTypeRules = []struct {
	docType string
	terms   []string
}{
	{"lab_report", []string{"lab", "laboratory", "reference range", "specimen"}},
	{"imaging_report", []string{"imaging", "radiology", "x-ray", "xray", "mri", "ct scan", "ultrasound"}},
	{"discharge_summary", []string{"discharge"}},
	{"prescription", []string{"prescription", "pharmacy", "refill", "rx number"}},
	{"referral", []string{"referral", "referred to"}},
	{"immunization_record", []string{"immunization", "vaccine", "vaccination"}},
	{"visit_note", []string{"visit", "appointment", "consult", "chief complaint", "follow-up"}},
}

// ParseDate normalises a date-shaped string to ISO-8601 (YYYY-MM-DD).
// Layouts are attempted in a fixed order; the first successful parse
// wins. The second return is false when no layout matched.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// FilenameDate extracts a date embedded in a file name and returns it
// in ISO-8601 form, or "" when the name carries no parsable date.
func FilenameDate(name string) string {
	for _, p := range filenameDatePatterns {
		for _, m := range p.re.FindAllStringSubmatch(name, -1) {
			if t, err := time.Parse(p.layout, m[1]); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return ""
}

// BodyDates mines date strings from free text, normalised to ISO-8601,
// deduplicated, in order of first appearance per pattern.
func BodyDates(text string) []string {
	var dates []string
	seen := make(map[string]bool)
	for _, re := range bodyDatePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			iso, ok := ParseDate(candidate)
			if !ok {
				// time.Parse wants "March", not "march" or "MARCH".
				iso, ok = ParseDate(titleMonth(candidate))
			}
			if !ok || seen[iso] {
				continue
			}
			seen[iso] = true
			dates = append(dates, iso)
		}
	}
	return dates
}

func titleMonth(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Sections splits text into heading/body sections. A heading is a short
// line that is either fully upper-case or ends with a colon. Text before
// the first heading is not part of any section.
func Sections(text string) []domain.Section {
	var sections []domain.Section
	var current *domain.Section

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			if current != nil {
				current.Body = strings.TrimSpace(current.Body)
				sections = append(sections, *current)
			}
			current = &domain.Section{Heading: strings.TrimSuffix(trimmed, ":")}
			continue
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

func isHeading(line string) bool {
	if len(line) < 3 || len(line) > 60 {
		return false
	}
	if strings.HasSuffix(line, ":") && !strings.Contains(strings.TrimSuffix(line, ":"), ":") {
		// "Assessment:" style headings are capitalised words.
		first := line[0]
		return first >= 'A' && first <= 'Z'
	}
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// Providers mines clinician names via title-prefixed and
// credential-suffixed patterns ("Dr. Jane Smith", "Smith, MD"),
// deduplicated in order of first appearance.
func Providers(text string) []string {
	var providers []string
	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{providerDrPattern, providerSuffixPattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			providers = append(providers, name)
		}
	}
	return providers
}

// DetectDocType classifies a document from its file name and content.
// Returns "general" when nothing matches.
func DetectDocType(fileName, content string) string {
	name := strings.ToLower(fileName)
	body := strings.ToLower(content)
	for _, rule := range docTypeRules {
		for _, term := range rule.terms {
			if strings.Contains(name, term) {
				return rule.docType
			}
		}
	}
	for _, rule := range docTypeRules {
		for _, term := range rule.terms {
			if strings.Contains(body, term) {
				return rule.docType
			}
		}
	}
	return "general"
}

// FileMetadata builds document metadata from the file itself: name,
// extension, MIME type, size, modify time and any filename date.
// DetectedType is left empty; extractors fill it once content is known.
func FileMetadata(path string) (domain.DocumentMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("stat %s: %w", path, err)
	}

	meta := domain.DocumentMetadata{
		FileName:     filepath.Base(path),
		Extension:    strings.ToLower(filepath.Ext(path)),
		SizeBytes:    info.Size(),
		ModifiedAt:   info.ModTime().UTC(),
		DetectedDate: FilenameDate(filepath.Base(path)),
	}

	if mt, err := mimetype.DetectFile(path); err == nil {
		meta.MIMEType = mt.String()
	}

	return meta, nil
}

// FailureMarker is the bracketed in-band marker written into content
// when extraction fails, so downstream readers can detect failure
// without inspecting errors.
func FailureMarker(reason string) string {
	return "[EXTRACTION FAILED: " + reason + "]"
}

// Compose assembles an ExtractedDocument from successfully extracted
// text: it classifies the document type and runs the secondary miners
// (sections, dates, providers) over the content. Structured is set only
// when at least one miner found something. Extractors with their own
// table or section structure attach it afterwards.
func Compose(meta domain.DocumentMetadata, content string, confidence float64) *domain.ExtractedDocument {
	meta.DetectedType = DetectDocType(meta.FileName, content)

	doc := &domain.ExtractedDocument{
		Metadata:   meta,
		Content:    content,
		Confidence: confidence,
	}

	sections := Sections(content)
	dates := BodyDates(content)
	providers := Providers(content)
	if len(sections) > 0 || len(dates) > 0 || len(providers) > 0 {
		doc.Structured = &domain.StructuredContent{
			Sections:  sections,
			Dates:     dates,
			Providers: providers,
		}
	}

	return doc
}

// ComposeFailed assembles the document recorded when extraction fails
// outright: confidence zero and the failure marker as content.
func ComposeFailed(meta domain.DocumentMetadata, reason string) *domain.ExtractedDocument {
	meta.DetectedType = DetectDocType(meta.FileName, "")
	return &domain.ExtractedDocument{
		Metadata:   meta,
		Content:    FailureMarker(reason),
		Confidence: 0,
	}
}

// DecodeText decodes raw bytes as UTF-8, falling back once to
// Windows-1252. A clean UTF-8 read scores full confidence; the
// permissive fallback is capped at 0.8. Used by the extractors that
// read declared-encoding text directly.
func DecodeText(data []byte) (string, float64, error) {
	if utf8.Valid(data) {
		return string(data), 1.0, nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding text: %w", err)
	}
	return string(decoded), 0.8, nil
}
