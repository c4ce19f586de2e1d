// Package normaliser turns extracted documents into canonical,
// entity-tagged records.
//
// Normalise is a pure function of its input: no I/O, no clock, no
// randomness. The same ExtractedDocument always produces a
// byte-identical NormalisedRecord, which is what makes re-runs
// idempotent and records diffable. Everything the normaliser knows
// about medicine lives in the lookup tables package; this package only
// applies them.
package normaliser

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/extractors/textscan"
	"github.com/chartsift/chartsift/internal/normaliser/tables"
)

// Normaliser applies the lookup tables to extracted documents. Safe
// for concurrent use; all state is immutable after construction.
type Normaliser struct {
	tables      *tables.Tables
	conditions  []matcher
	medications []matcher
	categories  map[string][]matcher
}

// matcher is one precompiled term lookup.
type matcher struct {
	variant   string
	canonical string
	re        *regexp.Regexp
}

// New creates a normaliser over the embedded lookup tables. An error
// means the embedded data is malformed and is fatal to the caller.
func New() (*Normaliser, error) {
	t, err := tables.Load()
	if err != nil {
		return nil, err
	}
	return NewWithTables(t), nil
}

// NewWithTables creates a normaliser over a caller-supplied table set,
// e.g. a locale-specific one.
func NewWithTables(t *tables.Tables) *Normaliser {
	n := &Normaliser{
		tables:      t,
		conditions:  buildMatchers(t.Conditions),
		medications: buildMatchers(t.Medications),
		categories:  make(map[string][]matcher, len(t.ConditionCategories)),
	}
	for category, terms := range t.ConditionCategories {
		ms := make([]matcher, 0, len(terms))
		for _, term := range terms {
			ms = append(ms, matcher{variant: term, re: termPattern(term)})
		}
		n.categories[category] = ms
	}
	return n
}

func buildMatchers(table map[string]string) []matcher {
	variants := make([]string, 0, len(table))
	for v := range table {
		variants = append(variants, v)
	}
	sort.Strings(variants)

	ms := make([]matcher, 0, len(variants))
	for _, v := range variants {
		ms = append(ms, matcher{variant: v, canonical: table[v], re: termPattern(v)})
	}
	return ms
}

func termPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// DocumentID derives the stable identifier for a source path. The same
// path always yields the same ID, which is what lets re-runs overwrite
// rather than duplicate.
func DocumentID(sourcePath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("chartsift://document/"+sourcePath)).String()
}

// Normalise builds the canonical record for an extracted document.
// Returns nil only for a nil document.
func (n *Normaliser) Normalise(doc *domain.ExtractedDocument, sourcePath string) *domain.NormalisedRecord {
	if doc == nil {
		return nil
	}

	record := &domain.NormalisedRecord{
		DocumentID:          DocumentID(sourcePath),
		SourcePath:          sourcePath,
		Dates:               n.collectDates(doc),
		Specialties:         n.specialties(doc.Content),
		ConditionCategories: n.categorise(doc.Content),
	}
	record.Entities.Conditions = n.scanEntities(doc.Content, n.conditions, n.standardiseCondition)
	record.Entities.Medications = n.scanEntities(doc.Content, n.medications, n.standardiseMedication)
	record.Entities.LabResults = n.labResults(doc)
	record.Entities.Providers = collectProviders(doc)
	return record
}

// collectDates gathers date candidates from metadata, mined body
// dates and table cells, and returns them sorted and deduplicated.
// Unparsable candidates are dropped silently.
func (n *Normaliser) collectDates(doc *domain.ExtractedDocument) []string {
	seen := make(map[string]bool)
	var dates []string
	add := func(iso string) {
		if iso != "" && !seen[iso] {
			seen[iso] = true
			dates = append(dates, iso)
		}
	}

	add(doc.Metadata.DetectedDate)
	if doc.Structured != nil {
		for _, d := range doc.Structured.Dates {
			add(d)
		}
		for _, table := range doc.Structured.Tables {
			for _, row := range table.Rows {
				for _, cell := range row {
					if iso, ok := textscan.ParseDate(cell); ok {
						add(iso)
					}
				}
			}
		}
	}
	for _, d := range textscan.BodyDates(doc.Content) {
		add(d)
	}

	sort.Strings(dates)
	return dates
}

// specialties scores each specialty by keyword occurrences:
// min(hits/keywords × 0.5, 1.0), rounded to two decimals. Zero-hit
// specialties are omitted entirely.
func (n *Normaliser) specialties(content string) map[string]float64 {
	lower := strings.ToLower(content)
	scores := make(map[string]float64)
	for name, keywords := range n.tables.Specialties {
		hits := 0
		for _, kw := range keywords {
			hits += strings.Count(lower, kw)
		}
		if hits == 0 {
			continue
		}
		confidence := float64(hits) / float64(len(keywords)) * 0.5
		if confidence > 1.0 {
			confidence = 1.0
		}
		scores[name] = math.Round(confidence*100) / 100
	}
	if len(scores) == 0 {
		return nil
	}
	return scores
}

// categorise records every category term occurrence with up to 100
// characters of context either side. A category appears in the result
// only when at least one of its terms matched.
func (n *Normaliser) categorise(content string) map[string][]domain.CategoryMatch {
	result := make(map[string][]domain.CategoryMatch)
	for category, ms := range n.categories {
		var matches []domain.CategoryMatch
		for _, m := range ms {
			for _, loc := range m.re.FindAllStringIndex(content, -1) {
				matches = append(matches, domain.CategoryMatch{
					Term:    content[loc[0]:loc[1]],
					Context: contextAround(content, loc[0], loc[1]),
				})
			}
		}
		if len(matches) > 0 {
			result[category] = matches
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

const contextRadius = 100

func contextAround(content string, from, to int) string {
	start := from - contextRadius
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}

	end := to + contextRadius
	if end > len(content) {
		end = len(content)
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}
	return content[start:end]
}

// scanEntities finds known table variants in the content. One entity
// per canonical name, keeping the earliest occurrence; output sorted
// by name for stable records.
func (n *Normaliser) scanEntities(content string, ms []matcher, standardise func(string) domain.Entity) []domain.Entity {
	type hit struct {
		pos  int
		text string
	}
	best := make(map[string]hit)
	for _, m := range ms {
		loc := m.re.FindStringIndex(content)
		if loc == nil {
			continue
		}
		if h, ok := best[m.canonical]; !ok || loc[0] < h.pos {
			best[m.canonical] = hit{pos: loc[0], text: content[loc[0]:loc[1]]}
		}
	}
	if len(best) == 0 {
		return nil
	}

	entities := make([]domain.Entity, 0, len(best))
	for _, h := range best {
		entities = append(entities, standardise(h.text))
	}
	sortEntities(entities)
	return entities
}

func sortEntities(entities []domain.Entity) {
	sort.Slice(entities, func(i, j int) bool {
		a, b := strings.ToLower(entities[i].Name), strings.ToLower(entities[j].Name)
		if a != b {
			return a < b
		}
		return entities[i].StandardName < entities[j].StandardName
	})
}

// standardiseCondition maps a condition through the canonical table:
// hit → 0.9 with standard name and taxonomy code, miss → 0.5 with the
// original text kept.
func (n *Normaliser) standardiseCondition(name string) domain.Entity {
	trimmed := strings.TrimSpace(name)
	if std, ok := n.tables.CanonicalCondition(trimmed); ok {
		return domain.Entity{
			Name:         trimmed,
			StandardName: std,
			Code:         n.tables.ConditionCode(std),
			Confidence:   0.9,
		}
	}
	return domain.Entity{Name: trimmed, StandardName: trimmed, Confidence: 0.5}
}

// standardiseMedication maps a medication to its generic name the same
// way; medications carry no taxonomy code.
func (n *Normaliser) standardiseMedication(name string) domain.Entity {
	trimmed := strings.TrimSpace(name)
	if std, ok := n.tables.CanonicalMedication(trimmed); ok {
		return domain.Entity{Name: trimmed, StandardName: std, Confidence: 0.9}
	}
	return domain.Entity{Name: trimmed, StandardName: trimmed, Confidence: 0.5}
}

// standardiseSymptom has no lookup table; symptoms only arrive from
// the free-text miner and keep their text at miner confidence.
func standardiseSymptom(name string) domain.Entity {
	trimmed := strings.TrimSpace(name)
	return domain.Entity{Name: trimmed, StandardName: trimmed, Confidence: 0.5}
}

func collectProviders(doc *domain.ExtractedDocument) []string {
	if doc.Structured == nil || len(doc.Structured.Providers) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var providers []string
	for _, p := range doc.Structured.Providers {
		key := strings.ToLower(p)
		if !seen[key] {
			seen[key] = true
			providers = append(providers, p)
		}
	}
	sort.Strings(providers)
	return providers
}
