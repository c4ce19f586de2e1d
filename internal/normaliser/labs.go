package normaliser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// labLinePattern matches one lab fragment per line:
//
//	<name>: <value> <unit> (Reference Range: <range>)
//
// The range clause is optional and accepts "Reference Range", "Reference"
// and "Ref" labels. The unit is required; a colon-number line without
// one (a date, a page number) is not a lab result.
var labLinePattern = regexp.MustCompile(
	`(?mi)^\s*([A-Za-z][A-Za-z0-9 /()'.-]{0,40}?)\s*:\s*(-?\d+(?:\.\d+)?)\s*([A-Za-z%µ][\w/%µ.^-]*)\s*(?:\((?:Reference\s+Range|Reference|Ref)\s*:?\s*([^)]+)\))?\s*$`,
)

// labResults parses lab measurements from content fragments and from
// structured table rows, in that order. Both paths share the same
// canonicalisation and abnormality rule.
func (n *Normaliser) labResults(doc *domain.ExtractedDocument) []domain.LabResult {
	var labs []domain.LabResult

	for _, m := range labLinePattern.FindAllStringSubmatch(doc.Content, -1) {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		labs = append(labs, n.buildLab(m[1], value, m[3], m[4]))
	}

	if doc.Structured != nil {
		labs = append(labs, n.tableLabs(doc.Structured.Tables)...)
	}
	return labs
}

// tableLabs reads lab rows out of extracted tables whose headers name
// a test column and a value column. Rows with non-numeric values are
// skipped, not errors.
func (n *Normaliser) tableLabs(docTables []domain.Table) []domain.LabResult {
	var labs []domain.LabResult
	for _, table := range docTables {
		nameKey, valueKey, unitKey, rangeKey := labColumns(table.Headers)
		if nameKey == "" || valueKey == "" {
			continue
		}
		for _, row := range table.Rows {
			name := strings.TrimSpace(row[nameKey])
			if name == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[valueKey]), 64)
			if err != nil {
				continue
			}
			labs = append(labs, n.buildLab(name, value, row[unitKey], row[rangeKey]))
		}
	}
	return labs
}

// labColumns identifies the lab-relevant columns by header name. An
// empty name or value key means the table is not a lab table.
func labColumns(headers []string) (nameKey, valueKey, unitKey, rangeKey string) {
	for _, h := range headers {
		lower := strings.ToLower(h)
		switch {
		case nameKey == "" && (strings.Contains(lower, "test") || strings.Contains(lower, "name") || strings.Contains(lower, "analyte")):
			nameKey = h
		case valueKey == "" && (strings.Contains(lower, "value") || strings.Contains(lower, "result")):
			valueKey = h
		case unitKey == "" && strings.Contains(lower, "unit"):
			unitKey = h
		case rangeKey == "" && (strings.Contains(lower, "range") || strings.Contains(lower, "reference")):
			rangeKey = h
		}
	}
	return nameKey, valueKey, unitKey, rangeKey
}

func (n *Normaliser) buildLab(rawName string, value float64, rawUnit, rawRange string) domain.LabResult {
	refRange := strings.TrimSpace(rawRange)
	return domain.LabResult{
		TestName:       n.tables.CanonicalLabTest(rawName),
		RawName:        strings.TrimSpace(rawName),
		Value:          value,
		Unit:           n.tables.CanonicalLabUnit(rawUnit),
		ReferenceRange: refRange,
		IsAbnormal:     abnormal(value, refRange),
	}
}

// abnormal evaluates a value against a printed reference range:
//
//	"a-b"  → abnormal iff value < a or value > b
//	">t"   → abnormal iff value <= t
//	"<t"   → abnormal iff value >= t
//	"t"    → abnormal iff value != t
//
// Anything unparsable is not abnormal; a flag needs evidence.
func abnormal(value float64, refRange string) bool {
	refRange = strings.TrimSpace(refRange)
	switch {
	case refRange == "":
		return false
	case strings.HasPrefix(refRange, ">"):
		t, ok := parseBound(refRange[1:])
		return ok && value <= t
	case strings.HasPrefix(refRange, "<"):
		t, ok := parseBound(refRange[1:])
		return ok && value >= t
	}

	if lo, hi, ok := splitRange(refRange); ok {
		return value < lo || value > hi
	}
	if t, ok := parseBound(refRange); ok {
		return value != t
	}
	return false
}

// parseBound reads the leading number of a bound, tolerating a
// trailing unit ("60 mL/min").
func parseBound(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	return v, err == nil
}

func splitRange(s string) (lo, hi float64, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, okLo := parseBound(parts[0])
	hi, okHi := parseBound(parts[1])
	return lo, hi, okLo && okHi
}
