// Package tables holds the fixed lookup tables the normaliser consults:
// specialty keywords, condition categories, canonical entity names,
// taxonomy codes and lab canonicalisation maps.
//
// The tables are embedded YAML, parsed once by Load. The returned Tables
// value is shared and must be treated as read-only; this is what keeps
// the normaliser a pure function. Swapping a table set (e.g. per locale)
// means constructing the normaliser with a different Tables value, not
// mutating this one.
package tables

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Tables is the full set of normalisation lookup tables. All keys are
// stored lowercased; use the lookup methods rather than indexing the
// maps directly so the case folding stays in one place.
type Tables struct {
	// Specialties maps a specialty name to the keywords that
	// indicate it.
	Specialties map[string][]string

	// ConditionCategories maps a category name to the terms that
	// place a document in it.
	ConditionCategories map[string][]string

	// Conditions maps condition name variants to canonical names.
	Conditions map[string]string

	// ConditionCodes maps canonical condition names to ICD-10 codes.
	ConditionCodes map[string]string

	// Medications maps brand and shorthand names to generic names.
	Medications map[string]string

	// LabTests maps raw lab test labels to canonical test names.
	LabTests map[string]string

	// LabUnits maps unit spelling variants to canonical units.
	LabUnits map[string]string
}

// entityFile is the on-disk shape of conditions.yaml.
type entityFile struct {
	Canonical map[string]string `yaml:"canonical"`
	Codes     map[string]string `yaml:"codes"`
}

// Load parses the embedded table files. It fails only if the embedded
// data is malformed, which is a build defect rather than a runtime
// condition, so callers treat an error as fatal.
func Load() (*Tables, error) {
	t := &Tables{}

	if err := loadYAML("data/specialties.yaml", &t.Specialties); err != nil {
		return nil, err
	}
	if err := loadYAML("data/condition_categories.yaml", &t.ConditionCategories); err != nil {
		return nil, err
	}

	var conditions entityFile
	if err := loadYAML("data/conditions.yaml", &conditions); err != nil {
		return nil, err
	}
	t.Conditions = lowerKeys(conditions.Canonical)
	t.ConditionCodes = lowerKeys(conditions.Codes)

	if err := loadYAML("data/medications.yaml", &t.Medications); err != nil {
		return nil, err
	}
	t.Medications = lowerKeys(t.Medications)

	if err := loadYAML("data/lab_tests.yaml", &t.LabTests); err != nil {
		return nil, err
	}
	t.LabTests = lowerKeys(t.LabTests)

	if err := loadYAML("data/lab_units.yaml", &t.LabUnits); err != nil {
		return nil, err
	}
	t.LabUnits = lowerKeys(t.LabUnits)

	return t, nil
}

func loadYAML(name string, out any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading embedded table %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing embedded table %s: %w", name, err)
	}
	return nil
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// CanonicalCondition returns the canonical name for a condition variant
// and whether the variant was known.
func (t *Tables) CanonicalCondition(name string) (string, bool) {
	std, ok := t.Conditions[strings.ToLower(strings.TrimSpace(name))]
	return std, ok
}

// ConditionCode returns the taxonomy code for a canonical condition
// name. Absence is not an error; many conditions carry no code.
func (t *Tables) ConditionCode(standard string) string {
	return t.ConditionCodes[strings.ToLower(standard)]
}

// CanonicalMedication returns the generic name for a medication variant
// and whether the variant was known.
func (t *Tables) CanonicalMedication(name string) (string, bool) {
	std, ok := t.Medications[strings.ToLower(strings.TrimSpace(name))]
	return std, ok
}

// CanonicalLabTest returns the canonical test name for a raw lab label,
// falling back to the trimmed original when unknown.
func (t *Tables) CanonicalLabTest(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if std, ok := t.LabTests[key]; ok {
		return std
	}
	return strings.TrimSpace(raw)
}

// CanonicalLabUnit returns the canonical spelling for a unit, falling
// back to the trimmed original when unknown.
func (t *Tables) CanonicalLabUnit(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if std, ok := t.LabUnits[key]; ok {
		return std
	}
	return strings.TrimSpace(raw)
}
