package normaliser

import (
	"encoding/json"
	"strings"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// MinedEntities is the typed result of parsing a free-text miner
// response. All three lists may be empty.
type MinedEntities struct {
	Conditions  []string
	Medications []string
	Symptoms    []string
}

// Empty reports whether mining found nothing.
func (m MinedEntities) Empty() bool {
	return len(m.Conditions) == 0 && len(m.Medications) == 0 && len(m.Symptoms) == 0
}

// minedItem is one element of the array response form.
type minedItem struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ParseMinedEntities reads a miner response without ever failing:
// code fences are stripped, object and array payloads are both
// accepted, and chatter around the JSON is tolerated by salvaging the
// outermost object or array. Anything unusable means no entities, not
// an error.
func ParseMinedEntities(raw string) MinedEntities {
	text := strings.TrimSpace(stripFences(raw))
	if text == "" {
		return MinedEntities{}
	}

	if m, ok := parseObject(text); ok {
		return m
	}
	if m, ok := parseArray(text); ok {
		return m
	}
	if sub := enclosed(text, '[', ']'); sub != "" {
		if m, ok := parseArray(sub); ok {
			return m
		}
	}
	if sub := enclosed(text, '{', '}'); sub != "" {
		if m, ok := parseObject(sub); ok {
			return m
		}
	}
	return MinedEntities{}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (``` or ```json).
	i := strings.Index(s, "\n")
	if i < 0 {
		return ""
	}
	s = s[i+1:]
	if j := strings.LastIndex(s, "```"); j >= 0 {
		s = s[:j]
	}
	return s
}

func enclosed(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func parseObject(text string) (MinedEntities, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return MinedEntities{}, false
	}
	m := MinedEntities{
		Conditions:  nameList(obj, "conditions", "diagnoses"),
		Medications: nameList(obj, "medications", "meds", "drugs"),
		Symptoms:    nameList(obj, "symptoms", "complaints"),
	}
	return m, true
}

func parseArray(text string) (MinedEntities, bool) {
	var items []minedItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return MinedEntities{}, false
	}
	var m MinedEntities
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(item.Type)) {
		case "condition", "conditions", "diagnosis", "diagnoses":
			m.Conditions = append(m.Conditions, name)
		case "medication", "medications", "med", "meds", "drug", "drugs":
			m.Medications = append(m.Medications, name)
		case "symptom", "symptoms", "complaint", "complaints":
			m.Symptoms = append(m.Symptoms, name)
		}
	}
	return m, true
}

// nameList reads one entity list from the object form under the first
// key that is present. Elements may be plain strings or objects with a
// "name" field.
func nameList(obj map[string]json.RawMessage, keys ...string) []string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}

		var plain []string
		if err := json.Unmarshal(raw, &plain); err == nil {
			return trimNames(plain)
		}
		var named []minedItem
		if err := json.Unmarshal(raw, &named); err == nil {
			names := make([]string, 0, len(named))
			for _, item := range named {
				names = append(names, item.Name)
			}
			return trimNames(names)
		}
	}
	return nil
}

func trimNames(names []string) []string {
	var out []string
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// MergeEntities returns a new record with the mined entities appended
// to the rule-based ones. The input record is never mutated; mined
// names already present (case-insensitively, by name or standard name)
// are dropped.
func (n *Normaliser) MergeEntities(record *domain.NormalisedRecord, mined MinedEntities) *domain.NormalisedRecord {
	if record == nil {
		return nil
	}

	merged := *record
	merged.Entities.Conditions = mergeList(record.Entities.Conditions, mined.Conditions, n.standardiseCondition)
	merged.Entities.Medications = mergeList(record.Entities.Medications, mined.Medications, n.standardiseMedication)
	merged.Entities.Symptoms = mergeList(record.Entities.Symptoms, mined.Symptoms, standardiseSymptom)
	return &merged
}

func mergeList(existing []domain.Entity, names []string, standardise func(string) domain.Entity) []domain.Entity {
	if len(names) == 0 {
		return existing
	}

	seen := make(map[string]bool, len(existing)*2)
	for _, e := range existing {
		seen[strings.ToLower(e.Name)] = true
		seen[strings.ToLower(e.StandardName)] = true
	}

	out := make([]domain.Entity, len(existing), len(existing)+len(names))
	copy(out, existing)
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		entity := standardise(name)
		if seen[strings.ToLower(entity.StandardName)] {
			continue
		}
		seen[strings.ToLower(entity.Name)] = true
		seen[strings.ToLower(entity.StandardName)] = true
		out = append(out, entity)
	}

	sortEntities(out)
	return out
}
