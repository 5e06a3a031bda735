package findings

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy maps backend-specific smell labels to canonical categories.
// Built once at startup and read-only afterwards, so it needs no locking.
type Taxonomy struct {
	labels map[string]Category
}

var canonical = map[Category]bool{
	CategoryLongMethod:         true,
	CategoryLargeClass:         true,
	CategoryLongParameterList:  true,
	CategoryDuplicateCode:      true,
	CategoryDeadCode:           true,
	CategoryComplexConditional: true,
	CategoryFeatureEnvy:        true,
	CategoryDataClump:          true,
	CategoryMagicNumber:        true,
	CategoryGodObject:          true,
	CategoryUnknown:            true,
}

// DefaultTaxonomy covers the labels both stock engines emit.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{labels: map[string]Category{
		"long_method":         CategoryLongMethod,
		"long-method":         CategoryLongMethod,
		"longmethod":          CategoryLongMethod,
		"large_class":         CategoryLargeClass,
		"largeclass":          CategoryLargeClass,
		"god_class":           CategoryGodObject,
		"god_object":          CategoryGodObject,
		"blob":                CategoryGodObject,
		"long_parameter_list": CategoryLongParameterList,
		"too_many_params":     CategoryLongParameterList,
		"duplicate_code":      CategoryDuplicateCode,
		"duplicated_code":     CategoryDuplicateCode,
		"clone":               CategoryDuplicateCode,
		"dead_code":           CategoryDeadCode,
		"unused_code":         CategoryDeadCode,
		"complex_conditional": CategoryComplexConditional,
		"high_complexity":     CategoryComplexConditional,
		"cyclomatic":          CategoryComplexConditional,
		"feature_envy":        CategoryFeatureEnvy,
		"data_clump":          CategoryDataClump,
		"data_clumps":         CategoryDataClump,
		"magic_number":        CategoryMagicNumber,
		"magic_literal":       CategoryMagicNumber,
	}}
}

// LoadTaxonomy reads a label→category map from a YAML file. Category values
// must come from the canonical set; anything else is a config error, not a
// silent pass-through.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("taxonomy parse error: %w", err)
	}
	labels := make(map[string]Category, len(raw))
	for label, cat := range raw {
		c := Category(cat)
		if !canonical[c] {
			return nil, fmt.Errorf("taxonomy maps %q to unknown category %q", label, cat)
		}
		labels[normalizeLabel(label)] = c
	}
	return &Taxonomy{labels: labels}, nil
}

// Map resolves a backend label to its canonical category. Labels absent from
// the table map to CategoryUnknown so findings are never silently discarded.
func (t *Taxonomy) Map(label string) Category {
	if c, ok := t.labels[normalizeLabel(label)]; ok {
		return c
	}
	return CategoryUnknown
}

// Size returns the number of known labels.
func (t *Taxonomy) Size() int { return len(t.labels) }

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
