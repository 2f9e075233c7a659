package aggregate

import (
	"maps"
	"slices"
)

// TemplateStructure classifies the keys of a template object.
type TemplateStructure struct {
	// ArrayFields are keys whose template value is an array.
	ArrayFields []string
	// ScalarFields are keys whose template value is neither array nor object.
	ScalarFields []string
	// Nested holds the structure of keys whose template value is an object.
	Nested map[string]*TemplateStructure
}

// Analyze classifies template's keys, recursively. Field lists are sorted.
func Analyze(template map[string]any) *TemplateStructure {
	ts := &TemplateStructure{Nested: map[string]*TemplateStructure{}}

	for _, k := range slices.Sorted(maps.Keys(template)) {
		switch v := template[k].(type) {
		case []any:
			ts.ArrayFields = append(ts.ArrayFields, k)
		case map[string]any:
			ts.Nested[k] = Analyze(v)
		default:
			ts.ScalarFields = append(ts.ScalarFields, k)
		}
	}

	return ts
}

// Declares reports whether key is classified by ts.
func (ts *TemplateStructure) Declares(key string) bool {
	if _, ok := ts.Nested[key]; ok {
		return true
	}

	return slices.Contains(ts.ArrayFields, key) || slices.Contains(ts.ScalarFields, key)
}
