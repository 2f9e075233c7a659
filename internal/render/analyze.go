package render

import (
	"strconv"
	"strings"

	"frontmatter-transform/internal/tree"
)

// TemplateStructure describes where a template reads data and expands items.
type TemplateStructure struct {
	ArrayExpansionKeys []ArrayExpansionKey
	VariableReferences []VariableReference
	// StaticContent is the template with every entry that references data
	// or items removed; nil when nothing static remains.
	StaticContent any
}

// ArrayExpansionKey is a template key whose value is the items marker.
type ArrayExpansionKey struct {
	// TemplateKey is the object key holding the marker.
	TemplateKey string
	Marker      string
	// TargetPath is the dot path the items land at in the output.
	TargetPath string
}

// VariableReference is one placeholder occurrence.
type VariableReference struct {
	Placeholder string
	// Path is the data path read.
	Path string
	// Position is the template path of the string holding the placeholder.
	// Placeholders in keys are reported at the key's own path.
	Position string
}

// HasExpansion reports whether the template uses the items marker.
func (s TemplateStructure) HasExpansion() bool {
	return len(s.ArrayExpansionKeys) > 0
}

// Analyze inspects tmpl. Object keys are visited in sorted order.
func (e *Engine) Analyze(tmpl any) TemplateStructure {
	var ts TemplateStructure

	if static, keep := e.analyze(tmpl, "", "", &ts); keep {
		ts.StaticContent = static
	}

	return ts
}

// analyze records references below v and returns v's static part; keep is
// false when nothing static remains.
func (e *Engine) analyze(v any, key, pos string, ts *TemplateStructure) (any, bool) {
	switch t := v.(type) {
	case string:
		if isMarker(t) {
			ts.ArrayExpansionKeys = append(ts.ArrayExpansionKeys, ArrayExpansionKey{
				TemplateKey: key, Marker: ItemsMarker, TargetPath: pos,
			})

			return nil, false
		}

		refs := e.references(t, pos, ts)

		return t, refs == 0 && !strings.Contains(t, ItemsMarker)
	case []any:
		if len(t) == 1 && isMarker(t[0]) {
			ts.ArrayExpansionKeys = append(ts.ArrayExpansionKeys, ArrayExpansionKey{
				TemplateKey: key, Marker: ItemsMarker, TargetPath: pos,
			})

			return nil, false
		}

		var static []any

		for i, x := range t {
			if sv, keep := e.analyze(x, key, indexPos(pos, i), ts); keep {
				static = append(static, sv)
			}
		}

		return static, len(static) > 0 || len(t) == 0
	case map[string]any:
		static := map[string]any{}

		for _, k := range sortedKeys(t) {
			kp := keyPos(pos, k)
			keyRefs := e.references(k, kp, ts)

			sv, keep := e.analyze(t[k], k, kp, ts)
			if keep && keyRefs == 0 {
				static[k] = sv
			}
		}

		return static, len(static) > 0 || len(t) == 0
	default:
		return tree.Clone(v), true
	}
}

func (e *Engine) references(s, pos string, ts *TemplateStructure) int {
	found := e.find(s)
	for _, p := range found {
		ts.VariableReferences = append(ts.VariableReferences, VariableReference{
			Placeholder: p.Raw, Path: p.Path, Position: pos,
		})
	}

	return len(found)
}

func keyPos(parent, key string) string {
	if parent == "" {
		return key
	}

	return parent + "." + key
}

func indexPos(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
