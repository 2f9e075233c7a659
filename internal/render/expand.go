package render

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"frontmatter-transform/internal/tree"
)

// ItemsMarker is the reserved array-expansion marker.
const ItemsMarker = "{@items}"

var keyLine = regexp.MustCompile(`^\s*[^\s#:-][^:#]*:\s*$`)

// ExpandTree replaces the {@items} marker in a template tree:
//   - an array whose only element is the marker becomes items;
//   - a string that is the marker (ignoring surrounding space) becomes items;
//   - a marker inside other text is replaced by the items' JSON text.
//
// tmpl is not modified.
func ExpandTree(tmpl any, items []any) (any, error) {
	switch t := tmpl.(type) {
	case string:
		return expandString(t, items)
	case []any:
		if len(t) == 1 && isMarker(t[0]) {
			return cloneItems(items), nil
		}

		out := make([]any, len(t))

		for i, x := range t {
			nv, err := ExpandTree(x, items)
			if err != nil {
				return nil, err
			}

			out[i] = nv
		}

		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))

		for k, x := range t {
			nv, err := ExpandTree(x, items)
			if err != nil {
				return nil, err
			}

			out[k] = nv
		}

		return out, nil
	default:
		return tmpl, nil
	}
}

func expandString(s string, items []any) (any, error) {
	if strings.TrimSpace(s) == ItemsMarker {
		return cloneItems(items), nil
	}

	if !strings.Contains(s, ItemsMarker) {
		return s, nil
	}

	text, err := itemsJSON(items)
	if err != nil {
		return nil, err
	}

	return strings.ReplaceAll(s, ItemsMarker, text), nil
}

// ExpandText expands the {@items} marker in a text template.
//
// When the whole text is the marker the result is items. When the text ends
// with a "- {@items}" list entry directly under a "key:" line it is decoded
// as YAML with items placed under key, so the result is a structured tree.
// Any other text is returned as a string: a "- {@items}" line becomes one
// list entry per item at the same indentation and other markers become the
// items' JSON text.
func ExpandText(text string, items []any) (any, error) {
	if strings.TrimSpace(text) == ItemsMarker {
		return cloneItems(items), nil
	}

	if !strings.Contains(text, ItemsMarker) {
		return text, nil
	}

	lines := strings.Split(text, "\n")

	if last, ok := structuralMarker(lines); ok {
		if out, ok := expandStructural(lines, last, items); ok {
			return out, nil
		}
	}

	return expandInline(lines, items)
}

// structuralMarker returns the index of the trailing "- {@items}" line when
// it is the only marker and sits directly under a "key:" line.
func structuralMarker(lines []string) (int, bool) {
	if strings.Count(strings.Join(lines, "\n"), ItemsMarker) != 1 {
		return 0, false
	}

	last := lastNonEmpty(lines, len(lines))
	if last < 0 || !isMarkerListItem(lines[last]) {
		return 0, false
	}

	prev := lastNonEmpty(lines, last)
	if prev < 0 || !keyLine.MatchString(lines[prev]) {
		return 0, false
	}

	if indent(lines[prev]) > indent(lines[last]) {
		return 0, false
	}

	return last, true
}

func expandStructural(lines []string, at int, items []any) (any, bool) {
	doc := make([]string, len(lines))
	copy(doc, lines)
	doc[at] = strings.Replace(doc[at], ItemsMarker, `"`+ItemsMarker+`"`, 1)

	parsed, err := tree.DecodeYAML([]byte(strings.Join(doc, "\n")))
	if err != nil {
		return nil, false
	}

	if _, ok := parsed.(map[string]any); !ok {
		return nil, false
	}

	out, err := ExpandTree(parsed, items)
	if err != nil {
		return nil, false
	}

	return out, true
}

func expandInline(lines []string, items []any) (any, error) {
	text, err := itemsJSON(items)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if !isMarkerListItem(line) {
			out = append(out, strings.ReplaceAll(line, ItemsMarker, text))
			continue
		}

		pad := line[:indent(line)]

		for _, item := range items {
			b, err := json.Marshal(item)
			if err != nil {
				return nil, fmt.Errorf("encoding item: %w", err)
			}

			out = append(out, pad+"- "+string(b))
		}
	}

	return strings.Join(out, "\n"), nil
}

func isMarker(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ItemsMarker
}

func isMarkerListItem(line string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "-")
	return ok && strings.TrimSpace(rest) == ItemsMarker
}

func lastNonEmpty(lines []string, before int) int {
	for i := before - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}

	return -1
}

func indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func cloneItems(items []any) []any {
	if items == nil {
		return []any{}
	}

	return tree.Clone(items).([]any)
}

func itemsJSON(items []any) (string, error) {
	if items == nil {
		items = []any{}
	}

	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding items: %w", err)
	}

	return string(b), nil
}
