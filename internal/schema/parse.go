package schema

import (
	"errors"
	"fmt"
	"strings"

	"frontmatter-transform/internal/tree"
)

// Parse parses a JSON or YAML schema document.
func Parse(data []byte) (*Node, error) {
	raw, err := tree.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("failed to parse schema: root is not an object")
	}

	return FromMap(m)
}

// FromMap builds a Node from a decoded schema object.
func FromMap(m map[string]any) (*Node, error) {
	return fromMap(m, "#")
}

func fromMap(m map[string]any, at string) (*Node, error) {
	n := &Node{}

	for key, raw := range m {
		var err error

		switch key {
		case "type":
			n.Types, err = parseTypes(raw)
		case "$ref":
			n.Ref, err = asString(raw)
		case "properties":
			n.Properties, err = parseNodeMap(raw, at+"/properties")
		case "definitions", "$defs":
			var defs map[string]*Node

			defs, err = parseNodeMap(raw, at+"/"+key)
			if err == nil {
				if n.Definitions == nil {
					n.Definitions = map[string]*Node{}
				}

				for name, d := range defs {
					n.Definitions[name] = d
				}
			}
		case "items":
			n.Items, err = parseItems(raw, at+"/items")
		case "required":
			n.Required, err = parseStrings(raw)
		case "additionalProperties":
			if b, ok := raw.(bool); ok {
				n.AdditionalProperties = &b
			}
		case "enum":
			arr, ok := raw.([]any)
			if !ok {
				err = fmt.Errorf("expected array, got %s", tree.TypeName(raw))
			}

			n.Enum = arr
		case "const":
			n.Const = raw
			n.HasConst = true
		case "pattern":
			n.Pattern, err = asString(raw)
		case "minLength":
			n.MinLength, err = asInt(raw)
		case "maxLength":
			n.MaxLength, err = asInt(raw)
		case "minItems":
			n.MinItems, err = asInt(raw)
		case "maxItems":
			n.MaxItems, err = asInt(raw)
		case "minimum":
			n.Minimum, err = asFloat(raw)
		case "maximum":
			n.Maximum, err = asFloat(raw)
		case "extensions":
			err = n.mergeExtensions(raw, false)
		default:
			if strings.HasPrefix(key, "x-") {
				n.setExtension(key, raw, true)
			}
		}

		if err != nil {
			return nil, fmt.Errorf("schema %s/%s: %w", at, key, err)
		}
	}

	return n, nil
}

func (n *Node) mergeExtensions(raw any, override bool) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %s", tree.TypeName(raw))
	}

	for k, v := range m {
		n.setExtension(extensionKey(k), v, override)
	}

	return nil
}

func (n *Node) setExtension(key string, v any, override bool) {
	if n.Extensions == nil {
		n.Extensions = map[string]any{}
	}

	if _, exists := n.Extensions[key]; exists && !override {
		return
	}

	n.Extensions[key] = v
}

func parseNodeMap(raw any, at string) (map[string]*Node, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %s", tree.TypeName(raw))
	}

	out := make(map[string]*Node, len(m))

	for name, v := range m {
		sub, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%q: expected schema object, got %s", name, tree.TypeName(v))
		}

		n, err := fromMap(sub, at+"/"+name)
		if err != nil {
			return nil, err
		}

		out[name] = n
	}

	return out, nil
}

func parseItems(raw any, at string) (*Node, error) {
	switch t := raw.(type) {
	case map[string]any:
		return fromMap(t, at)
	case bool:
		// "items: true" accepts anything.
		return &Node{}, nil
	default:
		return nil, fmt.Errorf("expected schema object, got %s", tree.TypeName(raw))
	}
}

func parseTypes(raw any) ([]string, error) {
	switch t := raw.(type) {
	case string:
		return []string{t}, nil
	case []any:
		return parseStrings(t)
	default:
		return nil, fmt.Errorf("expected string or array, got %s", tree.TypeName(raw))
	}
}

func parseStrings(raw any) ([]string, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %s", tree.TypeName(raw))
	}

	out := make([]string, 0, len(arr))

	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string entries, got %s", tree.TypeName(v))
		}

		out = append(out, s)
	}

	return out, nil
}

func asString(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", tree.TypeName(raw))
	}

	return s, nil
}

func asInt(raw any) (*int, error) {
	if !tree.IsInteger(raw) {
		return nil, fmt.Errorf("expected integer, got %s", tree.TypeName(raw))
	}

	f, _ := tree.AsFloat(raw)
	i := int(f)

	return &i, nil
}

func asFloat(raw any) (*float64, error) {
	f, ok := tree.AsFloat(raw)
	if !ok {
		return nil, fmt.Errorf("expected number, got %s", tree.TypeName(raw))
	}

	return &f, nil
}
