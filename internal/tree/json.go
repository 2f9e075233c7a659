package tree

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Text returns the string form of v used when a value is inserted into text:
// scalars via FormatScalar, objects and arrays as compact JSON.
func Text(v any) (string, error) {
	if IsScalar(v) {
		return FormatScalar(v), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s as JSON: %w", TypeName(v), err)
	}

	return string(b), nil
}

// ToJSONCompatible round-trips v through JSON so that every number becomes a
// float64 and every object a map[string]any. Query evaluators expect that
// shape.
func ToJSONCompatible(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tree: %w", err)
	}

	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}

	return out, nil
}
