package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Clone returns a deep copy of v. Maps and slices are copied recursively,
// scalars are shared.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Clone(vv)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = Clone(vv)
		}

		return out
	default:
		return v
	}
}

// Normalize converts YAML-decoded values (which may contain map[any]any or
// typed slices) into the canonical map[string]any / []any shape recursively.
// Timestamps become strings.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Normalize(vv)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = Normalize(vv)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = Normalize(vv)
		}

		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}

		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = Normalize(m)
		}

		return out
	case time.Time:
		return formatTime(t)
	default:
		return v
	}
}

// formatTime renders t as a date when it has no clock part, else as RFC 3339.
func formatTime(t time.Time) string {
	if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
		return t.Format(time.DateOnly)
	}

	return t.Format(time.RFC3339Nano)
}

// AsFloat returns v as a float64 when v is any Go numeric type or a
// json.Number.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// IsInteger reports whether v is a number without a fractional part.
func IsInteger(v any) bool {
	f, ok := AsFloat(v)
	if !ok {
		return false
	}

	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// TypeName returns the JSON type name of v: "null", "boolean", "number",
// "string", "array" or "object". Values of any other Go type yield "unknown".
func TypeName(v any) string {
	if v == nil {
		return "null"
	}

	if _, ok := AsFloat(v); ok {
		return "number"
	}

	switch v.(type) {
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// Equal compares two data trees. Numbers compare by value regardless of their
// Go type, so 1 equals 1.0.
func Equal(a, b any) bool {
	if fa, ok := AsFloat(a); ok {
		fb, ok := AsFloat(b)
		return ok && fa == fb
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}

		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}

		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// IsScalar reports whether v is neither an object nor an array.
func IsScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}

// FormatScalar renders a scalar the way it should appear inside text.
// nil renders as the empty string.
func FormatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
