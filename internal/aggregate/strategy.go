package aggregate

import (
	"strings"

	"frontmatter-transform/internal/common"
)

// Strategy selects how scalar fields are merged.
type Strategy int

const (
	_ Strategy = iota // skip zero value

	// ReplaceValues keeps the last document's value.
	ReplaceValues
	// MergeArrays keeps the first document's value.
	MergeArrays
	// AccumulateFields keeps the first document's value and also carries
	// keys the template does not mention.
	AccumulateFields
)

// String returns the strategy name used in configuration.
func (s Strategy) String() string {
	switch s {
	case ReplaceValues:
		return "replace_values"
	case MergeArrays:
		return "merge_arrays"
	case AccumulateFields:
		return "accumulate_fields"
	default:
		return common.UnknownStr
	}
}

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	return s >= ReplaceValues && s <= AccumulateFields
}

// ParseStrategy parses a strategy name; "-" and "_" are interchangeable.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "replace_values":
		return ReplaceValues, true
	case "merge_arrays":
		return MergeArrays, true
	case "accumulate_fields":
		return AccumulateFields, true
	default:
		return 0, false
	}
}
