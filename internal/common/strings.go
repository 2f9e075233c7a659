package common

import "strings"

// UnknownStr is what String methods return for values outside their enum.
const UnknownStr = "unknown"

// FirstNonEmpty returns the first value that is not blank, or "" when all are.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
