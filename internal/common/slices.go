package common

import "slices"

// Single returns the only element of s. ok is false when s is empty or holds
// more than one element.
func Single[S ~[]E, E any](s S) (E, bool) {
	if len(s) != 1 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// AppendUnique appends the values of vs that s does not contain yet.
func AppendUnique[S ~[]E, E comparable](s S, vs ...E) S {
	for _, v := range vs {
		if !slices.Contains(s, v) {
			s = append(s, v)
		}
	}

	return s
}
