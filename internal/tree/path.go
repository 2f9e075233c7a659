package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PathSegment is one dot-separated element of a Path.
type PathSegment struct {
	// Name is the object key.
	Name string
	// IsSlice is true when the segment was written as "name[]".
	IsSlice bool
}

// String returns the segment as written.
func (s PathSegment) String() string {
	if s.IsSlice {
		return s.Name + "[]"
	}

	return s.Name
}

// Path addresses values inside a data tree. The zero Path is the root.
type Path struct {
	Segments []PathSegment
}

// ParsePath parses a target path string into a Path.
// Supports: "", "field", "nested.field", "items[]", "items[].id".
// The empty string is the root path.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return Path{}, nil
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return Path{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		isSlice := false
		name := part

		if strings.HasSuffix(part, "[]") {
			isSlice = true
			name = strings.TrimSuffix(part, "[]")

			if name == "" {
				return Path{}, fmt.Errorf("invalid path %q: slice without field name", path)
			}
		}

		if strings.ContainsAny(name, "[]") {
			return Path{}, fmt.Errorf("invalid path %q: unexpected bracket in %q", path, name)
		}

		segments = append(segments, PathSegment{Name: name, IsSlice: isSlice})
	}

	return Path{Segments: segments}, nil
}

// MustParsePath is like ParsePath but panics on error. Use in tests and for
// constant paths only.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return p
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return len(p.Segments) == 0
}

// HasSlice reports whether any segment iterates an array.
func (p Path) HasSlice() bool {
	for _, s := range p.Segments {
		if s.IsSlice {
			return true
		}
	}

	return false
}

// Child returns a new path with name appended.
func (p Path) Child(name string) Path {
	return Path{Segments: append(append([]PathSegment{}, p.Segments...), PathSegment{Name: name})}
}

// Join returns a new path made of p followed by other.
func (p Path) Join(other Path) Path {
	segs := make([]PathSegment, 0, len(p.Segments)+len(other.Segments))
	segs = append(segs, p.Segments...)
	segs = append(segs, other.Segments...)

	return Path{Segments: segs}
}

// AsSlice returns a copy of p whose last segment iterates an array.
// The root path is returned unchanged.
func (p Path) AsSlice() Path {
	if p.IsRoot() {
		return p
	}

	segs := append([]PathSegment{}, p.Segments...)
	segs[len(segs)-1].IsSlice = true

	return Path{Segments: segs}
}

// String returns the dot-joined form, "" for the root.
func (p Path) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}

	return strings.Join(parts, ".")
}

// Lookup errors.
var (
	ErrSegmentNotFound = errors.New("segment not found")
	ErrNotObject       = errors.New("value is not an object")
	ErrNotArray        = errors.New("value is not an array")
)

// PathError describes where a path walk failed.
type PathError struct {
	// Path is the full path being resolved.
	Path string
	// Segment is the segment that could not be resolved.
	Segment string
	// Index is the zero-based position of Segment in Path.
	Index int
	// Err is ErrSegmentNotFound, ErrNotObject or ErrNotArray.
	Err error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %v at segment %q", e.Path, e.Err, e.Segment)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Lookup walks data along a dot-separated path and returns the value found.
// Numeric segments index arrays. A failed walk returns a *PathError telling
// apart a missing segment from a value that cannot be descended into.
func Lookup(data any, path string) (any, error) {
	if path == "" {
		return data, nil
	}

	current := data

	for i, seg := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, &PathError{Path: path, Segment: seg, Index: i, Err: ErrSegmentNotFound}
			}

			current = next
		case []any:
			if !isIndex(seg) {
				return nil, &PathError{Path: path, Segment: seg, Index: i, Err: ErrNotObject}
			}

			idx, err := strconv.Atoi(seg)
			if err != nil || idx >= len(v) {
				return nil, &PathError{Path: path, Segment: seg, Index: i, Err: ErrSegmentNotFound}
			}

			current = v[idx]
		default:
			return nil, &PathError{Path: path, Segment: seg, Index: i, Err: ErrNotObject}
		}
	}

	return current, nil
}

// isIndex reports whether s is made of decimal digits only.
func isIndex(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
