// Package tree provides helpers for the generic document data trees handled by
// the transformation pipeline.
//
// A data tree is any value built from map[string]any, []any, scalars
// (string, bool, integer and floating point numbers, json.Number) and nil.
// Trees decoded by YAML libraries may carry map[any]any; Normalize turns them
// into the canonical shape.
//
// # Path Syntax
//
// Transformer target paths use dot segments with an optional "[]" suffix that
// addresses every element of an array:
//   - Simple fields: "title"
//   - Nested fields: "meta.author"
//   - Every element: "docs[]"
//   - Field of every element: "docs[].tags"
//
// Placeholder lookups use plain dot segments where a numeric segment indexes
// into an array ("items.0.name").
//
// Nothing in this package mutates its input except Update, which is documented
// to work on a private copy produced by Clone.
package tree
