// Package validate checks a document data tree against a schema node.
//
// Validation is depth-first and accumulating: every applicable rule is
// checked at every depth and findings are collected in a Result. Data shape
// problems never fail the call. Only a malformed pattern or a "$ref" chain
// that loops without consuming data returns an error.
//
// Rule order per node:
//  1. type (a mismatch skips the rest of that subtree)
//  2. enum, const
//  3. pattern, minLength, maxLength
//  4. minimum, maximum
//  5. minItems, maxItems, then items
//  6. required, properties, then undeclared keys when
//     additionalProperties is false (reported as warnings)
//
// Paths use dots between keys and [i] for array elements; "" is the root.
package validate
