// Package plan computes the order in which a schema's directives run.
//
// Resolution pipeline:
//  1. Discover every catalog marker declared anywhere in the schema
//     (through properties and items).
//  2. Complete the graph: missing prerequisites become virtual nodes that
//     hold a scheduling slot but are never applied.
//  3. Sort the nodes topologically (Kahn), ties broken by catalog order.
//  4. Group the sorted nodes into phases by priority.
//
// The result is a pure function of the schema and may be cached by schema
// identity (see CachingResolver).
package plan
