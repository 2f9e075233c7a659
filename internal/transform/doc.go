// Package transform applies directive transformers to document data in the
// order computed by package plan.
//
// Every transformer is pure: it reads the schema root to find the nodes that
// declare its marker and returns a rewritten copy of the data. Only
// flatten-arrays and jmespath-filter change data; the other kinds hold their
// slot in the order and pass data through.
package transform
