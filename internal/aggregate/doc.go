// Package aggregate merges the data of many documents into one tree, guided
// by the shape of the output template.
//
// A template key whose value is an array is an array field: every
// document's value is appended in document order. Objects are nested
// structures merged recursively. Every other key is a scalar field, merged
// by the chosen Strategy.
package aggregate
