// Package pipeline runs documents through the transformation stages: each
// document is transformed by the directives of its schema and validated,
// then the batch is composed into one tree and rendered through a template.
package pipeline
