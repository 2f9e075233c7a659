// Package render substitutes data into templates.
//
// A template is a decoded JSON/YAML tree or a text. Path placeholders use
// one bracket style per Engine: {{path}}, ${path} or %path%. A string that
// is exactly one placeholder takes the looked-up value with its native type;
// placeholders inside longer strings are replaced by the value's text form
// (objects and arrays as compact JSON).
//
// The reserved marker {@items} stands for a whole array of items:
//
//	items:
//	  - {@items}
//
// expands to {"items": [...]} with the items as real structured data, while a
// marker embedded in other text becomes the items' JSON text.
package render
