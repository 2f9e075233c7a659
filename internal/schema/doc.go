// Package schema provides the read-only, JSON-Schema shaped model the
// pipeline is driven by, its YAML/JSON parser, local "$ref" resolution and a
// walker over properties and items.
//
// Besides the usual validation keywords a node may carry vendor extension
// keys (for example "x-flatten-arrays: tags"). They can be written directly
// on the node or inside a sibling "extensions" object:
//
//	properties:
//	  tags:
//	    type: array
//	    x-flatten-arrays: true
//	  items:
//	    type: array
//	    extensions:
//	      x-jmespath-filter: "[?status=='done']"
//
// When both forms declare the same key the direct one wins.
//
// References of the form "#/definitions/Name" and "#/$defs/Name" are
// resolved against the root node's definitions by ResolveRefs.
package schema
