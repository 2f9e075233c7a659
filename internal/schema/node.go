package schema

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"frontmatter-transform/internal/tree"
)

// Node is one JSON-Schema shaped schema object. Nodes are read-only once
// parsed; use Clone before building a modified copy.
type Node struct {
	// Types lists the accepted JSON types ("object", "integer", ...).
	// Empty means any type.
	Types []string
	// Ref is the "$ref" value, e.g. "#/definitions/Item".
	Ref string

	// Object
	Properties map[string]*Node
	Required   []string
	// AdditionalProperties is nil unless "additionalProperties" is a boolean.
	AdditionalProperties *bool

	// Array
	Items    *Node
	MinItems *int
	MaxItems *int

	// Equality
	Enum     []any
	Const    any
	HasConst bool

	// String
	Pattern   string
	MinLength *int
	MaxLength *int

	// Number
	Minimum *float64
	Maximum *float64

	// Definitions holds "definitions" and "$defs" entries.
	Definitions map[string]*Node

	// Extensions holds "x-" keys, merged from the node itself and its
	// "extensions" object. Keys declared directly on the node win.
	Extensions map[string]any
}

// PropertyNames returns the declared property names sorted.
func (n *Node) PropertyNames() []string {
	if n == nil {
		return nil
	}

	names := slices.Collect(maps.Keys(n.Properties))
	sort.Strings(names)

	return names
}

// HasType reports whether t is listed in the node's types.
func (n *Node) HasType(t string) bool {
	return slices.Contains(n.Types, t)
}

// ForbidsAdditional reports whether "additionalProperties" is explicitly false.
func (n *Node) ForbidsAdditional() bool {
	return n.AdditionalProperties != nil && !*n.AdditionalProperties
}

// Extension returns the value of an extension key. The "x-" prefix is optional.
func (n *Node) Extension(key string) (any, bool) {
	if n == nil || n.Extensions == nil {
		return nil, false
	}

	v, ok := n.Extensions[extensionKey(key)]

	return v, ok
}

// ExtensionString returns an extension value that is a non-empty string.
func (n *Node) ExtensionString(key string) (string, bool) {
	v, ok := n.Extension(key)
	if !ok {
		return "", false
	}

	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}

	return s, true
}

// ExtensionBool returns an extension value that is a boolean.
func (n *Node) ExtensionBool(key string) (bool, bool) {
	v, ok := n.Extension(key)
	if !ok {
		return false, false
	}

	b, ok := v.(bool)

	return b, ok
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	out := *n
	out.Types = slices.Clone(n.Types)
	out.Required = slices.Clone(n.Required)
	out.Items = n.Items.Clone()
	out.Properties = cloneNodes(n.Properties)
	out.Definitions = cloneNodes(n.Definitions)
	out.AdditionalProperties = clonePtr(n.AdditionalProperties)
	out.MinItems = clonePtr(n.MinItems)
	out.MaxItems = clonePtr(n.MaxItems)
	out.MinLength = clonePtr(n.MinLength)
	out.MaxLength = clonePtr(n.MaxLength)
	out.Minimum = clonePtr(n.Minimum)
	out.Maximum = clonePtr(n.Maximum)

	if n.Enum != nil {
		out.Enum = tree.Clone(n.Enum).([]any)
	}

	out.Const = tree.Clone(n.Const)

	if n.Extensions != nil {
		out.Extensions = tree.Clone(n.Extensions).(map[string]any)
	}

	return &out
}

func cloneNodes(m map[string]*Node) map[string]*Node {
	if m == nil {
		return nil
	}

	out := make(map[string]*Node, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}

	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func extensionKey(key string) string {
	if strings.HasPrefix(key, "x-") {
		return key
	}

	return "x-" + key
}
