package schema

import "strings"

// Local reference prefixes understood by the resolver.
const (
	definitionsPrefix = "#/definitions/"
	defsPrefix        = "#/$defs/"
)

// DefinitionName extracts the definition name from a local reference.
func DefinitionName(ref string) (string, bool) {
	for _, prefix := range []string{definitionsPrefix, defsPrefix} {
		if name, ok := strings.CutPrefix(ref, prefix); ok && name != "" {
			return name, true
		}
	}

	return "", false
}

// LookupRef returns the definition addressed by ref in root.
func (n *Node) LookupRef(ref string) (*Node, bool) {
	if n == nil {
		return nil, false
	}

	name, ok := DefinitionName(ref)
	if !ok {
		return nil, false
	}

	def, ok := n.Definitions[name]

	return def, ok && def != nil
}

// ResolveRefs returns a copy of root where every local reference reachable
// through properties and items is replaced by the definition it names.
// Keywords declared next to "$ref" take precedence over the definition's.
//
// A reference met again while its own definition is being expanded is left in
// place, so recursive definitions terminate; unknown references are left in
// place as well. Both kinds remain visible through Node.Ref.
func ResolveRefs(root *Node) *Node {
	if root == nil {
		return nil
	}

	out := root.Clone()
	r := &refResolver{defs: root.Definitions, visiting: map[string]bool{}}
	r.resolveChildren(out)

	return out
}

type refResolver struct {
	defs     map[string]*Node
	visiting map[string]bool
}

func (r *refResolver) resolveChildren(n *Node) {
	for name, p := range n.Properties {
		n.Properties[name] = r.resolve(p)
	}

	if n.Items != nil {
		n.Items = r.resolve(n.Items)
	}
}

// resolve expands n in place when it carries a resolvable reference.
func (r *refResolver) resolve(n *Node) *Node {
	if n == nil {
		return nil
	}

	if n.Ref == "" {
		r.resolveChildren(n)
		return n
	}

	name, ok := DefinitionName(n.Ref)
	if !ok || r.visiting[name] {
		return n
	}

	def, ok := r.defs[name]
	if !ok || def == nil {
		return n
	}

	r.resolveChildren(n)

	r.visiting[name] = true
	expanded := r.resolve(def.Clone())
	delete(r.visiting, name)

	merged := overlay(expanded, n)
	merged.Ref = expanded.Ref

	return merged
}

// overlay returns base with every keyword set on over copied onto it.
func overlay(base, over *Node) *Node {
	out := base

	if len(over.Types) > 0 {
		out.Types = over.Types
	}

	if over.Properties != nil {
		if out.Properties == nil {
			out.Properties = map[string]*Node{}
		}

		for k, v := range over.Properties {
			out.Properties[k] = v
		}
	}

	if over.Required != nil {
		out.Required = over.Required
	}

	if over.AdditionalProperties != nil {
		out.AdditionalProperties = over.AdditionalProperties
	}

	if over.Items != nil {
		out.Items = over.Items
	}

	if over.MinItems != nil {
		out.MinItems = over.MinItems
	}

	if over.MaxItems != nil {
		out.MaxItems = over.MaxItems
	}

	if over.Enum != nil {
		out.Enum = over.Enum
	}

	if over.HasConst {
		out.Const, out.HasConst = over.Const, true
	}

	if over.Pattern != "" {
		out.Pattern = over.Pattern
	}

	if over.MinLength != nil {
		out.MinLength = over.MinLength
	}

	if over.MaxLength != nil {
		out.MaxLength = over.MaxLength
	}

	if over.Minimum != nil {
		out.Minimum = over.Minimum
	}

	if over.Maximum != nil {
		out.Maximum = over.Maximum
	}

	for k, v := range over.Extensions {
		if out.Extensions == nil {
			out.Extensions = map[string]any{}
		}

		out.Extensions[k] = v
	}

	return out
}
