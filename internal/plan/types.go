package plan

import (
	"fmt"
	"strings"

	"frontmatter-transform/internal/directive"
)

// Schema paths with a special meaning.
const (
	// RootPath marks a directive declared on the schema root.
	RootPath = "$"
	// MultiplePath marks a directive declared at more than one schema path.
	MultiplePath = "multiple"
	// NotPresentPath marks a virtual node added to satisfy a prerequisite.
	NotPresentPath = "not-present"
)

// Node is one directive kind scheduled for a schema.
type Node struct {
	Kind directive.Kind
	// SchemaPath is the dot path of the declaring schema node, or one of
	// RootPath, MultiplePath, NotPresentPath.
	SchemaPath string
	// Present is false for virtual nodes. Their transformer is skipped.
	Present bool
}

func (n Node) String() string {
	if !n.Present {
		return n.Kind.String() + " (not present)"
	}

	return fmt.Sprintf("%s @ %s", n.Kind, n.SchemaPath)
}

// Phase groups nodes sharing one priority, in dependency order.
type Phase struct {
	Priority int
	Nodes    []Node
}

// ProcessingOrder is the resolved execution plan of one schema.
type ProcessingOrder struct {
	// Phases are ordered by ascending priority.
	Phases []Phase
	// TotalDirectives counts every scheduled node, virtual ones included.
	TotalDirectives int
	// DependencyGraph maps each scheduled kind to its prerequisites.
	DependencyGraph map[directive.Kind][]directive.Kind
}

// Nodes returns every node in execution order.
func (o *ProcessingOrder) Nodes() []Node {
	if o == nil {
		return nil
	}

	out := make([]Node, 0, o.TotalDirectives)
	for _, p := range o.Phases {
		out = append(out, p.Nodes...)
	}

	return out
}

// Kinds returns every scheduled kind in execution order.
func (o *ProcessingOrder) Kinds() []directive.Kind {
	nodes := o.Nodes()

	out := make([]directive.Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind
	}

	return out
}

// Present reports whether k is scheduled and declared by the schema.
func (o *ProcessingOrder) Present(k directive.Kind) bool {
	for _, n := range o.Nodes() {
		if n.Kind == k {
			return n.Present
		}
	}

	return false
}

// IsEmpty reports whether nothing is scheduled.
func (o *ProcessingOrder) IsEmpty() bool {
	return o == nil || len(o.Phases) == 0
}

// String renders the order for logs, one phase per line:
//
//	phase 1: extract-from (not present)
//	phase 3: jmespath-filter @ items
func (o *ProcessingOrder) String() string {
	if o.IsEmpty() {
		return "no directives"
	}

	lines := make([]string, 0, len(o.Phases))

	for _, p := range o.Phases {
		names := make([]string, len(p.Nodes))
		for i, n := range p.Nodes {
			names[i] = n.String()
		}

		lines = append(lines, fmt.Sprintf("phase %d: %s", p.Priority, strings.Join(names, ", ")))
	}

	return strings.Join(lines, "\n")
}
