package transform

import (
	"fmt"

	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

// annotation is one declaration of a marker: the data path of the declaring
// schema node and the marker's value.
type annotation struct {
	Path  tree.Path
	Value any
}

// collect returns every declaration of k's marker in walk order.
func collect(root *schema.Node, k directive.Kind) ([]annotation, error) {
	var out []annotation

	err := schema.Walk(root, func(p tree.Path, n *schema.Node) error {
		if v, ok := n.Extension(k.ExtensionKey()); ok {
			out = append(out, annotation{Path: p, Value: v})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan schema for %s: %w", k.ExtensionKey(), err)
	}

	return out, nil
}
