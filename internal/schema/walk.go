package schema

import "frontmatter-transform/internal/tree"

// WalkFunc is called for every node reached by Walk. path is the data path
// the node describes: properties add a segment, items mark the enclosing
// segment as iterating ("docs[]").
type WalkFunc func(path tree.Path, n *Node) error

// Walk visits root and every node reachable through properties and items,
// depth-first, properties in sorted order. Definitions are not visited;
// resolve references first when annotations live inside them.
func Walk(root *Node, fn WalkFunc) error {
	return walk(root, tree.Path{}, fn)
}

func walk(n *Node, path tree.Path, fn WalkFunc) error {
	if n == nil {
		return nil
	}

	if err := fn(path, n); err != nil {
		return err
	}

	for _, name := range n.PropertyNames() {
		if err := walk(n.Properties[name], path.Child(name), fn); err != nil {
			return err
		}
	}

	if n.Items != nil {
		if err := walk(n.Items, path.AsSlice(), fn); err != nil {
			return err
		}
	}

	return nil
}
