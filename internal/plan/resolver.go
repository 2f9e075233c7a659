package plan

import (
	"errors"
	"fmt"
	"sort"

	"frontmatter-transform/internal/common"
	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

// Resolver computes processing orders against one directive catalog.
type Resolver struct {
	catalog *directive.Catalog
}

// NewResolver validates catalog and returns a Resolver using it. A nil
// catalog selects directive.DefaultCatalog.
func NewResolver(catalog *directive.Catalog) (*Resolver, error) {
	if catalog == nil {
		catalog = directive.DefaultCatalog()
	}

	if err := directive.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid directive catalog: %w", err)
	}

	return &Resolver{catalog: catalog}, nil
}

// Catalog returns the catalog the resolver schedules against.
func (r *Resolver) Catalog() *directive.Catalog {
	return r.catalog
}

// Resolve discovers the directives declared by root and returns the order
// they run in. A nil or directive-free schema yields an empty order.
func (r *Resolver) Resolve(root *schema.Node) (*ProcessingOrder, error) {
	discovered, err := r.discover(root)
	if err != nil {
		return nil, err
	}

	nodes, err := r.complete(discovered)
	if err != nil {
		return nil, err
	}

	sorted, err := r.sortNodes(nodes)
	if err != nil {
		return nil, err
	}

	return &ProcessingOrder{
		Phases:          r.phases(sorted),
		TotalDirectives: len(sorted),
		DependencyGraph: r.graph(nodes),
	}, nil
}

// discover records, per catalog kind, every schema path declaring its marker.
func (r *Resolver) discover(root *schema.Node) (map[directive.Kind]Node, error) {
	paths := map[directive.Kind][]string{}
	kinds := r.catalog.Kinds()

	err := schema.Walk(root, func(p tree.Path, n *schema.Node) error {
		for _, k := range kinds {
			if _, ok := n.Extension(k.ExtensionKey()); ok {
				paths[k] = append(paths[k], schemaPath(p))
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan schema: %w", err)
	}

	out := make(map[directive.Kind]Node, len(paths))

	for k, ps := range paths {
		path, ok := common.Single(ps)
		if !ok {
			path = MultiplePath
		}

		out[k] = Node{Kind: k, SchemaPath: path, Present: true}
	}

	return out, nil
}

// complete adds a virtual node for every transitive prerequisite that was not
// discovered.
func (r *Resolver) complete(discovered map[directive.Kind]Node) (map[directive.Kind]Node, error) {
	nodes := make(map[directive.Kind]Node, len(discovered))
	queue := make([]directive.Kind, 0, len(discovered))

	for k, n := range discovered {
		nodes[k] = n
		queue = append(queue, k)
	}

	sort.Slice(queue, func(i, j int) bool {
		return r.catalog.Index(queue[i]) < r.catalog.Index(queue[j])
	})

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		for _, p := range r.catalog.Prerequisites(k) {
			if _, ok := nodes[p]; ok {
				continue
			}

			if _, ok := r.catalog.Lookup(p); !ok {
				return nil, &directive.Error{
					Kind:      directive.ErrorMissingDependency,
					Directive: k,
					Err:       fmt.Errorf("prerequisite %s is not in the catalog", p),
				}
			}

			nodes[p] = Node{Kind: p, SchemaPath: NotPresentPath}
			queue = append(queue, p)
		}
	}

	return nodes, nil
}

// sortNodes orders nodes so that every node follows its prerequisites.
func (r *Resolver) sortNodes(nodes map[directive.Kind]Node) ([]Node, error) {
	list := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		list = append(list, n)
	}

	sort.Slice(list, func(i, j int) bool {
		return r.catalog.Index(list[i].Kind) < r.catalog.Index(list[j].Kind)
	})

	index := make(map[directive.Kind]int, len(list))
	for i, n := range list {
		index[n.Kind] = i
	}

	order, err := topoSort(len(list), func(i int) []int {
		var deps []int

		for _, p := range r.catalog.Prerequisites(list[i].Kind) {
			if j, ok := index[p]; ok {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if errors.Is(err, errCycle) {
		kinds := make([]directive.Kind, len(list))
		for i, n := range list {
			kinds[i] = n.Kind
		}

		cycle := directive.FindCycle(kinds, r.catalog.Prerequisites)

		var at directive.Kind
		if len(cycle) > 0 {
			at = cycle[0]
		}

		return nil, &directive.Error{Kind: directive.ErrorCircularDependency, Directive: at, Cycle: cycle}
	}

	if err != nil {
		return nil, err
	}

	out := make([]Node, len(order))
	for i, idx := range order {
		out[i] = list[idx]
	}

	return out, nil
}

// phases groups sorted nodes by priority. The sort inside a phase is kept.
func (r *Resolver) phases(sorted []Node) []Phase {
	byPriority := map[int][]Node{}

	var priorities []int

	for _, n := range sorted {
		p := r.catalog.Priority(n.Kind)
		if _, ok := byPriority[p]; !ok {
			priorities = append(priorities, p)
		}

		byPriority[p] = append(byPriority[p], n)
	}

	sort.Ints(priorities)

	out := make([]Phase, 0, len(priorities))
	for _, p := range priorities {
		out = append(out, Phase{Priority: p, Nodes: byPriority[p]})
	}

	return out
}

func (r *Resolver) graph(nodes map[directive.Kind]Node) map[directive.Kind][]directive.Kind {
	g := make(map[directive.Kind][]directive.Kind, len(nodes))

	for k := range nodes {
		var deps []directive.Kind

		for _, p := range r.catalog.Prerequisites(k) {
			if _, ok := nodes[p]; ok {
				deps = append(deps, p)
			}
		}

		g[k] = deps
	}

	return g
}

func schemaPath(p tree.Path) string {
	if p.IsRoot() {
		return RootPath
	}

	return p.String()
}
