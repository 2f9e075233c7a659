package directive

import (
	"errors"
	"fmt"
	"slices"
)

// Entry is the static description of one directive kind.
type Entry struct {
	Kind Kind
	// Prerequisites lists kinds that must run before Kind, in declaration order.
	Prerequisites []Kind
	// Priority groups kinds into phases; 1 runs first.
	Priority int
}

// Catalog is an immutable lookup table of directive entries.
type Catalog struct {
	entries map[Kind]Entry
	order   []Kind
}

// DefaultCatalog returns the built-in directive table.
//
//	frontmatter-part  -                                 1
//	extract-from      -                                 1
//	collect-pattern   frontmatter-part                  2
//	flatten-arrays    frontmatter-part                  2
//	jmespath-filter   extract-from                      3
//	derived-from      flatten-arrays, jmespath-filter   4
//	derived-unique    derived-from                      5
//	template-format   -                                 6
//	template-items    template-format                   7
//	template          template-items                    8
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Entry{Kind: KindFrontmatterPart, Priority: 1},
		Entry{Kind: KindExtractFrom, Priority: 1},
		Entry{Kind: KindCollectPattern, Prerequisites: []Kind{KindFrontmatterPart}, Priority: 2},
		Entry{Kind: KindFlattenArrays, Prerequisites: []Kind{KindFrontmatterPart}, Priority: 2},
		Entry{Kind: KindJMESPathFilter, Prerequisites: []Kind{KindExtractFrom}, Priority: 3},
		Entry{Kind: KindDerivedFrom, Prerequisites: []Kind{KindFlattenArrays, KindJMESPathFilter}, Priority: 4},
		Entry{Kind: KindDerivedUnique, Prerequisites: []Kind{KindDerivedFrom}, Priority: 5},
		Entry{Kind: KindTemplateFormat, Priority: 6},
		Entry{Kind: KindTemplateItems, Prerequisites: []Kind{KindTemplateFormat}, Priority: 7},
		Entry{Kind: KindTemplate, Prerequisites: []Kind{KindTemplateItems}, Priority: 8},
	)
}

// NewCatalog builds a catalog from entries. Later entries for the same kind
// replace earlier ones. The catalog is not validated; see ValidateCatalog.
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[Kind]Entry, len(entries))}

	for _, e := range entries {
		if _, exists := c.entries[e.Kind]; !exists {
			c.order = append(c.order, e.Kind)
		}

		e.Prerequisites = slices.Clone(e.Prerequisites)
		c.entries[e.Kind] = e
	}

	return c
}

// Kinds returns the catalog's kinds in declaration order.
func (c *Catalog) Kinds() []Kind {
	return slices.Clone(c.order)
}

// Lookup returns the entry for k.
func (c *Catalog) Lookup(k Kind) (Entry, bool) {
	e, ok := c.entries[k]
	if !ok {
		return Entry{}, false
	}

	e.Prerequisites = slices.Clone(e.Prerequisites)

	return e, true
}

// Prerequisites returns the declared prerequisites of k, nil when k is unknown.
func (c *Catalog) Prerequisites(k Kind) []Kind {
	return slices.Clone(c.entries[k].Prerequisites)
}

// Priority returns the priority of k, 0 when k is unknown.
func (c *Catalog) Priority(k Kind) int {
	return c.entries[k].Priority
}

// Index returns the declaration position of k, -1 when k is unknown.
func (c *Catalog) Index(k Kind) int {
	return slices.Index(c.order, k)
}

// ValidateCatalog checks that every prerequisite is declared, that every kind
// has a priority strictly greater than each of its prerequisites and that the
// prerequisite graph is acyclic.
func ValidateCatalog(c *Catalog) error {
	if c == nil {
		return &Error{Kind: ErrorMissingDependency, Err: errors.New("catalog is nil")}
	}

	for _, k := range c.order {
		e := c.entries[k]

		if e.Priority < 1 {
			return fmt.Errorf("catalog: %s has invalid priority %d", k, e.Priority)
		}

		for _, p := range e.Prerequisites {
			if p == k {
				return &Error{Kind: ErrorCircularDependency, Directive: k, Cycle: []Kind{k}}
			}

			pe, ok := c.entries[p]
			if !ok {
				return &Error{
					Kind:      ErrorMissingDependency,
					Directive: k,
					Err:       fmt.Errorf("prerequisite %s is not in the catalog", p),
				}
			}

			if pe.Priority >= e.Priority {
				return fmt.Errorf("catalog: %s (priority %d) must run after prerequisite %s (priority %d)",
					k, e.Priority, p, pe.Priority)
			}
		}
	}

	if cycle := FindCycle(c.order, c.Prerequisites); cycle != nil {
		return &Error{Kind: ErrorCircularDependency, Directive: cycle[0], Cycle: cycle}
	}

	return nil
}

// FindCycle returns one dependency cycle among nodes, or nil when there is
// none. deps(k) yields the kinds k depends on; kinds outside nodes are
// ignored. The result lists kinds in cycle order: each kind depends on the
// next one and the last depends on the first.
func FindCycle(nodes []Kind, deps func(Kind) []Kind) []Kind {
	const (
		unvisited = iota
		inProgress
		done
	)

	member := make(map[Kind]bool, len(nodes))
	for _, n := range nodes {
		member[n] = true
	}

	state := make(map[Kind]int, len(nodes))

	var stack []Kind

	var visit func(k Kind) []Kind

	visit = func(k Kind) []Kind {
		state[k] = inProgress
		stack = append(stack, k)

		for _, d := range deps(k) {
			if !member[d] {
				continue
			}

			switch state[d] {
			case inProgress:
				start := slices.Index(stack, d)
				return slices.Clone(stack[start:])
			case unvisited:
				if cycle := visit(d); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[k] = done

		return nil
	}

	for _, n := range nodes {
		if state[n] == unvisited {
			if cycle := visit(n); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}
