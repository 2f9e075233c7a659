package transform

import (
	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/schema"
)

// Transformer rewrites document data for one directive kind.
type Transformer interface {
	Kind() directive.Kind
	// Apply returns the rewritten data. data must not be modified.
	Apply(data any, root *schema.Node) (any, error)
}

// Registry maps directive kinds to transformers.
type Registry struct {
	byKind map[directive.Kind]Transformer
}

// NewRegistry returns a registry holding transformers. A later transformer
// for the same kind replaces an earlier one.
func NewRegistry(transformers ...Transformer) *Registry {
	r := &Registry{byKind: make(map[directive.Kind]Transformer, len(transformers))}
	for _, t := range transformers {
		r.Register(t)
	}

	return r
}

// DefaultRegistry returns a registry with a transformer for every kind:
// flatten-arrays, jmespath-filter configured by opts, and pass-throughs.
func DefaultRegistry(opts FilterOptions) *Registry {
	r := NewRegistry(NewFlattenArrays(), NewJMESPathFilter(opts))

	for _, k := range directive.AllKinds() {
		if _, ok := r.Lookup(k); !ok {
			r.Register(PassThrough(k))
		}
	}

	return r
}

// Register adds or replaces the transformer for t.Kind().
func (r *Registry) Register(t Transformer) {
	r.byKind[t.Kind()] = t
}

// Lookup returns the transformer registered for k.
func (r *Registry) Lookup(k directive.Kind) (Transformer, bool) {
	t, ok := r.byKind[k]
	return t, ok
}

type passThrough struct {
	kind directive.Kind
}

// PassThrough returns a transformer for k that leaves data unchanged.
func PassThrough(k directive.Kind) Transformer {
	return passThrough{kind: k}
}

func (p passThrough) Kind() directive.Kind { return p.kind }

func (p passThrough) Apply(data any, _ *schema.Node) (any, error) {
	return data, nil
}
