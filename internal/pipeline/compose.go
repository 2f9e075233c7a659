package pipeline

import (
	"fmt"

	"frontmatter-transform/internal/aggregate"
	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/render"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

// Composition is the single tree built from a batch.
type Composition struct {
	Data any
	// Items feeds the {@items} marker; nil when the schema declares neither
	// a frontmatter part nor template items.
	Items []any
	// Aggregated is set when the documents were aggregated.
	Aggregated *aggregate.AggregatedStructure
}

// Compose builds one tree from the processed documents of job. With a
// frontmatter part the documents are collected into the part array.
// Otherwise they are aggregated following the shape of template, or of the
// document schema when template is not an object.
func (p *Processor) Compose(job *Job, docs []any, template any) (*Composition, error) {
	if job.HasPart {
		return composePart(job, docs)
	}

	shape, ok := template.(map[string]any)
	if !ok {
		shape = TemplateShape(job.Document)
	}

	agg, err := aggregate.Aggregate(docs, shape, p.opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate documents: %w", err)
	}

	if len(agg.Skipped) > 0 {
		p.logger.Warn("documents skipped by aggregation", "indices", agg.Skipped)
	}

	c := &Composition{Data: agg.Structure, Aggregated: agg}

	if _, ok := job.Root.Extension(directive.KindTemplateItems.ExtensionKey()); ok {
		c.Items = cloneDocs(docs)
	}

	return c, nil
}

func composePart(job *Job, docs []any) (*Composition, error) {
	items := cloneDocs(docs)

	if job.PartPath.IsRoot() {
		return &Composition{Data: items, Items: cloneDocs(docs)}, nil
	}

	data, err := tree.Update(map[string]any{}, job.PartPath, func(any, bool) (any, bool, error) {
		return items, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect documents at %s: %w", job.PartPath, err)
	}

	return &Composition{Data: data, Items: cloneDocs(docs)}, nil
}

func cloneDocs(docs []any) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = tree.Clone(d)
	}

	return out
}

// TemplateShape derives an aggregation template from a schema: array
// properties become empty arrays, object properties nested objects and
// everything else nil.
func TemplateShape(n *schema.Node) map[string]any {
	out := map[string]any{}
	if n == nil {
		return out
	}

	for _, name := range n.PropertyNames() {
		prop := n.Properties[name]

		switch {
		case prop.HasType("array") || prop.Items != nil:
			out[name] = []any{}
		case prop.HasType("object") || len(prop.Properties) > 0:
			out[name] = TemplateShape(prop)
		default:
			out[name] = nil
		}
	}

	return out
}

// Render substitutes c's data into tmpl and expands {@items} with c.Items.
// When itemTemplate is non-nil every item is substituted into it first.
// A string tmpl is treated as a text template (see render.ExpandText).
func (p *Processor) Render(tmpl any, c *Composition, itemTemplate any) (render.Result, error) {
	items, unresolved, err := p.renderItems(c.Items, itemTemplate)
	if err != nil {
		return render.Result{}, err
	}

	var res render.Result

	if text, ok := tmpl.(string); ok {
		res, err = p.engine.Substitute(text, c.Data)
		if err != nil {
			return render.Result{}, err
		}

		if s, ok := res.Value.(string); ok && items != nil {
			res.Value, err = render.ExpandText(s, items)
			if err != nil {
				return render.Result{}, err
			}
		}
	} else {
		res, err = p.engine.Render(tmpl, c.Data, items)
		if err != nil {
			return render.Result{}, err
		}
	}

	res.Unresolved = append(unresolved, res.Unresolved...)

	for _, u := range res.Unresolved {
		p.logger.Warn("unresolved placeholder", "placeholder", u.Raw, "error", u.Err)
	}

	return res, nil
}

func (p *Processor) renderItems(items []any, itemTemplate any) ([]any, []render.Unresolved, error) {
	if items == nil || itemTemplate == nil {
		return items, nil, nil
	}

	var (
		out        = make([]any, len(items))
		unresolved []render.Unresolved
		seen       = map[string]bool{}
	)

	for i, item := range items {
		res, err := p.engine.Substitute(itemTemplate, item)
		if err != nil {
			return nil, nil, fmt.Errorf("item %d: %w", i, err)
		}

		for _, u := range res.Unresolved {
			if !seen[u.Raw] {
				seen[u.Raw] = true
				unresolved = append(unresolved, u)
			}
		}

		out[i] = res.Value
	}

	return out, unresolved, nil
}
