package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontmatter-transform/internal/aggregate"
	"frontmatter-transform/internal/render"
)

func TestProcessor_ComposeCollectsPart(t *testing.T) {
	p := newProcessor(t, DefaultOptions())

	b, err := p.RunBatch(context.Background(), mustSchema(t, collectionSchema), docs(2))
	require.NoError(t, err)

	c, err := p.Compose(b.Job, b.Data(), nil)
	require.NoError(t, err)

	assert.Nil(t, c.Aggregated)
	assert.Equal(t, map[string]any{"docs": b.Data()}, c.Data)
	assert.Equal(t, b.Data(), c.Items)

	c.Items[0].(map[string]any)["title"] = "changed"
	assert.Equal(t, "Doc 0", c.Data.(map[string]any)["docs"].([]any)[0].(map[string]any)["title"])
}

func TestProcessor_ComposeNestedAndRootPart(t *testing.T) {
	p := newProcessor(t, DefaultOptions())

	job, err := p.Prepare(mustSchema(t, `
properties:
  site:
    properties:
      pages: {type: array, x-frontmatter-part: true}
`))
	require.NoError(t, err)

	c, err := p.Compose(job, []any{map[string]any{"a": 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"site": map[string]any{"pages": []any{map[string]any{"a": 1}}}}, c.Data)

	job, err = p.Prepare(mustSchema(t, "type: array\nx-frontmatter-part: true\n"))
	require.NoError(t, err)

	c, err = p.Compose(job, []any{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, c.Data)
}

func TestProcessor_ComposeAggregates(t *testing.T) {
	p := newProcessor(t, Options{Strategy: aggregate.ReplaceValues})

	job, err := p.Prepare(mustSchema(t, postSchema))
	require.NoError(t, err)

	input := []any{
		map[string]any{"tags": []any{"a"}, "title": "X"},
		map[string]any{"tags": []any{"b"}, "title": "Y"},
	}

	c, err := p.Compose(job, input, map[string]any{"tags": []any{}, "title": ""})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"tags": []any{"a", "b"}, "title": "Y"}, c.Data)
	require.NotNil(t, c.Aggregated)
	assert.Nil(t, c.Items)

	// Shape from the schema when the template is not an object.
	c, err = p.Compose(job, input, "text {{title}}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": []any{"a", "b"}, "title": "Y"}, c.Data)

	_, err = p.Compose(job, nil, nil)
	require.ErrorIs(t, err, aggregate.ErrEmptyInput)
}

func TestProcessor_ComposeTemplateItems(t *testing.T) {
	p := newProcessor(t, Options{Strategy: aggregate.MergeArrays})

	job, err := p.Prepare(mustSchema(t, "x-template-items: item.json\nproperties:\n  title: {type: string}\n"))
	require.NoError(t, err)

	input := []any{map[string]any{"title": "A"}, map[string]any{"title": "B"}}

	c, err := p.Compose(job, input, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "A"}, c.Data)
	assert.Equal(t, input, c.Items)
}

func TestTemplateShape(t *testing.T) {
	shape := TemplateShape(mustSchema(t, `
properties:
  tags: {type: array}
  refs: {items: {type: string}}
  meta:
    properties:
      authors: {type: array}
      site: {type: string}
  title: {type: string}
`))

	assert.Equal(t, map[string]any{
		"tags":  []any{},
		"refs":  []any{},
		"meta":  map[string]any{"authors": []any{}, "site": nil},
		"title": nil,
	}, shape)

	assert.Empty(t, TemplateShape(nil))
}

func TestProcessor_RenderTree(t *testing.T) {
	p := newProcessor(t, DefaultOptions())

	c := &Composition{
		Data:  map[string]any{"total": 2},
		Items: []any{map[string]any{"title": "A"}, map[string]any{"title": "B"}},
	}

	res, err := p.Render(map[string]any{
		"count": "{{total}}",
		"docs":  []any{"{@items}"},
	}, c, map[string]any{"name": "{{title}}", "slug": "{{slug}}"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"count": 2,
		"docs": []any{
			map[string]any{"name": "A", "slug": "{{slug}}"},
			map[string]any{"name": "B", "slug": "{{slug}}"},
		},
	}, res.Value)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "slug", res.Unresolved[0].Path)
}

func TestProcessor_RenderText(t *testing.T) {
	p := newProcessor(t, DefaultOptions())

	c := &Composition{
		Data:  map[string]any{"total": 2},
		Items: []any{"a", "b"},
	}

	res, err := p.Render("count: {{total}}\ndocs:\n  - {@items}\n", c, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 2, "docs": []any{"a", "b"}}, res.Value)

	c.Items = nil

	res, err = p.Render("count: {{total}}\ndocs: {@items}", c, nil)
	require.NoError(t, err)
	assert.Equal(t, "count: 2\ndocs: {@items}", res.Value)
}

func TestProcessor_RenderStrict(t *testing.T) {
	engine, err := render.NewEngine(render.Dollar, render.WithStrict(true))
	require.NoError(t, err)

	p, err := New(Config{Engine: engine})
	require.NoError(t, err)

	_, err = p.Render(map[string]any{"a": "${missing}"}, &Composition{Data: map[string]any{}}, nil)

	var ue *render.UnresolvedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"missing"}, ue.Paths())
}
