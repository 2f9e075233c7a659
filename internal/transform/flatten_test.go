package transform

import (
	"encoding/json"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

func mustSchema(t *testing.T, src string) *schema.Node {
	t.Helper()

	n, err := schema.Parse([]byte(src))
	require.NoError(t, err)

	return n
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{"nil", nil, []any{}},
		{"string", "a", []any{"a"}},
		{"int", 3, []any{3}},
		{"float", 1.5, []any{1.5}},
		{"bool", false, []any{false}},
		{"json number", json.Number("7"), []any{json.Number("7")}},
		{"object", map[string]any{"a": 1}, []any{map[string]any{"a": 1}}},
		{"flat", []any{"a", "b"}, []any{"a", "b"}},
		{"empty", []any{}, []any{}},
		{"nested", []any{[]any{"a", "b"}, "c", []any{}}, []any{"a", "b", "c"}},
		{"deep", []any{1, []any{2, []any{3, []any{4}}}, 5}, []any{1, 2, 3, 4, 5}},
		{"mixed", []any{nil, []any{map[string]any{"x": 1}}, true}, []any{nil, map[string]any{"x": 1}, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Flatten(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "flatten must be idempotent: %s", spew.Sdump(got))
		})
	}
}

func TestFlatten_DepthBound(t *testing.T) {
	var v any = []any{"leaf"}
	for range MaxFlattenDepth + 1 {
		v = []any{v}
	}

	_, err := Flatten(v)
	require.ErrorIs(t, err, ErrTooDeep)
}

func TestFlattenArrays_FlattensNestedTags(t *testing.T) {
	root := mustSchema(t, `
properties:
  tags:
    type: array
    x-flatten-arrays: true
`)
	data := map[string]any{"tags": []any{[]any{"a", "b"}, "c", []any{}}}

	out, err := NewFlattenArrays().Apply(data, root)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"tags": []any{"a", "b", "c"}}, out)
	assert.Equal(t, map[string]any{"tags": []any{[]any{"a", "b"}, "c", []any{}}}, data, "input is not modified")
}

func TestFlattenArrays_Targets(t *testing.T) {
	root := mustSchema(t, `
x-flatten-arrays: meta.keywords
properties:
  tags:
    x-flatten-arrays: true
  disabled:
    x-flatten-arrays: false
  docs:
    type: array
    items:
      x-flatten-arrays: refs
  meta:
    extensions:
      x-flatten-arrays: authors
`)

	targets, err := NewFlattenArrays().Targets(root)
	require.NoError(t, err)

	var got []string
	for _, p := range targets {
		got = append(got, p.String())
	}

	assert.Equal(t, []string{"meta.keywords", "docs[].refs", "meta.authors", "tags"}, got)
}

func TestFlattenArrays_Apply(t *testing.T) {
	root := mustSchema(t, `
properties:
  docs:
    type: array
    items:
      x-flatten-arrays: refs
  summary:
    x-flatten-arrays: stats.counts
  missing:
    x-flatten-arrays: true
  scalar:
    x-flatten-arrays: true
`)

	data := map[string]any{
		"docs": []any{
			map[string]any{"refs": []any{"a", []any{"b"}}},
			map[string]any{"refs": "c"},
			map[string]any{},
		},
		"scalar": 42,
	}

	out, err := NewFlattenArrays().Apply(data, root)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"docs": []any{
			map[string]any{"refs": []any{"a", "b"}},
			map[string]any{"refs": []any{"c"}},
			map[string]any{"refs": []any{}},
		},
		"summary": map[string]any{"stats": map[string]any{"counts": []any{}}},
		"missing": []any{},
		"scalar":  []any{42},
	}, out, spew.Sdump(out))

	again, err := NewFlattenArrays().Apply(out, root)
	require.NoError(t, err)
	assert.Equal(t, out, again, "applying twice changes nothing")
}

func TestFlattenArrays_Errors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		data   any
		errMsg string
	}{
		{
			name:   "root true",
			schema: "x-flatten-arrays: true\n",
			data:   map[string]any{},
			errMsg: "document root",
		},
		{
			name:   "bad value type",
			schema: "properties:\n  a:\n    x-flatten-arrays: 3\n",
			data:   map[string]any{},
			errMsg: "expected string or boolean",
		},
		{
			name:   "bad path",
			schema: "properties:\n  a:\n    x-flatten-arrays: \"b..c\"\n",
			data:   map[string]any{},
			errMsg: "empty segment",
		},
		{
			name:   "not an object on the way",
			schema: "properties:\n  a:\n    x-flatten-arrays: b\n",
			data:   map[string]any{"a": "text"},
			errMsg: "not an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlattenArrays().Apply(tt.data, mustSchema(t, tt.schema))
			require.Error(t, err)
			require.ErrorIs(t, err, directive.ErrProcessingFailed)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFlattenArrays_NotObjectIsPathError(t *testing.T) {
	root := mustSchema(t, "properties:\n  a:\n    x-flatten-arrays: b\n")

	_, err := NewFlattenArrays().Apply(map[string]any{"a": 1}, root)

	var perr *tree.PathError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "b", perr.Segment)
}
