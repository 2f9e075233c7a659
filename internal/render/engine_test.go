package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontmatter-transform/internal/tree"
)

func newEngine(t *testing.T, s Syntax, opts ...Option) *Engine {
	t.Helper()

	e, err := NewEngine(s, opts...)
	require.NoError(t, err)

	return e
}

func TestSubstitute_EmbeddedPlaceholder(t *testing.T) {
	e := newEngine(t, Mustache)

	res, err := e.Substitute("Hello {{name}}!", map[string]any{"name": "World"})
	require.NoError(t, err)

	assert.Equal(t, "Hello World!", res.Value)
	assert.Empty(t, res.Unresolved)
}

func TestSubstitute_Syntaxes(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "Ana"}}

	tests := []struct {
		syntax Syntax
		tmpl   string
	}{
		{Mustache, "hi {{user.name}}"},
		{Mustache, "hi {{ user.name }}"},
		{Dollar, "hi ${user.name}"},
		{Percent, "hi %user.name%"},
	}

	for _, tt := range tests {
		t.Run(tt.syntax.String()+"/"+tt.tmpl, func(t *testing.T) {
			res, err := newEngine(t, tt.syntax).Substitute(tt.tmpl, data)
			require.NoError(t, err)
			assert.Equal(t, "hi Ana", res.Value)
		})
	}

	res, err := newEngine(t, Percent).Substitute("50%-60% off", data)
	require.NoError(t, err)
	assert.Equal(t, "50%-60% off", res.Value)
	assert.Empty(t, res.Unresolved)
}

func TestSubstitute_NativeValues(t *testing.T) {
	data := map[string]any{
		"count": 3,
		"tags":  []any{"a", "b"},
		"meta":  map[string]any{"draft": true},
		"none":  nil,
	}
	tmpl := map[string]any{
		"count":   "{{count}}",
		"tags":    "{{tags}}",
		"meta":    "{{meta}}",
		"first":   "{{tags.0}}",
		"summary": "{{count}} tags: {{tags}} ({{meta.draft}}){{none}}",
		"static":  42,
		"list":    []any{"{{count}}", "x{{count}}"},
	}

	res, err := newEngine(t, Mustache).Substitute(tmpl, data)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"count":   3,
		"tags":    []any{"a", "b"},
		"meta":    map[string]any{"draft": true},
		"first":   "a",
		"summary": `3 tags: ["a","b"] (true)`,
		"static":  42,
		"list":    []any{3, "x3"},
	}, res.Value, spew.Sdump(res.Value))
}

func TestSubstitute_DoesNotShareData(t *testing.T) {
	data := map[string]any{"tags": []any{"a"}}

	res, err := newEngine(t, Mustache).Substitute(map[string]any{"t": "{{tags}}"}, data)
	require.NoError(t, err)

	res.Value.(map[string]any)["t"].([]any)[0] = "changed"
	assert.Equal(t, []any{"a"}, data["tags"])
}

func TestSubstitute_Keys(t *testing.T) {
	data := map[string]any{"lang": "en", "n": 2, "obj": map[string]any{}}
	tmpl := map[string]any{
		"{{lang}}":       "{{n}}",
		"title_{{lang}}": "t",
		"{{obj}}":        "x",
	}

	res, err := newEngine(t, Mustache).Substitute(tmpl, data)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"en": 2, "title_en": "t", "{{obj}}": "x"}, res.Value)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "obj", res.Unresolved[0].Path)
}

func TestSubstitute_KeyCollision(t *testing.T) {
	data := map[string]any{"k": "a", "x": "same", "y": "same"}

	t.Run("literal key wins", func(t *testing.T) {
		res, err := newEngine(t, Mustache).Substitute(map[string]any{"{{k}}": "dyn", "a": "static"}, data)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"a": "static", "{{k}}": "dyn"}, res.Value)
		require.Len(t, res.Unresolved, 1)
		assert.Equal(t, "{{k}}", res.Unresolved[0].Raw)
		assert.Equal(t, "k", res.Unresolved[0].Path)
		assert.ErrorIs(t, res.Unresolved[0].Err, ErrKeyCollision)
	})

	t.Run("first substituted key wins", func(t *testing.T) {
		res, err := newEngine(t, Mustache).Substitute(map[string]any{"{{x}}": 1, "{{y}}": 2}, data)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"same": 1, "{{y}}": 2}, res.Value)
		require.Len(t, res.Unresolved, 1)
		assert.ErrorIs(t, res.Unresolved[0].Err, ErrKeyCollision)
	})

	t.Run("nested objects collide independently", func(t *testing.T) {
		tmpl := map[string]any{"outer": map[string]any{"{{k}}": 1, "a": 2}, "{{k}}": 3}

		res, err := newEngine(t, Mustache).Substitute(tmpl, data)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"outer": map[string]any{"a": 2, "{{k}}": 1}, "a": 3}, res.Value, spew.Sdump(res))
		require.Len(t, res.Unresolved, 1)
	})

	t.Run("strict mode fails", func(t *testing.T) {
		_, err := newEngine(t, Mustache, WithStrict(true)).Substitute(map[string]any{"{{k}}": "dyn", "a": "static"}, data)
		require.Error(t, err)

		var uerr *UnresolvedError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, []string{"k"}, uerr.Paths())
	})
}

func TestSubstitute_IndexOverflow(t *testing.T) {
	e := newEngine(t, Mustache)
	data := map[string]any{"items": []any{1, 2}}

	for _, tmpl := range []string{"{{items.9223372036854775808}}", "n={{items.99999999999999999999}}"} {
		assert.NotPanics(t, func() {
			res, err := e.Substitute(tmpl, data)
			assert.NoError(t, err)
			assert.Equal(t, tmpl, res.Value)

			if assert.Len(t, res.Unresolved, 1) {
				assert.ErrorIs(t, res.Unresolved[0].Err, tree.ErrSegmentNotFound)
			}
		})
	}
}

func TestSubstitute_Lenient(t *testing.T) {
	tmpl := map[string]any{
		"a": "{{missing}}",
		"b": "x {{missing}} {{title.deep}}",
		"c": "{{title}}",
	}

	res, err := newEngine(t, Mustache).Substitute(tmpl, map[string]any{"title": "T"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": "{{missing}}",
		"b": "x {{missing}} {{title.deep}}",
		"c": "T",
	}, res.Value)

	require.Len(t, res.Unresolved, 2, "duplicates are reported once")
	assert.Equal(t, "{{missing}}", res.Unresolved[0].Raw)
	assert.Equal(t, "title.deep", res.Unresolved[1].Path)

	assert.ErrorIs(t, res.Unresolved[0].Err, tree.ErrSegmentNotFound)
	assert.ErrorIs(t, res.Unresolved[1].Err, tree.ErrNotObject)

	var perr *tree.PathError
	require.ErrorAs(t, res.Unresolved[1].Err, &perr)
	assert.Equal(t, "deep", perr.Segment)
}

func TestSubstitute_Strict(t *testing.T) {
	e := newEngine(t, Dollar, WithStrict(true))
	assert.True(t, e.Strict())

	_, err := e.Substitute([]any{"${a}", "${b.c}", "${a}"}, map[string]any{"b": 1})
	require.Error(t, err)

	var uerr *UnresolvedError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, []string{"a", "b.c"}, uerr.Paths())
	assert.Contains(t, err.Error(), "unresolved placeholders: ${a}")

	res, err := e.Substitute("${b}", map[string]any{"b": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value)
}

func TestSubstitute_RoundTripLeavesNoPlaceholders(t *testing.T) {
	e := newEngine(t, Mustache)
	data := map[string]any{
		"title": "Post",
		"meta":  map[string]any{"author": "Ana", "tags": []any{"x"}},
		"items": []any{map[string]any{"id": 7}},
	}
	tmpl := map[string]any{
		"heading":     "# {{title}}",
		"{{title}}":   "{{meta.author}}",
		"tags":        "{{meta.tags}}",
		"first":       []any{"{{items.0.id}}", "by {{meta.author}}"},
		"nested":      map[string]any{"x": "{{meta}}"},
		"unrelated":   true,
		"description": "plain text",
	}

	require.NotEmpty(t, e.Placeholders(tmpl))

	res, err := e.Substitute(tmpl, data)
	require.NoError(t, err)
	assert.Empty(t, res.Unresolved)
	assert.Empty(t, e.Placeholders(res.Value), spew.Sdump(res.Value))
}

func TestPlaceholders(t *testing.T) {
	e := newEngine(t, Mustache)

	got := e.Placeholders(map[string]any{
		"b":         []any{"{{x}} and {{ y.z }}", "{{x}}"},
		"a":         "{{w}}",
		"{{k}}":     1,
		"{@items}":  "not a placeholder",
		"unrelated": "${x}",
	})

	assert.Equal(t, []Placeholder{
		{Raw: "{{w}}", Path: "w"},
		{Raw: "{{x}}", Path: "x"},
		{Raw: "{{ y.z }}", Path: "y.z"},
		{Raw: "{{k}}", Path: "k"},
	}, got)
}

func TestRender(t *testing.T) {
	e := newEngine(t, Mustache)

	tmpl := map[string]any{
		"title": "{{title}}",
		"items": []any{ItemsMarker},
		"count": "{{count}} docs",
	}
	items := []any{map[string]any{"id": 1}, map[string]any{"id": 2}}

	res, err := e.Render(tmpl, map[string]any{"title": "Index", "count": 2}, items)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"title": "Index",
		"items": items,
		"count": "2 docs",
	}, res.Value)

	res, err = e.Render(tmpl, map[string]any{"title": "Index", "count": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{ItemsMarker}, res.Value.(map[string]any)["items"])
}

func TestNewEngine_UnknownSyntax(t *testing.T) {
	_, err := NewEngine(Syntax(0))
	require.Error(t, err)
}

func TestParseSyntax(t *testing.T) {
	for in, want := range map[string]Syntax{
		"mustache": Mustache, "{{}}": Mustache,
		"Dollar": Dollar, "${}": Dollar,
		"percent": Percent, "%%": Percent,
	} {
		got, ok := ParseSyntax(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseSyntax("jinja")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Syntax(9).String())
}

func ExampleEngine_Substitute() {
	e, _ := NewEngine(Mustache)

	res, _ := e.Substitute(map[string]any{
		"title": "{{title}}",
		"count": "{{tags}}",
		"text":  "{{title}} has {{missing}}",
	}, map[string]any{"title": "Post", "tags": []any{"a", "b"}})

	fmt.Println(res.Value.(map[string]any)["text"])
	fmt.Println(res.Value.(map[string]any)["count"])
	fmt.Println(res.Unresolved[0].Raw)
	// Output:
	// Post has {{missing}}
	// [a b]
	// {{missing}}
}
