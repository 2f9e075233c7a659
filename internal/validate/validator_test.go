package validate

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontmatter-transform/internal/diagnostic"
	"frontmatter-transform/internal/schema"
)

const postSchema = `
type: object
required: [title, date, tags]
additionalProperties: false
properties:
  title:
    type: string
    minLength: 3
    maxLength: 20
    pattern: "^[A-Z]"
  date:
    type: string
    pattern: "^\\d{4}-\\d{2}-\\d{2}$"
  draft:
    type: boolean
  priority:
    type: integer
    minimum: 1
    maximum: 5
  status:
    enum: [draft, review, published]
  kind:
    const: post
  tags:
    type: array
    minItems: 1
    maxItems: 3
    items:
      type: string
  author:
    type: object
    required: [name]
    properties:
      name: {type: string}
      email: {type: [string, "null"]}
`

func mustSchema(t *testing.T, src string) *schema.Node {
	t.Helper()

	n, err := schema.Parse([]byte(src))
	require.NoError(t, err)

	return n
}

func validPost() map[string]any {
	return map[string]any{
		"title":    "Hello",
		"date":     "2024-05-01",
		"draft":    false,
		"priority": 3,
		"status":   "review",
		"kind":     "post",
		"tags":     []any{"go", "yaml"},
		"author":   map[string]any{"name": "Ana", "email": nil},
	}
}

func rules(ds []diagnostic.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path + ":" + d.Rule
	}

	return out
}

func TestValidate_ValidInstance(t *testing.T) {
	res, err := Validate(validPost(), mustSchema(t, postSchema))
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Empty(t, res.Warnings)
	require.NoError(t, res.Err())
}

func TestValidate_OneMissingRequiredField(t *testing.T) {
	root := mustSchema(t, postSchema)

	for _, field := range []string{"title", "date", "tags"} {
		t.Run(field, func(t *testing.T) {
			data := validPost()
			delete(data, field)

			res, err := Validate(data, root)
			require.NoError(t, err)

			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1, spew.Sdump(res.Errors))
			assert.Equal(t, field, res.Errors[0].Path)
			assert.Equal(t, "required", res.Errors[0].Rule)
		})
	}

	data := validPost()
	delete(data["author"].(map[string]any), "name")

	res, err := Validate(data, root)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "author.name", res.Errors[0].Path)
}

func TestValidate_AccumulatesEveryRule(t *testing.T) {
	data := map[string]any{
		"title":    "hi",
		"date":     "yesterday",
		"draft":    "no",
		"priority": 9,
		"status":   "archived",
		"kind":     "page",
		"tags":     []any{"a", 2, "c", "d"},
		"author":   map[string]any{},
	}

	res, err := Validate(data, mustSchema(t, postSchema))
	require.NoError(t, err)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"author.name:required",
		"date:pattern",
		"draft:type",
		"kind:const",
		"priority:maximum",
		"status:enum",
		"tags:maxItems",
		"tags[1]:type",
		"title:pattern",
		"title:minLength",
	}, rules(res.Errors), spew.Sdump(res.Errors))
}

func TestValidate_TypeMismatchStopsSubtreeOnly(t *testing.T) {
	root := mustSchema(t, `
type: object
properties:
  meta:
    type: object
    required: [a, b]
  count:
    type: integer
    minimum: 10
`)

	res, err := Validate(map[string]any{"meta": "oops", "count": 2.5}, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"count:type", "meta:type"}, rules(res.Errors))
	assert.Equal(t, "oops", res.Errors[1].Value)
	assert.Equal(t, "expected object, got string", res.Errors[1].Message)
}

func TestValidate_RootType(t *testing.T) {
	res, err := Validate([]any{1}, mustSchema(t, "type: object\n"))
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Empty(t, res.Errors[0].Path)
	assert.Equal(t, "type", res.Errors[0].Rule)
}

func TestValidate_NumbersCompareByValue(t *testing.T) {
	root := mustSchema(t, `
properties:
  level: {enum: [1, 2, 3]}
  ratio: {type: integer}
  version: {const: 2}
`)

	res, err := Validate(map[string]any{"level": 2.0, "ratio": int64(4), "version": uint8(2)}, root)
	require.NoError(t, err)
	assert.True(t, res.Valid, spew.Sdump(res.Errors))
}

func TestValidate_StringLengthCountsRunes(t *testing.T) {
	root := mustSchema(t, "type: string\nmaxLength: 3\n")

	res, err := Validate("日本語", root)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = Validate("日本語!", root)
	require.NoError(t, err)
	assert.Equal(t, []string{":maxLength"}, rules(res.Errors))
}

func TestValidate_AdditionalPropertiesWarnings(t *testing.T) {
	data := validPost()
	data["titel"] = "typo"
	data["zzz"] = 1

	res, err := Validate(data, mustSchema(t, postSchema))
	require.NoError(t, err)

	assert.True(t, res.Valid, "undeclared keys are warnings")
	require.Len(t, res.Warnings, 2)

	assert.Equal(t, "titel", res.Warnings[0].Path)
	assert.Equal(t, "additionalProperties", res.Warnings[0].Rule)
	assert.Equal(t, "title", res.Warnings[0].Suggestion)

	assert.Equal(t, "zzz", res.Warnings[1].Path)
	assert.Empty(t, res.Warnings[1].Suggestion)
}

func TestValidate_AdditionalPropertiesOnlyWhenExplicitlyFalse(t *testing.T) {
	for _, src := range []string{
		"properties:\n  a: {}\n",
		"additionalProperties: true\nproperties:\n  a: {}\n",
		"additionalProperties: {type: string}\nproperties:\n  a: {}\n",
	} {
		res, err := Validate(map[string]any{"a": 1, "b": 2}, mustSchema(t, src))
		require.NoError(t, err)
		assert.Empty(t, res.Warnings, src)
	}
}

func TestValidate_InvalidPatternIsHardFailure(t *testing.T) {
	root := mustSchema(t, "properties:\n  a:\n    pattern: \"([a-z\"\n")

	_, err := Validate(map[string]any{"a": "x"}, root)
	require.ErrorIs(t, err, ErrInvalidPattern)
	assert.Contains(t, err.Error(), "at a")
}

func TestValidate_MaxDepth(t *testing.T) {
	root := mustSchema(t, "items:\n  items:\n    items: {type: string}\n")
	data := []any{[]any{[]any{"deep"}}}

	res, err := New(WithMaxDepth(1)).Validate(data, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"[0][0]:maxDepth"}, rules(res.Errors))

	res, err = New().Validate(data, root)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateWithRefs(t *testing.T) {
	root := mustSchema(t, `
definitions:
  Tag:
    type: string
    minLength: 2
$defs:
  Author:
    type: object
    required: [name]
    properties:
      name: {type: string}
properties:
  tags:
    type: array
    items: {$ref: "#/definitions/Tag"}
  author: {$ref: "#/$defs/Author"}
`)

	res, err := ValidateWithRefs(map[string]any{
		"tags":   []any{"go", "x"},
		"author": map[string]any{},
	}, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"author.name:required", "tags[1]:minLength"}, rules(res.Errors))

	// Without resolution the references constrain nothing.
	res, err = Validate(map[string]any{"tags": []any{"x"}, "author": map[string]any{}}, root)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateWithRefs_RecursiveDefinition(t *testing.T) {
	root := mustSchema(t, `
definitions:
  Section:
    type: object
    required: [title]
    properties:
      title: {type: string}
      children:
        type: array
        items: {$ref: "#/definitions/Section"}
properties:
  toc: {$ref: "#/definitions/Section"}
`)

	data := map[string]any{"toc": map[string]any{
		"title": "root",
		"children": []any{
			map[string]any{"title": "a", "children": []any{
				map[string]any{"children": []any{}},
			}},
		},
	}}

	res, err := ValidateWithRefs(data, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"toc.children[0].children[0].title:required"}, rules(res.Errors))
}

func TestValidateWithRefs_CyclicChainIsHardFailure(t *testing.T) {
	root := mustSchema(t, `
definitions:
  A: {$ref: "#/definitions/B"}
  B: {$ref: "#/definitions/A"}
properties:
  x: {$ref: "#/definitions/A"}
`)

	_, err := ValidateWithRefs(map[string]any{"x": 1}, root)
	require.ErrorIs(t, err, ErrCyclicReference)
}

func TestValidateWithRefs_UnknownReference(t *testing.T) {
	root := mustSchema(t, "properties:\n  x: {$ref: \"#/definitions/Nope\"}\n")

	res, err := ValidateWithRefs(map[string]any{"x": 1}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"x:$ref"}, rules(res.Errors))
}

func TestResult_Merge(t *testing.T) {
	var total Result

	a, err := Validate("x", mustSchema(t, "type: integer\n"))
	require.NoError(t, err)

	b, err := Validate(1, mustSchema(t, "type: integer\n"))
	require.NoError(t, err)

	total.Merge(b)
	assert.True(t, total.Valid)

	total.Merge(a)
	assert.False(t, total.Valid)
	assert.Len(t, total.Errors, 1)
	require.Error(t, total.Err())
}

func TestValidator_ValidateNode(t *testing.T) {
	root := mustSchema(t, `
definitions:
  Post:
    type: object
    required: [title]
properties:
  posts:
    type: array
    items:
      type: object
      properties:
        author: {$ref: "#/definitions/Post"}
`)

	item := root.Properties["posts"].Items

	res, err := New().ValidateNode(map[string]any{"author": map[string]any{}}, root, item)
	require.NoError(t, err)
	assert.Equal(t, []string{"author.title:required"}, rules(res.Errors))
}
