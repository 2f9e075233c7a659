package transform

import (
	"errors"
	"fmt"

	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

// MaxFlattenDepth bounds array nesting for flattening and query input.
const MaxFlattenDepth = 1024

// ErrTooDeep is returned for data nested deeper than MaxFlattenDepth.
var ErrTooDeep = errors.New("value nested too deeply")

// FlattenArrays implements the flatten-arrays directive.
//
// A string marker value T on the schema node describing data path P targets
// P.T; true targets P itself; false disables the declaration. Nodes reached
// through items address every element ("docs[].tags").
type FlattenArrays struct{}

// NewFlattenArrays returns the flatten-arrays transformer.
func NewFlattenArrays() *FlattenArrays {
	return &FlattenArrays{}
}

func (f *FlattenArrays) Kind() directive.Kind {
	return directive.KindFlattenArrays
}

// Apply flattens the value at every target path and writes it back,
// creating missing intermediate objects.
func (f *FlattenArrays) Apply(data any, root *schema.Node) (any, error) {
	targets, err := f.Targets(root)
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		return data, nil
	}

	out := tree.Clone(data)

	for _, target := range targets {
		out, err = tree.Update(out, target, func(v any, _ bool) (any, bool, error) {
			flat, err := Flatten(v)
			return flat, err == nil, err
		})
		if err != nil {
			return nil, directive.ProcessingFailed(directive.KindFlattenArrays, target.String(), err)
		}
	}

	return out, nil
}

// Targets returns the data paths flattened for root, in schema walk order.
func (f *FlattenArrays) Targets(root *schema.Node) ([]tree.Path, error) {
	decls, err := collect(root, directive.KindFlattenArrays)
	if err != nil {
		return nil, err
	}

	var out []tree.Path

	for _, d := range decls {
		target, ok, err := flattenTarget(d)
		if err != nil {
			return nil, &directive.Error{
				Kind:      directive.ErrorProcessingFailed,
				Directive: directive.KindFlattenArrays,
				Path:      d.Path.String(),
				Err:       err,
			}
		}

		if ok {
			out = append(out, target)
		}
	}

	return out, nil
}

func flattenTarget(d annotation) (tree.Path, bool, error) {
	switch v := d.Value.(type) {
	case bool:
		if !v {
			return tree.Path{}, false, nil
		}

		if d.Path.IsRoot() {
			return tree.Path{}, false, errors.New("x-flatten-arrays: true needs a property, not the document root")
		}

		return d.Path, true, nil
	case string:
		rel, err := tree.ParsePath(v)
		if err != nil {
			return tree.Path{}, false, fmt.Errorf("x-flatten-arrays: %w", err)
		}

		if rel.IsRoot() {
			return tree.Path{}, false, errors.New("x-flatten-arrays: empty target path")
		}

		return d.Path.Join(rel), true, nil
	default:
		return tree.Path{}, false, fmt.Errorf("x-flatten-arrays: expected string or boolean, got %s", tree.TypeName(v))
	}
}

// Flatten returns v as one flat array: nil becomes [], a non-array value
// becomes [v] and nested arrays are flattened depth-first, left to right.
// Flatten(Flatten(v)) equals Flatten(v).
func Flatten(v any) ([]any, error) {
	if v == nil {
		return []any{}, nil
	}

	arr, ok := v.([]any)
	if !ok {
		return []any{v}, nil
	}

	out := make([]any, 0, len(arr))

	if err := flattenInto(&out, arr, 0); err != nil {
		return nil, err
	}

	return out, nil
}

func flattenInto(out *[]any, arr []any, depth int) error {
	if depth >= MaxFlattenDepth {
		return fmt.Errorf("%w: more than %d nested arrays", ErrTooDeep, MaxFlattenDepth)
	}

	for _, e := range arr {
		if inner, ok := e.([]any); ok {
			if err := flattenInto(out, inner, depth+1); err != nil {
				return err
			}

			continue
		}

		*out = append(*out, e)
	}

	return nil
}
