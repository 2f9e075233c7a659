package aggregate

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"frontmatter-transform/internal/tree"
)

// ErrEmptyInput is returned when there is nothing to aggregate.
var ErrEmptyInput = errors.New("no documents to aggregate")

// AggregatedStructure is the result of Aggregate.
type AggregatedStructure struct {
	Structure         map[string]any
	Strategy          Strategy
	TemplateStructure *TemplateStructure
	// Skipped lists the indices of documents that were not objects.
	Skipped []int
}

// Aggregate merges docs according to template's shape:
//   - array fields concatenate every document's value in order, flattening
//     one level of nested arrays, whatever the strategy;
//   - scalar fields take the last present value under ReplaceValues and the
//     first present value otherwise;
//   - nested objects are merged recursively.
//
// Under AccumulateFields keys the template does not mention are carried as
// well: arrays concatenate, other values keep the first one seen.
//
// Documents that are not objects are skipped. docs is not modified.
func Aggregate(docs []any, template map[string]any, strategy Strategy) (*AggregatedStructure, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}

	if !strategy.IsValid() {
		return nil, fmt.Errorf("unknown aggregation strategy %d", int(strategy))
	}

	ts := Analyze(template)
	res := &AggregatedStructure{Strategy: strategy, TemplateStructure: ts}

	objects := make([]map[string]any, 0, len(docs))

	for i, d := range docs {
		m, ok := d.(map[string]any)
		if !ok {
			res.Skipped = append(res.Skipped, i)
			continue
		}

		objects = append(objects, m)
	}

	res.Structure = merge(objects, ts, strategy)

	return res, nil
}

func merge(docs []map[string]any, ts *TemplateStructure, strategy Strategy) map[string]any {
	out := map[string]any{}

	for _, k := range ts.ArrayFields {
		acc := []any{}
		for _, d := range docs {
			acc = appendValue(acc, d[k])
		}

		out[k] = acc
	}

	for _, k := range ts.ScalarFields {
		if v, ok := pickScalar(docs, k, strategy); ok {
			out[k] = v
		}
	}

	for _, k := range slices.Sorted(maps.Keys(ts.Nested)) {
		var nested []map[string]any

		for _, d := range docs {
			if m, ok := d[k].(map[string]any); ok {
				nested = append(nested, m)
			}
		}

		if len(nested) > 0 {
			out[k] = merge(nested, ts.Nested[k], strategy)
		}
	}

	if strategy == AccumulateFields {
		accumulateExtra(out, docs, ts)
	}

	return out
}

// appendValue appends v to acc: array elements one by one, with nested
// arrays flattened one level; nil adds nothing.
func appendValue(acc []any, v any) []any {
	switch t := v.(type) {
	case nil:
		return acc
	case []any:
		for _, e := range t {
			if inner, ok := e.([]any); ok {
				for _, x := range inner {
					acc = append(acc, tree.Clone(x))
				}

				continue
			}

			acc = append(acc, tree.Clone(e))
		}

		return acc
	default:
		return append(acc, tree.Clone(v))
	}
}

func pickScalar(docs []map[string]any, key string, strategy Strategy) (any, bool) {
	var (
		found bool
		value any
	)

	for _, d := range docs {
		v, ok := d[key]
		if !ok {
			continue
		}

		if found && strategy != ReplaceValues {
			break
		}

		found, value = true, v
	}

	return tree.Clone(value), found
}

func accumulateExtra(out map[string]any, docs []map[string]any, ts *TemplateStructure) {
	for _, d := range docs {
		for _, k := range slices.Sorted(maps.Keys(d)) {
			if ts.Declares(k) {
				continue
			}

			v := d[k]

			existing, seen := out[k]
			if !seen {
				if arr, ok := v.([]any); ok {
					out[k] = appendValue([]any{}, arr)
				} else {
					out[k] = tree.Clone(v)
				}

				continue
			}

			if acc, ok := existing.([]any); ok {
				if _, ok := v.([]any); ok {
					out[k] = appendValue(acc, v)
				}
			}
		}
	}
}
