package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"

	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

// DefaultFilterPrefix is the projection prepended to every filter expression.
// It selects the "traceability" list of each element of the filtered array.
const DefaultFilterPrefix = "[].traceability"

// FilterOptions configures the jmespath-filter transformer.
type FilterOptions struct {
	// Prefix is prepended to every expression. Empty evaluates expressions
	// as written.
	Prefix string
}

// DefaultFilterOptions returns options using DefaultFilterPrefix.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{Prefix: DefaultFilterPrefix}
}

// JMESPathFilter implements the jmespath-filter directive: the value at the
// declaring node's data path is replaced by the result of the expression.
type JMESPathFilter struct {
	opts FilterOptions
}

// NewJMESPathFilter returns the jmespath-filter transformer.
func NewJMESPathFilter(opts FilterOptions) *JMESPathFilter {
	return &JMESPathFilter{opts: opts}
}

func (f *JMESPathFilter) Kind() directive.Kind {
	return directive.KindJMESPathFilter
}

// Query returns the expression evaluated for a declared expression.
func (f *JMESPathFilter) Query(expr string) string {
	prefix := f.opts.Prefix
	if prefix == "" {
		return expr
	}

	if strings.HasPrefix(expr, "[") || strings.HasPrefix(expr, ".") || strings.HasPrefix(expr, "|") {
		return prefix + expr
	}

	return prefix + "." + expr
}

type filterTarget struct {
	path  tree.Path
	expr  string
	query *jmespath.JMESPath
}

// Apply evaluates every declared expression. Paths holding no value are left
// alone.
func (f *JMESPathFilter) Apply(data any, root *schema.Node) (any, error) {
	targets, err := f.targets(root)
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		return data, nil
	}

	out := tree.Clone(data)

	for _, t := range targets {
		out, err = tree.Update(out, t.path, func(v any, found bool) (any, bool, error) {
			if !found || v == nil {
				return nil, false, nil
			}

			res, err := evaluate(t.query, v)
			if err != nil {
				return nil, false, fmt.Errorf("expression %q: %w", t.expr, err)
			}

			return res, true, nil
		})
		if err != nil {
			return nil, directive.ProcessingFailed(directive.KindJMESPathFilter, t.path.String(), err)
		}
	}

	return out, nil
}

func (f *JMESPathFilter) targets(root *schema.Node) ([]filterTarget, error) {
	decls, err := collect(root, directive.KindJMESPathFilter)
	if err != nil {
		return nil, err
	}

	out := make([]filterTarget, 0, len(decls))

	for _, d := range decls {
		fail := func(err error) error {
			return directive.ProcessingFailed(directive.KindJMESPathFilter, d.Path.String(), err)
		}

		expr, ok := d.Value.(string)
		if !ok || strings.TrimSpace(expr) == "" {
			return nil, fail(fmt.Errorf("x-jmespath-filter: expected a non-empty expression, got %s", tree.TypeName(d.Value)))
		}

		if d.Path.IsRoot() {
			return nil, fail(fmt.Errorf("x-jmespath-filter %q: needs a property, not the document root", expr))
		}

		query, err := jmespath.Compile(f.Query(expr))
		if err != nil {
			return nil, fail(fmt.Errorf("expression %q: %w", expr, err))
		}

		out = append(out, filterTarget{path: d.Path, expr: expr, query: query})
	}

	return out, nil
}

func evaluate(query *jmespath.JMESPath, v any) (any, error) {
	if depth(v, 0) > MaxFlattenDepth {
		return nil, fmt.Errorf("%w: query input exceeds %d levels", ErrTooDeep, MaxFlattenDepth)
	}

	input, err := tree.ToJSONCompatible(v)
	if err != nil {
		return nil, err
	}

	res, err := query.Search(input)
	if err != nil {
		return nil, errors.Join(errors.New("evaluation failed"), err)
	}

	return flattenResult(res), nil
}

// flattenResult flattens an array of arrays one level, dropping null and
// empty entries. Other results are returned as is.
func flattenResult(res any) any {
	arr, ok := res.([]any)
	if !ok || !containsArray(arr) {
		return res
	}

	out := make([]any, 0, len(arr))

	for _, e := range arr {
		switch inner := e.(type) {
		case nil:
		case []any:
			for _, x := range inner {
				if x != nil {
					out = append(out, x)
				}
			}
		default:
			out = append(out, e)
		}
	}

	return out
}

func containsArray(arr []any) bool {
	for _, e := range arr {
		if _, ok := e.([]any); ok {
			return true
		}
	}

	return false
}

// depth returns the nesting depth of v, stopping early past MaxFlattenDepth.
func depth(v any, d int) int {
	if d > MaxFlattenDepth {
		return d
	}

	deepest := d

	switch t := v.(type) {
	case map[string]any:
		for _, e := range t {
			deepest = max(deepest, depth(e, d+1))
		}
	case []any:
		for _, e := range t {
			deepest = max(deepest, depth(e, d+1))
		}
	}

	return deepest
}
