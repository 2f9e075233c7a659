package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"frontmatter-transform/internal/diagnostic"
	"frontmatter-transform/internal/match"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

// DefaultMaxDepth bounds how deep into the data validation descends.
const DefaultMaxDepth = 256

// Option configures a Validator.
type Option func(*Validator)

// WithMaxDepth sets the data depth past which nested values are reported
// instead of validated. n <= 0 keeps the default.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// Validator validates data against schema nodes. It is safe for concurrent
// use; compiled patterns are shared.
type Validator struct {
	maxDepth int

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New returns a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		maxDepth: DefaultMaxDepth,
		patterns: map[string]*regexp.Regexp{},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

var defaultValidator = New()

// Validate checks data against node with a default Validator.
func Validate(data any, node *schema.Node) (Result, error) {
	return defaultValidator.Validate(data, node)
}

// ValidateWithRefs checks data against root, resolving local references,
// with a default Validator.
func ValidateWithRefs(data any, root *schema.Node) (Result, error) {
	return defaultValidator.ValidateWithRefs(data, root)
}

// Validate checks data against node. "$ref" keywords are not followed.
func (v *Validator) Validate(data any, node *schema.Node) (Result, error) {
	w := &walker{v: v}
	if err := w.node(data, node, "", 0, nil); err != nil {
		return Result{}, err
	}

	return newResult(w.diags), nil
}

// ValidateWithRefs expands the local references of root, then validates
// data against it. References left by the expansion (recursive ones) are
// followed on demand, one data level at a time.
func (v *Validator) ValidateWithRefs(data any, root *schema.Node) (Result, error) {
	w := &walker{v: v, refs: root}
	if err := w.node(data, schema.ResolveRefs(root), "", 0, nil); err != nil {
		return Result{}, err
	}

	return newResult(w.diags), nil
}

// ValidateNode checks data against node, a subschema of root. References
// are looked up in root and followed on demand.
func (v *Validator) ValidateNode(data any, root, node *schema.Node) (Result, error) {
	w := &walker{v: v, refs: root}
	if err := w.node(data, node, "", 0, nil); err != nil {
		return Result{}, err
	}

	return newResult(w.diags), nil
}

type walker struct {
	v     *Validator
	refs  *schema.Node
	diags diagnostic.Diagnostics
}

// node validates data against n. chain lists the references followed since
// the last data level was entered.
func (w *walker) node(data any, n *schema.Node, path string, depth int, chain []string) error {
	if n == nil {
		return nil
	}

	if depth > w.v.maxDepth {
		w.diags.AddError("maxDepth", fmt.Sprintf("value nested deeper than %d levels", w.v.maxDepth), path, nil)
		return nil
	}

	if n.Ref != "" && w.refs != nil {
		if err := w.ref(data, n.Ref, path, depth, chain); err != nil {
			return err
		}
	}

	if !w.checkType(data, n, path) {
		return nil
	}

	w.checkEquality(data, n, path)

	switch t := data.(type) {
	case string:
		return w.checkString(t, n, path)
	case []any:
		return w.checkArray(t, n, path, depth)
	case map[string]any:
		return w.checkObject(t, n, path, depth)
	default:
		if f, ok := tree.AsFloat(data); ok {
			w.checkNumber(f, n, path)
		}
	}

	return nil
}

func (w *walker) ref(data any, ref, path string, depth int, chain []string) error {
	if slices.Contains(chain, ref) {
		return fmt.Errorf("%w at %s: %s", ErrCyclicReference, displayPath(path),
			strings.Join(append(chain, ref), " -> "))
	}

	def, ok := w.refs.LookupRef(ref)
	if !ok {
		w.diags.AddError("$ref", fmt.Sprintf("unresolved reference %q", ref), path, nil)
		return nil
	}

	return w.node(data, def, path, depth, append(slices.Clone(chain), ref))
}

func (w *walker) checkType(data any, n *schema.Node, path string) bool {
	if len(n.Types) == 0 {
		return true
	}

	for _, t := range n.Types {
		if typeMatches(data, t) {
			return true
		}
	}

	w.diags.AddError("type",
		fmt.Sprintf("expected %s, got %s", strings.Join(n.Types, " or "), tree.TypeName(data)),
		path, data)

	return false
}

func typeMatches(data any, t string) bool {
	switch t {
	case "integer":
		return tree.IsInteger(data)
	case "number":
		_, ok := tree.AsFloat(data)
		return ok
	default:
		return tree.TypeName(data) == t
	}
}

func (w *walker) checkEquality(data any, n *schema.Node, path string) {
	if n.Enum != nil && !slices.ContainsFunc(n.Enum, func(e any) bool { return tree.Equal(data, e) }) {
		allowed, _ := tree.Text(n.Enum)
		w.diags.AddError("enum", "value must be one of "+allowed, path, data)
	}

	if n.HasConst && !tree.Equal(data, n.Const) {
		want, _ := tree.Text(n.Const)
		w.diags.AddError("const", "value must equal "+want, path, data)
	}
}

func (w *walker) checkString(s string, n *schema.Node, path string) error {
	if n.Pattern != "" {
		re, err := w.v.compile(n.Pattern)
		if err != nil {
			return fmt.Errorf("%w %q at %s: %w", ErrInvalidPattern, n.Pattern, displayPath(path), err)
		}

		if !re.MatchString(s) {
			w.diags.AddError("pattern", fmt.Sprintf("value does not match pattern %q", n.Pattern), path, s)
		}
	}

	length := utf8.RuneCountInString(s)

	if n.MinLength != nil && length < *n.MinLength {
		w.diags.AddError("minLength",
			fmt.Sprintf("length %d is less than minLength %d", length, *n.MinLength), path, s)
	}

	if n.MaxLength != nil && length > *n.MaxLength {
		w.diags.AddError("maxLength",
			fmt.Sprintf("length %d is greater than maxLength %d", length, *n.MaxLength), path, s)
	}

	return nil
}

func (w *walker) checkNumber(f float64, n *schema.Node, path string) {
	if n.Minimum != nil && f < *n.Minimum {
		w.diags.AddError("minimum",
			fmt.Sprintf("value %s is less than minimum %s", formatFloat(f), formatFloat(*n.Minimum)), path, f)
	}

	if n.Maximum != nil && f > *n.Maximum {
		w.diags.AddError("maximum",
			fmt.Sprintf("value %s is greater than maximum %s", formatFloat(f), formatFloat(*n.Maximum)), path, f)
	}
}

func (w *walker) checkArray(arr []any, n *schema.Node, path string, depth int) error {
	if n.MinItems != nil && len(arr) < *n.MinItems {
		w.diags.AddError("minItems",
			fmt.Sprintf("array has %d items, fewer than minItems %d", len(arr), *n.MinItems), path, len(arr))
	}

	if n.MaxItems != nil && len(arr) > *n.MaxItems {
		w.diags.AddError("maxItems",
			fmt.Sprintf("array has %d items, more than maxItems %d", len(arr), *n.MaxItems), path, len(arr))
	}

	if n.Items == nil {
		return nil
	}

	for i, e := range arr {
		if err := w.node(e, n.Items, indexPath(path, i), depth+1, nil); err != nil {
			return err
		}
	}

	return nil
}

func (w *walker) checkObject(obj map[string]any, n *schema.Node, path string, depth int) error {
	for _, key := range n.Required {
		if _, ok := obj[key]; !ok {
			w.diags.AddError("required", fmt.Sprintf("missing required property %q", key), keyPath(path, key), nil)
		}
	}

	declared := n.PropertyNames()

	for _, key := range declared {
		val, ok := obj[key]
		if !ok {
			continue
		}

		if err := w.node(val, n.Properties[key], keyPath(path, key), depth+1, nil); err != nil {
			return err
		}
	}

	if !n.ForbidsAdditional() {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		if _, ok := n.Properties[k]; !ok {
			keys = append(keys, k)
		}
	}

	slices.Sort(keys)

	for _, k := range keys {
		suggestion, _ := match.Suggest(k, declared)
		w.diags.AddWarning("additionalProperties", fmt.Sprintf("property %q is not declared", k), keyPath(path, k), suggestion)
	}

	return nil
}

func (v *Validator) compile(pattern string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if re, ok := v.patterns[pattern]; ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	v.patterns[pattern] = re

	return re, nil
}

func keyPath(parent, key string) string {
	if parent == "" {
		return key
	}

	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func displayPath(path string) string {
	if path == "" {
		return "document root"
	}

	return path
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
