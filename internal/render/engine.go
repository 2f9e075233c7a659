package render

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"frontmatter-transform/internal/common"
	"frontmatter-transform/internal/tree"
)

// Option configures an Engine.
type Option func(*Engine)

// WithStrict makes unresolved placeholders fail Substitute and Render.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// Engine substitutes placeholders of one syntax.
type Engine struct {
	syntax Syntax
	re     *regexp.Regexp
	strict bool
}

// NewEngine returns an engine for syntax s. Engines are lenient unless
// WithStrict(true) is given.
func NewEngine(s Syntax, opts ...Option) (*Engine, error) {
	re, ok := syntaxPatterns[s]
	if !ok {
		return nil, fmt.Errorf("unknown placeholder syntax %d", int(s))
	}

	e := &Engine{syntax: s, re: re}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Syntax returns the engine's placeholder syntax.
func (e *Engine) Syntax() Syntax {
	return e.syntax
}

// Strict reports whether unresolved placeholders are failures.
func (e *Engine) Strict() bool {
	return e.strict
}

// ErrKeyCollision is recorded when an object key placeholder resolves to a
// key the object already holds. The key is left unsubstituted.
var ErrKeyCollision = errors.New("substituted key already exists")

// Result is the outcome of a substitution.
type Result struct {
	// Value is the substituted tree.
	Value any
	// Unresolved lists placeholders that could not be resolved, once each,
	// in encounter order.
	Unresolved []Unresolved
}

// Unresolved is a placeholder that survived substitution.
type Unresolved struct {
	Placeholder
	// Err says why: a *tree.PathError, or a reason the value could not be used.
	Err error
}

// Substitute replaces every placeholder of tmpl with values from data.
// Object keys are visited in sorted order.
//
// In lenient mode unresolved placeholders stay in place and are listed in the
// result. In strict mode they make Substitute return an *UnresolvedError.
func (e *Engine) Substitute(tmpl, data any) (Result, error) {
	s := &substitution{e: e, data: data, seen: map[string]bool{}}

	out, err := s.value(tmpl)
	if err != nil {
		return Result{}, err
	}

	res := Result{Value: out, Unresolved: s.unresolved}

	if e.strict && len(res.Unresolved) > 0 {
		return Result{}, &UnresolvedError{Unresolved: res.Unresolved}
	}

	return res, nil
}

// Placeholders returns the placeholders of tmpl, once each, in encounter
// order. Object keys are visited in sorted order and keys before values.
func (e *Engine) Placeholders(tmpl any) []Placeholder {
	var out []Placeholder

	seen := map[string]bool{}
	add := func(s string) {
		for _, p := range e.find(s) {
			if !seen[p.Raw] {
				seen[p.Raw] = true
				out = append(out, p)
			}
		}
	}

	var walk func(v any)

	walk = func(v any) {
		switch t := v.(type) {
		case string:
			add(t)
		case []any:
			for _, x := range t {
				walk(x)
			}
		case map[string]any:
			for _, k := range sortedKeys(t) {
				add(k)
				walk(t[k])
			}
		}
	}

	walk(tmpl)

	return out
}

func (e *Engine) find(s string) []Placeholder {
	matches := e.re.FindAllStringSubmatch(s, -1)

	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		out = append(out, Placeholder{Raw: m[0], Path: m[1]})
	}

	return out
}

// Render substitutes data into tmpl, then expands the {@items} marker with
// items. A nil items leaves markers in place.
func (e *Engine) Render(tmpl, data any, items []any) (Result, error) {
	res, err := e.Substitute(tmpl, data)
	if err != nil {
		return Result{}, err
	}

	if items == nil {
		return res, nil
	}

	res.Value, err = ExpandTree(res.Value, items)
	if err != nil {
		return Result{}, err
	}

	return res, nil
}

type substitution struct {
	e          *Engine
	data       any
	seen       map[string]bool
	unresolved []Unresolved
}

func (s *substitution) value(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return s.text(t, false)
	case []any:
		out := make([]any, len(t))

		for i, x := range t {
			nv, err := s.value(x)
			if err != nil {
				return nil, err
			}

			out[i] = nv
		}

		return out, nil
	case map[string]any:
		keys, err := s.keys(t)
		if err != nil {
			return nil, err
		}

		out := make(map[string]any, len(t))

		for _, k := range sortedKeys(t) {
			nv, err := s.value(t[k])
			if err != nil {
				return nil, err
			}

			out[keys[k]] = nv
		}

		return out, nil
	default:
		return v, nil
	}
}

// keys maps every key of m to its substituted form. Literal keys win over
// substituted ones; among substituted keys the first in sorted order wins.
// A losing key stays as written and is recorded with ErrKeyCollision.
func (s *substitution) keys(m map[string]any) (map[string]string, error) {
	sorted := sortedKeys(m)
	out := make(map[string]string, len(m))
	taken := make(map[string]bool, len(m))

	for _, k := range sorted {
		nk, err := s.key(k)
		if err != nil {
			return nil, err
		}

		out[k] = nk

		if nk == k {
			taken[k] = true
		}
	}

	for _, k := range sorted {
		nk := out[k]
		if nk == k {
			continue
		}

		if taken[nk] {
			s.collide(k, nk)
			out[k] = k

			continue
		}

		taken[nk] = true
	}

	return out, nil
}

func (s *substitution) collide(key, target string) {
	p := Placeholder{Raw: key}
	if found := s.e.find(key); len(found) > 0 {
		p.Path = found[0].Path
	}

	s.miss(p, fmt.Errorf("%w: %q", ErrKeyCollision, target))
}

func (s *substitution) key(k string) (string, error) {
	v, err := s.text(k, true)
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// text substitutes the placeholders of str. A str that is exactly one
// placeholder takes the value itself unless asKey is set, in which case only
// scalars are accepted.
func (s *substitution) text(str string, asKey bool) (any, error) {
	locs := s.e.re.FindAllStringSubmatchIndex(str, -1)
	if len(locs) == 0 {
		return str, nil
	}

	if len(locs) == 1 && locs[0][0] == 0 && locs[0][1] == len(str) {
		p := Placeholder{Raw: str, Path: str[locs[0][2]:locs[0][3]]}

		v, err := tree.Lookup(s.data, p.Path)
		if err != nil {
			s.miss(p, err)
			return str, nil
		}

		if !asKey {
			return tree.Clone(v), nil
		}

		if !tree.IsScalar(v) {
			s.miss(p, fmt.Errorf("%s is %s, not usable as a key", p.Path, tree.TypeName(v)))
			return str, nil
		}

		return tree.FormatScalar(v), nil
	}

	var b strings.Builder

	last := 0

	for _, loc := range locs {
		b.WriteString(str[last:loc[0]])
		last = loc[1]

		p := Placeholder{Raw: str[loc[0]:loc[1]], Path: str[loc[2]:loc[3]]}

		v, err := tree.Lookup(s.data, p.Path)
		if err != nil {
			s.miss(p, err)
			b.WriteString(p.Raw)

			continue
		}

		text, err := tree.Text(v)
		if err != nil {
			return nil, fmt.Errorf("placeholder %s: %w", p.Raw, err)
		}

		b.WriteString(text)
	}

	b.WriteString(str[last:])

	return b.String(), nil
}

func (s *substitution) miss(p Placeholder, err error) {
	if s.seen[p.Raw] {
		return
	}

	s.seen[p.Raw] = true
	s.unresolved = append(s.unresolved, Unresolved{Placeholder: p, Err: err})
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// UnresolvedError is returned in strict mode when placeholders remain.
type UnresolvedError struct {
	Unresolved []Unresolved
}

func (e *UnresolvedError) Error() string {
	parts := make([]string, len(e.Unresolved))
	for i, u := range e.Unresolved {
		parts[i] = fmt.Sprintf("%s (%v)", u.Raw, u.Err)
	}

	return "unresolved placeholders: " + strings.Join(parts, ", ")
}

// Paths returns the data paths of the unresolved placeholders.
func (e *UnresolvedError) Paths() []string {
	out := make([]string, 0, len(e.Unresolved))
	for _, u := range e.Unresolved {
		out = common.AppendUnique(out, u.Path)
	}

	return out
}
