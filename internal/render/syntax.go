package render

import (
	"regexp"
	"strings"

	"frontmatter-transform/internal/common"
)

// Syntax selects the placeholder bracket style.
type Syntax int

const (
	_ Syntax = iota // skip zero value

	// Mustache placeholders look like {{path}}.
	Mustache
	// Dollar placeholders look like ${path}.
	Dollar
	// Percent placeholders look like %path%.
	Percent
)

// pathPattern matches dot paths such as "meta.author" or "items.0.id".
const pathPattern = `[A-Za-z0-9_@-]+(?:\.[A-Za-z0-9_@-]+)*`

var syntaxPatterns = map[Syntax]*regexp.Regexp{
	Mustache: regexp.MustCompile(`\{\{\s*(` + pathPattern + `)\s*\}\}`),
	Dollar:   regexp.MustCompile(`\$\{\s*(` + pathPattern + `)\s*\}`),

	// Percent paths start with a letter so "50%-60%" is left alone.
	Percent: regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_@-]*(?:\.[A-Za-z0-9_@-]+)*)%`),
}

// String returns the syntax name.
func (s Syntax) String() string {
	switch s {
	case Mustache:
		return "mustache"
	case Dollar:
		return "dollar"
	case Percent:
		return "percent"
	default:
		return common.UnknownStr
	}
}

// IsValid reports whether s is a known syntax.
func (s Syntax) IsValid() bool {
	_, ok := syntaxPatterns[s]
	return ok
}

// ParseSyntax parses a syntax name. The bracket forms "{{}}", "${}" and "%%"
// are accepted as well.
func ParseSyntax(s string) (Syntax, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mustache", "{{}}":
		return Mustache, true
	case "dollar", "${}":
		return Dollar, true
	case "percent", "%%":
		return Percent, true
	default:
		return 0, false
	}
}

// Placeholder is one placeholder occurrence.
type Placeholder struct {
	// Raw is the placeholder as written, e.g. "{{ meta.title }}".
	Raw string
	// Path is the data path it refers to, e.g. "meta.title".
	Path string
}
