package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"frontmatter-transform/internal/common"
	"frontmatter-transform/internal/tree"
)

// Diagnostics holds all findings of one validation or processing run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Rule is the keyword or check that produced it ("type", "required", ...).
	Rule string
	// Message is the human-readable description.
	Message string
	// Path is the data path it relates to; "" is the document root.
	Path string
	// Value is the offending value, if any.
	Value any
	// Suggestion is a likely intended alternative, if any.
	Suggestion string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	_ DiagnosticSeverity = iota // skip zero value

	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(rule, message, path string, value any) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Rule:     rule,
		Message:  message,
		Path:     path,
		Value:    value,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(rule, message, path, suggestion string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity:   DiagnosticWarning,
		Rule:       rule,
		Message:    message,
		Path:       path,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Rule != "" {
		msg = fmt.Sprintf("[%s] %s", d.Rule, msg)
	}

	if d.Suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, d.Suggestion)
	}

	if d.Path != "" {
		return d.Path + ": " + msg
	}

	return msg
}

// ValueText renders Value for reports; nil renders as "null".
func (d Diagnostic) ValueText() string {
	if d.Value == nil {
		return "null"
	}

	s, err := tree.Text(d.Value)
	if err != nil {
		return fmt.Sprint(d.Value)
	}

	return s
}
