package validate

import (
	"errors"

	"frontmatter-transform/internal/diagnostic"
)

// Hard failures.
var (
	ErrInvalidPattern  = errors.New("invalid pattern")
	ErrCyclicReference = errors.New("cyclic $ref chain")
)

// Result is the outcome of one validation. Valid is true when Errors is
// empty; warnings do not affect it.
type Result struct {
	Valid    bool
	Errors   []diagnostic.Diagnostic
	Warnings []diagnostic.Diagnostic
}

func newResult(d diagnostic.Diagnostics) Result {
	return Result{
		Valid:    d.IsValid(),
		Errors:   d.Errors,
		Warnings: d.Warnings,
	}
}

// Err returns the errors joined into one error, nil when valid.
func (r Result) Err() error {
	d := diagnostic.Diagnostics{Errors: r.Errors}
	return d.Error()
}

// Merge appends other's findings to r.
func (r *Result) Merge(other Result) {
	d := diagnostic.Diagnostics{Errors: r.Errors, Warnings: r.Warnings}
	d.Merge(diagnostic.Diagnostics{Errors: other.Errors, Warnings: other.Warnings})
	*r = newResult(d)
}
