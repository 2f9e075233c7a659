package directive

import (
	"errors"
	"fmt"
	"strings"

	"frontmatter-transform/internal/common"
)

// ErrorKind classifies directive resolution and processing failures.
type ErrorKind int

const (
	// ErrorCircularDependency - the completed dependency graph has a cycle.
	ErrorCircularDependency ErrorKind = iota + 1
	// ErrorMissingDependency - a declared prerequisite could not be constructed.
	ErrorMissingDependency
	// ErrorInvalidCombination - reserved for incompatible directive sets.
	ErrorInvalidCombination
	// ErrorProcessingFailed - a transformer failed.
	ErrorProcessingFailed
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorCircularDependency:
		return "CircularDependency"
	case ErrorMissingDependency:
		return "MissingDependency"
	case ErrorInvalidCombination:
		return "InvalidCombination"
	case ErrorProcessingFailed:
		return "ProcessingFailed"
	default:
		return common.UnknownStr
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrCircularDependency = errors.New("circular directive dependency")
	ErrMissingDependency  = errors.New("missing directive dependency")
	ErrInvalidCombination = errors.New("invalid directive combination")
	ErrProcessingFailed   = errors.New("directive processing failed")
)

// Error carries the structured context of a directive failure.
type Error struct {
	Kind ErrorKind
	// Directive is the directive the failure belongs to (zero when unknown).
	Directive Kind
	// Cycle lists the kinds of a circular dependency in cycle order.
	Cycle []Kind
	// Path is the schema or data path involved, if any.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.Directive.IsValid() {
		fmt.Fprintf(&b, " [%s]", e.Directive)
	}

	if len(e.Cycle) > 0 {
		names := make([]string, 0, len(e.Cycle)+1)
		for _, k := range e.Cycle {
			names = append(names, k.String())
		}

		names = append(names, e.Cycle[0].String())
		fmt.Fprintf(&b, ": cycle %s", strings.Join(names, " -> "))
	}

	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrCircularDependency:
		return e.Kind == ErrorCircularDependency
	case ErrMissingDependency:
		return e.Kind == ErrorMissingDependency
	case ErrInvalidCombination:
		return e.Kind == ErrorInvalidCombination
	case ErrProcessingFailed:
		return e.Kind == ErrorProcessingFailed
	default:
		return false
	}
}

// ProcessingFailed wraps a transformer failure with its directive and path.
func ProcessingFailed(k Kind, path string, err error) *Error {
	return &Error{Kind: ErrorProcessingFailed, Directive: k, Path: path, Err: err}
}
