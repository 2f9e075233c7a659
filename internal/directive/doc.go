// Package directive defines the closed catalog of directive kinds that a
// schema can declare through "x-" extension keys, together with their static
// prerequisites and priorities, and the error type shared by directive
// resolution and execution.
//
// # Catalog
//
// Every kind has an ordered prerequisite list and a priority. A kind always
// has a strictly greater priority than each of its prerequisites, so grouping
// a dependency-consistent order by priority never breaks an edge.
// ValidateCatalog checks that property once; resolution still detects cycles
// on the graphs it builds.
//
// # Errors
//
// Failures are reported as *Error with a closed ErrorKind. Use errors.Is with
// the sentinel values (ErrCircularDependency, ErrProcessingFailed, ...) to
// branch and errors.As to read the directive, cycle and path.
package directive
