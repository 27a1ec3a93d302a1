package xarc

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common failure cases.
var (
	// ErrNotFound is reported by an EntityStore when a referenced entity
	// does not exist.
	ErrNotFound = errors.New("xarc: entity not found")

	// ErrInvalidMapping indicates a malformed mapping declaration.
	ErrInvalidMapping = errors.New("xarc: invalid mapping")

	// ErrUnsupportedMapping indicates a mapping that cannot be expressed
	// on the target dialect.
	ErrUnsupportedMapping = errors.New("xarc: unsupported mapping")
)

// InvalidMappingError represents a malformed mapping declaration.
// It is returned at construction time and is always fatal to the caller.
type InvalidMappingError struct {
	Table   string // Owner table (if known)
	Column  string // Offending column (if applicable)
	Message string
}

// Error returns the error string.
func (e *InvalidMappingError) Error() string {
	var b strings.Builder
	b.WriteString("xarc: invalid mapping")
	if e.Table != "" {
		fmt.Fprintf(&b, " for %q", e.Table)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for InvalidMappingError.
func (e *InvalidMappingError) Is(target error) bool {
	return target == ErrInvalidMapping
}

// IsInvalidMapping reports whether the error is an InvalidMappingError.
func IsInvalidMapping(err error) bool {
	var e *InvalidMappingError
	return errors.As(err, &e)
}

// UnsupportedMappingError is returned by the DDL compiler when the
// requested constraint cannot be expressed under the target dialect's
// constraint model. The compiler refuses rather than silently degrades.
type UnsupportedMappingError struct {
	Dialect string
	Table   string
	Message string
}

// Error returns the error string.
func (e *UnsupportedMappingError) Error() string {
	var b strings.Builder
	b.WriteString("xarc: unsupported mapping")
	if e.Table != "" {
		fmt.Fprintf(&b, " for %q", e.Table)
	}
	if e.Dialect != "" {
		fmt.Fprintf(&b, " on dialect %q", e.Dialect)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for UnsupportedMappingError.
func (e *UnsupportedMappingError) Is(target error) bool {
	return target == ErrUnsupportedMapping
}

// IsUnsupportedMapping reports whether the error is an UnsupportedMappingError.
func IsUnsupportedMapping(err error) bool {
	var e *UnsupportedMappingError
	return errors.As(err, &e)
}

// DanglingReferenceError is returned when the active foreign-key column
// holds a value whose referenced row no longer exists. Under an enforced
// foreign key this indicates the constraint was bypassed (for example a
// raw deletion of the referenced row), so it is surfaced as an
// internal-consistency fault rather than silently reported as nil.
type DanglingReferenceError struct {
	RefTable string // Referenced table
	Column   string // Active foreign-key column
	Value    any    // Value that failed to resolve
	Err      error  // Underlying store error
}

// Error returns the error string.
func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("xarc: dangling reference %s=%v: no row in %q", e.Column, e.Value, e.RefTable)
}

// Unwrap returns the underlying store error.
func (e *DanglingReferenceError) Unwrap() error {
	return e.Err
}

// IsDanglingReference reports whether the error is a DanglingReferenceError.
func IsDanglingReference(err error) bool {
	var e *DanglingReferenceError
	return errors.As(err, &e)
}

// ExclusivityError is the validation-layer counterpart of the generated
// trigger: it reports that the exclusivity invariant does not hold for
// the current attribute snapshot. The error is attached to the
// polymorphic role, not to an individual column.
type ExclusivityError struct {
	Table   string   // Owner table
	Role    string   // Polymorphic role name
	Keys    []string // Declared relation columns
	Columns []string // Non-null columns; empty when none is set
}

// Error returns the error string.
func (e *ExclusivityError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("xarc: %s on %q requires exactly one of %s; none set", e.Role, e.Table, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("xarc: %s on %q requires exactly one of %s; got %s", e.Role, e.Table, strings.Join(e.Keys, ", "), strings.Join(e.Columns, ", "))
}

// IsExclusivityError reports whether the error is an ExclusivityError.
func IsExclusivityError(err error) bool {
	var e *ExclusivityError
	return errors.As(err, &e)
}
