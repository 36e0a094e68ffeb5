package qforms

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the factorizer, the class number engine and
// the polynomial engine. Callers match them with errors.Is.
var (
	// ErrInvalidArgument is returned for out-of-domain integer inputs,
	// e.g. factoring n <= 0 or a class number for D <= 0.
	ErrInvalidArgument = errors.New("qforms: invalid argument")

	// ErrIncompatibleOperands is returned when two polynomials with
	// different variable labels are combined.
	ErrIncompatibleOperands = errors.New("qforms: incompatible operands")

	// ErrUnsupportedOperation is returned for negative or non-integer
	// powers and for operand kinds a method cannot handle.
	ErrUnsupportedOperation = errors.New("qforms: unsupported operation")

	// ErrZeroPolynomial is returned by Degree and LowDegree on the zero
	// polynomial, which has no terms.
	ErrZeroPolynomial = errors.New("qforms: zero polynomial")

	// ErrDivisionByZero is returned by exact evaluation of a negative
	// exponent at zero.
	ErrDivisionByZero = errors.New("qforms: division by zero")

	// ErrUnknownTool is returned by the tool dispatcher for unknown names.
	ErrUnknownTool = errors.New("qforms: unknown tool")
)

// errorf wraps sentinel with a formatted detail message.
func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
