package evaluator

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes evaluation failures.
type ErrorKind string

const (
	// ParseError indicates the expression is malformed.
	ParseError ErrorKind = "PARSE_ERROR"

	// MathError indicates a well-formed expression that has no numeric
	// result (division by zero, non-numeric operands, overflow).
	MathError ErrorKind = "MATH_ERROR"
)

// EvalError is returned by an Evaluator when an expression cannot be evaluated.
type EvalError struct {
	Kind ErrorKind
	Expr string
	Err  error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %q: %v", e.Kind, e.Expr, e.Err)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Expr)
}

// Unwrap returns the underlying error.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is an EvalError of kind ParseError.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Kind == ParseError
}

// IsMathError returns true if err is an EvalError of kind MathError.
// Uses errors.As to handle wrapped errors.
func IsMathError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Kind == MathError
}
