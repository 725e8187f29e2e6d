package evaluator

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned when evaluation is attempted before any policy
// has been loaded successfully.
var ErrNotLoaded = errors.New("no policy loaded: call Load first")

// CompileFailedError represents a failed evaluator rebuild after a version
// change. Only the calling worker is affected; workers holding a working
// evaluator keep answering.
type CompileFailedError struct {
	// Path is the policy identifier that failed to compile
	Path string

	// Version is the store version the rebuild was attempted for
	Version uint64

	// Cause is the underlying compile error
	Cause error
}

// Error implements the error interface.
func (e *CompileFailedError) Error() string {
	return fmt.Sprintf("failed to rebuild evaluator for policy %q at version %d: %v", e.Path, e.Version, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *CompileFailedError) Unwrap() error {
	return e.Cause
}

// InvalidInputError represents input that could not be parsed into the
// value model.
type InvalidInputError struct {
	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input document: %v", e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}

// EvaluationFailedError represents a runtime failure while running the
// configured query.
type EvaluationFailedError struct {
	// Path is the policy identifier the query ran against
	Path string

	// Query is the query expression that failed
	Query string

	// Cause is the underlying evaluation error
	Cause error
}

// Error implements the error interface.
func (e *EvaluationFailedError) Error() string {
	return fmt.Sprintf("evaluation of query %q against policy %q failed: %v", e.Query, e.Path, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *EvaluationFailedError) Unwrap() error {
	return e.Cause
}
