package engine

import "fmt"

// CompileError represents a failure to parse or compile a policy, or to load
// its static data document. The underlying OPA diagnostic is preserved
// verbatim through Cause.
type CompileError struct {
	// Path is the policy identifier the module was compiled under
	Path string

	// Message describes the compilation failure
	Message string

	// Cause is the underlying parser or compiler error
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to compile policy %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to compile policy %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// EvalError represents a failure while running a query against a compiled
// policy. Undefined reports whether the query completed but produced no
// value, which Rego distinguishes from a runtime error.
type EvalError struct {
	// Path is the policy identifier the query ran against
	Path string

	// Query is the query expression that failed
	Query string

	// Undefined is true when the query result was undefined
	Undefined bool

	// Cause is the underlying evaluation error, nil for undefined results
	Cause error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Undefined {
		return fmt.Sprintf("query %q against policy %q produced an undefined result", e.Query, e.Path)
	}
	return fmt.Sprintf("failed to evaluate query %q against policy %q: %v", e.Query, e.Path, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *EvalError) Unwrap() error {
	return e.Cause
}
