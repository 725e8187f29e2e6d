package store

import "fmt"

// LoadReason classifies why a policy load failed.
type LoadReason string

const (
	// LoadUnreadable means the policy document could not be obtained from
	// its source location.
	LoadUnreadable LoadReason = "unreadable"

	// LoadInvalidPolicy means the document was read but rejected by the
	// policy compiler.
	LoadInvalidPolicy LoadReason = "invalid_policy"
)

// LoadError represents a failed policy load. The store is left unchanged
// when a load fails; the previous policy, if any, stays active.
type LoadError struct {
	// Path is the policy location that failed to load
	Path string

	// Reason classifies the failure
	Reason LoadReason

	// Cause is the underlying error, preserved verbatim
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	switch e.Reason {
	case LoadUnreadable:
		return fmt.Sprintf("failed to read policy %q: %v", e.Path, e.Cause)
	case LoadInvalidPolicy:
		return fmt.Sprintf("invalid policy %q: %v", e.Path, e.Cause)
	default:
		return fmt.Sprintf("failed to load policy %q: %v", e.Path, e.Cause)
	}
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
