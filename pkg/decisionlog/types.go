package decisionlog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errNilRecord = errors.New("record cannot be nil")

// Outcome values for recorded decisions.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Record is one persisted policy decision.
type Record struct {
	// ID is the unique record identifier (UUID)
	ID string

	// Timestamp is when the decision was made
	Timestamp time.Time

	// PolicyPath identifies the policy the decision was evaluated under
	PolicyPath string

	// PolicyVersion is the store version the evaluating worker was at
	PolicyVersion uint64

	// Query is the query expression that was evaluated
	Query string

	// InputHash is the hex SHA-256 of the input document
	InputHash string

	// Result is the result JSON, empty on error
	Result string

	// Outcome is "success" or "error"
	Outcome string

	// Error is the error text, empty on success
	Error string

	// Duration is how long the evaluation took
	Duration time.Duration
}

// QueryFilter restricts which records a Query call returns.
type QueryFilter struct {
	// Limit caps the number of returned records. 0 means no cap.
	Limit int

	// Outcome restricts to one outcome. Empty means all.
	Outcome string

	// Since restricts to records at or after this time. Zero means all.
	Since time.Time
}

// Store persists decision records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]*Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan removes records with a timestamp before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many
	// were removed.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases backend resources.
	Close() error
}

// StorageError represents a failure in a storage backend operation.
type StorageError struct {
	// Backend names the backend ("sqlite", "memory")
	Backend string

	// Operation is the operation that failed
	Operation string

	// Cause is the underlying error
	Cause error
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("decision log %s storage: %s: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
