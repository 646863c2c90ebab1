package iam

import (
	"errors"
	"fmt"
)

// Common audit errors
var (
	// ErrMissingSubject indicates no username was available to aggregate
	// roles for. Supply one explicitly or resolve the identity first.
	ErrMissingSubject = errors.New("iam: missing subject username")

	// ErrIdentityUnresolved indicates the server reported no authenticated
	// principal and none was supplied or cached.
	ErrIdentityUnresolved = errors.New("iam: no authenticated principal")

	// ErrUnsupportedCredentials indicates the credential type maps to no
	// known authentication mechanism.
	ErrUnsupportedCredentials = errors.New("iam: unsupported credential type")
)

// AggregationError reports that the role scan could not run at all: the
// session could not be opened or the databases could not be enumerated.
// Per-database lookup failures are not aggregation errors; they are skipped.
type AggregationError struct {
	Op  string // step that failed, e.g. "open session"
	Err error  // underlying cause
}

// Error implements the error interface.
func (e *AggregationError) Error() string {
	return fmt.Sprintf("iam: role aggregation failed: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AggregationError) Unwrap() error {
	return e.Err
}

// NewAggregationError wraps err as an AggregationError. Returns nil when err
// is nil.
func NewAggregationError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AggregationError{Op: op, Err: err}
}

// IsAggregationError checks if an error is an AggregationError.
func IsAggregationError(err error) bool {
	var ae *AggregationError
	return errors.As(err, &ae)
}
