package remote

import (
	"errors"
	"fmt"
)

// Category classifies a remote failure for recovery purposes. The
// cache never sees transport specifics, only the category and message.
type Category string

const (
	// CategoryNetwork is a transient transport or service failure;
	// safe to retry.
	CategoryNetwork Category = "network"

	// CategoryValidation means the payload was rejected; not
	// retryable without user correction.
	CategoryValidation Category = "validation"

	// CategoryNotFound means the identifier is absent remotely; the
	// local copy is stale and should be dropped.
	CategoryNotFound Category = "not_found"

	// CategoryConflict means remote state changed since the last
	// read; corrective action is a forced refresh.
	CategoryConflict Category = "conflict"
)

// Failure is the error every remote operation returns on rejection.
type Failure struct {
	Category Category
	Message  string
	Detail   map[string]any
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("[%s] %s", f.Category, f.Message)
}

// NewFailure creates a failure with the given category and message.
func NewFailure(category Category, format string, args ...any) *Failure {
	return &Failure{Category: category, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches machine-readable context to the failure.
func (f *Failure) WithDetail(detail map[string]any) *Failure {
	f.Detail = detail
	return f
}

// AsFailure extracts a Failure from an error chain. Errors that are
// not failures (context cancellation, transport errors the client did
// not map) are reported as network failures.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Category: CategoryNetwork, Message: err.Error()}
}

// IsNetwork checks if the error is a transient network failure.
func IsNetwork(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Category == CategoryNetwork
}

// IsValidation checks if the error is a payload rejection.
func IsValidation(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Category == CategoryValidation
}

// IsNotFound checks if the error marks a stale identifier.
func IsNotFound(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Category == CategoryNotFound
}

// IsConflict checks if the error marks a remote concurrent change.
func IsConflict(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Category == CategoryConflict
}
