package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for missing entities. Callers classify with errors.Is.
var (
	ErrBillNotFound       = errors.New("bill not found")
	ErrLegislatorNotFound = errors.New("legislator not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrParentNotFound     = errors.New("parent comment not found")
)

// ValidationError reports caller-supplied input that violates a
// precondition. Never retried; always surfaced immediately.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpdateFailedError reports a rejected or failed write on the external
// data source. Local aggregate state is rolled back before this is
// returned, so the caller may retry the whole operation.
type UpdateFailedError struct {
	Op    string
	Cause error
}

func (e *UpdateFailedError) Error() string {
	return fmt.Sprintf("%s: update failed: %v", e.Op, e.Cause)
}

func (e *UpdateFailedError) Unwrap() error { return e.Cause }

// IsUpdateFailed reports whether err is an UpdateFailedError.
func IsUpdateFailed(err error) bool {
	var ue *UpdateFailedError
	return errors.As(err, &ue)
}
