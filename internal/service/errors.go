package service

import (
	"errors"
	"fmt"
)

// ErrAggregateConflict is returned when an aggregator kept losing optimistic
// concurrency races and exhausted its retries. The submission is safe to
// retry as a whole: every stage is idempotent.
var ErrAggregateConflict = errors.New("aggregate recompute conflict: retries exhausted")

// ValidationError reports malformed submission input. It is raised before
// any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced checklist or category that does not
// resolve to a known record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
