package store

import "errors"

// ErrNotFound is returned by Get when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// ValidationError reports input rejected before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
