// Package common defines shared constants, error kinds and small helpers used
// across voxkeeper layers. Callers should use errors.Is to match error kinds.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
	ErrorStorage  = errors.New("storage error")

	// Input errors. Reported before any storage access.
	ErrorValidation = errors.New("validation error")

	// Auth errors. The message never says whether the username exists.
	ErrorUnauthorized = errors.New("invalid username or password")
	ErrorLocked       = fmt.Errorf("%w: too many failed attempts, start a new session", ErrorUnauthorized)
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s is required", ErrorValidation, e.Field)
	}
	return fmt.Sprintf("%v: %s %s", ErrorValidation, e.Field, e.Reason)
}

func (e ValidationError) Unwrap() error { return ErrorValidation }

// Required returns a ValidationError for the first empty value in fields.
// fields is a flat list of name/value pairs.
func Required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			return ValidationError{Field: fields[i]}
		}
	}
	return nil
}
