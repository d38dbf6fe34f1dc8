package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every ValidationError so callers can use errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
