package model

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a business field that is missing or out of range
// at the entity creation boundary. Nothing is written when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one input.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records a problem with field.
func (e *ValidationErrors) Add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns nil when no problem was recorded.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsValidation extracts the validation problems carried by err, if any.
func AsValidation(err error) (ValidationErrors, bool) {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many, true
	}
	var one ValidationError
	if errors.As(err, &one) {
		return ValidationErrors{one}, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	_, ok := AsValidation(err)
	return ok
}
