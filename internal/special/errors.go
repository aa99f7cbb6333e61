package special

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports a special token that may not be used as given.
type ValidationError struct {
	Token  string // Offending special token string
	Reason string // What is wrong with it
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: special token %q: %s", ErrValidation, e.Token, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
