package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrFile               = errors.New("invalid model file")
	ErrInvalidModel       = errors.New("model cannot be serialized")
	ErrUnsupportedVersion = errors.New("unsupported model version")
)

// ParseError reports a malformed line of a model file.
type ParseError struct {
	Line int    // 1-based line number
	Msg  string // What was wrong with the line
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap makes every ParseError match ErrFile.
func (e *ParseError) Unwrap() error {
	return ErrFile
}

// ValidationError provides detailed information about a model that cannot
// be written.
type ValidationError struct {
	Type    string // Type of error (e.g., "special_whitespace", "invalid_merges")
	Token   string // Special token involved, if any
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: token %q: %s", e.Type, e.Token, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap makes every ValidationError match ErrInvalidModel.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidModel
}
