package tokenizer

import (
	"errors"
	"fmt"

	"github.com/born-ml/minbpe/internal/serialization"
	"github.com/born-ml/minbpe/internal/special"
)

// Common errors.
var (
	ErrValidation   = special.ErrValidation
	ErrUnknownToken = errors.New("unknown token")
	ErrNotSupported = errors.New("operation not supported")
	ErrFile         = serialization.ErrFile
)

// UnknownTokenError reports an id that is neither in the vocabulary nor a
// special token.
type UnknownTokenError struct {
	ID int
}

// Error implements the error interface.
func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("%s: id %d", ErrUnknownToken, e.ID)
}

// Unwrap returns ErrUnknownToken.
func (e *UnknownTokenError) Unwrap() error {
	return ErrUnknownToken
}

func notSupported(op, kind string) error {
	return fmt.Errorf("%w: %s tokenizer cannot %s", ErrNotSupported, kind, op)
}
