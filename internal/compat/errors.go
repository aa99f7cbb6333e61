package compat

import "errors"

// Common errors.
var (
	ErrInvalidRanks      = errors.New("invalid rank table")
	ErrInconsistentRanks = errors.New("rank table is not reproducible by merges")
	ErrUnknownEncoding   = errors.New("unknown encoding")
)
