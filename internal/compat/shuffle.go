package compat

import (
	"fmt"

	"github.com/born-ml/minbpe/internal/bpe"
)

// ByteShuffle maps raw bytes to the ranks a table assigns to them.
type ByteShuffle struct {
	forward [bpe.NumBytes]int
	inverse [bpe.NumBytes]byte
}

// IdentityShuffle returns the shuffle of a table that ranks every byte by its value.
func IdentityShuffle() *ByteShuffle {
	s := &ByteShuffle{}
	for i := range bpe.NumBytes {
		s.forward[i] = i
		s.inverse[i] = byte(i)
	}
	return s
}

// NewByteShuffle builds a shuffle from the ranks of the 256 single bytes.
// ranks[b] is the rank of byte b; the ranks must be a permutation of 0..255.
func NewByteShuffle(ranks [bpe.NumBytes]int) (*ByteShuffle, error) {
	s := &ByteShuffle{forward: ranks}
	var seen [bpe.NumBytes]bool
	for b, r := range ranks {
		if r < 0 || r >= bpe.NumBytes {
			return nil, fmt.Errorf("%w: byte 0x%02x has rank %d, want 0..255", ErrInvalidRanks, b, r)
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: rank %d is assigned to more than one byte", ErrInvalidRanks, r)
		}
		seen[r] = true
		s.inverse[r] = byte(b)
	}
	return s, nil
}

// Rank returns the rank of byte b.
func (s *ByteShuffle) Rank(b byte) int {
	return s.forward[b]
}

// Byte returns the byte whose rank is r. r must be in 0..255.
func (s *ByteShuffle) Byte(r int) byte {
	return s.inverse[r]
}

// IsIdentity reports whether every byte is ranked by its own value.
func (s *ByteShuffle) IsIdentity() bool {
	for b, r := range s.forward {
		if b != r {
			return false
		}
	}
	return true
}

// Apply maps raw bytes to base token ids.
func (s *ByteShuffle) Apply(b []byte) []int {
	ids := make([]int, len(b))
	for i, c := range b {
		ids[i] = s.forward[c]
	}
	return ids
}

// Restore maps bytes expanded from base token ids back to raw bytes.
// The input is not modified.
func (s *ByteShuffle) Restore(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = s.inverse[c]
	}
	return out
}
