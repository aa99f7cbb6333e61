package bpe

import "fmt"

// NumBytes is the number of base tokens, one per raw byte value.
const NumBytes = 256

// Pair is an ordered pair of adjacent token ids.
type Pair struct {
	Left  int
	Right int
}

// Less orders pairs lexicographically by Left, then Right.
func (p Pair) Less(o Pair) bool {
	if p.Left != o.Left {
		return p.Left < o.Left
	}
	return p.Right < o.Right
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.Left, p.Right)
}

// Merge is a learned rule: Pair is replaced by ID.
type Merge struct {
	Pair Pair
	ID   int
}

// BytesToIDs maps every byte to its base token id.
func BytesToIDs(b []byte) []int {
	ids := make([]int, len(b))
	for i, c := range b {
		ids[i] = int(c)
	}
	return ids
}

// ValidateMerges checks that ids are dense and strictly increasing from 256
// and that every rule only references ids created before it.
func ValidateMerges(merges []Merge) error {
	seen := make(map[Pair]struct{}, len(merges))
	for i, m := range merges {
		want := NumBytes + i
		if m.ID != want {
			return fmt.Errorf("merge %d: id %d, want %d", i, m.ID, want)
		}
		if m.Pair.Left < 0 || m.Pair.Right < 0 || m.Pair.Left >= m.ID || m.Pair.Right >= m.ID {
			return fmt.Errorf("merge %d: pair %s is not composed of earlier ids", i, m.Pair)
		}
		if _, ok := seen[m.Pair]; ok {
			return fmt.Errorf("merge %d: duplicate pair %s", i, m.Pair)
		}
		seen[m.Pair] = struct{}{}
	}
	return nil
}
