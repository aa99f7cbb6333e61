package bpe

import (
	"cmp"
	"slices"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"
)

// Ranks is the merge lookup used at encode time.
//
// A pair's priority is the id its rule produces: rules created earlier have
// smaller ids and are applied first.
type Ranks struct {
	ids map[Pair]int
}

// NewRanks indexes merges by pair.
func NewRanks(merges []Merge) Ranks {
	ids := make(map[Pair]int, len(merges))
	for _, m := range merges {
		ids[m.Pair] = m.ID
	}
	return Ranks{ids: ids}
}

// Lookup returns the id produced by merging p. ok is false when p has no rule.
func (r Ranks) Lookup(p Pair) (id int, ok bool) {
	id, ok = r.ids[p]
	return id, ok
}

// Len returns the number of rules.
func (r Ranks) Len() int {
	return len(r.ids)
}

// symbol is a node of the doubly linked list of live ids in a chunk.
type symbol struct {
	id         int
	prev, next int
}

// candidate is a mergeable pair starting at pos.
type candidate struct {
	pos  int
	rank int
	pair Pair
}

// Encode merges ids until no ranked pair remains.
//
// At every step the present pair with the lowest rank is merged, every
// occurrence left to right. Candidates are kept in a heap ordered by
// (rank, position); a merge only creates pairs that rank strictly after the
// merged one, so popping in that order applies a rule to all of its
// occurrences before any later rule is considered. The input is not modified.
func Encode(ids []int, ranks Ranks) []int {
	if len(ids) < 2 || ranks.Len() == 0 {
		return slices.Clone(ids)
	}

	syms := make([]symbol, len(ids))
	for i, id := range ids {
		syms[i] = symbol{id: id, prev: i - 1, next: i + 1}
	}

	queue := heap.NewWith(func(a, b candidate) int {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	push := func(pos int) {
		if pos < 0 {
			return
		}
		next := syms[pos].next
		if next >= len(syms) {
			return
		}
		p := Pair{syms[pos].id, syms[next].id}
		if rank, ok := ranks.Lookup(p); ok {
			queue.Push(candidate{pos: pos, rank: rank, pair: p})
		}
	}

	for i := 0; i+1 < len(syms); i++ {
		push(i)
	}

	for !queue.Empty() {
		c, _ := queue.Pop()

		left := &syms[c.pos]
		if left.id < 0 || left.next >= len(syms) {
			continue
		}
		right := &syms[left.next]
		if left.id != c.pair.Left || right.id != c.pair.Right {
			// stale
			continue
		}

		left.id = c.rank
		right.id = -1
		left.next = right.next
		if left.next < len(syms) {
			syms[left.next].prev = c.pos
		}

		push(left.prev)
		push(c.pos)
	}

	out := make([]int, 0, len(ids))
	for i := 0; i < len(syms); i = syms[i].next {
		out = append(out, syms[i].id)
	}
	return out
}
