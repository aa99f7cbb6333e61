package bpe

// CountPairs adds the adjacent pair counts of ids to counts and returns it.
//
// A nil accumulator is allocated, so the first call of a chunk-by-chunk
// accumulation may pass nil and feed the result into the following calls.
func CountPairs(ids []int, counts map[Pair]int) map[Pair]int {
	return AddPairs(ids, counts, 1)
}

// AddPairs is CountPairs with every pair occurrence weighted by weight.
func AddPairs(ids []int, counts map[Pair]int, weight int) map[Pair]int {
	if counts == nil {
		counts = make(map[Pair]int)
	}
	for i := 0; i+1 < len(ids); i++ {
		counts[Pair{ids[i], ids[i+1]}] += weight
	}
	return counts
}

// TopPair returns the most frequent pair.
//
// Ties are broken by choosing the lexicographically smallest pair, so the
// result does not depend on map iteration order. ok is false when no pair
// has a positive count.
func TopPair(counts map[Pair]int) (top Pair, count int, ok bool) {
	for p, c := range counts {
		if c <= 0 {
			continue
		}
		if !ok || c > count || (c == count && p.Less(top)) {
			top, count, ok = p, c, true
		}
	}
	return top, count, ok
}
