package bpe

// Replace returns ids with every non-overlapping, left-to-right occurrence
// of pair replaced by id.
func Replace(ids []int, pair Pair, id int) []int {
	out := make([]int, 0, len(ids))
	for i := 0; i < len(ids); i++ {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			out = append(out, id)
			i++
			continue
		}
		out = append(out, ids[i])
	}
	return out
}

// LearnOptions controls optional behavior of Learn.
type LearnOptions struct {
	// Observe, when set, is called after every learned merge with the
	// 1-based step, the requested number of merges, the rule and the pair
	// count that selected it.
	Observe func(step, total int, m Merge, count int)
}

// chunkCount is a distinct chunk and the number of times it occurred.
type chunkCount struct {
	ids   []int
	count int
}

// dedupe collapses identical chunks, keeping first-occurrence order.
func dedupe(chunks [][]int) []chunkCount {
	index := make(map[string]int, len(chunks))
	out := make([]chunkCount, 0, len(chunks))
	for _, c := range chunks {
		if len(c) < 2 {
			// Single ids never take part in a pair.
			continue
		}
		key := idsKey(c)
		if i, ok := index[key]; ok {
			out[i].count++
			continue
		}
		index[key] = len(out)
		cp := make([]int, len(c))
		copy(cp, c)
		out = append(out, chunkCount{ids: cp, count: 1})
	}
	return out
}

func idsKey(ids []int) string {
	b := make([]byte, 0, len(ids)*2)
	for _, id := range ids {
		for id >= 0x80 {
			b = append(b, byte(id)|0x80)
			id >>= 7
		}
		b = append(b, byte(id))
	}
	return string(b)
}

// Learn runs up to numMerges rounds of BPE training over chunks.
//
// Each round counts pairs across all chunks, picks TopPair, assigns the next
// id starting at 256 and rewrites every chunk. Pairs never span two chunks.
// Learning stops early when no chunk has a pair left. The input chunks are
// not modified.
func Learn(chunks [][]int, numMerges int, opts LearnOptions) []Merge {
	if numMerges <= 0 {
		return nil
	}

	words := dedupe(chunks)
	merges := make([]Merge, 0, numMerges)
	for i := range numMerges {
		var counts map[Pair]int
		for _, w := range words {
			counts = AddPairs(w.ids, counts, w.count)
		}

		top, count, ok := TopPair(counts)
		if !ok {
			break
		}

		m := Merge{Pair: top, ID: NumBytes + i}
		for j := range words {
			words[j].ids = Replace(words[j].ids, top, m.ID)
		}
		merges = append(merges, m)

		if opts.Observe != nil {
			opts.Observe(i+1, numMerges, m, count)
		}
	}
	return merges
}
