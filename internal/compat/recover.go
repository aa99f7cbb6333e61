package compat

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/parallel"
)

// entry is a multi-byte row of a rank table.
type entry struct {
	token string
	rank  int
}

// Recover reconstructs the merge rules of a rank table.
//
// The result is sorted by id. Ids are the table's ranks, so they increase
// with priority but need not be dense. The table should pass
// Encoding.Validate first; Recover only checks what it needs to.
func Recover(ranks map[string]int, cfg parallel.Config) ([]bpe.Merge, error) {
	entries := make([]entry, 0, len(ranks))
	for tok, r := range ranks {
		if len(tok) < 2 {
			continue
		}
		if r < bpe.NumBytes {
			return nil, fmt.Errorf("%w: multi-byte token %q has rank %d below %d", ErrInvalidRanks, tok, r, bpe.NumBytes)
		}
		entries = append(entries, entry{token: tok, rank: r})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.rank, b.rank)
	})

	merges := make([]bpe.Merge, len(entries))
	err := parallel.ForErr(len(entries), func(i int) error {
		e := entries[i]
		parts := boundedMerge(ranks, e.token, e.rank)
		if len(parts) != 2 {
			return fmt.Errorf("%w: token %q (rank %d) reduces to %d pieces using lower ranks",
				ErrInconsistentRanks, e.token, e.rank, len(parts))
		}
		merges[i] = bpe.Merge{
			Pair: bpe.Pair{Left: ranks[parts[0]], Right: ranks[parts[1]]},
			ID:   e.rank,
		}
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(merges); i++ {
		if merges[i].ID == merges[i-1].ID {
			return nil, fmt.Errorf("%w: rank %d is shared by more than one token", ErrInvalidRanks, merges[i].ID)
		}
	}
	return merges, nil
}

// boundedMerge splits token into single bytes and repeatedly joins the
// leftmost adjacent pair with the lowest rank, considering only ranks below
// maxRank.
func boundedMerge(ranks map[string]int, token string, maxRank int) []string {
	parts := make([]string, len(token))
	for i := range len(token) {
		parts[i] = token[i : i+1]
	}

	for len(parts) > 1 {
		minIdx, minRank := -1, maxRank
		for i := 0; i+1 < len(parts); i++ {
			r, ok := ranks[parts[i]+parts[i+1]]
			if ok && r < minRank {
				minIdx, minRank = i, r
			}
		}
		if minIdx < 0 {
			break
		}
		parts[minIdx] += parts[minIdx+1]
		parts = slices.Delete(parts, minIdx+1, minIdx+2)
	}
	return parts
}
