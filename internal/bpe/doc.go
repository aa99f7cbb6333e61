// Package bpe implements the byte-level Byte Pair Encoding core.
//
// The package is deliberately free of text handling: it operates on id
// sequences where ids 0-255 stand for raw bytes and every id above that is
// produced by a merge rule. It provides:
//   - Pair statistics: adjacent pair counting with shared accumulators
//   - Merge learning: the greedy training loop (most frequent pair first)
//   - Encoding: rank-priority greedy merging of a single chunk
//   - Vocabulary: expansion of merge rules back into byte strings
//
// Example usage:
//
//	chunks := [][]int{bpe.BytesToIDs([]byte("aaabdaaabac"))}
//	merges := bpe.Learn(chunks, 3, bpe.LearnOptions{})
//
//	ranks := bpe.NewRanks(merges)
//	ids := bpe.Encode(bpe.BytesToIDs([]byte("aaab")), ranks)
//
//	vocab := bpe.BuildVocab(merges, nil)
//	text := vocab.Bytes(ids)
package bpe
