// Package compat turns an opaque rank table into an equivalent merge table.
//
// Tables such as OpenAI's cl100k_base (as loaded by
// github.com/pkoukk/tiktoken-go) store only a mapping from byte strings to
// ranks. Encoding with such a table merges, at every step, the adjacent
// pair whose concatenation has the lowest rank. This package recovers the
// (left, right) -> id rules that reproduce that behavior with the
// repository's merge-based encoder:
//
//   - Every multi-byte entry is decomposed by a bounded BPE pass that only
//     considers entries ranked strictly before it; the two remaining pieces
//     are the rule's operands.
//   - Single bytes are not ranked by their byte value. ByteShuffle maps raw
//     bytes to their single-byte ranks before encoding and back after
//     decoding.
//
// Example usage:
//
//	enc, err := compat.LoadEncoding(compat.CL100kBase, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	shuffle, err := enc.Validate()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	merges, err := compat.Recover(enc.Ranks, parallel.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids := bpe.Encode(shuffle.Apply([]byte("hello world")), bpe.NewRanks(merges))
package compat
