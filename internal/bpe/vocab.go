package bpe

// Vocab maps token ids to the bytes they stand for.
type Vocab map[int][]byte

// BuildVocab expands the 256 base bytes through merges, in the given order,
// and overlays the special tokens.
//
// The result depends only on its inputs; rebuilding from the same merges and
// specials yields an identical vocabulary.
func BuildVocab(merges []Merge, specials map[string]int) Vocab {
	vocab := make(Vocab, NumBytes+len(merges)+len(specials))
	for i := range NumBytes {
		vocab[i] = []byte{byte(i)}
	}
	for _, m := range merges {
		left, right := vocab[m.Pair.Left], vocab[m.Pair.Right]
		b := make([]byte, 0, len(left)+len(right))
		b = append(b, left...)
		vocab[m.ID] = append(b, right...)
	}
	for s, id := range specials {
		vocab[id] = []byte(s)
	}
	return vocab
}

// Append appends the bytes of id to dst. ok is false when id is unknown.
func (v Vocab) Append(dst []byte, id int) (out []byte, ok bool) {
	b, ok := v[id]
	if !ok {
		return dst, false
	}
	return append(dst, b...), true
}

// Bytes concatenates the bytes of ids. It is lossy: unknown ids contribute
// nothing and are not reported. Use Append to detect them.
func (v Vocab) Bytes(ids []int) []byte {
	var out []byte
	for _, id := range ids {
		out, _ = v.Append(out, id)
	}
	return out
}
