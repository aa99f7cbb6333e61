package compat

import (
	_ "embed"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/parallel"
	"github.com/born-ml/minbpe/internal/pretokenize"
)

//go:embed testdata/llama.txt
var llamaText string

var sampleTexts = []string{
	"hello world 123 4567!!\n\n  ok",
	"Привет мир 你好 😀",
	"It's 2024; we've   got tabs\tand\r\nnewlines.",
}

// byteTable returns the 256 single-byte entries ranked by rank(b).
func byteTable(rank func(b int) int) map[string]int {
	ranks := make(map[string]int, bpe.NumBytes)
	for b := range bpe.NumBytes {
		ranks[string([]byte{byte(b)})] = rank(b)
	}
	return ranks
}

func identity(b int) int { return b }

// rotated is a byte shuffle that differs from the identity everywhere.
func rotated(b int) int { return (b*7 + 3) % bpe.NumBytes }

func rotatedShuffle(t *testing.T) *ByteShuffle {
	t.Helper()
	var ranks [bpe.NumBytes]int
	for b := range ranks {
		ranks[b] = rotated(b)
	}
	s, err := NewByteShuffle(ranks)
	require.NoError(t, err)
	return s
}

func trainMerges(t *testing.T, pattern string, n int) []bpe.Merge {
	t.Helper()
	pre, err := pretokenize.New(pattern)
	require.NoError(t, err)
	chunks, err := pre.Chunks(llamaText)
	require.NoError(t, err)

	ids := make([][]int, len(chunks))
	for i, c := range chunks {
		ids[i] = bpe.BytesToIDs(c)
	}
	merges := bpe.Learn(ids, n, bpe.LearnOptions{})
	require.Len(t, merges, n)
	return merges
}

func encodeWith(t *testing.T, pattern, text string, shuffle *ByteShuffle, ranks bpe.Ranks) []int {
	t.Helper()
	pre, err := pretokenize.New(pattern)
	require.NoError(t, err)
	chunks, err := pre.Chunks(text)
	require.NoError(t, err)

	out := []int{}
	for _, c := range chunks {
		out = append(out, bpe.Encode(shuffle.Apply(c), ranks)...)
	}
	return out
}

func TestByteShuffle(t *testing.T) {
	s := rotatedShuffle(t)
	assert.False(t, s.IsIdentity())
	assert.True(t, IdentityShuffle().IsIdentity())

	in := []byte("héllo\x00\xff")
	ids := s.Apply(in)
	for i, c := range in {
		assert.Equal(t, rotated(int(c)), ids[i])
		assert.Equal(t, c, s.Byte(ids[i]))
	}

	shuffled := make([]byte, len(ids))
	for i, id := range ids {
		shuffled[i] = byte(id)
	}
	assert.Equal(t, in, s.Restore(shuffled))
}

func TestNewByteShuffle_Invalid(t *testing.T) {
	var ranks [bpe.NumBytes]int
	for b := range ranks {
		ranks[b] = b
	}

	dup := ranks
	dup[1] = 0
	_, err := NewByteShuffle(dup)
	assert.ErrorIs(t, err, ErrInvalidRanks)

	out := ranks
	out[5] = 300
	_, err = NewByteShuffle(out)
	assert.ErrorIs(t, err, ErrInvalidRanks)
}

func TestEncoding_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(ranks, specials map[string]int)
		wantErr bool
	}{
		{"valid", func(map[string]int, map[string]int) {}, false},
		{"missing byte", func(r, _ map[string]int) { delete(r, "a") }, true},
		{"shared rank", func(r, _ map[string]int) { r["xy"] = 256 }, true},
		{"multi-byte below 256", func(r, _ map[string]int) { delete(r, "ab"); r["zz"] = 10 }, true},
		{"byte rank out of range", func(r, _ map[string]int) { r["a"] = 400 }, true},
		{"special collides", func(_, s map[string]int) { s["<|x|>"] = 256 }, true},
		{"empty token", func(r, _ map[string]int) { r[""] = 999 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranks := byteTable(rotated)
			ranks["ab"] = 256
			specials := map[string]int{EndOfText: 1000}
			tt.mutate(ranks, specials)

			enc := &Encoding{Name: "test", Ranks: ranks, SpecialTokens: specials}
			shuffle, err := enc.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRanks)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, rotated('a'), shuffle.Rank('a'))
		})
	}
}

func TestRecover_Small(t *testing.T) {
	ranks := byteTable(identity)
	ranks["aa"] = 256
	ranks["ab"] = 257
	ranks["aaab"] = 258

	merges, err := Recover(ranks, parallel.Sequential())
	require.NoError(t, err)

	assert.Equal(t, []bpe.Merge{
		{Pair: bpe.Pair{Left: 'a', Right: 'a'}, ID: 256},
		{Pair: bpe.Pair{Left: 'a', Right: 'b'}, ID: 257},
		{Pair: bpe.Pair{Left: 256, Right: 257}, ID: 258},
	}, merges)
}

func TestRecover_Inconsistent(t *testing.T) {
	ranks := byteTable(identity)
	ranks["abc"] = 256

	_, err := Recover(ranks, parallel.Sequential())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistentRanks)
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestRecover_RankBelowBytes(t *testing.T) {
	ranks := byteTable(identity)
	ranks["ab"] = 7

	_, err := Recover(ranks, parallel.Sequential())
	assert.ErrorIs(t, err, ErrInvalidRanks)
}

func TestRecover_ReproducesTrainedMerges(t *testing.T) {
	merges := trainMerges(t, pretokenize.GPT4Pattern, 200)

	enc, err := FromMerges("llama", pretokenize.GPT4Pattern, merges, nil, nil)
	require.NoError(t, err)
	assert.Len(t, enc.Ranks, bpe.NumBytes+len(merges))

	shuffle, err := enc.Validate()
	require.NoError(t, err)
	assert.True(t, shuffle.IsIdentity())

	recovered, err := Recover(enc.Ranks, parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8})
	require.NoError(t, err)
	assert.Equal(t, merges, recovered)
}

func TestRecover_MatchesReference(t *testing.T) {
	merges := trainMerges(t, pretokenize.GPT4Pattern, 200)
	specials := map[string]int{EndOfText: 100000, EndOfPrompt: 100001}

	enc, err := FromMerges("llama", pretokenize.GPT4Pattern, merges, specials, rotatedShuffle(t))
	require.NoError(t, err)

	shuffle, err := enc.Validate()
	require.NoError(t, err)
	assert.False(t, shuffle.IsIdentity())

	recovered, err := Recover(enc.Ranks, parallel.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, bpe.ValidateMerges(recovered))

	ref, err := enc.Reference()
	require.NoError(t, err)

	ranks := bpe.NewRanks(recovered)
	vocab := bpe.BuildVocab(recovered, nil)
	for i, text := range append([]string{llamaText}, sampleTexts...) {
		t.Run(fmt.Sprintf("text%d", i), func(t *testing.T) {
			want := ref.EncodeOrdinary(text)
			got := encodeWith(t, enc.Pattern, text, shuffle, ranks)
			require.Equal(t, want, got)

			assert.Equal(t, text, string(shuffle.Restore(vocab.Bytes(got))))
			assert.Equal(t, ref.Decode(want), string(shuffle.Restore(vocab.Bytes(got))))
		})
	}
}

func TestFromMerges_DuplicateExpansion(t *testing.T) {
	merges := []bpe.Merge{
		{Pair: bpe.Pair{Left: 'a', Right: 'b'}, ID: 256},
		{Pair: bpe.Pair{Left: 'b', Right: 'c'}, ID: 257},
		{Pair: bpe.Pair{Left: 256, Right: 'c'}, ID: 258},
		{Pair: bpe.Pair{Left: 'a', Right: 257}, ID: 259},
	}

	_, err := FromMerges("dup", "", merges, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRanks)
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestFromMerges_InvalidMerges(t *testing.T) {
	_, err := FromMerges("bad", "", []bpe.Merge{{Pair: bpe.Pair{Left: 1, Right: 2}, ID: 300}}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRanks)
}

type fakeLoader struct {
	files map[string]map[string]int
	calls []string
}

func (l *fakeLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	l.calls = append(l.calls, file)
	ranks, ok := l.files[file]
	if !ok {
		return nil, errors.New("no such file")
	}
	return ranks, nil
}

func TestLoadEncoding(t *testing.T) {
	table := byteTable(identity)
	loader := &fakeLoader{files: map[string]map[string]int{
		blobURL + "cl100k_base.tiktoken": table,
	}}

	enc, err := LoadEncoding(CL100kBase, loader)
	require.NoError(t, err)
	assert.Equal(t, CL100kBase, enc.Name)
	assert.Equal(t, pretokenize.GPT4Pattern, enc.Pattern)
	assert.Equal(t, table, enc.Ranks)
	assert.Equal(t, 100257, enc.SpecialTokens[EndOfText])
	assert.Equal(t, 100276, enc.SpecialTokens[EndOfPrompt])
	assert.Len(t, enc.SpecialTokens, 5)
	assert.Equal(t, []string{blobURL + "cl100k_base.tiktoken"}, loader.calls)

	// The returned specials are a copy.
	enc.SpecialTokens["<|x|>"] = 1
	assert.NotContains(t, knownEncodings[CL100kBase].specials, "<|x|>")

	_, err = LoadEncoding(P50kBase, loader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")

	_, err = LoadEncoding("gpt-5", loader)
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestEncodings(t *testing.T) {
	assert.Equal(t, []string{CL100kBase, O200kBase, P50kBase, R50kBase}, Encodings())
	for _, name := range Encodings() {
		_, err := pretokenize.New(knownEncodings[name].pattern)
		assert.NoError(t, err, name)
	}
}

func TestCL100kBase(t *testing.T) {
	if testing.Short() {
		t.Skip("downloads cl100k_base")
	}

	enc, err := LoadEncoding(CL100kBase, nil)
	if err != nil {
		t.Skipf("cl100k_base unavailable: %v", err)
	}

	shuffle, err := enc.Validate()
	require.NoError(t, err)
	merges, err := Recover(enc.Ranks, parallel.DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, merges, len(enc.Ranks)-bpe.NumBytes)

	ref, err := enc.Reference()
	require.NoError(t, err)

	ranks := bpe.NewRanks(merges)
	for _, text := range append([]string{llamaText}, sampleTexts...) {
		assert.Equal(t, ref.EncodeOrdinary(text), encodeWith(t, enc.Pattern, text, shuffle, ranks))
	}
}
