package compat

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/pretokenize"
)

// Encoding names known to LoadEncoding.
const (
	CL100kBase = "cl100k_base"
	P50kBase   = "p50k_base"
	R50kBase   = "r50k_base"
	O200kBase  = "o200k_base"
)

// Special token strings used by the OpenAI encodings.
const (
	EndOfText   = "<|endoftext|>"
	FIMPrefix   = "<|fim_prefix|>"
	FIMMiddle   = "<|fim_middle|>"
	FIMSuffix   = "<|fim_suffix|>"
	EndOfPrompt = "<|endofprompt|>"
)

const blobURL = "https://openaipublic.blob.core.windows.net/encodings/"

const gpt2Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

var o200kPattern = strings.Join([]string{
	`[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?`,
	`[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?`,
	`\p{N}{1,3}`,
	` ?[^\s\p{L}\p{N}]+[\r\n/]*`,
	`\s*[\r\n]+`,
	`\s+(?!\S)`,
	`\s+`,
}, "|")

type knownEncoding struct {
	file     string
	pattern  string
	specials map[string]int
}

var knownEncodings = map[string]knownEncoding{
	CL100kBase: {
		file:    blobURL + "cl100k_base.tiktoken",
		pattern: pretokenize.GPT4Pattern,
		specials: map[string]int{
			EndOfText:   100257,
			FIMPrefix:   100258,
			FIMMiddle:   100259,
			FIMSuffix:   100260,
			EndOfPrompt: 100276,
		},
	},
	P50kBase: {
		file:     blobURL + "p50k_base.tiktoken",
		pattern:  gpt2Pattern,
		specials: map[string]int{EndOfText: 50256},
	},
	R50kBase: {
		file:     blobURL + "r50k_base.tiktoken",
		pattern:  gpt2Pattern,
		specials: map[string]int{EndOfText: 50256},
	},
	O200kBase: {
		file:    blobURL + "o200k_base.tiktoken",
		pattern: o200kPattern,
		specials: map[string]int{
			EndOfText:   199999,
			EndOfPrompt: 200018,
		},
	},
}

// Encoding is a rank table with the split pattern and special tokens that
// go with it. It has the shape of tiktoken.Encoding.
type Encoding struct {
	Name          string
	Pattern       string
	Ranks         map[string]int
	SpecialTokens map[string]int
}

// Encodings lists the names accepted by LoadEncoding.
func Encodings() []string {
	return slices.Sorted(maps.Keys(knownEncodings))
}

// LoadEncoding fetches the rank table of a known encoding through loader.
// A nil loader uses tiktoken-go's default loader, which downloads the file
// once and caches it under TIKTOKEN_CACHE_DIR.
func LoadEncoding(name string, loader tiktoken.BpeLoader) (*Encoding, error) {
	known, ok := knownEncodings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if loader == nil {
		loader = tiktoken.NewDefaultBpeLoader()
	}

	ranks, err := loader.LoadTiktokenBpe(known.file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s ranks: %w", name, err)
	}

	return &Encoding{
		Name:          name,
		Pattern:       known.pattern,
		Ranks:         ranks,
		SpecialTokens: maps.Clone(known.specials),
	}, nil
}

// Validate checks the table and returns the shuffle of its single bytes.
//
// All 256 single bytes must be present with ranks forming a permutation of
// 0..255. Multi-byte entries must rank at 256 or above, and no two entries
// may share a rank. Special token ids must not collide with ranks.
func (e *Encoding) Validate() (*ByteShuffle, error) {
	var byteRanks [bpe.NumBytes]int
	var found [bpe.NumBytes]bool
	owner := make(map[int]string, len(e.Ranks))

	for tok, r := range e.Ranks {
		if len(tok) == 0 {
			return nil, fmt.Errorf("%w: empty token with rank %d", ErrInvalidRanks, r)
		}
		if prev, dup := owner[r]; dup {
			return nil, fmt.Errorf("%w: rank %d is shared by %q and %q", ErrInvalidRanks, r, prev, tok)
		}
		owner[r] = tok

		if len(tok) == 1 {
			byteRanks[tok[0]] = r
			found[tok[0]] = true
			continue
		}
		if r < bpe.NumBytes {
			return nil, fmt.Errorf("%w: multi-byte token %q has rank %d below %d", ErrInvalidRanks, tok, r, bpe.NumBytes)
		}
	}

	for b, ok := range found {
		if !ok {
			return nil, fmt.Errorf("%w: byte 0x%02x is missing", ErrInvalidRanks, b)
		}
	}

	for s, id := range e.SpecialTokens {
		if tok, ok := owner[id]; ok {
			return nil, fmt.Errorf("%w: special token %q id %d is the rank of %q", ErrInvalidRanks, s, id, tok)
		}
	}

	return NewByteShuffle(byteRanks)
}

// Reference builds tiktoken-go's encoder over the same table.
func (e *Encoding) Reference() (*tiktoken.Tiktoken, error) {
	core, err := tiktoken.NewCoreBPE(e.Ranks, e.SpecialTokens, e.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference encoder: %w", err)
	}

	set := make(map[string]any, len(e.SpecialTokens))
	for s := range e.SpecialTokens {
		set[s] = true
	}

	return tiktoken.NewTiktoken(core, &tiktoken.Encoding{
		Name:           e.Name,
		PatStr:         e.Pattern,
		MergeableRanks: e.Ranks,
		SpecialTokens:  e.SpecialTokens,
	}, set), nil
}

// FromMerges builds the rank table that a trained merge list implies.
//
// Every merge contributes its expanded bytes with its id as rank. Single
// bytes are ranked through shuffle, or by value when shuffle is nil. Two
// merges that expand to the same bytes cannot be told apart by a rank table
// and are rejected.
func FromMerges(name, pattern string, merges []bpe.Merge, specials map[string]int, shuffle *ByteShuffle) (*Encoding, error) {
	if err := bpe.ValidateMerges(merges); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRanks, err)
	}
	if shuffle == nil {
		shuffle = IdentityShuffle()
	}

	vocab := bpe.BuildVocab(merges, nil)
	ranks := make(map[string]int, len(vocab))
	for b := range bpe.NumBytes {
		ranks[string([]byte{byte(b)})] = shuffle.Rank(byte(b))
	}
	for _, m := range merges {
		tok := string(vocab[m.ID])
		if prev, dup := ranks[tok]; dup {
			return nil, fmt.Errorf("%w: merges %d and %d both expand to %q", ErrInvalidRanks, prev, m.ID, tok)
		}
		ranks[tok] = m.ID
	}

	enc := &Encoding{
		Name:          name,
		Pattern:       pattern,
		Ranks:         ranks,
		SpecialTokens: maps.Clone(specials),
	}
	if enc.SpecialTokens == nil {
		enc.SpecialTokens = map[string]int{}
	}
	return enc, nil
}
