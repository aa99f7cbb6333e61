package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/born-ml/minbpe/internal/compat"
	"github.com/born-ml/minbpe/internal/special"
)

// NewCompatTokenizer creates a tokenizer that reproduces enc exactly.
//
// The merge rules are recovered from the rank table; the tokenizer can
// encode and decode but not be trained or saved.
func NewCompatTokenizer(enc *compat.Encoding, cfg Config) (*BPETokenizer, error) {
	cfg = cfg.withDefaults()

	shuffle, err := enc.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate encoding %q: %w", enc.Name, err)
	}
	merges, err := compat.Recover(enc.Ranks, cfg.Parallel)
	if err != nil {
		return nil, fmt.Errorf("failed to recover merges of %q: %w", enc.Name, err)
	}
	specials, err := special.FromMap(enc.SpecialTokens)
	if err != nil {
		return nil, err
	}

	m, err := newModel(enc.Pattern, merges, specials, shuffle, cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create compat tokenizer: %w", err)
	}

	cfg.Logger.Debug("compat tokenizer ready",
		"encoding", enc.Name, "merges", len(merges), "specials", specials.Len(), "shuffled", !shuffle.IsIdentity())

	return &BPETokenizer{kind: KindCompat, name: enc.Name, cfg: cfg, model: m}, nil
}

// NewEncodingTokenizer creates a compat tokenizer for a published encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "o200k_base" (GPT-4o),
// "p50k_base" and "r50k_base" (GPT-3). A nil loader downloads the rank
// file with tiktoken-go's default loader.
func NewEncodingTokenizer(encodingName string, loader tiktoken.BpeLoader, cfg Config) (*BPETokenizer, error) {
	enc, err := compat.LoadEncoding(encodingName, loader)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", encodingName, err)
	}
	return NewCompatTokenizer(enc, cfg)
}

// NewGPT4Tokenizer creates a compat tokenizer for cl100k_base with the GPT-4
// split pattern and special tokens.
func NewGPT4Tokenizer(loader tiktoken.BpeLoader, cfg Config) (*BPETokenizer, error) {
	return NewEncodingTokenizer(compat.CL100kBase, loader, cfg)
}
