// Package tokenizer provides byte-level BPE tokenization.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for training, encoding, decoding and persisting
// tokenizers.
//
// Supported tokenizers:
//   - Basic: BPE over the raw bytes of the whole text
//   - Regex: BPE within chunks produced by a split pattern (GPT-2, GPT-4)
//   - Compat: merges recovered from OpenAI rank tables (cl100k_base, ...)
//
// Example usage:
//
//	import "github.com/born-ml/minbpe/tokenizer"
//
//	// Train a tokenizer
//	tok, err := tokenizer.NewRegex(tokenizer.GPT4Pattern)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := tok.Train(text, 512, false); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode text
//	ids, err := tok.Encode("Hello, world!", tokenizer.AllowNone)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Decode tokens
//	text, err := tok.Decode(ids)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reproduce GPT-4 tokenization
//	gpt4, err := tokenizer.NewGPT4()
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/compat"
	"github.com/born-ml/minbpe/internal/pretokenize"
	"github.com/born-ml/minbpe/internal/special"
	"github.com/born-ml/minbpe/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// BPETokenizer is the implementation behind every constructor.
type BPETokenizer = tokenizer.BPETokenizer

// Capabilities lists optional operations of a tokenizer.
type Capabilities = tokenizer.Capabilities

// Config holds tokenizer settings.
type Config = tokenizer.Config

// Merge is a learned rule: a pair of ids replaced by a new id.
type Merge = bpe.Merge

// Vocab maps token ids to the bytes they stand for.
type Vocab = bpe.Vocab

// Policy decides how special token strings in input text are treated.
type Policy = special.Policy

// Encoding is a rank table with its split pattern and special tokens.
type Encoding = compat.Encoding

// Special token policies.
var (
	Reject    = special.Reject
	AllowAll  = special.AllowAll
	AllowNone = special.AllowNone
)

// AllowOnly encodes only the named special tokens as their ids.
func AllowOnly(names ...string) Policy {
	return special.AllowOnly(names...)
}

// Split patterns.
const (
	GPT2Pattern = pretokenize.GPT2Pattern
	GPT4Pattern = pretokenize.GPT4Pattern
)

// Errors returned by tokenizers.
var (
	ErrValidation   = tokenizer.ErrValidation
	ErrUnknownToken = tokenizer.ErrUnknownToken
	ErrNotSupported = tokenizer.ErrNotSupported
	ErrFile         = tokenizer.ErrFile
)

// DefaultConfig returns the configuration described by the environment
// (MINBPE_DEBUG, MINBPE_CACHE_SIZE, MINBPE_NUM_WORKERS).
func DefaultConfig() Config {
	return tokenizer.DefaultConfig()
}

// NewBasic creates an untrained tokenizer that treats the whole text as one chunk.
func NewBasic() (*BPETokenizer, error) {
	return NewBasicWithConfig(DefaultConfig())
}

// NewBasicWithConfig is NewBasic with explicit settings.
func NewBasicWithConfig(cfg Config) (*BPETokenizer, error) {
	return tokenizer.NewBasicTokenizer(cfg)
}

// NewRegex creates an untrained tokenizer that splits text with pattern.
func NewRegex(pattern string) (*BPETokenizer, error) {
	return NewRegexWithConfig(pattern, DefaultConfig())
}

// NewRegexWithConfig is NewRegex with explicit settings.
func NewRegexWithConfig(pattern string, cfg Config) (*BPETokenizer, error) {
	return tokenizer.NewRegexTokenizer(pattern, cfg)
}

// NewGPT4 creates a tokenizer equivalent to OpenAI's cl100k_base. The rank
// file is downloaded on first use and cached under TIKTOKEN_CACHE_DIR.
func NewGPT4() (*BPETokenizer, error) {
	return tokenizer.NewGPT4Tokenizer(nil, DefaultConfig())
}

// NewFromEncoding creates a tokenizer equivalent to a published OpenAI
// encoding: "cl100k_base", "o200k_base", "p50k_base" or "r50k_base".
// A nil loader uses tiktoken-go's default loader.
func NewFromEncoding(encodingName string, loader tiktoken.BpeLoader) (*BPETokenizer, error) {
	return NewFromEncodingWithConfig(encodingName, loader, DefaultConfig())
}

// NewFromEncodingWithConfig is NewFromEncoding with explicit settings.
func NewFromEncodingWithConfig(encodingName string, loader tiktoken.BpeLoader, cfg Config) (*BPETokenizer, error) {
	return tokenizer.NewEncodingTokenizer(encodingName, loader, cfg)
}

// NewFromRanks creates a tokenizer equivalent to an arbitrary rank table.
func NewFromRanks(enc *Encoding) (*BPETokenizer, error) {
	return NewFromRanksWithConfig(enc, DefaultConfig())
}

// NewFromRanksWithConfig is NewFromRanks with explicit settings.
func NewFromRanksWithConfig(enc *Encoding, cfg Config) (*BPETokenizer, error) {
	return tokenizer.NewCompatTokenizer(enc, cfg)
}

// Load creates a tokenizer from a model file written by Save.
func Load(path string) (*BPETokenizer, error) {
	return LoadWithConfig(path, DefaultConfig())
}

// LoadWithConfig is Load with explicit settings.
func LoadWithConfig(path string, cfg Config) (*BPETokenizer, error) {
	return tokenizer.Load(path, cfg)
}
