package tokenizer

import (
	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/special"
)

// Tokenizer is the core interface for text tokenization.
//
// Operations a tokenizer does not support fail with ErrNotSupported; which
// ones those are is fixed at construction and reported by Capabilities.
type Tokenizer interface {
	// Train learns vocabSize-256 merges from text, replacing any previous
	// merges. Fewer merges are learned when the text runs out of pairs.
	Train(text string, vocabSize int, verbose bool) error

	// Encode converts text to token ids. policy decides which special
	// token strings in text are encoded as their ids.
	Encode(text string, policy special.Policy) ([]int, error)

	// EncodeOrdinary encodes text ignoring special tokens.
	EncodeOrdinary(text string) ([]int, error)

	// EncodeBatch encodes independent texts concurrently.
	EncodeBatch(texts []string, policy special.Policy) ([][]int, error)

	// Decode converts token ids back to text. Invalid UTF-8 is replaced
	// with U+FFFD.
	Decode(ids []int) (string, error)

	// RegisterSpecialTokens replaces the set of special tokens.
	RegisterSpecialTokens(tokens map[string]int) error

	// Save writes <prefix>.model and <prefix>.vocab.
	Save(prefix string) error

	// Load replaces the tokenizer state with a saved model.
	Load(path string) error

	// Merges returns the merge rules in priority order.
	Merges() []bpe.Merge

	// Vocab returns the bytes of every token, special tokens included.
	Vocab() bpe.Vocab

	// VocabSize returns the number of tokens, special tokens included.
	VocabSize() int

	// IsSpecialToken checks if a token id is a special token.
	IsSpecialToken(id int) bool

	// Capabilities reports the operations the tokenizer supports.
	Capabilities() Capabilities
}

// Capabilities lists optional operations of a tokenizer.
type Capabilities struct {
	Trainable   bool // Train is supported
	Persistable bool // Save and Load are supported
}
