package serialization

import (
	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/special"
)

// Format constants.
const (
	FormatVersion = "minbpe v1.0" // First line of every model file
	ModelSuffix   = ".model"
	VocabSuffix   = ".vocab"
)

// Model is the persisted state of a trained tokenizer.
type Model struct {
	Pattern  string          // Split pattern; empty for the basic tokenizer
	Specials []special.Token // Special tokens in registration order
	Merges   []bpe.Merge     // Rules in learned order; ids are 256, 257, ...
}
