package tokenizer

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/logutil"
	"github.com/born-ml/minbpe/internal/parallel"
	"github.com/born-ml/minbpe/internal/serialization"
	"github.com/born-ml/minbpe/internal/special"
)

// Tokenizer kinds.
const (
	KindBasic  = "basic"
	KindRegex  = "regex"
	KindCompat = "compat"
)

// BPETokenizer implements byte-level Byte-Pair Encoding.
//
// A BPETokenizer may be used for encoding and decoding from many goroutines
// at once, but Train, RegisterSpecialTokens and Load must not run
// concurrently with any other method.
type BPETokenizer struct {
	kind  string
	name  string
	caps  Capabilities
	cfg   Config
	model *model
}

var _ Tokenizer = (*BPETokenizer)(nil)

func newBPETokenizer(kind, pattern string, caps Capabilities, cfg Config) (*BPETokenizer, error) {
	cfg = cfg.withDefaults()
	m, err := newModel(pattern, nil, nil, nil, cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tokenizer: %w", kind, err)
	}
	return &BPETokenizer{kind: kind, name: kind, caps: caps, cfg: cfg, model: m}, nil
}

// NewBasicTokenizer creates a tokenizer that treats the whole text as one
// chunk. It starts with the 256 byte tokens and no merges.
func NewBasicTokenizer(cfg Config) (*BPETokenizer, error) {
	return newBPETokenizer(KindBasic, "", Capabilities{Trainable: true, Persistable: true}, cfg)
}

// NewRegexTokenizer creates a tokenizer that splits text with pattern before
// merging. It starts with the 256 byte tokens and no merges.
func NewRegexTokenizer(pattern string, cfg Config) (*BPETokenizer, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrValidation)
	}
	return newBPETokenizer(KindRegex, pattern, Capabilities{Trainable: true, Persistable: true}, cfg)
}

// Load creates a tokenizer from a model file written by Save. The result is
// a basic tokenizer when the stored pattern is empty.
func Load(path string, cfg Config) (*BPETokenizer, error) {
	m, err := serialization.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	t, err := newBPETokenizer(KindBasic, "", Capabilities{Trainable: true, Persistable: true}, cfg)
	if err != nil {
		return nil, err
	}
	if err := t.install(m); err != nil {
		return nil, err
	}
	return t, nil
}

// Kind returns "basic", "regex" or "compat".
func (t *BPETokenizer) Kind() string {
	return t.kind
}

// Name returns the tokenizer name: its kind, or the encoding name for
// compat tokenizers.
func (t *BPETokenizer) Name() string {
	return t.name
}

// Pattern returns the split pattern; empty for basic tokenizers.
func (t *BPETokenizer) Pattern() string {
	return t.model.pre.Pattern()
}

// Capabilities reports the operations the tokenizer supports.
func (t *BPETokenizer) Capabilities() Capabilities {
	return t.caps
}

// Train learns vocabSize-256 merges from text.
//
// Merges learned by earlier calls are discarded; special tokens are kept and
// must not collide with the new merge ids. With verbose set every merge is
// logged at Info level.
func (t *BPETokenizer) Train(text string, vocabSize int, verbose bool) error {
	if !t.caps.Trainable {
		return notSupported("train", t.kind)
	}

	chunks, err := t.model.pre.Chunks(text)
	if err != nil {
		return fmt.Errorf("failed to split training text: %w", err)
	}
	ids := make([][]int, len(chunks))
	for i, c := range chunks {
		ids[i] = bpe.BytesToIDs(c)
	}

	numMerges := vocabSize - bpe.NumBytes
	opts := bpe.LearnOptions{}
	if verbose {
		opts.Observe = t.observer()
	}
	merges := bpe.Learn(ids, numMerges, opts)

	m, err := newModel(t.model.pre.Pattern(), merges, t.model.specials, nil, t.cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to train: %w", err)
	}
	t.model = m

	t.cfg.Logger.Debug("training finished",
		"kind", t.kind, "chunks", len(chunks), "requested", max(numMerges, 0), "merges", len(merges))
	return nil
}

// observer logs every learned merge with the bytes of the new token.
func (t *BPETokenizer) observer() func(step, total int, m bpe.Merge, count int) {
	vocab := bpe.BuildVocab(nil, nil)
	return func(step, total int, m bpe.Merge, count int) {
		tok := slices.Concat(vocab[m.Pair.Left], vocab[m.Pair.Right])
		vocab[m.ID] = tok
		t.cfg.Logger.Info("merge",
			"step", step,
			"total", total,
			"pair", m.Pair.String(),
			"id", m.ID,
			"token", serialization.RenderToken(tok),
			"count", count)
	}
}

// Encode converts text to token ids.
func (t *BPETokenizer) Encode(text string, policy special.Policy) ([]int, error) {
	ids, err := t.model.encode(text, policy)
	if err != nil {
		return nil, err
	}
	logutil.Trace(t.cfg.Logger, "encoded", "policy", policy.String(), "bytes", len(text), "tokens", len(ids))
	return ids, nil
}

// EncodeOrdinary encodes text, treating special token strings as ordinary
// text.
func (t *BPETokenizer) EncodeOrdinary(text string) ([]int, error) {
	ids, err := t.model.appendOrdinary([]int{}, text)
	if err != nil {
		return nil, err
	}
	logutil.Trace(t.cfg.Logger, "encoded", "policy", special.AllowNone.String(), "bytes", len(text), "tokens", len(ids))
	return ids, nil
}

// EncodeBatch encodes texts concurrently. The result is in input order; on
// failure the error of the first failing text is returned.
func (t *BPETokenizer) EncodeBatch(texts []string, policy special.Policy) ([][]int, error) {
	out := make([][]int, len(texts))
	err := parallel.ForErr(len(texts), func(i int) error {
		ids, err := t.Encode(texts[i], policy)
		if err != nil {
			return fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = ids
		return nil
	}, t.cfg.Parallel)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Decode converts token ids back to text.
func (t *BPETokenizer) Decode(ids []int) (string, error) {
	text, err := t.model.decode(ids)
	if err != nil {
		return "", err
	}
	logutil.Trace(t.cfg.Logger, "decoded", "tokens", len(ids), "bytes", len(text))
	return text, nil
}

// RegisterSpecialTokens replaces the special tokens. Tokens are registered
// in ascending id order; ids must not collide with byte or merge ids.
func (t *BPETokenizer) RegisterSpecialTokens(tokens map[string]int) error {
	reg, err := special.FromMap(tokens)
	if err != nil {
		return err
	}
	m, err := t.model.withSpecials(reg, t.cfg.CacheSize)
	if err != nil {
		return err
	}
	t.model = m
	return nil
}

// Save writes <prefix>.model and <prefix>.vocab.
func (t *BPETokenizer) Save(prefix string) error {
	if !t.caps.Persistable {
		return notSupported("save", t.kind)
	}

	m := &serialization.Model{
		Pattern:  t.model.pre.Pattern(),
		Specials: t.model.specials.Tokens(),
		Merges:   t.model.merges,
	}
	if err := serialization.SaveModel(prefix+serialization.ModelSuffix, m); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err := serialization.SaveVocab(prefix+serialization.VocabSuffix, m); err != nil {
		return fmt.Errorf("failed to save vocab: %w", err)
	}
	return nil
}

// Load replaces the pattern, merges and special tokens with those saved in
// the model file at path.
func (t *BPETokenizer) Load(path string) error {
	if !t.caps.Persistable {
		return notSupported("load", t.kind)
	}

	m, err := serialization.LoadModel(path)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}
	return t.install(m)
}

func (t *BPETokenizer) install(sm *serialization.Model) error {
	reg, err := special.New(sm.Specials...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFile, err)
	}
	m, err := newModel(sm.Pattern, sm.Merges, reg, nil, t.cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFile, err)
	}

	t.model = m
	if sm.Pattern == "" {
		t.kind, t.name = KindBasic, KindBasic
	} else {
		t.kind, t.name = KindRegex, KindRegex
	}
	return nil
}

// Merges returns a copy of the merge rules in priority order.
func (t *BPETokenizer) Merges() []bpe.Merge {
	return slices.Clone(t.model.merges)
}

// Vocab returns a copy of the vocabulary.
func (t *BPETokenizer) Vocab() bpe.Vocab {
	v := maps.Clone(t.model.vocab)
	for id, b := range v {
		v[id] = bytes.Clone(b)
	}
	return v
}

// VocabSize returns the number of tokens, special tokens included.
func (t *BPETokenizer) VocabSize() int {
	return len(t.model.vocab)
}

// SpecialTokens returns the special tokens in registration order.
func (t *BPETokenizer) SpecialTokens() []special.Token {
	return t.model.specials.Tokens()
}

// IsSpecialToken checks if a token id is a special token.
func (t *BPETokenizer) IsSpecialToken(id int) bool {
	return t.model.specials.Contains(id)
}
