package tokenizer

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/compat"
	"github.com/born-ml/minbpe/internal/pretokenize"
	"github.com/born-ml/minbpe/internal/special"
	"github.com/born-ml/minbpe/internal/textutil"
)

// model is the immutable state of a tokenizer. Changing merges or special
// tokens builds a new model.
type model struct {
	pre      *pretokenize.Pretokenizer
	merges   []bpe.Merge
	ranks    bpe.Ranks
	vocab    bpe.Vocab
	specials *special.Registry

	// shuffle maps raw bytes to base ids; nil when bytes are their own ids.
	shuffle *compat.ByteShuffle

	// cache memoizes chunk encodings; nil when disabled.
	cache *lru.Cache[string, []int]
}

func newModel(pattern string, merges []bpe.Merge, specials *special.Registry, shuffle *compat.ByteShuffle, cacheSize int) (*model, error) {
	pre, err := pretokenize.New(pattern)
	if err != nil {
		return nil, err
	}

	vocab := bpe.BuildVocab(merges, nil)
	if shuffle != nil {
		for id, b := range vocab {
			vocab[id] = shuffle.Restore(b)
		}
	}
	for _, tok := range specials.Tokens() {
		if _, taken := vocab[tok.ID]; taken {
			return nil, &special.ValidationError{
				Token:  tok.Text,
				Reason: fmt.Sprintf("id %d is already a byte or merge id", tok.ID),
			}
		}
		vocab[tok.ID] = []byte(tok.Text)
	}

	m := &model{
		pre:      pre,
		merges:   merges,
		ranks:    bpe.NewRanks(merges),
		vocab:    vocab,
		specials: specials,
		shuffle:  shuffle,
	}
	if cacheSize > 0 {
		m.cache, err = lru.New[string, []int](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create encode cache: %w", err)
		}
	}
	return m, nil
}

// withSpecials returns a copy of m with a different set of special tokens.
func (m *model) withSpecials(specials *special.Registry, cacheSize int) (*model, error) {
	return newModel(m.pre.Pattern(), m.merges, specials, m.shuffle, cacheSize)
}

// encodeChunk encodes the bytes of one chunk. The result may be shared with
// the cache and must not be modified.
func (m *model) encodeChunk(chunk []byte) []int {
	if m.cache != nil {
		if ids, ok := m.cache.Get(string(chunk)); ok {
			return ids
		}
	}

	var ids []int
	if m.shuffle != nil {
		ids = m.shuffle.Apply(chunk)
	} else {
		ids = bpe.BytesToIDs(chunk)
	}
	ids = bpe.Encode(ids, m.ranks)

	if m.cache != nil {
		m.cache.Add(string(chunk), ids)
	}
	return ids
}

// appendOrdinary appends the encoding of text, ignoring special tokens.
func (m *model) appendOrdinary(dst []int, text string) ([]int, error) {
	chunks, err := m.pre.Chunks(text)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		dst = append(dst, m.encodeChunk(c)...)
	}
	return dst, nil
}

func (m *model) encode(text string, policy special.Policy) ([]int, error) {
	segments, err := m.specials.Split(text, policy)
	if err != nil {
		return nil, err
	}

	ids := []int{}
	for _, seg := range segments {
		if seg.Special {
			ids = append(ids, seg.ID)
			continue
		}
		if ids, err = m.appendOrdinary(ids, seg.Text); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (m *model) decode(ids []int) (string, error) {
	var buf []byte
	for _, id := range ids {
		var ok bool
		if buf, ok = m.vocab.Append(buf, id); !ok {
			return "", &UnknownTokenError{ID: id}
		}
	}

	return textutil.String(buf), nil
}
