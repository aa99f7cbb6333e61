// Package pretokenize splits text into the chunks BPE merges are confined to.
package pretokenize

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

const (
	// GPT2Pattern splits words, numbers, punctuation runs and whitespace.
	GPT2Pattern = `'(?:[sdmt]|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

	// GPT4Pattern refines GPT2Pattern: case-insensitive contractions, numbers
	// of at most three digits, and newlines kept attached to punctuation runs.
	GPT4Pattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

// Pretokenizer splits text with a regular expression.
//
// The zero pattern is valid and treats the whole text as a single chunk.
type Pretokenizer struct {
	pattern string
	re      *regexp2.Regexp
}

// New compiles pattern.
func New(pattern string) (*Pretokenizer, error) {
	p := &Pretokenizer{pattern: pattern}
	if pattern == "" {
		return p, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	p.re = re
	return p, nil
}

// Pattern returns the source pattern.
func (p *Pretokenizer) Pattern() string {
	return p.pattern
}

// Split returns every match of the pattern in order.
//
// Text not covered by any match is dropped; both canonical patterns match
// every position.
func (p *Pretokenizer) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if p.re == nil {
		return []string{text}, nil
	}

	var chunks []string
	m, err := p.re.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = p.re.FindNextMatch(m) {
		chunks = append(chunks, m.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}
	return chunks, nil
}

// Chunks is Split with every chunk converted to its UTF-8 bytes.
func (p *Pretokenizer) Chunks(text string) ([][]byte, error) {
	if p.re == nil {
		if text == "" {
			return nil, nil
		}
		return [][]byte{[]byte(text)}, nil
	}

	parts, err := p.Split(text)
	if err != nil {
		return nil, err
	}
	chunks := make([][]byte, len(parts))
	for i, s := range parts {
		chunks[i] = []byte(s)
	}
	return chunks, nil
}
