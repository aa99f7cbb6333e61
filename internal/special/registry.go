package special

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Token is a special token string and its id.
type Token struct {
	Text string
	ID   int
}

// Registry is an immutable, order preserving set of special tokens.
//
// A nil *Registry is a valid empty registry.
type Registry struct {
	byText *orderedmap.OrderedMap[string, int]
	byID   map[int]string
	all    *regexp2.Regexp
}

// New registers tokens in the given order.
func New(tokens ...Token) (*Registry, error) {
	r := &Registry{
		byText: orderedmap.New[string, int](orderedmap.WithCapacity[string, int](len(tokens))),
		byID:   make(map[int]string, len(tokens)),
	}

	for _, tok := range tokens {
		switch {
		case tok.Text == "":
			return nil, &ValidationError{Token: tok.Text, Reason: "empty string"}
		case tok.ID < 0:
			return nil, &ValidationError{Token: tok.Text, Reason: fmt.Sprintf("negative id %d", tok.ID)}
		}
		if _, present := r.byText.Get(tok.Text); present {
			return nil, &ValidationError{Token: tok.Text, Reason: "registered twice"}
		}
		if other, ok := r.byID[tok.ID]; ok {
			return nil, &ValidationError{Token: tok.Text, Reason: fmt.Sprintf("id %d already used by %q", tok.ID, other)}
		}
		r.byText.Set(tok.Text, tok.ID)
		r.byID[tok.ID] = tok.Text
	}

	if len(tokens) > 0 {
		re, err := compileAlternation(r.texts())
		if err != nil {
			return nil, err
		}
		r.all = re
	}
	return r, nil
}

// FromMap registers tokens in ascending id order.
func FromMap(tokens map[string]int) (*Registry, error) {
	list := make([]Token, 0, len(tokens))
	for text, id := range tokens {
		list = append(list, Token{Text: text, ID: id})
	}
	slices.SortFunc(list, func(a, b Token) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return strings.Compare(a.Text, b.Text)
	})
	return New(list...)
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.byText.Len()
}

// Lookup returns the id of a special token string.
func (r *Registry) Lookup(text string) (int, bool) {
	if r == nil {
		return 0, false
	}
	return r.byText.Get(text)
}

// Text returns the string of a special token id.
func (r *Registry) Text(id int) (string, bool) {
	if r == nil {
		return "", false
	}
	s, ok := r.byID[id]
	return s, ok
}

// Contains reports whether id is a special token.
func (r *Registry) Contains(id int) bool {
	_, ok := r.Text(id)
	return ok
}

// Tokens returns the registered tokens in registration order.
func (r *Registry) Tokens() []Token {
	if r == nil {
		return nil
	}
	out := make([]Token, 0, r.byText.Len())
	for p := r.byText.Oldest(); p != nil; p = p.Next() {
		out = append(out, Token{Text: p.Key, ID: p.Value})
	}
	return out
}

// Map returns the registered tokens as a string to id map.
func (r *Registry) Map() map[string]int {
	out := make(map[string]int, r.Len())
	for _, tok := range r.Tokens() {
		out[tok.Text] = tok.ID
	}
	return out
}

func (r *Registry) texts() []string {
	toks := r.Tokens()
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

// compileAlternation builds a regex matching any of the literal texts.
//
// Longer texts come first so that, of two specials starting at the same
// position, the longer one is matched.
func compileAlternation(texts []string) (*regexp2.Regexp, error) {
	sorted := slices.Clone(texts)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	escaped := make([]string, len(sorted))
	for i, s := range sorted {
		escaped[i] = regexp2.Escape(s)
	}

	re, err := regexp2.Compile(strings.Join(escaped, "|"), regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile special token pattern: %w", err)
	}
	return re, nil
}
