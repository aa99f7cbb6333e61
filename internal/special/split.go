package special

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Segment is a piece of input text: either a special token or ordinary text.
type Segment struct {
	Text    string
	ID      int
	Special bool
}

// Split cuts text around the special tokens allowed by policy.
//
// Matches are literal, non-overlapping and found left to right. Under Reject
// the text must not contain any registered special string. Ordinary segments
// are byte-exact slices of text and are never empty.
func (r *Registry) Split(text string, policy Policy) ([]Segment, error) {
	if text == "" {
		return nil, nil
	}

	re, err := r.matcher(policy)
	if err != nil {
		return nil, err
	}
	if policy.mode == modeReject {
		for _, s := range r.texts() {
			if strings.Contains(text, s) {
				return nil, &ValidationError{Token: s, Reason: "disallowed in input text"}
			}
		}
	}
	if re == nil {
		return []Segment{{Text: text}}, nil
	}

	// regexp2 reports rune positions; map them back to byte offsets so that
	// ordinary text is passed through unchanged.
	runes := []rune(text)
	offsets := make([]int, 0, len(runes)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	var segments []Segment
	last := 0
	m, err := re.FindRunesMatch(runes)
	for ; m != nil && err == nil; m, err = re.FindNextMatch(m) {
		start, end := offsets[m.Index], offsets[m.Index+m.Length]
		if start > last {
			segments = append(segments, Segment{Text: text[last:start]})
		}
		tok := text[start:end]
		id, ok := r.Lookup(tok)
		if !ok {
			id, _ = r.Lookup(m.String())
		}
		segments = append(segments, Segment{Text: tok, ID: id, Special: true})
		last = end
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match special tokens: %w", err)
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments, nil
}

// matcher returns the regex for the specials allowed by policy, or nil when
// no special may be matched.
func (r *Registry) matcher(policy Policy) (*regexp2.Regexp, error) {
	if r.Len() == 0 {
		return nil, nil
	}

	switch policy.mode {
	case modeAll:
		return r.all, nil
	case modeOnly:
		var allowed []string
		for _, name := range policy.names {
			if _, ok := r.Lookup(name); ok {
				allowed = append(allowed, name)
			}
		}
		if len(allowed) == 0 {
			return nil, nil
		}
		return compileAlternation(allowed)
	default:
		return nil, nil
	}
}
