package serialization

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/born-ml/minbpe/internal/bpe"
)

// ValidateModel checks that m can be written and read back unchanged.
//
// The line format cannot represent a pattern containing a line break or a
// special token containing whitespace. Special ids must be unique and must
// not collide with byte or merge ids.
func ValidateModel(m *Model) error {
	if strings.ContainsAny(m.Pattern, "\r\n") {
		return &ValidationError{Type: "pattern_newline", Details: "pattern contains a line break"}
	}

	if err := bpe.ValidateMerges(m.Merges); err != nil {
		return &ValidationError{Type: "invalid_merges", Details: err.Error()}
	}

	next := bpe.NumBytes + len(m.Merges)
	seenText := make(map[string]struct{}, len(m.Specials))
	seenID := make(map[int]struct{}, len(m.Specials))
	for _, tok := range m.Specials {
		if tok.Text == "" {
			return &ValidationError{Type: "special_empty", Details: fmt.Sprintf("empty special token with id %d", tok.ID)}
		}
		if strings.IndexFunc(tok.Text, unicode.IsSpace) >= 0 {
			return &ValidationError{Type: "special_whitespace", Token: tok.Text, Details: "contains whitespace"}
		}
		if tok.ID < next {
			return &ValidationError{
				Type:    "special_id",
				Token:   tok.Text,
				Details: fmt.Sprintf("id %d collides with byte or merge ids (0..%d)", tok.ID, next-1),
			}
		}
		if _, ok := seenText[tok.Text]; ok {
			return &ValidationError{Type: "special_duplicate", Token: tok.Text, Details: "registered twice"}
		}
		if _, ok := seenID[tok.ID]; ok {
			return &ValidationError{Type: "special_duplicate", Token: tok.Text, Details: fmt.Sprintf("id %d is already used", tok.ID)}
		}
		seenText[tok.Text] = struct{}{}
		seenID[tok.ID] = struct{}{}
	}
	return nil
}
