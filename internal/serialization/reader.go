package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/special"
)

// maxLineSize bounds a single line; patterns are the only long lines.
const maxLineSize = 1 << 20

// lineReader yields lines and counts them for error reporting.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{scanner: s}
}

// next returns the next line without its line terminator.
func (lr *lineReader) next(what string) (string, error) {
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrFile, err)
		}
		return "", &ParseError{Line: lr.line + 1, Msg: "unexpected end of file, want " + what}
	}
	lr.line++
	return strings.TrimSuffix(lr.scanner.Text(), "\r"), nil
}

func (lr *lineReader) errorf(format string, args ...any) error {
	return &ParseError{Line: lr.line, Msg: fmt.Sprintf(format, args...)}
}

func (lr *lineReader) count(what string) (int, error) {
	s, err := lr.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, lr.errorf("invalid %s %q", what, s)
	}
	return n, nil
}

// fields splits a line that must hold exactly two fields.
func (lr *lineReader) fields(what string) (string, string, error) {
	s, err := lr.next(what)
	if err != nil {
		return "", "", err
	}
	f := strings.Fields(s)
	if len(f) != 2 {
		return "", "", lr.errorf("%s: want 2 fields, got %d", what, len(f))
	}
	return f[0], f[1], nil
}

func (lr *lineReader) id(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, lr.errorf("invalid token id %q", s)
	}
	return id, nil
}

// ReadFrom parses a model file.
//
// Merge ids are assigned as 256 plus the row index, and each rule may only
// reference ids created before it. Anything after the last merge line is
// ignored.
func ReadFrom(r io.Reader) (*Model, error) {
	lr := newLineReader(r)

	version, err := lr.next("version")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(version) != FormatVersion {
		return nil, fmt.Errorf("%w: %w", lr.errorf("version %q, want %q", version, FormatVersion), ErrUnsupportedVersion)
	}

	pattern, err := lr.next("pattern")
	if err != nil {
		return nil, err
	}

	numSpecials, err := lr.count("special token count")
	if err != nil {
		return nil, err
	}
	specials := make([]special.Token, 0, min(numSpecials, 1024))
	seenText := make(map[string]struct{})
	seenID := make(map[int]struct{})
	for range numSpecials {
		text, idField, err := lr.fields("special token")
		if err != nil {
			return nil, err
		}
		id, err := lr.id(idField)
		if err != nil {
			return nil, err
		}
		if _, ok := seenText[text]; ok {
			return nil, lr.errorf("duplicate special token %q", text)
		}
		if _, ok := seenID[id]; ok {
			return nil, lr.errorf("duplicate special token id %d", id)
		}
		seenText[text], seenID[id] = struct{}{}, struct{}{}
		specials = append(specials, special.Token{Text: text, ID: id})
	}

	numMerges, err := lr.count("merge count")
	if err != nil {
		return nil, err
	}
	merges := make([]bpe.Merge, 0, min(numMerges, 1<<16))
	seenPair := make(map[bpe.Pair]struct{})
	for i := range numMerges {
		left, right, err := lr.fields("merge")
		if err != nil {
			return nil, err
		}
		m := bpe.Merge{ID: bpe.NumBytes + i}
		if m.Pair.Left, err = lr.id(left); err != nil {
			return nil, err
		}
		if m.Pair.Right, err = lr.id(right); err != nil {
			return nil, err
		}
		if m.Pair.Left >= m.ID || m.Pair.Right >= m.ID {
			return nil, lr.errorf("merge %s references an id not defined before %d", m.Pair, m.ID)
		}
		if _, ok := seenPair[m.Pair]; ok {
			return nil, lr.errorf("duplicate merge %s", m.Pair)
		}
		seenPair[m.Pair] = struct{}{}
		merges = append(merges, m)
	}

	return &Model{Pattern: pattern, Specials: specials, Merges: merges}, nil
}

// LoadModel reads the model file at path.
func LoadModel(path string) (*Model, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file: %w", ErrFile, err)
	}
	defer func() {
		_ = file.Close()
	}()

	m, err := ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return m, nil
}
