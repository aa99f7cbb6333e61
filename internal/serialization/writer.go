package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/textutil"
)

// WriteTo writes m in model file format.
func WriteTo(w io.Writer, m *Model) error {
	if err := ValidateModel(m); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, FormatVersion)
	fmt.Fprintln(bw, m.Pattern)

	fmt.Fprintln(bw, len(m.Specials))
	for _, tok := range m.Specials {
		fmt.Fprintf(bw, "%s %d\n", tok.Text, tok.ID)
	}

	fmt.Fprintln(bw, len(m.Merges))
	for _, mg := range m.Merges {
		fmt.Fprintf(bw, "%d %d\n", mg.Pair.Left, mg.Pair.Right)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// WriteVocab writes a human-readable listing of every token of m.
//
// Merged tokens are shown with their parts, "[a][b] -> [ab] 256"; bytes and
// special tokens as "[a] 97". Tokens are decoded as UTF-8 with replacement
// and non-printable characters are escaped as \uXXXX.
func WriteVocab(w io.Writer, m *Model) error {
	specials := make(map[string]int, len(m.Specials))
	for _, tok := range m.Specials {
		specials[tok.Text] = tok.ID
	}
	vocab := bpe.BuildVocab(m.Merges, specials)

	bw := bufio.NewWriter(w)
	for id := range bpe.NumBytes {
		fmt.Fprintf(bw, "[%s] %d\n", RenderToken(vocab[id]), id)
	}
	for _, mg := range m.Merges {
		fmt.Fprintf(bw, "[%s][%s] -> [%s] %d\n",
			RenderToken(vocab[mg.Pair.Left]), RenderToken(vocab[mg.Pair.Right]), RenderToken(vocab[mg.ID]), mg.ID)
	}
	for _, tok := range m.Specials {
		fmt.Fprintf(bw, "[%s] %d\n", RenderToken([]byte(tok.Text)), tok.ID)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write vocab: %w", err)
	}
	return nil
}

// RenderToken returns a printable form of token bytes.
func RenderToken(b []byte) string {
	var sb strings.Builder
	for _, r := range textutil.String(b) {
		if unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z) {
			sb.WriteRune(r)
			continue
		}
		fmt.Fprintf(&sb, "\\u%04x", r)
	}
	return sb.String()
}

// SaveModel writes m to path, replacing any existing file.
func SaveModel(path string, m *Model) error {
	if err := ValidateModel(m); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return WriteTo(w, m)
	})
}

// SaveVocab writes the vocab listing of m to path, replacing any existing file.
func SaveVocab(path string, m *Model) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteVocab(w, m)
	})
}

// writeFile writes to a temporary file next to path and renames it into
// place once write succeeded. Missing parent directories are created.
func writeFile(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + "." + uuid.New().String() + ".tmp"
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
