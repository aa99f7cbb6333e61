package serialization

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minbpe/internal/bpe"
	"github.com/born-ml/minbpe/internal/special"
)

func testModel() *Model {
	return &Model{
		Pattern: `\s+(?!\S)|\s+`,
		Specials: []special.Token{
			{Text: "<|endoftext|>", ID: 1000},
			{Text: "<|fim|>", ID: 999},
		},
		Merges: []bpe.Merge{
			{Pair: bpe.Pair{Left: 97, Right: 97}, ID: 256},
			{Pair: bpe.Pair{Left: 97, Right: 98}, ID: 257},
			{Pair: bpe.Pair{Left: 256, Right: 257}, ID: 258},
		},
	}
}

const testModelFile = `minbpe v1.0
\s+(?!\S)|\s+
2
<|endoftext|> 1000
<|fim|> 999
3
97 97
97 98
256 257
`

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testModel()))
	assert.Equal(t, testModelFile, buf.String())
}

func TestReadFrom(t *testing.T) {
	m, err := ReadFrom(strings.NewReader(testModelFile))
	require.NoError(t, err)
	assert.Equal(t, testModel(), m)
}

func TestReadFrom_CRLF(t *testing.T) {
	m, err := ReadFrom(strings.NewReader(strings.ReplaceAll(testModelFile, "\n", "\r\n")))
	require.NoError(t, err)
	assert.Equal(t, testModel(), m)
}

func TestReadFrom_EmptyModel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, &Model{}))
	assert.Equal(t, "minbpe v1.0\n\n0\n0\n", buf.String())

	m, err := ReadFrom(&buf)
	require.NoError(t, err)
	assert.Empty(t, m.Pattern)
	assert.Empty(t, m.Specials)
	assert.Empty(t, m.Merges)
}

func TestReadFrom_Errors(t *testing.T) {
	const head = "minbpe v1.0\n\n"

	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{"empty file", "", 1, "unexpected end of file"},
		{"no pattern", "minbpe v1.0\n", 2, "unexpected end of file"},
		{"special count not a number", head + "two\n", 3, "invalid special token count"},
		{"negative count", head + "-1\n", 3, "invalid special token count"},
		{"special missing id", head + "1\n<|x|>\n", 4, "want 2 fields, got 1"},
		{"special extra field", head + "1\n<|x|> 5 6\n", 4, "want 2 fields, got 3"},
		{"special id not a number", head + "1\n<|x|> five\n", 4, "invalid token id"},
		{"duplicate special", head + "2\n<|x|> 500\n<|x|> 501\n", 5, "duplicate special token"},
		{"duplicate special id", head + "2\n<|x|> 500\n<|y|> 500\n", 5, "duplicate special token id"},
		{"no merge count", head + "0\n", 4, "unexpected end of file"},
		{"truncated merges", head + "0\n2\n97 97\n", 6, "unexpected end of file"},
		{"merge one field", head + "0\n1\n97\n", 5, "want 2 fields, got 1"},
		{"merge id not a number", head + "0\n1\n97 x\n", 5, "invalid token id"},
		{"merge negative id", head + "0\n1\n-1 97\n", 5, "invalid token id"},
		{"merge forward reference", head + "0\n1\n256 97\n", 5, "references an id not defined"},
		{"duplicate merge", head + "0\n2\n97 97\n97 97\n", 6, "duplicate merge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrom(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFile)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.Contains(t, perr.Msg, tt.wantMsg)
		})
	}
}

func TestReadFrom_WrongVersion(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("minbpe v2.0\n\n0\n0\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFile)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), "line 1")
}

func TestValidateModel(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *Model)
		wantType string
	}{
		{"valid", func(*Model) {}, ""},
		{"pattern newline", func(m *Model) { m.Pattern = "a\nb" }, "pattern_newline"},
		{"special whitespace", func(m *Model) { m.Specials[0].Text = "<|end of text|>" }, "special_whitespace"},
		{"special empty", func(m *Model) { m.Specials[0].Text = "" }, "special_empty"},
		{"special collides with merge", func(m *Model) { m.Specials[0].ID = 257 }, "special_id"},
		{"special collides with byte", func(m *Model) { m.Specials[0].ID = 65 }, "special_id"},
		{"duplicate special id", func(m *Model) { m.Specials[1].ID = 1000 }, "special_duplicate"},
		{"duplicate special text", func(m *Model) { m.Specials[1].Text = m.Specials[0].Text }, "special_duplicate"},
		{"sparse merges", func(m *Model) { m.Merges[2].ID = 300 }, "invalid_merges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			tt.mutate(m)

			err := ValidateModel(m)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidModel)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantType, verr.Type)
		})
	}
}

func TestSaveModel_LoadModel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	path := filepath.Join(dir, "tok"+ModelSuffix)

	require.NoError(t, SaveModel(path, testModel()))

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, testModel(), m)

	// Overwrite in place.
	smaller := testModel()
	smaller.Merges = smaller.Merges[:1]
	require.NoError(t, SaveModel(path, smaller))
	m, err = LoadModel(path)
	require.NoError(t, err)
	assert.Len(t, m.Merges, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "tok.model", entries[0].Name())
}

func TestSaveModel_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tok.model")

	m := testModel()
	m.Specials[0].Text = "has space"
	err := SaveModel(path, m)
	assert.ErrorIs(t, err, ErrInvalidModel)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadModel_Missing(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.model"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFile)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadModel_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.model")
	require.NoError(t, os.WriteFile(path, []byte("minbpe v1.0\n\n0\n1\n97\n"), 0o600))

	_, err := LoadModel(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFile)
	assert.Contains(t, err.Error(), "bad.model")
	assert.Contains(t, err.Error(), "line 5")
}

func TestWriteVocab(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVocab(&buf, testModel()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 256+3+2)

	assert.Equal(t, `[\u0000] 0`, lines[0])
	assert.Equal(t, `[\u000a] 10`, lines[10])
	assert.Equal(t, "[ ] 32", lines[32])
	assert.Equal(t, "[a] 97", lines[97])
	assert.Equal(t, "[�] 200", lines[200])
	assert.Equal(t, "[a][a] -> [aa] 256", lines[256])
	assert.Equal(t, "[a][b] -> [ab] 257", lines[257])
	assert.Equal(t, "[aa][ab] -> [aaab] 258", lines[258])
	assert.Equal(t, "[<|endoftext|>] 1000", lines[259])
	assert.Equal(t, "[<|fim|>] 999", lines[260])
}

func TestSaveVocab(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tok"+VocabSuffix)
	require.NoError(t, SaveVocab(path, testModel()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[aa][ab] -> [aaab] 258\n")
}

func TestRenderToken(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"space", []byte(" the"), " the"},
		{"newline", []byte("\n"), `\u000a`},
		{"tab and carriage return", []byte("\r\t"), `\u000d\u0009`},
		{"multibyte", []byte("héllo 你好"), "héllo 你好"},
		{"invalid byte", []byte{0xff}, "�"},
		{"truncated rune", []byte{' ', 0xe4, 0xbd}, " �"},
		{"format character", []byte("a\u200bb"), `a\u200bb`},
		{"line separator", []byte("\u2028"), "\u2028"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderToken(tt.input))
		})
	}
}
