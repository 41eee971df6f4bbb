package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

func writeSource(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestReadDelimitedFile(t *testing.T) {
	tests := []struct {
		name       string
		content    []byte
		wantDelim  rune
		wantHeader []string
		wantRows   int
	}{
		{
			name:       "comma separated",
			content:    []byte("effect,se,n\n0.1,0.2,10\n0.3,0.4,20\n"),
			wantDelim:  ',',
			wantHeader: []string{"effect", "se", "n"},
			wantRows:   2,
		},
		{
			name:       "utf-8 bom is dropped",
			content:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("effect;se;n\n0.1;0.2;10\n")...),
			wantDelim:  ';',
			wantHeader: []string{"effect", "se", "n"},
			wantRows:   1,
		},
		{
			name:       "ragged rows are kept",
			content:    []byte("a|b|c\n1|2\n1|2|3|4\n"),
			wantDelim:  '|',
			wantHeader: []string{"a", "b", "c"},
			wantRows:   2,
		},
		{
			name:       "bare quotes are tolerated",
			content:    []byte("effect\tse\tn\tstudy\n1\t2\t3\tO\"Brien site\n"),
			wantDelim:  '\t',
			wantHeader: []string{"effect", "se", "n", "study"},
			wantRows:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, "source.csv", tt.content)

			table, err := ReadDelimitedFile(path, DefaultSampleBytes)
			require.NoError(t, err)

			assert.Equal(t, "source.csv", table.Source)
			assert.Equal(t, tt.wantDelim, table.Delimiter)
			assert.Equal(t, tt.wantHeader, table.Header)
			assert.Len(t, table.Rows, tt.wantRows)
		})
	}
}

func TestReadDelimitedFile_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String("effect\tse\tn\n0.5\t0.1\t12\n")
	require.NoError(t, err)

	path := writeSource(t, "export.txt", []byte(encoded))

	table, err := ReadDelimitedFile(path, DefaultSampleBytes)
	require.NoError(t, err)
	assert.Equal(t, '\t', table.Delimiter)
	assert.Equal(t, []string{"effect", "se", "n"}, table.Header)
	assert.Equal(t, [][]string{{"0.5", "0.1", "12"}}, table.Rows)
}

func TestReadDelimitedFile_TooFewRows(t *testing.T) {
	for name, content := range map[string]string{
		"empty":       "",
		"header only": "effect,se,n\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeSource(t, "short.csv", []byte(content))
			_, err := ReadDelimitedFile(path, DefaultSampleBytes)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTooFewRows)
		})
	}
}

func TestReadDelimitedFile_Missing(t *testing.T) {
	_, err := ReadDelimitedFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultSampleBytes)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrTooFewRows)
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Estimate", "SE", "Obs"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"0.25", "0.05", "40"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"0.30", "0.07", "55"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ReadFile(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "book.xlsx", table.Source)
	assert.Equal(t, rune(0), table.Delimiter)
	assert.Equal(t, []string{"Estimate", "SE", "Obs"}, table.Header)
	assert.Equal(t, [][]string{{"0.25", "0.05", "40"}, {"0.30", "0.07", "55"}}, table.Rows)

	_, err = ReadWorkbook(path, "Missing")
	assert.Error(t, err)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("data/Book.XLSX"))
	assert.True(t, IsWorkbook("book.xlsm"))
	assert.False(t, IsWorkbook("data.csv"))
	assert.False(t, IsWorkbook("xlsx"))
}
