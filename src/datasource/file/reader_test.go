package file

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"DataScope/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"semicolon with commas in text", "a;b\n\"x,y\";2\n\"p,q\";3\nr;4\n", ';'},
		{"empty", "", ','},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SniffDelimiter([]byte(tc.sample)))
		})
	}
}

func TestReadCSVFileComma(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diamonds.csv")
	require.NoError(t, os.WriteFile(path, []byte("cut,price\nIdeal,326\nGood,327\n"), 0o644))

	df, err := ReadCSVFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"cut", "price"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, 326, df.Col("price").Val(0))
}

func TestReadCSVFileSemicolon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("region;amount\nnorth;10\nsouth;20\n"), 0o644))

	df, err := ReadCSVFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "amount"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
}

func TestReadCSVFileLatin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.csv")
	// "café" with a latin-1 encoded é
	raw := []byte{'n', 'a', 'm', 'e', ',', 'n', '\n', 'c', 'a', 'f', 0xE9, ',', '1', '\n'}
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	df, err := ReadCSVFile(path, "latin1")
	require.NoError(t, err)

	assert.Equal(t, "café", df.Col("name").Val(0))
}

func TestReadCSVFileUnsupportedCharset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o644))

	_, err := ReadCSVFile(path, "klingon")
	assert.Error(t, err)
}

func TestReadCSVFileMissing(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"), "")
	assert.Error(t, err)
}

func writeXLSX(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().Value = v
		}
	}
	require.NoError(t, f.Save(path))
}

func TestReadXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grades.xlsx")
	writeXLSX(t, path, [][]string{
		{"student", "grade"},
		{"ana", "17"},
		{"bruno", "12"},
	})

	df, err := ReadXLSXFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"student", "grade"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, 17, df.Col("grade").Val(0))
}

func TestReadXLSXFileRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	writeXLSX(t, path, [][]string{
		{"a", "b", "c"},
		{"1", "2"},
		{"3", "4", "5"},
	})

	df, err := ReadXLSXFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, 3, df.Ncol())
}

func TestReadXLSXFileMissing(t *testing.T) {
	_, err := ReadXLSXFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestMonitorFiresAfterChange(t *testing.T) {
	dir := t.TempDir()
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "test.log"), slog.LevelError)
	require.NoError(t, err)
	defer logger.Close()

	fired := make(chan struct{}, 8)
	m := NewMonitor(dir, logger, 50*time.Millisecond, func() {
		fired <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh.csv"), []byte("a\n1\n"), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("monitor never fired")
	}
}

func TestMonitorIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "test.log"), slog.LevelError)
	require.NoError(t, err)
	defer logger.Close()

	fired := make(chan struct{}, 8)
	m := NewMonitor(dir, logger, 50*time.Millisecond, func() {
		fired <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	select {
	case <-fired:
		t.Fatal("monitor fired for a non-dataset file")
	case <-time.After(300 * time.Millisecond):
	}
}
