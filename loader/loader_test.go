package loader

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/datatable-engine/datatable"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"data.csv", FileTypeCSV},
		{"DATA.CSV", FileTypeCSV},
		{"data.tsv", FileTypeCSV},
		{"data.parquet", FileTypeParquet},
		{"data.json", FileTypeJSON},
		{"data.txt", FileTypeUnknown},
		{"data", FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.path))
		})
	}
}

func TestDetectCSVSeparator(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"comma", "a,b,c\n1,2,3", ','},
		{"semicolon", "a;b;c\n", ';'},
		{"tab", "a\tb\tc", '\t'},
		{"pipe", "a|b|c,d", '|'},
		{"none", "abc", ','},
		{"empty", "", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectCSVSeparator(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeparatorName(t *testing.T) {
	assert.Equal(t, "semicolon", SeparatorName(';'))
	assert.Equal(t, "tab", SeparatorName('\t'))
	assert.Equal(t, "#", SeparatorName('#'))
}

func TestLoadCSVWithDetectedSeparator(t *testing.T) {
	path := writeFile(t, "people.csv", "name;age\nAlice;30\nBob;25\n")

	var logs bytes.Buffer
	l := &Loader{Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	src, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, datatable.ColumnNames(src))
	assert.Equal(t, 2, src.RowCount())
	assert.Equal(t, path, src.Metadata()["path"])
	assert.Contains(t, logs.String(), "separator=semicolon")
	assert.Contains(t, logs.String(), "loaded data file")

	v, err := src.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(25), v.Raw)
}

func TestLoadTSVWithEmptyCell(t *testing.T) {
	path := writeFile(t, "people.tsv", "name\tage\tcity\nAnn\t\tOslo\nBob\t40\tBergen\n")
	src, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "city"}, datatable.ColumnNames(src))

	age, err := src.Cell(0, 1)
	require.NoError(t, err)
	assert.True(t, age.IsNull)
	city, err := src.Cell(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", city.Formatted)
}

func TestLoadJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		path := writeFile(t, "a.json", `[{"name":"Alice","age":30},{"name":"Bob"}]`)
		src, err := Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, []string{"age", "name"}, datatable.ColumnNames(src))
		assert.Equal(t, 2, src.RowCount())

		v, err := src.Cell(1, 0)
		require.NoError(t, err)
		assert.True(t, v.IsNull)
	})

	t.Run("single object", func(t *testing.T) {
		path := writeFile(t, "o.json", `{"name":"Alice"}`)
		src, err := Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 1, src.RowCount())
	})

	t.Run("empty array", func(t *testing.T) {
		path := writeFile(t, "e.json", `[]`)
		_, err := Load(context.Background(), path)
		assert.ErrorIs(t, err, ErrEmptyJSON)
	})

	t.Run("invalid", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{nope`)
		_, err := Load(context.Background(), path)
		assert.Error(t, err)
	})
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), "data.xml")
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, "bad.parquet", "not parquet")
	_, err = Load(context.Background(), path)
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, 5*time.Second)

	ctx, cancel = WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}
