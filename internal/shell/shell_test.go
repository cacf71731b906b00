package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/datatable-engine/datatable"
	"github.com/magpierre/datatable-engine/internal/render"
	"github.com/magpierre/datatable-engine/loader"
)

func newSession(t *testing.T, perPage int) (*Session, *bytes.Buffer) {
	t.Helper()
	names := []string{"name", "city"}
	types := []datatable.DataType{datatable.TypeString, datatable.TypeString}
	data := [][]string{
		{"Charlie", "Oslo"},
		{"Alice", "Bergen"},
		{"Bob", "Oslo"},
		{"Dora", "Tromsø"},
		{"Erik", "Oslo"},
	}
	rows := make([][]datatable.Value, len(data))
	for i, d := range data {
		rows[i] = []datatable.Value{
			datatable.NewValue(d[0], datatable.TypeString),
			datatable.NewValue(d[1], datatable.TypeString),
		}
	}
	src, err := datatable.NewMemorySource(names, types, rows, nil)
	require.NoError(t, err)

	schema, err := datatable.SchemaFromSource(src, true)
	require.NoError(t, err)
	records, err := datatable.Rows(src)
	require.NoError(t, err)
	tbl, err := datatable.New(schema, datatable.RowID, datatable.Config{ItemsPerPage: perPage, InitialPage: 1})
	require.NoError(t, err)

	var out bytes.Buffer
	return New(tbl, records, &out, render.Options{}, nil), &out
}

func exec(t *testing.T, s *Session, line string) {
	t.Helper()
	quit, err := s.Exec(line)
	require.NoError(t, err)
	require.False(t, quit)
}

func TestFilterAndSort(t *testing.T) {
	s, out := newSession(t, 10)

	exec(t, s, `filter "oslo"`)
	assert.Equal(t, 3, s.last.TotalRows)
	assert.Contains(t, out.String(), `filter: "oslo"`)

	exec(t, s, "sort name")
	require.Len(t, s.last.Rows, 3)
	assert.Equal(t, "Bob", s.last.Rows[0].Values[0].Formatted)
	assert.Equal(t, datatable.SortAscending, s.last.Sort.Direction)

	exec(t, s, "sort name")
	assert.Equal(t, "Erik", s.last.Rows[0].Values[0].Formatted)

	exec(t, s, "sort city asc")
	assert.Equal(t, "city", s.last.Sort.ColumnID)

	exec(t, s, "unsort")
	assert.False(t, s.last.Sort.IsSorted())
	assert.Equal(t, "Charlie", s.last.Rows[0].Values[0].Formatted)

	exec(t, s, "clear")
	assert.Equal(t, 5, s.last.TotalRows)
}

func TestNavigation(t *testing.T) {
	s, _ := newSession(t, 2)

	exec(t, s, "next")
	assert.Equal(t, 2, s.last.Page)
	exec(t, s, "page 9")
	assert.Equal(t, 3, s.last.Page, "clamped to the last page")
	require.Len(t, s.last.Rows, 1)
	exec(t, s, "prev")
	assert.Equal(t, 2, s.last.Page)
	exec(t, s, "size 5")
	assert.Equal(t, 1, s.last.TotalPages)
}

func TestSelection(t *testing.T) {
	s, out := newSession(t, 2)
	exec(t, s, "show")

	exec(t, s, "select 2")
	assert.True(t, s.table.IsSelected(1))

	exec(t, s, "next")
	exec(t, s, "select 1")
	assert.True(t, s.table.IsSelected(2))

	exec(t, s, "unselect 1")
	assert.False(t, s.table.IsSelected(2))

	out.Reset()
	exec(t, s, "selected")
	assert.Contains(t, out.String(), "Alice")
	assert.Contains(t, out.String(), "1 selected")

	exec(t, s, "filter oslo")
	exec(t, s, "select-all")
	assert.Equal(t, 4, s.table.Selection().Len())

	exec(t, s, "clear-selection")
	assert.Equal(t, 0, s.table.Selection().Len())
}

func TestErrors(t *testing.T) {
	s, _ := newSession(t, 2)
	exec(t, s, "show")

	tests := []struct {
		line string
		want error
	}{
		{"bogus", ErrUnknownCommand},
		{"page", ErrUsage},
		{"page x", ErrUsage},
		{"sort", ErrUsage},
		{"sort name sideways", ErrUsage},
		{"sort nope", datatable.ErrColumnNotFound},
		{"sort nope desc", datatable.ErrColumnNotFound},
		{"select", ErrUsage},
		{"select 7", datatable.ErrInvalidRow},
		{"export", ErrUsage},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := s.Exec(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := s.Exec(`select "1`)
	assert.Error(t, err)

	_, err = s.Exec("where height > 2")
	assert.Error(t, err)
}

func TestWhere(t *testing.T) {
	s, out := newSession(t, 10)

	exec(t, s, "where city = oslo AND name > c")
	assert.Equal(t, 2, s.last.TotalRows)
	assert.Contains(t, out.String(), "where: city = oslo AND name > c")

	exec(t, s, "filter erik")
	assert.Equal(t, 1, s.last.TotalRows)

	exec(t, s, "select 1")
	exec(t, s, "where")
	assert.Equal(t, 1, s.last.TotalRows, "text filter still applies")
	exec(t, s, "clear")
	assert.Equal(t, 5, s.last.TotalRows)
	assert.True(t, s.table.IsSelected(4))
}

func TestWhereHelper(t *testing.T) {
	s, _ := newSession(t, 10)
	rows, err := Where(s.table.Schema(), s.all, `city ~ "tr"`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dora", rows[0].Values[0].Formatted)

	rows, err = Where(s.table.Schema(), s.all, "  ")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestQuitAndBlank(t *testing.T) {
	s, _ := newSession(t, 2)
	quit, err := s.Exec("quit")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = s.Exec("   ")
	require.NoError(t, err)
	assert.False(t, quit)
}

func TestExport(t *testing.T) {
	s, out := newSession(t, 2)
	exec(t, s, "filter oslo")
	exec(t, s, "sort name desc")

	path := filepath.Join(t.TempDir(), "out.csv")
	exec(t, s, "export "+path)
	assert.Contains(t, out.String(), "exported 3 rows")

	src, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, src.RowCount())
	v, err := src.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Erik", v.Formatted)
}

func TestHelpAndComplete(t *testing.T) {
	s, out := newSession(t, 2)
	exec(t, s, "help")
	assert.Contains(t, out.String(), "select-all")
	assert.Contains(t, out.String(), "quit")

	assert.Equal(t, []string{"select", "select-all", "selected"}, Complete("sel"))
	assert.Empty(t, Complete("zzz"))
}
