package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemorySource(t *testing.T, names []string, types []DataType, raw [][]any) *MemorySource {
	t.Helper()
	rows := make([][]Value, len(raw))
	for r, values := range raw {
		rows[r] = make([]Value, len(values))
		for c, v := range values {
			rows[r][c] = NewValue(v, types[c])
		}
	}
	src, err := NewMemorySource(names, types, rows, nil)
	require.NoError(t, err)
	return src
}

func TestMemorySource(t *testing.T) {
	src := newMemorySource(t, []string{"a", "b"}, []DataType{TypeString, TypeInt}, [][]any{{"x", int64(1)}})

	assert.Equal(t, 1, src.RowCount())
	assert.Equal(t, 2, src.ColumnCount())
	assert.Equal(t, []string{"a", "b"}, ColumnNames(src))
	assert.NotNil(t, src.Metadata())

	typ, err := src.ColumnType(1)
	require.NoError(t, err)
	assert.Equal(t, TypeInt, typ)

	v, err := src.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", v.Formatted)

	row, err := src.Row(0)
	require.NoError(t, err)
	row[0] = NewValue("changed", TypeString)
	v, _ = src.Cell(0, 0)
	assert.Equal(t, "x", v.Formatted, "Row returns a copy")

	_, err = src.Cell(1, 0)
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, err = src.Cell(0, 2)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = src.ColumnName(-1)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = src.Row(3)
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestNewMemorySourceValidates(t *testing.T) {
	_, err := NewMemorySource([]string{"a"}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = NewMemorySource([]string{"a"}, []DataType{TypeString}, [][]Value{{}}, nil)
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestSourceTable(t *testing.T) {
	src := newMemorySource(t,
		[]string{"name", "age"},
		[]DataType{TypeString, TypeInt},
		[][]any{
			{"Charlie", int64(35)},
			{"Alice", int64(30)},
			{"Bob", nil},
		})

	rows, err := Rows(src)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, RowID(rows[2]))

	schema, err := SchemaFromSource(src, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, schema.IDs())

	tbl, err := New(schema, RowID, Config{ItemsPerPage: 2})
	require.NoError(t, err)
	tbl.ToggleSort("age")
	res := tbl.Evaluate(rows)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.Rows[0].Index, "null sorts first as empty text")
	assert.Equal(t, 1, res.Rows[1].Index)

	tbl.SetFilterText("LIE")
	res = tbl.Evaluate(rows)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Charlie", res.Rows[0].Values[0].Formatted)
}

func TestSourceColumnShortRow(t *testing.T) {
	c := SourceColumn("x", 3, TypeInt)
	v := c.Extract(Row{Values: []Value{NewValue("a", TypeString)}})
	assert.True(t, v.(Value).IsNull)
	assert.Equal(t, "", c.Text(Row{}))
}

func TestSchemaFromSourceErrors(t *testing.T) {
	_, err := SchemaFromSource(nil, false)
	assert.ErrorIs(t, err, ErrNoDataSource)

	_, err = Rows(nil)
	assert.ErrorIs(t, err, ErrNoDataSource)

	dup := newMemorySource(t, []string{"a", "a"}, []DataType{TypeString, TypeString}, nil)
	_, err = SchemaFromSource(dup, false)
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}
