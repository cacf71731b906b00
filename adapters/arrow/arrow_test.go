package arrow

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/datatable-engine/datatable"
)

func buildRecord(t *testing.T, mem memory.Allocator) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "age", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "seen", Type: &arrow.TimestampType{Unit: arrow.Millisecond}},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"Alice", "Bob"}, nil)
	b.Field(1).(*array.Int32Builder).AppendValues([]int32{30, 0}, []bool{true, false})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 2}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
	b.Field(4).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{0, 86_400_000}, nil)

	return b.NewRecord()
}

func TestNewFromRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := buildRecord(t, mem)
	src, err := NewFromRecord(rec)
	rec.Release()
	require.NoError(t, err)

	assert.Equal(t, 2, src.RowCount())
	assert.Equal(t, []string{"name", "age", "score", "active", "seen"}, datatable.ColumnNames(src))
	assert.Equal(t, "arrow", src.Metadata()["format"])
	assert.NotNil(t, src.ArrowSchema())

	typ, err := src.ColumnType(1)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeInt, typ)

	v, err := src.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v.Raw)
	assert.Equal(t, "30", v.Formatted)

	v, err = src.Cell(1, 1)
	require.NoError(t, err)
	assert.True(t, v.IsNull)
	assert.Equal(t, "", v.Formatted)

	v, _ = src.Cell(0, 2)
	assert.Equal(t, 1.5, v.Raw)
	assert.Equal(t, "1.5", v.Formatted)

	v, _ = src.Cell(1, 3)
	assert.Equal(t, false, v.Raw)
	assert.Equal(t, "false", v.Formatted)

	v, _ = src.Cell(1, 4)
	assert.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), v.Raw)
	assert.Equal(t, "1970-01-02 00:00:00", v.Formatted)
}

func TestNewFromArrowTable(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildRecord(t, mem)
	defer rec.Release()

	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec, rec})
	defer tbl.Release()

	src, err := NewFromArrowTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, 4, src.RowCount())
	assert.Equal(t, int64(4), src.Metadata()["numRows"])

	v, err := src.Cell(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.Formatted)
}

func TestNilInput(t *testing.T) {
	_, err := NewFromArrowTable(nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
	_, err = NewFromRecord(nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
}

func TestDataTypeOf(t *testing.T) {
	tests := []struct {
		in   arrow.DataType
		want datatable.DataType
	}{
		{arrow.PrimitiveTypes.Uint16, datatable.TypeInt},
		{arrow.PrimitiveTypes.Float32, datatable.TypeFloat},
		{arrow.FixedWidthTypes.Date32, datatable.TypeDate},
		{arrow.BinaryTypes.Binary, datatable.TypeBinary},
		{&arrow.Decimal128Type{Precision: 10, Scale: 2}, datatable.TypeDecimal},
		{arrow.ListOf(arrow.PrimitiveTypes.Int64), datatable.TypeList},
		{arrow.BinaryTypes.String, datatable.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DataTypeOf(tt.in))
		})
	}
}

func TestSourceTableIntegration(t *testing.T) {
	rec := buildRecord(t, memory.NewGoAllocator())
	defer rec.Release()

	src, err := NewFromRecord(rec)
	require.NoError(t, err)
	schema, err := datatable.SchemaFromSource(src, true)
	require.NoError(t, err)
	rows, err := datatable.Rows(src)
	require.NoError(t, err)

	tbl, err := datatable.New(schema, datatable.RowID, datatable.DefaultConfig())
	require.NoError(t, err)
	tbl.SetFilterText("bob")
	res := tbl.Evaluate(rows)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Rows[0].Index)
}
