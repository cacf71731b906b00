// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arrow provides a datatable.DataSource over Apache Arrow data.
// Values are copied out of the Arrow buffers when the source is built, so
// the caller may release the table afterwards.
package arrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/datatable-engine/datatable"
)

// Source is a data source read from an Arrow table or record.
type Source struct {
	*datatable.MemorySource
	schema *arrow.Schema
}

// NewFromArrowTable copies every row of table into a new source.
func NewFromArrowTable(table arrow.Table) (*Source, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}

	schema := table.Schema()
	rows := make([][]datatable.Value, 0, table.NumRows())

	tr := array.NewTableReader(table, max(table.NumRows(), 1))
	defer tr.Release()
	for tr.Next() {
		rows = appendRecord(rows, tr.Record())
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	return newSource(schema, rows, table.NumRows())
}

// NewFromRecord copies every row of rec into a new source.
func NewFromRecord(rec arrow.Record) (*Source, error) {
	if rec == nil {
		return nil, datatable.ErrNoDataSource
	}
	rows := appendRecord(make([][]datatable.Value, 0, rec.NumRows()), rec)
	return newSource(rec.Schema(), rows, rec.NumRows())
}

func newSource(schema *arrow.Schema, rows [][]datatable.Value, numRows int64) (*Source, error) {
	names := make([]string, schema.NumFields())
	types := make([]datatable.DataType, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
		types[i] = DataTypeOf(field.Type)
	}

	mem, err := datatable.NewMemorySource(names, types, rows, datatable.Metadata{
		"format":  "arrow",
		"schema":  schema.String(),
		"numRows": numRows,
	})
	if err != nil {
		return nil, err
	}
	return &Source{MemorySource: mem, schema: schema}, nil
}

// ArrowSchema returns the schema the source was read from.
func (s *Source) ArrowSchema() *arrow.Schema {
	return s.schema
}

func appendRecord(rows [][]datatable.Value, rec arrow.Record) [][]datatable.Value {
	numRows := int(rec.NumRows())
	numCols := int(rec.NumCols())
	for r := 0; r < numRows; r++ {
		values := make([]datatable.Value, numCols)
		for c := 0; c < numCols; c++ {
			values[c] = ValueAt(rec.Column(c), r)
		}
		rows = append(rows, values)
	}
	return rows
}

// DataTypeOf maps an Arrow type to a DataType.
func DataTypeOf(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return datatable.TypeBinary
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return datatable.TypeDecimal
	case arrow.STRUCT:
		return datatable.TypeStruct
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// ValueAt returns the cell at pos of col.
func ValueAt(col arrow.Array, pos int) datatable.Value {
	dataType := DataTypeOf(col.DataType())
	if col.IsNull(pos) {
		return datatable.NewNullValue(dataType)
	}
	return datatable.NewFormattedValue(TypedValue(col, pos), dataType, FormatValue(col, pos))
}
