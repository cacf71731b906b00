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

// Package export writes evaluated table views as Parquet, CSV or JSON.
// A view is first converted to an Arrow table with one field per column.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/magpierre/datatable-engine/datatable"
)

// valueKind is the Arrow storage chosen for a column.
type valueKind int

const (
	kindNull valueKind = iota
	kindInt
	kindUint
	kindFloat
	kindBool
	kindDate
	kindTimestamp
	kindString
)

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

func (k valueKind) arrowType() arrow.DataType {
	switch k {
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindUint:
		return arrow.PrimitiveTypes.Uint64
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	case kindDate:
		return arrow.FixedWidthTypes.Date32
	case kindTimestamp:
		return timestampType
	default:
		return arrow.BinaryTypes.String
	}
}

// Build converts rows to an Arrow table using the columns of schema. The
// field type of each column is inferred from its extracted values; columns
// with mixed or unsupported values are written as strings. The caller owns
// the returned table and must release it.
func Build[R any](schema *datatable.Schema[R], rows []R, mem memory.Allocator) (arrow.Table, error) {
	if schema == nil {
		return nil, datatable.ErrEmptySchema
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	columns := schema.Columns()
	fields := make([]arrow.Field, len(columns))
	cells := make([][]any, len(columns))
	kinds := make([]valueKind, len(columns))
	for c, col := range columns {
		values := make([]any, len(rows))
		kind := kindNull
		for r, row := range rows {
			values[r] = unwrap(col.Extract(row))
			kind = merge(kind, kindOf(values[r]))
		}
		cells[c] = values
		kinds[c] = kind
		fields[c] = arrow.Field{Name: col.ID, Type: kind.arrowType(), Nullable: true}
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, len(columns))
	defer func() {
		for _, arr := range arrays {
			if arr != nil {
				arr.Release()
			}
		}
	}()
	for c := range columns {
		arr, err := buildArray(mem, fields[c].Type, kinds[c], cells[c])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", columns[c].ID, err)
		}
		arrays[c] = arr
	}

	rec := array.NewRecord(arrowSchema, arrays, int64(len(rows)))
	defer rec.Release()
	return array.NewTableFromRecords(arrowSchema, []arrow.Record{rec}), nil
}

// unwrap returns the raw value of a datatable.Value. Date values are
// marked so they are stored as Arrow dates.
func unwrap(v any) any {
	val, ok := v.(datatable.Value)
	if !ok {
		return v
	}
	if val.IsNull {
		return nil
	}
	if t, ok := val.Raw.(time.Time); ok && val.Type == datatable.TypeDate {
		return dateValue(t)
	}
	return val.Raw
}

type dateValue time.Time

func kindOf(v any) valueKind {
	switch x := v.(type) {
	case nil:
		return kindNull
	case int, int8, int16, int32, int64:
		return kindInt
	case uint8, uint16, uint32:
		return kindInt
	case uint, uint64:
		if toUint(x) <= math.MaxInt64 {
			return kindInt
		}
		return kindUint
	case float32, float64:
		return kindFloat
	case bool:
		return kindBool
	case dateValue:
		return kindDate
	case time.Time:
		return kindTimestamp
	default:
		return kindString
	}
}

// merge combines the kinds seen so far in a column with the next one.
func merge(a, b valueKind) valueKind {
	switch {
	case a == kindNull:
		return b
	case b == kindNull, a == b:
		return a
	case isNumeric(a) && isNumeric(b) && (a == kindFloat || b == kindFloat):
		return kindFloat
	case a == kindDate && b == kindTimestamp, a == kindTimestamp && b == kindDate:
		return kindTimestamp
	default:
		return kindString
	}
}

func isNumeric(k valueKind) bool {
	return k == kindInt || k == kindUint || k == kindFloat
}

func buildArray(mem memory.Allocator, dt arrow.DataType, kind valueKind, values []any) (arrow.Array, error) {
	builder := array.NewBuilder(mem, dt)
	defer builder.Release()
	builder.Reserve(len(values))

	for _, v := range values {
		if v == nil {
			builder.AppendNull()
			continue
		}
		switch b := builder.(type) {
		case *array.Int64Builder:
			b.Append(toInt(v))
		case *array.Uint64Builder:
			b.Append(toUint(v))
		case *array.Float64Builder:
			b.Append(toFloat(v))
		case *array.BooleanBuilder:
			b.Append(v.(bool))
		case *array.Date32Builder:
			b.Append(arrow.Date32FromTime(time.Time(v.(dateValue))))
		case *array.TimestampBuilder:
			ts, err := arrow.TimestampFromTime(toTime(v), timestampType.Unit)
			if err != nil {
				return nil, err
			}
			b.Append(ts)
		case *array.StringBuilder:
			b.Append(datatable.Stringify(display(v)))
		default:
			return nil, fmt.Errorf("unsupported column kind %d", kind)
		}
	}
	return builder.NewArray(), nil
}

func display(v any) any {
	if d, ok := v.(dateValue); ok {
		return datatable.NewValue(time.Time(d), datatable.TypeDate)
	}
	if t, ok := v.(time.Time); ok {
		return datatable.NewValue(t, datatable.TypeTimestamp)
	}
	return v
}

func toTime(v any) time.Time {
	if d, ok := v.(dateValue); ok {
		return time.Time(d)
	}
	return v.(time.Time)
}

func toInt(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	default:
		return int64(toUint(v))
	}
}

func toUint(v any) uint64 {
	switch x := v.(type) {
	case uint:
		return uint64(x)
	case uint64:
		return x
	default:
		return uint64(toInt(v))
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case uint, uint64:
		return float64(toUint(x))
	default:
		return float64(toInt(x))
	}
}
