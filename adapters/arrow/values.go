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

package arrow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.999999999"
)

// FormatValue converts the value at pos of col to its display text.
// Null is the empty string.
func FormatValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Boolean:
		return strconv.FormatBool(c.Value(pos))
	case *array.Float16:
		return c.Value(pos).String()
	case *array.Float32:
		return strconv.FormatFloat(float64(c.Value(pos)), 'f', -1, 32)
	case *array.Float64:
		return strconv.FormatFloat(c.Value(pos), 'f', -1, 64)
	case *array.Date32:
		return c.Value(pos).ToTime().Format(dateLayout)
	case *array.Date64:
		return c.Value(pos).ToTime().Format(dateLayout)
	case *array.Timestamp:
		return timestampAt(c, pos).Format(timestampLayout)
	case *array.Decimal128:
		scale := c.DataType().(*arrow.Decimal128Type).Scale
		return c.Value(pos).ToString(scale)
	case *array.Struct, *array.List, *array.LargeList, *array.FixedSizeList:
		b, err := json.Marshal(col.GetOneForMarshal(pos))
		if err != nil {
			return col.ValueStr(pos)
		}
		return string(b)
	}

	if v := signedAt(col, pos); v != nil {
		return strconv.FormatInt(*v, 10)
	}
	if v := unsignedAt(col, pos); v != nil {
		return strconv.FormatUint(*v, 10)
	}
	return col.ValueStr(pos)
}

// TypedValue returns the value at pos of col as a Go value. Integers widen
// to int64 or uint64, floats to float64, dates and timestamps become
// time.Time and nested values are decoded from their JSON form.
func TypedValue(col arrow.Array, pos int) interface{} {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		b := c.Value(pos)
		out := make([]byte, len(b))
		copy(out, b)
		return out
	case *array.Boolean:
		return c.Value(pos)
	case *array.Float16:
		return float64(c.Value(pos).Float32())
	case *array.Float32:
		return float64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime()
	case *array.Date64:
		return c.Value(pos).ToTime()
	case *array.Timestamp:
		return timestampAt(c, pos)
	case *array.Decimal128:
		return FormatValue(col, pos)
	case *array.Struct, *array.List, *array.LargeList, *array.FixedSizeList:
		b, err := json.Marshal(col.GetOneForMarshal(pos))
		if err != nil {
			return col.ValueStr(pos)
		}
		var result interface{}
		if err := json.Unmarshal(b, &result); err != nil {
			return string(b)
		}
		return result
	}

	if v := signedAt(col, pos); v != nil {
		return *v
	}
	if v := unsignedAt(col, pos); v != nil {
		return *v
	}
	return col.ValueStr(pos)
}

func timestampAt(c *array.Timestamp, pos int) time.Time {
	unit := arrow.Nanosecond
	if tt, ok := c.DataType().(*arrow.TimestampType); ok {
		unit = tt.Unit
	}
	return c.Value(pos).ToTime(unit).UTC()
}

func signedAt(col arrow.Array, pos int) *int64 {
	var v int64
	switch c := col.(type) {
	case *array.Int8:
		v = int64(c.Value(pos))
	case *array.Int16:
		v = int64(c.Value(pos))
	case *array.Int32:
		v = int64(c.Value(pos))
	case *array.Int64:
		v = c.Value(pos)
	default:
		return nil
	}
	return &v
}

func unsignedAt(col arrow.Array, pos int) *uint64 {
	var v uint64
	switch c := col.(type) {
	case *array.Uint8:
		v = uint64(c.Value(pos))
	case *array.Uint16:
		v = uint64(c.Value(pos))
	case *array.Uint32:
		v = uint64(c.Value(pos))
	case *array.Uint64:
		v = c.Value(pos)
	default:
		return nil
	}
	return &v
}

// String implements fmt.Stringer for debugging output of a source.
func (s *Source) String() string {
	return fmt.Sprintf("arrow source (%d rows, %d columns)", s.RowCount(), s.ColumnCount())
}
