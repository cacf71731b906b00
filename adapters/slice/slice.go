// Package slice provides a datatable.DataSource over in-memory Go values,
// such as decoded JSON documents.
package slice

import (
	"fmt"
	"sort"
	"time"

	"github.com/magpierre/datatable-engine/datatable"
)

// Source is a data source over rows of Go values.
type Source struct {
	*datatable.MemorySource
}

// NewFromMaps builds a source from a list of objects. The columns are the
// sorted union of all keys; a key missing from an object is a null cell.
func NewFromMaps(data []map[string]interface{}) (*Source, error) {
	keys := make(map[string]struct{})
	for _, m := range data {
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	rows := make([][]interface{}, len(data))
	for i, m := range data {
		row := make([]interface{}, len(headers))
		for c, h := range headers {
			row[c] = m[h]
		}
		rows[i] = row
	}
	return NewFromRows(headers, rows)
}

// NewFromRows builds a source from column names and rows of raw values.
// Rows shorter than the header are padded with nulls; longer rows are an
// error.
func NewFromRows(headers []string, data [][]interface{}) (*Source, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no columns", datatable.ErrColumnNotFound)
	}

	types := make([]datatable.DataType, len(headers))
	for c := range headers {
		types[c] = columnType(data, c)
	}

	rows := make([][]datatable.Value, len(data))
	for r, raw := range data {
		if len(raw) > len(headers) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns",
				datatable.ErrInvalidRow, r, len(raw), len(headers))
		}
		values := make([]datatable.Value, len(headers))
		for c := range values {
			var v interface{}
			if c < len(raw) {
				v = raw[c]
			}
			values[c] = datatable.NewValue(v, types[c])
		}
		rows[r] = values
	}

	names := make([]string, len(headers))
	copy(names, headers)
	mem, err := datatable.NewMemorySource(names, types, rows, datatable.Metadata{"format": "slice"})
	if err != nil {
		return nil, err
	}
	return &Source{MemorySource: mem}, nil
}

// columnType returns the type shared by every non-nil value of column c,
// or TypeString when they disagree.
func columnType(data [][]interface{}, c int) datatable.DataType {
	found := false
	var typ datatable.DataType
	for _, row := range data {
		if c >= len(row) || row[c] == nil {
			continue
		}
		t := TypeOf(row[c])
		if !found {
			typ, found = t, true
			continue
		}
		if t != typ {
			return datatable.TypeString
		}
	}
	if !found {
		return datatable.TypeString
	}
	return typ
}

// TypeOf maps a Go value to a DataType.
func TypeOf(v interface{}) datatable.DataType {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return datatable.TypeInt
	case float32, float64:
		return datatable.TypeFloat
	case bool:
		return datatable.TypeBool
	case time.Time:
		return datatable.TypeTimestamp
	case []byte:
		return datatable.TypeBinary
	case map[string]interface{}:
		return datatable.TypeStruct
	case []interface{}:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}
