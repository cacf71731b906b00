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

// Package csv provides a datatable.DataSource backed by CSV data.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/magpierre/datatable-engine/datatable"
)

// Config controls how CSV input is parsed.
type Config struct {
	// Delimiter separates fields. Defaults to ','.
	Delimiter rune

	// HasHeaders treats the first record as column names.
	HasHeaders bool

	// TrimSpace trims leading and trailing white space from every field.
	TrimSpace bool

	// InferTypes detects int, float and bool columns. Otherwise every
	// column is a string column.
	InferTypes bool
}

// DefaultConfig returns the default CSV configuration.
func DefaultConfig() Config {
	return Config{
		Delimiter:  ',',
		HasHeaders: true,
		TrimSpace:  true,
		InferTypes: true,
	}
}

// Source is an in-memory CSV data source.
type Source struct {
	*datatable.MemorySource
}

// NewFromFile reads a CSV file.
func NewFromFile(path string, config Config) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	src, err := NewFromReader(f, config)
	if err != nil {
		return nil, err
	}
	src.Metadata()["path"] = path
	return src, nil
}

// NewFromReader reads CSV records from r.
func NewFromReader(r io.Reader, config Config) (*Source, error) {
	reader := csv.NewReader(r)
	if config.Delimiter != 0 {
		reader.Comma = config.Delimiter
	}
	reader.FieldsPerRecord = -1
	// With a whitespace delimiter the reader would also eat empty fields.
	reader.TrimLeadingSpace = config.TrimSpace && !unicode.IsSpace(reader.Comma)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var headers []string
	if config.HasHeaders && len(records) > 0 {
		headers = records[0]
		records = records[1:]
	}

	width := len(headers)
	for _, rec := range records {
		width = max(width, len(rec))
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: no columns", datatable.ErrColumnNotFound)
	}

	names := make([]string, width)
	for i := range names {
		if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
			names[i] = strings.TrimSpace(headers[i])
		} else {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	text := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, width)
		for c := range row {
			if c < len(rec) {
				row[c] = rec[c]
				if config.TrimSpace {
					row[c] = strings.TrimSpace(row[c])
				}
			}
		}
		text[r] = row
	}

	types := make([]datatable.DataType, width)
	for c := range types {
		types[c] = datatable.TypeString
		if config.InferTypes {
			types[c] = inferType(text, c)
		}
	}

	rows := make([][]datatable.Value, len(text))
	for r, rec := range text {
		values := make([]datatable.Value, width)
		for c, field := range rec {
			values[c] = parseValue(field, types[c])
		}
		rows[r] = values
	}

	mem, err := datatable.NewMemorySource(names, types, rows, datatable.Metadata{
		"format":    "csv",
		"delimiter": string(reader.Comma),
	})
	if err != nil {
		return nil, err
	}
	return &Source{MemorySource: mem}, nil
}

// inferType returns the narrowest type every non-empty field of column c
// parses as: int, then float, then bool, else string.
func inferType(rows [][]string, c int) datatable.DataType {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, row := range rows {
		field := row[c]
		if field == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(field, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(field); err != nil {
				isBool = false
			}
		}
	}
	switch {
	case !seen:
		return datatable.TypeString
	case isInt:
		return datatable.TypeInt
	case isFloat:
		return datatable.TypeFloat
	case isBool:
		return datatable.TypeBool
	default:
		return datatable.TypeString
	}
}

// parseValue converts a field to a Value of the column type. Empty fields
// are null in typed columns. The formatted text is the field as written.
func parseValue(field string, dataType datatable.DataType) datatable.Value {
	switch dataType {
	case datatable.TypeInt:
		if v, err := strconv.ParseInt(field, 10, 64); err == nil {
			return datatable.NewFormattedValue(v, dataType, field)
		}
		return datatable.NewNullValue(dataType)
	case datatable.TypeFloat:
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return datatable.NewFormattedValue(v, dataType, field)
		}
		return datatable.NewNullValue(dataType)
	case datatable.TypeBool:
		if v, err := strconv.ParseBool(field); err == nil {
			return datatable.NewFormattedValue(v, dataType, field)
		}
		return datatable.NewNullValue(dataType)
	default:
		return datatable.NewValue(field, datatable.TypeString)
	}
}
