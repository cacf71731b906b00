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

package datatable

import (
	"fmt"
	"slices"
)

// SortLookup resolves whether a column id may be sorted on.
// *Schema implements it for every record type.
type SortLookup interface {
	IsSortable(id string) bool
}

// Schema is an immutable, ordered list of columns with unique ids.
type Schema[R any] struct {
	columns []Column[R]
	index   map[string]int
}

// NewSchema validates the columns and builds a schema.
// Column ids must be non-empty and unique, and every column needs an extractor.
func NewSchema[R any](columns ...Column[R]) (*Schema[R], error) {
	if len(columns) == 0 {
		return nil, ErrEmptySchema
	}

	s := &Schema[R]{
		columns: make([]Column[R], len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyColumnID, i)
		}
		if c.Extract == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilExtractor, c.ID)
		}
		if prev, ok := s.index[c.ID]; ok {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateColumn, c.ID, prev, i)
		}
		if c.Title == "" {
			c.Title = c.ID
		}
		s.columns[i] = c
		s.index[c.ID] = i
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on an invalid column set.
// It is meant for schemas declared in code.
func MustSchema[R any](columns ...Column[R]) *Schema[R] {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema[R]) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the columns in declaration order.
func (s *Schema[R]) Columns() []Column[R] {
	out := make([]Column[R], len(s.columns))
	copy(out, s.columns)
	return out
}

// At returns the column at position i.
func (s *Schema[R]) At(i int) (Column[R], error) {
	if i < 0 || i >= len(s.columns) {
		return Column[R]{}, fmt.Errorf("%w: %d", ErrInvalidColumn, i)
	}
	return s.columns[i], nil
}

// Column looks a column up by id.
func (s *Schema[R]) Column(id string) (Column[R], bool) {
	i, ok := s.index[id]
	if !ok {
		return Column[R]{}, false
	}
	return s.columns[i], true
}

// Index returns the position of the column with the given id, or -1.
func (s *Schema[R]) Index(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// IsSortable reports whether id names a sortable column of this schema.
func (s *Schema[R]) IsSortable(id string) bool {
	c, ok := s.Column(id)
	return ok && c.Sortable
}

// IDs returns the column ids in declaration order.
func (s *Schema[R]) IDs() []string {
	ids := make([]string, len(s.columns))
	for i, c := range s.columns {
		ids[i] = c.ID
	}
	return ids
}

// Titles returns the column titles in declaration order.
func (s *Schema[R]) Titles() []string {
	titles := make([]string, len(s.columns))
	for i, c := range s.columns {
		titles[i] = c.Title
	}
	return titles
}

// Texts returns the searchable text of every column of r in declaration
// order. dst is reused when it has room.
func (s *Schema[R]) Texts(r R, dst []string) []string {
	dst = slices.Grow(dst[:0], len(s.columns))[:len(s.columns)]
	for i, c := range s.columns {
		dst[i] = c.Text(r)
	}
	return dst
}
