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

import "fmt"

// Extractor reads one field off a record. It is the only way the engine
// looks inside a record.
type Extractor[R any] func(R) any

// CellRenderer formats an extracted value for display. The engine never
// calls it; it travels with the column for the rendering collaborator.
type CellRenderer func(value any) string

// Column is a named view into one field of every record.
type Column[R any] struct {
	// ID is unique within a schema and is what sort requests refer to.
	ID string

	// Title is the display label.
	Title string

	// Extract returns the column's value for a record.
	Extract Extractor[R]

	// Sortable reports whether sort requests may target this column.
	Sortable bool

	// Renderer is an optional custom cell renderer.
	Renderer CellRenderer
}

// NewColumn creates a column whose title defaults to its id.
func NewColumn[R any](id string, extract Extractor[R]) Column[R] {
	return Column[R]{ID: id, Title: id, Extract: extract}
}

// WithTitle returns a copy of the column with the given title.
func (c Column[R]) WithTitle(title string) Column[R] {
	c.Title = title
	return c
}

// AsSortable returns a copy of the column marked sortable.
func (c Column[R]) AsSortable() Column[R] {
	c.Sortable = true
	return c
}

// WithRenderer returns a copy of the column with a custom cell renderer.
func (c Column[R]) WithRenderer(r CellRenderer) Column[R] {
	c.Renderer = r
	return c
}

// Text returns the default textual representation of the column's value
// for r. Filtering and sorting compare these strings.
func (c Column[R]) Text(r R) string {
	return Stringify(c.Extract(r))
}

// Display returns the text shown for the cell, using the custom renderer
// when one is set.
func (c Column[R]) Display(r R) string {
	v := c.Extract(r)
	if c.Renderer != nil {
		return c.Renderer(v)
	}
	return Stringify(v)
}

// Stringify formats an extracted value the way the pipeline compares it.
// nil prints as the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Value:
		return t.Formatted
	}
	return fmt.Sprint(v)
}
