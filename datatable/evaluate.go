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
	"slices"
	"strings"

	"github.com/magpierre/datatable-engine/internal/filter"
)

// Result is the output of one pipeline evaluation.
type Result[R any] struct {
	// Rows holds the records of the requested page, in display order.
	Rows []R

	// TotalPages is max(1, ceil(TotalRows/ItemsPerPage)).
	TotalPages int

	// TotalRows counts the records that passed the filter.
	TotalRows int

	// Page is the page the window was cut for. It may exceed TotalPages,
	// in which case Rows is empty.
	Page int

	// ItemsPerPage is the page size used.
	ItemsPerPage int

	// Sort is the sort that was actually applied. It is unsorted when the
	// query named an unknown or unsortable column.
	Sort SortState
}

// Offset returns the position of the first row of the page within the
// filtered and sorted view.
func (r Result[R]) Offset() int {
	start, _ := window(r.TotalRows, r.ItemsPerPage, r.Page)
	return start
}

// Evaluate filters records, sorts what remains and cuts the page window.
// It never reorders or modifies records and returns the same result for
// the same inputs.
func Evaluate[R any](records []R, schema *Schema[R], q QueryState) Result[R] {
	view, applied := apply(records, schema, q)
	return paginate(view, applied, q)
}

func paginate[R any](view []R, applied SortState, q QueryState) Result[R] {
	perPage := q.ItemsPerPage()
	page := q.CurrentPage()
	start, end := window(len(view), perPage, page)

	return Result[R]{
		Rows:         view[start:end:end],
		TotalPages:   PageCount(len(view), perPage),
		TotalRows:    len(view),
		Page:         page,
		ItemsPerPage: perPage,
		Sort:         applied,
	}
}

// Apply runs the filter and sort stages without paginating and returns the
// full view in display order.
func Apply[R any](records []R, schema *Schema[R], q QueryState) []R {
	view, _ := apply(records, schema, q)
	return view
}

// PageCount returns max(1, ceil(n/perPage)).
func PageCount(n, perPage int) int {
	perPage = normalizePageSize(perPage)
	if n <= 0 {
		return 1
	}
	return (n-1)/perPage + 1
}

func apply[R any](records []R, schema *Schema[R], q QueryState) ([]R, SortState) {
	if schema == nil {
		out := make([]R, len(records))
		copy(out, records)
		return out, SortState{}
	}

	rows := filterRows(records, schema, q.FilterText())

	col, applied, ok := resolveSort(schema, q.Sort())
	if !ok {
		return rows, SortState{}
	}
	sortRows(rows, col, applied.Direction)
	return rows, applied
}

// filterRows returns the records whose text in any column contains the
// filter text. The result is always a fresh slice.
func filterRows[R any](records []R, schema *Schema[R], text string) []R {
	out := make([]R, 0, len(records))
	if text == "" {
		return append(out, records...)
	}

	match := filter.AnyColumn(text, schema.IDs())
	var cells []string
	for _, r := range records {
		cells = schema.Texts(r, cells)
		// AnyColumn only reports errors for a cell count that does not
		// match the schema, which cannot happen here.
		if ok, err := match.Evaluate(cells); err == nil && ok {
			out = append(out, r)
		}
	}
	return out
}

func resolveSort[R any](schema *Schema[R], s SortState) (Column[R], SortState, bool) {
	if !s.IsSorted() {
		return Column[R]{}, SortState{}, false
	}
	col, ok := schema.Column(s.ColumnID)
	if !ok || !col.Sortable {
		return Column[R]{}, SortState{}, false
	}
	return col, s, true
}

type keyedRow[R any] struct {
	key string
	row R
}

// sortRows stable-sorts rows in place by the text of col. Keys are
// extracted once per row.
func sortRows[R any](rows []R, col Column[R], dir SortDirection) {
	items := make([]keyedRow[R], len(rows))
	for i, r := range rows {
		items[i] = keyedRow[R]{key: col.Text(r), row: r}
	}

	slices.SortStableFunc(items, func(a, b keyedRow[R]) int {
		c := strings.Compare(a.key, b.key)
		if dir == SortDescending {
			return -c
		}
		return c
	})

	for i := range items {
		rows[i] = items[i].row
	}
}

// window returns the slice bounds of page within n rows, clamped so that an
// out-of-range page yields an empty window.
func window(n, perPage, page int) (int, int) {
	perPage = normalizePageSize(perPage)
	page = normalizePage(page)
	if page-1 > n/perPage {
		return n, n
	}
	start := (page - 1) * perPage
	if start > n {
		start = n
	}
	end := n
	if n-start > perPage {
		end = start + perPage
	}
	return start, end
}
