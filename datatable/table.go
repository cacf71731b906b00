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
	"log/slog"
	"strings"
)

// Config holds the options a table is constructed with.
type Config struct {
	// ItemsPerPage is the page size. Values below 1 become 1.
	ItemsPerPage int

	// InitialPage is the first page shown. Values below 1 become 1.
	InitialPage int

	// ResetPageOnFilter returns to page 1 whenever the filter text changes.
	// When false the current page is kept, and may point past the last
	// page until the next navigation.
	ResetPageOnFilter bool

	// ClampPageOnEvaluate pulls the current page back into [1, TotalPages]
	// on every evaluation. When false an out-of-range page evaluates to an
	// empty window.
	ClampPageOnEvaluate bool

	// Logger receives debug records for requests the table ignores or
	// corrects. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the default table configuration.
func DefaultConfig() Config {
	return Config{
		ItemsPerPage: DefaultItemsPerPage,
		InitialPage:  DefaultInitialPage,
	}
}

// Table owns the query state and selection of one table instance.
// Records are supplied on every evaluation; the schema is fixed.
//
// A Table is meant to be driven by a single owner, e.g. a UI event loop.
// It performs no locking.
type Table[R any, K comparable] struct {
	schema    *Schema[R]
	id        func(R) K
	query     QueryState
	selection *Selection[K]
	config    Config
	logger    *slog.Logger

	totalPages int
	totalRows  int
}

// New creates a table for schema. id returns the stable identifier of a
// record and keys the selection.
func New[R any, K comparable](schema *Schema[R], id func(R) K, config Config) (*Table[R, K], error) {
	if schema == nil {
		return nil, ErrEmptySchema
	}
	if id == nil {
		return nil, ErrNilIdentity
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Table[R, K]{
		schema:     schema,
		id:         id,
		query:      NewQueryState(config.ItemsPerPage, config.InitialPage),
		selection:  NewSelection[K](),
		config:     config,
		logger:     logger,
		totalPages: 1,
	}, nil
}

// Schema returns the table's column schema.
func (t *Table[R, K]) Schema() *Schema[R] { return t.schema }

// Query returns a copy of the current query state.
func (t *Table[R, K]) Query() QueryState { return t.query }

// Selection returns the table's selection tracker.
func (t *Table[R, K]) Selection() *Selection[K] { return t.selection }

// ID returns the identifier of r.
func (t *Table[R, K]) ID(r R) K { return t.id(r) }

// TotalPages returns the page count of the most recent evaluation,
// or 1 before the first one.
func (t *Table[R, K]) TotalPages() int { return t.totalPages }

// Evaluate runs the pipeline over records with the current query.
func (t *Table[R, K]) Evaluate(records []R) Result[R] {
	view, applied := apply(records, t.schema, t.query)

	if req := t.query.Sort(); req.IsSorted() && !applied.IsSorted() {
		t.logger.Debug("ignoring sort on unknown or unsortable column", "column", req.ColumnID)
	}

	pages := PageCount(len(view), t.query.ItemsPerPage())
	if page := t.query.CurrentPage(); page > pages {
		if t.config.ClampPageOnEvaluate {
			t.query.GoToPage(page, pages)
			t.logger.Debug("clamped page after evaluation", "requested", page, "page", pages)
		} else {
			t.logger.Debug("page beyond last page, window is empty", "page", page, "total_pages", pages)
		}
	}

	res := paginate(view, applied, t.query)
	t.totalPages = res.TotalPages
	t.totalRows = res.TotalRows
	return res
}

// View returns every record that passes the filter, in sorted order.
func (t *Table[R, K]) View(records []R) []R {
	return Apply(records, t.schema, t.query)
}

// SetFilterText replaces the filter text. With ResetPageOnFilter set, a
// changed filter also returns to page 1.
func (t *Table[R, K]) SetFilterText(text string) {
	changed := text != t.query.FilterText()
	t.query.SetFilterText(text)
	if changed && t.config.ResetPageOnFilter {
		t.query.GoToPage(1, 1)
	}
}

// ToggleSort applies a header tap on column id and reports whether the
// sort changed.
func (t *Table[R, K]) ToggleSort(id string) bool {
	if !t.query.ToggleSort(t.schema, id) {
		t.logger.Debug("sort toggle ignored", "column", id)
		return false
	}
	return true
}

// SetSort sets the sort request directly. Requests for unknown or
// unsortable columns are rejected with ErrColumnNotFound.
func (t *Table[R, K]) SetSort(id string, dir SortDirection) error {
	if dir != SortNone && !t.schema.IsSortable(id) {
		return fmt.Errorf("%w: %q is not a sortable column", ErrColumnNotFound, id)
	}
	t.query.SetSort(id, dir)
	return nil
}

// ClearSort removes the active sort.
func (t *Table[R, K]) ClearSort() {
	t.query.ClearSort()
}

// GoToPage moves to page, clamped against the page count of the most
// recent evaluation. It returns the page selected.
func (t *Table[R, K]) GoToPage(page int) int {
	got := t.query.GoToPage(page, t.totalPages)
	if got != page {
		t.logger.Debug("clamped page request", "requested", page, "page", got)
	}
	return got
}

// NextPage advances one page, stopping at the last page.
func (t *Table[R, K]) NextPage() int {
	return t.GoToPage(t.query.CurrentPage() + 1)
}

// PrevPage goes back one page, stopping at page 1.
func (t *Table[R, K]) PrevPage() int {
	return t.GoToPage(t.query.CurrentPage() - 1)
}

// SetItemsPerPage replaces the page size without moving the current page.
func (t *Table[R, K]) SetItemsPerPage(n int) {
	t.query.SetItemsPerPage(n)
	t.totalPages = PageCount(t.totalRows, t.query.ItemsPerPage())
}

// Toggle flips the selection of the record with the given id.
func (t *Table[R, K]) Toggle(id K) bool { return t.selection.Toggle(id) }

// IsSelected reports whether the record with the given id is selected.
func (t *Table[R, K]) IsSelected(id K) bool { return t.selection.IsSelected(id) }

// SelectAll adds ids to the selection.
func (t *Table[R, K]) SelectAll(ids ...K) { t.selection.SelectAll(ids...) }

// ClearSelection empties the selection.
func (t *Table[R, K]) ClearSelection() { t.selection.Clear() }

// SelectAllFiltered selects every record that passes the current filter,
// on all pages, and returns how many records that was.
func (t *Table[R, K]) SelectAllFiltered(records []R) int {
	view := filterRows(records, t.schema, t.query.FilterText())
	for _, r := range view {
		t.selection.Select(t.id(r))
	}
	return len(view)
}

// SelectedRecords returns the selected records in input order, whether
// or not they pass the current filter.
func (t *Table[R, K]) SelectedRecords(records []R) []R {
	var out []R
	for _, r := range records {
		if t.selection.IsSelected(t.id(r)) {
			out = append(out, r)
		}
	}
	return out
}

// Status summarises the most recent evaluation for a status bar.
func (t *Table[R, K]) Status() string {
	parts := []string{
		fmt.Sprintf("%d rows", t.totalRows),
		fmt.Sprintf("page %d/%d", t.query.CurrentPage(), t.totalPages),
	}
	if s := t.query.Sort(); s.IsSorted() && t.schema.IsSortable(s.ColumnID) {
		col, _ := t.schema.Column(s.ColumnID)
		parts = append(parts, fmt.Sprintf("sorted: %s %s", col.Title, s.Direction.Arrow()))
	}
	if f := t.query.FilterText(); f != "" {
		parts = append(parts, fmt.Sprintf("filter: %q", f))
	}
	if n := t.selection.Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	return strings.Join(parts, " | ")
}
