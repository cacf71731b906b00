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

const (
	// DefaultItemsPerPage is the page size used when none is configured.
	DefaultItemsPerPage = 10
	// DefaultInitialPage is the first page shown.
	DefaultInitialPage = 1
)

// QueryState holds the filter text, the active sort and the pagination
// request that drive one evaluation. Create one with NewQueryState; the
// zero value works but pages a single record at a time.
//
// QueryState has no internal locking. A host that mutates it from several
// goroutines must serialize those calls itself.
type QueryState struct {
	filterText   string
	sort         SortState
	itemsPerPage int
	currentPage  int
}

// NewQueryState returns a query with no filter, no sort, and the given
// pagination request. Degenerate values are normalised to 1.
func NewQueryState(itemsPerPage, initialPage int) QueryState {
	return QueryState{
		itemsPerPage: normalizePageSize(itemsPerPage),
		currentPage:  normalizePage(initialPage),
	}
}

// DefaultQueryState returns a query with the default pagination.
func DefaultQueryState() QueryState {
	return NewQueryState(DefaultItemsPerPage, DefaultInitialPage)
}

// FilterText returns the current free-text filter.
func (q QueryState) FilterText() string { return q.filterText }

// Sort returns the requested sort, which may name a column the schema
// does not know. The evaluator treats such a request as unsorted.
func (q QueryState) Sort() SortState { return q.sort }

// ItemsPerPage returns the page size.
func (q QueryState) ItemsPerPage() int { return normalizePageSize(q.itemsPerPage) }

// CurrentPage returns the requested 1-based page.
func (q QueryState) CurrentPage() int { return normalizePage(q.currentPage) }

// SetFilterText replaces the filter text verbatim. The current page is
// left unchanged.
func (q *QueryState) SetFilterText(text string) {
	q.filterText = text
}

// ToggleSort applies a header tap on column id. A sortable column that is
// not active becomes the ascending sort; the active column flips direction.
// Unknown and unsortable columns leave the sort unchanged and return false.
func (q *QueryState) ToggleSort(lookup SortLookup, id string) bool {
	if lookup == nil || !lookup.IsSortable(id) {
		return false
	}
	if q.sort.IsSorted() && q.sort.ColumnID == id {
		q.sort.Direction = q.sort.Direction.Reverse()
		return true
	}
	q.sort = SortState{ColumnID: id, Direction: SortAscending}
	return true
}

// SetSort sets the sort request directly. SortNone clears it.
func (q *QueryState) SetSort(id string, dir SortDirection) {
	if id == "" || dir == SortNone {
		q.sort = SortState{}
		return
	}
	q.sort = SortState{ColumnID: id, Direction: dir}
}

// ClearSort removes any active sort.
func (q *QueryState) ClearSort() {
	q.sort = SortState{}
}

// GoToPage moves to page, clamped to [1, totalPages].
// It returns the page actually selected.
func (q *QueryState) GoToPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		page = 1
	case page > totalPages:
		page = totalPages
	}
	q.currentPage = page
	return page
}

// SetItemsPerPage replaces the page size. Values below 1 become 1.
// The current page is left unchanged.
func (q *QueryState) SetItemsPerPage(n int) {
	q.itemsPerPage = normalizePageSize(n)
}

// Reset clears the filter and sort and returns to the first page while
// keeping the page size.
func (q *QueryState) Reset() {
	q.filterText = ""
	q.sort = SortState{}
	q.currentPage = 1
}

func normalizePageSize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func normalizePage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}
