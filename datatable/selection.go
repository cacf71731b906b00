package datatable

// Selection is a set of record identifiers marked as selected.
// Membership is keyed by id only, so it survives filter, sort and page
// changes and is never pruned when records leave the view.
// The zero value is an empty selection.
type Selection[K comparable] struct {
	ids map[K]struct{}
}

// NewSelection returns an empty selection.
func NewSelection[K comparable]() *Selection[K] {
	return &Selection[K]{ids: make(map[K]struct{})}
}

// Toggle flips the membership of id and reports whether it is now selected.
func (s *Selection[K]) Toggle(id K) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.add(id)
	return true
}

// IsSelected reports whether id is selected.
func (s *Selection[K]) IsSelected(id K) bool {
	_, ok := s.ids[id]
	return ok
}

// Select marks id as selected.
func (s *Selection[K]) Select(id K) {
	s.add(id)
}

// Deselect removes id from the selection.
func (s *Selection[K]) Deselect(id K) {
	delete(s.ids, id)
}

// SelectAll adds every id to the selection.
func (s *Selection[K]) SelectAll(ids ...K) {
	for _, id := range ids {
		s.add(id)
	}
}

func (s *Selection[K]) add(id K) {
	if s.ids == nil {
		s.ids = make(map[K]struct{})
	}
	s.ids[id] = struct{}{}
}

// Clear empties the selection.
func (s *Selection[K]) Clear() {
	clear(s.ids)
}

// Len returns the number of selected ids.
func (s *Selection[K]) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in no particular order.
func (s *Selection[K]) IDs() []K {
	ids := make([]K, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}
