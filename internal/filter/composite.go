// Package filter holds the row predicates applied by the evaluator's filter
// stage. Rows are presented as the text of each column, in schema order.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter is returned when a filter cannot be evaluated.
var ErrInvalidFilter = errors.New("invalid filter expression")

// Filter decides whether a row is kept.
type Filter interface {
	// Evaluate reports whether the row passes. cells holds the text of
	// every column of the row.
	Evaluate(cells []string) (bool, error)

	// Description returns a human-readable form of the filter.
	Description() string
}

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines multiple filters with AND or OR logic.
type CompositeFilter struct {
	// Filters is the list of filters to combine.
	Filters []Filter

	// Logic specifies how to combine the filters (AND or OR).
	Logic LogicOp
}

// Evaluate implements the Filter interface.
func (f *CompositeFilter) Evaluate(cells []string) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil // Empty filter passes all rows
	}

	switch f.Logic {
	case LogicAND:
		for _, filter := range f.Filters {
			passes, err := filter.Evaluate(cells)
			if err != nil {
				return false, err
			}
			if !passes {
				return false, nil
			}
		}
		return true, nil

	case LogicOR:
		for _, filter := range f.Filters {
			passes, err := filter.Evaluate(cells)
			if err != nil {
				return false, err
			}
			if passes {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", ErrInvalidFilter, f.Logic)
	}
}

// Description implements the Filter interface.
func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}

	descriptions := make([]string, len(f.Filters))
	for i, filter := range f.Filters {
		descriptions[i] = filter.Description()
	}

	logicStr := f.Logic.String()
	return "(" + strings.Join(descriptions, " "+logicStr+" ") + ")"
}

// AnyColumn returns the free-text search filter: a row passes when the text
// of any of its columns contains text, ignoring case. names labels the
// columns in descriptions and fixes how many columns are searched.
// Empty text yields a filter that passes every row.
func AnyColumn(text string, names []string) Filter {
	if text == "" {
		return &CompositeFilter{Logic: LogicOR}
	}
	folder := NewFolder()
	needle := folder.Fold(text)
	filters := make([]Filter, len(names))
	for i, name := range names {
		filters[i] = &Contains{Column: i, Name: name, needle: needle, folder: folder}
	}
	return &CompositeFilter{Filters: filters, Logic: LogicOR}
}
