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

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CompOp is a comparison operator of a where expression.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

// operators is ordered so that two-character symbols match first.
var operators = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

func (op CompOp) String() string {
	for _, o := range operators {
		if o.op == op {
			return o.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Comparison compares the cell at Column with a constant. Equality and
// containment ignore case. Ordering compares numerically when both sides
// parse as numbers, and case-folded text otherwise.
type Comparison struct {
	Column int
	Name   string
	Op     CompOp
	Value  string

	folded string
	folder *Folder
}

// NewComparison returns a comparison on one column.
func NewComparison(column int, name string, op CompOp, value string) *Comparison {
	folder := NewFolder()
	return &Comparison{Column: column, Name: name, Op: op, Value: value, folded: folder.Fold(value), folder: folder}
}

// Evaluate implements the Filter interface.
func (c *Comparison) Evaluate(cells []string) (bool, error) {
	if c.Column < 0 || c.Column >= len(cells) {
		return false, fmt.Errorf("%w: column %d out of range (%d cells)", ErrInvalidFilter, c.Column, len(cells))
	}
	cell := c.folder.Fold(cells[c.Column])

	switch c.Op {
	case OpEqual:
		return cell == c.folded, nil
	case OpNotEqual:
		return cell != c.folded, nil
	case OpContains:
		return strings.Contains(cell, c.folded), nil
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return ordered(c.Op, compare(cell, c.folded)), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %d", ErrInvalidFilter, c.Op)
	}
}

// Description implements the Filter interface.
func (c *Comparison) Description() string {
	return fmt.Sprintf("%s %s %q", c.Name, c.Op, c.Value)
}

func compare(a, b string) int {
	x, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	y, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func ordered(op CompOp, cmp int) bool {
	switch op {
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	default:
		return cmp <= 0
	}
}

// ParseQuery parses a where expression such as
//
//	age >= 30 AND city = oslo OR name ~ ann
//
// over the named columns. Terms are combined left to right. A term without
// an operator searches every column. Column names match without regard to
// case; values may be quoted. An empty query passes every row.
func ParseQuery(query string, names []string) (Filter, error) {
	terms, ops := splitTerms(query)
	if len(terms) == 0 {
		if len(ops) > 0 {
			return nil, fmt.Errorf("%w: no terms", ErrInvalidFilter)
		}
		return &CompositeFilter{Logic: LogicAND}, nil
	}
	if len(ops) != len(terms)-1 {
		return nil, fmt.Errorf("%w: mismatched terms and operators", ErrInvalidFilter)
	}

	columns := make(map[string]int, len(names))
	for i, name := range names {
		columns[strings.ToLower(name)] = i
	}

	var result Filter
	for i, term := range terms {
		f, err := parseTerm(term, names, columns)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			result = f
			continue
		}
		result = &CompositeFilter{Filters: []Filter{result, f}, Logic: ops[i-1]}
	}
	return result, nil
}

// splitTerms splits query on the words AND and OR outside quotes. An empty
// term between two operators is reported through a count mismatch.
func splitTerms(query string) ([]string, []LogicOp) {
	var (
		terms   []string
		ops     []LogicOp
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			terms = append(terms, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, word := range fields(query) {
		switch strings.ToUpper(word) {
		case "AND":
			flush()
			ops = append(ops, LogicAND)
		case "OR":
			flush()
			ops = append(ops, LogicOR)
		default:
			current = append(current, word)
		}
	}
	flush()
	return terms, ops
}

// fields splits s on white space. A quoted run stays in one field with its
// spaces intact.
func fields(s string) []string {
	var (
		out   []string
		b     strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			b.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			b.WriteRune(r)
		case unicode.IsSpace(r):
			if b.Len() > 0 {
				out = append(out, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

func parseTerm(term string, names []string, columns map[string]int) (Filter, error) {
	head := term
	if q := strings.IndexAny(term, `"'`); q >= 0 {
		head = term[:q]
	}
	for _, o := range operators {
		idx := strings.Index(head, o.symbol)
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(term[:idx])
		value := strings.Trim(strings.TrimSpace(term[idx+len(o.symbol):]), `"'`)
		col, ok := columns[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %s", ErrInvalidFilter, name)
		}
		return NewComparison(col, names[col], o.op, value), nil
	}
	return AnyColumn(strings.Trim(term, `"'`), names), nil
}

// Rows returns the records that pass f. texts fills the cell text of a
// record, reusing the buffer it is given.
func Rows[R any](records []R, f Filter, texts func(r R, buf []string) []string) ([]R, error) {
	out := make([]R, 0, len(records))
	var cells []string
	for _, r := range records {
		cells = texts(r, cells)
		ok, err := f.Evaluate(cells)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
