package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Folder maps strings to their Unicode case-folded form.
// A Folder is not safe for concurrent use.
type Folder struct {
	caser cases.Caser
}

// NewFolder returns a Folder using Unicode full case folding.
func NewFolder() *Folder {
	return &Folder{caser: cases.Fold()}
}

// Fold returns the case-folded form of s.
func (f *Folder) Fold(s string) string {
	return f.caser.String(s)
}

// Contains passes rows whose cell at Column contains a substring,
// ignoring case.
type Contains struct {
	// Column is the index of the cell to inspect.
	Column int

	// Name labels the column in descriptions.
	Name string

	needle string
	folder *Folder
}

// NewContains returns a case-insensitive substring filter on one column.
func NewContains(column int, name, text string) *Contains {
	folder := NewFolder()
	return &Contains{Column: column, Name: name, needle: folder.Fold(text), folder: folder}
}

// Evaluate implements the Filter interface.
func (f *Contains) Evaluate(cells []string) (bool, error) {
	if f.Column < 0 || f.Column >= len(cells) {
		return false, fmt.Errorf("%w: column %d out of range (%d cells)", ErrInvalidFilter, f.Column, len(cells))
	}
	if f.needle == "" {
		return true, nil
	}
	return strings.Contains(f.folder.Fold(cells[f.Column]), f.needle), nil
}

// Description implements the Filter interface.
func (f *Contains) Description() string {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("#%d", f.Column)
	}
	return fmt.Sprintf("%s contains %q", name, f.needle)
}
