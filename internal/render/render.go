// Package render writes table pages as aligned plain text for terminals.
package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/magpierre/datatable-engine/datatable"
)

// Options controls page rendering.
type Options struct {
	// MaxCellWidth truncates cell text longer than this many runes.
	// Zero disables truncation.
	MaxCellWidth int

	// Status is written below the rows when not empty.
	Status string

	// Color enables styling when w is a terminal that supports it.
	Color bool
}

// DefaultOptions returns options for interactive output.
func DefaultOptions() Options {
	return Options{MaxCellWidth: 40, Color: true}
}

const (
	selectedMark = "*"
	ellipsis     = "…"
)

// Page writes the header, one line per row of res and the status line.
// isSelected may be nil. The active sort column carries a direction arrow.
func Page[R any](w io.Writer, schema *datatable.Schema[R], res datatable.Result[R], isSelected func(R) bool, opts Options) error {
	if schema == nil {
		return datatable.ErrEmptySchema
	}

	out := output(w, opts)
	columns := schema.Columns()

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	header := make([]string, 0, len(columns)+1)
	header = append(header, " ")
	for _, col := range columns {
		title := col.Title
		if res.Sort.ColumnID == col.ID {
			title += " " + res.Sort.Direction.Arrow()
		}
		header = append(header, title)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	cells := make([]string, 0, len(columns)+1)
	for _, row := range res.Rows {
		mark := " "
		if isSelected != nil && isSelected(row) {
			mark = selectedMark
		}
		cells = append(cells[:0], mark)
		for _, col := range columns {
			cells = append(cells, truncate(sanitize(col.Display(row)), opts.MaxCellWidth))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(&buf)
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " ")
		switch {
		case first:
			line = out.String(line).Bold().String()
			first = false
		case strings.HasPrefix(line, selectedMark):
			line = out.String(line).Foreground(out.Color("6")).String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(res.Rows) == 0 {
		if _, err := fmt.Fprintln(w, out.String("(no rows)").Faint().String()); err != nil {
			return err
		}
	}
	if opts.Status != "" {
		if _, err := fmt.Fprintln(w, out.String(opts.Status).Faint().String()); err != nil {
			return err
		}
	}
	return nil
}

// Source writes the columns of ds with their types and the row count.
func Source(w io.Writer, ds datatable.DataSource) error {
	if ds == nil {
		return datatable.ErrNoDataSource
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOLUMN\tTYPE")
	for i := 0; i < ds.ColumnCount(); i++ {
		name, err := ds.ColumnName(i)
		if err != nil {
			return err
		}
		typ, err := ds.ColumnType(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, name, typ)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d rows\n", ds.RowCount())
	return err
}

func output(w io.Writer, opts Options) *termenv.Output {
	if !opts.Color {
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return termenv.NewOutput(w)
}

// sanitize keeps cell text on one line and free of column separators.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return ellipsis
	}
	runes := []rune(s)
	return string(runes[:max-1]) + ellipsis
}
