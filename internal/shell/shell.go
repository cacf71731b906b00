// Package shell runs an interactive session over a loaded table. Each
// command line maps onto one query, navigation or selection operation.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/peterh/liner"

	"github.com/magpierre/datatable-engine/datatable"
	"github.com/magpierre/datatable-engine/export"
	"github.com/magpierre/datatable-engine/internal/filter"
	"github.com/magpierre/datatable-engine/internal/render"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Table is the table type a session drives: source rows keyed by index.
type Table = datatable.Table[datatable.Row, int]

// Session holds a table, its records and the page shown last. records is
// the subset of all that matches the where expression.
type Session struct {
	table     *Table
	all       []datatable.Row
	records   []datatable.Row
	whereExpr string
	out       io.Writer
	opts      render.Options
	logger    *slog.Logger
	last      datatable.Result[datatable.Row]
}

type command struct {
	usage string
	help  string
	run   func(s *Session, args []string) error

	// raw commands receive the rest of the line as one argument.
	raw bool
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"filter":          {"filter TEXT", "show rows containing TEXT in any column", (*Session).filterText, true},
		"where":           {"where EXPR", "keep rows matching EXPR, e.g. age >= 30 AND city = oslo; empty clears", (*Session).where, true},
		"clear":           {"clear", "remove the filter", (*Session).clearFilter, false},
		"sort":            {"sort COLUMN [asc|desc]", "sort by COLUMN, toggling direction when repeated", (*Session).sortBy, false},
		"unsort":          {"unsort", "restore input order", (*Session).unsort, false},
		"page":            {"page N", "go to page N", (*Session).page, false},
		"next":            {"next", "go to the next page", (*Session).next, false},
		"prev":            {"prev", "go to the previous page", (*Session).prev, false},
		"size":            {"size N", "show N rows per page", (*Session).size, false},
		"select":          {"select N...", "toggle selection of rows N of the current page", (*Session).toggle, false},
		"select-all":      {"select-all", "select every row matching the filter", (*Session).selectAll, false},
		"unselect":        {"unselect N...", "deselect rows N of the current page", (*Session).unselect, false},
		"clear-selection": {"clear-selection", "deselect every row", (*Session).clearSelection, false},
		"selected":        {"selected", "list the selected rows", (*Session).selected, false},
		"show":            {"show", "show the current page", (*Session).show, false},
		"export":          {"export PATH", "write the filtered and sorted rows to PATH (.parquet, .csv, .json)", (*Session).exportView, false},
		"help":            {"help", "list commands", (*Session).help, false},
	}
}

// New returns a session over records that writes to out.
func New(table *Table, records []datatable.Row, out io.Writer, opts render.Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{table: table, all: records, records: records, out: out, opts: opts, logger: logger}
}

// Exec runs one command line. quit reports a quit or exit command.
func (s *Session) Exec(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	name := strings.ToLower(word)
	if name == "quit" || name == "exit" {
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, word)
	}

	var args []string
	if cmd.raw {
		args = rawArgs(rest)
	} else if args, err = shellwords.Parse(rest); err != nil {
		return false, fmt.Errorf("failed to parse command: %w", err)
	}
	s.logger.Debug("shell command", "command", name, "args", args)
	return false, cmd.run(s, args)
}

// rawArgs returns rest as a single argument without one level of
// surrounding quotes.
func rawArgs(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	if n := len(rest); n >= 2 && (rest[0] == '"' || rest[0] == '\'') && rest[n-1] == rest[0] {
		rest = rest[1 : n-1]
	}
	return []string{rest}
}

// Run reads commands from the terminal until quit, end of input or Ctrl-C.
func (s *Session) Run(prompt string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(Complete)

	if err := s.show(nil); err != nil {
		return err
	}
	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := s.Exec(input)
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
		if quit {
			return nil
		}
	}
}

// Complete returns the command names starting with line.
func Complete(line string) []string {
	var out []string
	for name := range commands {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func (s *Session) filterText(args []string) error {
	s.table.SetFilterText(strings.Join(args, " "))
	return s.show(nil)
}

func (s *Session) where(args []string) error {
	query := strings.Join(args, " ")
	rows, err := Where(s.table.Schema(), s.all, query)
	if err != nil {
		return err
	}
	s.records, s.whereExpr = rows, query
	s.logger.Debug("where expression applied", "where", query, "rows", len(rows))
	return s.show(nil)
}

func (s *Session) clearFilter([]string) error {
	s.table.SetFilterText("")
	return s.show(nil)
}

func (s *Session) sortBy(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: sort COLUMN [asc|desc]", ErrUsage)
	}
	if len(args) == 1 {
		if !s.table.ToggleSort(args[0]) {
			return fmt.Errorf("%w: %s is not a sortable column", datatable.ErrColumnNotFound, args[0])
		}
		return s.show(nil)
	}

	var dir datatable.SortDirection
	switch strings.ToLower(args[1]) {
	case "asc":
		dir = datatable.SortAscending
	case "desc":
		dir = datatable.SortDescending
	default:
		return fmt.Errorf("%w: sort COLUMN [asc|desc]", ErrUsage)
	}
	if err := s.table.SetSort(args[0], dir); err != nil {
		return err
	}
	return s.show(nil)
}

func (s *Session) unsort([]string) error {
	s.table.ClearSort()
	return s.show(nil)
}

func (s *Session) page(args []string) error {
	n, err := oneInt(args, "page N")
	if err != nil {
		return err
	}
	s.table.Evaluate(s.records)
	s.table.GoToPage(n)
	return s.show(nil)
}

func (s *Session) next([]string) error {
	s.table.Evaluate(s.records)
	s.table.NextPage()
	return s.show(nil)
}

func (s *Session) prev([]string) error {
	s.table.PrevPage()
	return s.show(nil)
}

func (s *Session) size(args []string) error {
	n, err := oneInt(args, "size N")
	if err != nil {
		return err
	}
	s.table.SetItemsPerPage(n)
	return s.show(nil)
}

func (s *Session) toggle(args []string) error {
	rows, err := s.pageRows(args)
	if err != nil {
		return err
	}
	for _, r := range rows {
		s.table.Toggle(datatable.RowID(r))
	}
	return s.show(nil)
}

func (s *Session) unselect(args []string) error {
	rows, err := s.pageRows(args)
	if err != nil {
		return err
	}
	for _, r := range rows {
		s.table.Selection().Deselect(datatable.RowID(r))
	}
	return s.show(nil)
}

func (s *Session) selectAll([]string) error {
	n := s.table.SelectAllFiltered(s.records)
	fmt.Fprintf(s.out, "selected %d rows\n", n)
	return s.show(nil)
}

func (s *Session) clearSelection([]string) error {
	s.table.ClearSelection()
	return s.show(nil)
}

func (s *Session) selected([]string) error {
	rows := s.table.SelectedRecords(s.all)
	res := datatable.Result[datatable.Row]{
		Rows:         rows,
		TotalPages:   1,
		TotalRows:    len(rows),
		Page:         1,
		ItemsPerPage: max(len(rows), 1),
	}
	opts := s.opts
	opts.Status = fmt.Sprintf("%d selected", len(rows))
	return render.Page(s.out, s.table.Schema(), res, nil, opts)
}

func (s *Session) show([]string) error {
	s.last = s.table.Evaluate(s.records)
	opts := s.opts
	opts.Status = s.table.Status()
	if s.whereExpr != "" {
		opts.Status += fmt.Sprintf(" | where: %s", s.whereExpr)
	}
	return render.Page(s.out, s.table.Schema(), s.last, s.isSelected, opts)
}

func (s *Session) exportView(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: export PATH", ErrUsage)
	}
	format, err := export.FormatFromPath(args[0])
	if err != nil {
		return err
	}

	view := s.table.View(s.records)
	tbl, err := export.Build(s.table.Schema(), view, nil)
	if err != nil {
		return err
	}
	defer tbl.Release()
	if err := export.WriteFile(args[0], format, tbl); err != nil {
		return err
	}

	s.logger.Info("exported rows", "path", args[0], "format", format.String(), "rows", len(view))
	fmt.Fprintf(s.out, "exported %d rows to %s\n", len(view), args[0])
	return nil
}

func (s *Session) help([]string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %-24s %s\n", commands[name].usage, commands[name].help)
	}
	fmt.Fprintf(s.out, "  %-24s %s\n", "quit", "leave the shell")
	return nil
}

func (s *Session) isSelected(r datatable.Row) bool {
	return s.table.IsSelected(datatable.RowID(r))
}

// pageRows resolves 1-based positions on the page shown last.
func (s *Session) pageRows(args []string) ([]datatable.Row, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: select N...", ErrUsage)
	}
	rows := make([]datatable.Row, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a row number", ErrUsage, arg)
		}
		if n < 1 || n > len(s.last.Rows) {
			return nil, fmt.Errorf("%w: %d not on the current page", datatable.ErrInvalidRow, n)
		}
		rows = append(rows, s.last.Rows[n-1])
	}
	return rows, nil
}

// Where returns the records matching a where expression over the columns
// of schema. An empty expression keeps every record.
func Where[R any](schema *datatable.Schema[R], records []R, query string) ([]R, error) {
	if strings.TrimSpace(query) == "" {
		return records, nil
	}
	f, err := filter.ParseQuery(query, schema.IDs())
	if err != nil {
		return nil, err
	}
	return filter.Rows(records, f, schema.Texts)
}

func oneInt(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return n, nil
}
