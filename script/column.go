package script

import (
	"log/slog"

	"github.com/magpierre/datatable-engine/datatable"
)

// Column builds a computed column over source rows. names gives the source
// column name for each position of Row.Values. Null cells appear as nil in
// the row map.
//
// An expression that fails on a row yields a nil value for that row; the
// failure is logged at debug level when logger is not nil.
func Column(id, title, expr string, names []string, logger *slog.Logger) (datatable.Column[datatable.Row], error) {
	prog, err := Compile(expr)
	if err != nil {
		return datatable.Column[datatable.Row]{}, err
	}

	col := datatable.NewColumn(id, func(r datatable.Row) any {
		v, err := prog.Eval(RowMap(r, names))
		if err != nil {
			if logger != nil {
				logger.Debug("computed column failed", "column", id, "row", r.Index, "error", err)
			}
			return nil
		}
		return v
	})
	if title != "" {
		col.Title = title
	}
	return col, nil
}

// RowMap exposes a source row to an expression, keyed by column name.
func RowMap(r datatable.Row, names []string) map[string]interface{} {
	m := make(map[string]interface{}, len(names))
	for i, name := range names {
		if i >= len(r.Values) || r.Values[i].IsNull {
			m[name] = nil
			continue
		}
		m[name] = r.Values[i].Raw
	}
	return m
}
