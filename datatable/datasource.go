package datatable

import "fmt"

// DataSource provides read-only access to tabular data.
// Implementations must be thread-safe for concurrent reads.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)

	// Row returns all values for the specified row.
	// Returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}

// Row is one record read from a DataSource. Index is its position in the
// source and serves as its identifier.
type Row struct {
	Index  int
	Values []Value
}

// RowID returns the identifier of a source row.
func RowID(r Row) int { return r.Index }

// Rows reads every row of ds.
func Rows(ds DataSource) ([]Row, error) {
	if ds == nil {
		return nil, ErrNoDataSource
	}
	rows := make([]Row, ds.RowCount())
	for i := range rows {
		values, err := ds.Row(i)
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", i, err)
		}
		rows[i] = Row{Index: i, Values: values}
	}
	return rows, nil
}

// SourceColumn returns a column that extracts the cell at position col of
// a source row. Rows that are too short yield a null value.
func SourceColumn(id string, col int, dataType DataType) Column[Row] {
	return NewColumn(id, func(r Row) any {
		if col < 0 || col >= len(r.Values) {
			return NewNullValue(dataType)
		}
		return r.Values[col]
	})
}

// SchemaFromSource builds one column per source column, named after it.
// Duplicate column names are reported as ErrDuplicateColumn.
func SchemaFromSource(ds DataSource, sortable bool) (*Schema[Row], error) {
	if ds == nil {
		return nil, ErrNoDataSource
	}
	cols := make([]Column[Row], ds.ColumnCount())
	for i := range cols {
		name, err := ds.ColumnName(i)
		if err != nil {
			return nil, err
		}
		dataType, err := ds.ColumnType(i)
		if err != nil {
			return nil, err
		}
		c := SourceColumn(name, i, dataType)
		c.Sortable = sortable
		cols[i] = c
	}
	return NewSchema(cols...)
}
