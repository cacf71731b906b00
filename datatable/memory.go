package datatable

import "fmt"

// MemorySource is a DataSource over fully materialised rows. Adapters build
// one after decoding their input.
type MemorySource struct {
	names    []string
	types    []DataType
	rows     [][]Value
	metadata Metadata
}

// NewMemorySource checks that every row has one value per column and
// returns the source. The slices are owned by the source afterwards.
func NewMemorySource(names []string, types []DataType, rows [][]Value, metadata Metadata) (*MemorySource, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("%w: %d names for %d types", ErrInvalidColumn, len(names), len(types))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrInvalidRow, i, len(row), len(names))
		}
	}
	if metadata == nil {
		metadata = Metadata{}
	}
	return &MemorySource{names: names, types: types, rows: rows, metadata: metadata}, nil
}

// RowCount implements DataSource.
func (s *MemorySource) RowCount() int { return len(s.rows) }

// ColumnCount implements DataSource.
func (s *MemorySource) ColumnCount() int { return len(s.names) }

// ColumnName implements DataSource.
func (s *MemorySource) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return s.names[col], nil
}

// ColumnType implements DataSource.
func (s *MemorySource) ColumnType(col int) (DataType, error) {
	if col < 0 || col >= len(s.types) {
		return TypeString, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return s.types[col], nil
}

// Cell implements DataSource.
func (s *MemorySource) Cell(row, col int) (Value, error) {
	if row < 0 || row >= len(s.rows) {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.names) {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return s.rows[row][col], nil
}

// Row implements DataSource. The returned slice is a copy.
func (s *MemorySource) Row(row int) ([]Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	out := make([]Value, len(s.rows[row]))
	copy(out, s.rows[row])
	return out, nil
}

// Metadata implements DataSource.
func (s *MemorySource) Metadata() Metadata { return s.metadata }

// ColumnNames returns the column names of any data source in order.
func ColumnNames(ds DataSource) []string {
	names := make([]string, ds.ColumnCount())
	for i := range names {
		names[i], _ = ds.ColumnName(i)
	}
	return names
}
