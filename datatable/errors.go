package datatable

import "errors"

// Common errors returned by the datatable package.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrNoDataSource is returned when a required data source is nil.
	ErrNoDataSource = errors.New("data source is nil")

	// ErrColumnNotFound is returned when a column id is not part of a schema.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when two columns of a schema share an id.
	ErrDuplicateColumn = errors.New("duplicate column id")

	// ErrEmptyColumnID is returned when a column is declared without an id.
	ErrEmptyColumnID = errors.New("empty column id")

	// ErrNilExtractor is returned when a column has no field extractor.
	ErrNilExtractor = errors.New("column has no extractor")

	// ErrEmptySchema is returned when a schema is built without columns.
	ErrEmptySchema = errors.New("schema has no columns")

	// ErrNilIdentity is returned when a table is built without an id function.
	ErrNilIdentity = errors.New("record id function is nil")
)
