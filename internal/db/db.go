// Package db defines the database abstraction shared by the SQL Server and
// Postgres backends. Rows are fully materialized; queries in this tool are
// always bounded by the validator's row limit.
package db

import "context"

// Dialect selects backend-specific SQL (row limiting, catalog schema).
type Dialect string

const (
	DialectSQLServer Dialect = "sqlserver"
	DialectPostgres  Dialect = "postgres"
)

type Column struct {
	Name string
	Type string
}

type Row []any

type Rows struct {
	Columns []Column
	Data    []Row
}

// ColumnMeta is one catalog entry: a column of a table with its declared type.
type ColumnMeta struct {
	Table    string
	Column   string
	DataType string
}

type DB interface {
	Close() error
	Dialect() Dialect
	// ListTables returns base-table names in the default schema, ordered by
	// name. A limit <= 0 means no cap.
	ListTables(ctx context.Context, limit int) ([]string, error)
	// SchemaColumns returns catalog metadata for the default schema, filtered
	// to the allowed tables when the list is non-empty.
	SchemaColumns(ctx context.Context, allowed []string) ([]ColumnMeta, error)
	Query(ctx context.Context, sql string) (*Rows, error)
}
