// Package postgres implements the db.DB interface for PostgreSQL via the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/Ezequiell22/agent-sql/internal/db"
)

type Conn struct {
	db *sql.DB
}

// BuildDSN renders a postgres:// connection URL from discrete settings.
func BuildDSN(server string, port int, database, user, password string) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%d", server, port),
		Path:   "/" + database,
	}
	return u.String()
}

func Open(dsn string) (*Conn, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(2)
	sqldb.SetMaxIdleConns(2)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return &Conn{db: sqldb}, nil
}

// New wraps an existing handle; used by Open and by tests.
func New(sqldb *sql.DB) *Conn {
	return &Conn{db: sqldb}
}

func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Conn) Dialect() db.Dialect {
	return db.DialectPostgres
}

func (c *Conn) ListTables(ctx context.Context, limit int) ([]string, error) {
	q := `
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE' AND table_schema = 'public'
ORDER BY table_name`
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (c *Conn) SchemaColumns(ctx context.Context, allowed []string) ([]db.ColumnMeta, error) {
	q := `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'`
	var args []any
	if len(allowed) > 0 {
		placeholders := make([]string, len(allowed))
		for i, table := range allowed {
			placeholders[i] = "$" + strconv.Itoa(i+1)
			args = append(args, table)
		}
		q += " AND table_name IN (" + strings.Join(placeholders, ", ") + ")"
	}
	q += " ORDER BY table_name, ordinal_position"

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.ColumnMeta
	for rows.Next() {
		var meta db.ColumnMeta
		if err := rows.Scan(&meta.Table, &meta.Column, &meta.DataType); err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func (c *Conn) Query(ctx context.Context, sqlQuery string) (*db.Rows, error) {
	rows, err := c.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	header := make([]db.Column, len(colNames))
	for i, name := range colNames {
		typ := ""
		if i < len(colTypes) && colTypes[i] != nil {
			typ = strings.ToLower(colTypes[i].DatabaseTypeName())
		}
		header[i] = db.Column{Name: name, Type: typ}
	}

	var data []db.Row
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			switch x := v.(type) {
			case []byte:
				values[i] = string(x)
			case time.Time:
				values[i] = x.Format(time.RFC3339Nano)
			default:
				values[i] = x
			}
		}
		data = append(data, db.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &db.Rows{Columns: header, Data: data}, nil
}
