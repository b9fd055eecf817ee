// Package mssql implements the db.DB interface for Microsoft SQL Server
// using the native go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/Ezequiell22/agent-sql/internal/db"
)

type Conn struct {
	db *sql.DB
}

// BuildDSN renders a sqlserver:// connection URL from discrete settings.
func BuildDSN(server string, port int, database, user, password string) string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%d", server, port),
	}
	q := url.Values{}
	q.Set("database", database)
	u.RawQuery = q.Encode()
	return u.String()
}

// Open connects and verifies the connection with a short ping.
func Open(dsn string) (*Conn, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mssql DSN")
	}

	sqldb, err := sql.Open("sqlserver", dsn)
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
	return db.DialectSQLServer
}

func (c *Conn) ListTables(ctx context.Context, limit int) ([]string, error) {
	top := ""
	if limit > 0 {
		top = "TOP " + strconv.Itoa(limit) + " "
	}
	q := `
SELECT ` + top + `TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_SCHEMA = 'dbo'
ORDER BY TABLE_NAME`
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
SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = 'dbo'`
	var args []any
	if len(allowed) > 0 {
		placeholders := make([]string, len(allowed))
		for i, table := range allowed {
			placeholders[i] = "@p" + strconv.Itoa(i+1)
			args = append(args, table)
		}
		q += " AND TABLE_NAME IN (" + strings.Join(placeholders, ", ") + ")"
	}
	q += " ORDER BY TABLE_NAME, ORDINAL_POSITION"

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

	return materialize(rows)
}

func materialize(rows *sql.Rows) (*db.Rows, error) {
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
			dbType := ""
			if i < len(colTypes) && colTypes[i] != nil {
				dbType = strings.ToLower(colTypes[i].DatabaseTypeName())
			}
			switch x := v.(type) {
			case []byte:
				switch dbType {
				case "uniqueidentifier":
					values[i] = formatUniqueIdentifier(x)
				case "binary", "varbinary", "image", "timestamp", "rowversion":
					values[i] = fmt.Sprintf("0x%x", x)
				default:
					values[i] = string(x)
				}
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

// SQL Server stores the first three GUID groups little-endian.
func formatUniqueIdentifier(b []byte) string {
	if len(b) != 16 {
		return fmt.Sprintf("%x", b)
	}
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15],
	)
}
