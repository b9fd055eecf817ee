// Package dataset exports per-table schema and example rows as JSONL. The
// export is a documentation aid for downstream tooling; it is not part of
// the question-answering path.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/Ezequiell22/agent-sql/internal/db"
)

const (
	// DefaultScanLimit caps how many rows are pulled per table.
	DefaultScanLimit = 10_000
	// DefaultExampleRows is how many of those rows end up in the document.
	DefaultExampleRows = 5
	// DefaultTableCap bounds discovery when no allow-list is configured.
	DefaultTableCap = 50
)

// TableDoc is one JSONL line: a table, its columns and a few example rows.
type TableDoc struct {
	Table    string           `json:"table"`
	Schema   []ColumnDoc      `json:"schema"`
	Examples []map[string]any `json:"examples"`
}

type ColumnDoc struct {
	Column string `json:"column"`
	DType  string `json:"dtype"`
}

type Exporter struct {
	Conn        db.DB
	Logger      *slog.Logger
	ScanLimit   int
	ExampleRows int
}

// Tables resolves the export set: the allow-list when present, otherwise
// discovered base tables capped at DefaultTableCap.
func (e *Exporter) Tables(ctx context.Context, allowed []string) ([]string, error) {
	if len(allowed) > 0 {
		return allowed, nil
	}
	return e.Conn.ListTables(ctx, DefaultTableCap)
}

// Export writes one JSON document per table and returns how many were
// written. A table that fails to read is logged and skipped; the export
// keeps going.
func (e *Exporter) Export(ctx context.Context, w io.Writer, tables []string) (int, error) {
	scanLimit := e.ScanLimit
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	exampleRows := e.ExampleRows
	if exampleRows <= 0 {
		exampleRows = DefaultExampleRows
	}

	enc := json.NewEncoder(w)
	written := 0
	for _, table := range tables {
		e.Logger.Info("exporting table", slog.String("table", table))

		rows, err := e.Conn.Query(ctx, sampleQuery(e.Conn.Dialect(), table, scanLimit))
		if err != nil {
			e.Logger.Warn("table export failed", slog.String("table", table), slog.String("error", err.Error()))
			continue
		}

		doc := buildDoc(table, rows, exampleRows)
		if err := enc.Encode(doc); err != nil {
			return written, fmt.Errorf("write dataset line: %w", err)
		}
		written++
	}
	return written, nil
}

func buildDoc(table string, rows *db.Rows, exampleRows int) TableDoc {
	doc := TableDoc{Table: table, Examples: []map[string]any{}}
	for _, col := range rows.Columns {
		doc.Schema = append(doc.Schema, ColumnDoc{Column: col.Name, DType: col.Type})
	}

	n := len(rows.Data)
	if n > exampleRows {
		n = exampleRows
	}
	for _, row := range rows.Data[:n] {
		example := make(map[string]any, len(rows.Columns))
		for i, col := range rows.Columns {
			var value any
			if i < len(row) {
				value = row[i]
			}
			if value == nil {
				value = ""
			}
			example[col.Name] = value
		}
		doc.Examples = append(doc.Examples, example)
	}
	return doc
}

func sampleQuery(dialect db.Dialect, table string, limit int) string {
	if dialect == db.DialectPostgres {
		return `SELECT * FROM "` + table + `" LIMIT ` + strconv.Itoa(limit)
	}
	return "SELECT TOP " + strconv.Itoa(limit) + " * FROM [" + table + "]"
}
