// Package schema turns catalog metadata into the textual description handed
// to the model and into the table set the validator checks queries against.
package schema

import (
	"context"
	"strings"

	"github.com/Ezequiell22/agent-sql/internal/db"
	"github.com/Ezequiell22/agent-sql/internal/errkind"
)

// Description is the ordered catalog slice for one invocation. Order follows
// the catalog query: by table name, then ordinal position.
type Description struct {
	Columns []db.ColumnMeta
}

// Fetch introspects the default schema, filtered to the allowed tables when
// the list is non-empty.
func Fetch(ctx context.Context, conn db.DB, allowed []string) (Description, error) {
	cols, err := conn.SchemaColumns(ctx, allowed)
	if err != nil {
		return Description{}, errkind.Wrap(errkind.SchemaUnavailable, "catalog query failed", err)
	}
	return Description{Columns: cols}, nil
}

// Tables returns the distinct table names in catalog order.
func (d Description) Tables() []string {
	var tables []string
	seen := map[string]bool{}
	for _, col := range d.Columns {
		if !seen[col.Table] {
			seen[col.Table] = true
			tables = append(tables, col.Table)
		}
	}
	return tables
}

// HasTable reports whether the description contains the table,
// case-insensitively.
func (d Description) HasTable(name string) bool {
	for _, col := range d.Columns {
		if strings.EqualFold(col.Table, name) {
			return true
		}
	}
	return false
}

// Text renders the description for the prompt, one table per line:
//
//	Table SE1010: E1_NUM (varchar), E1_VALOR (numeric)
func (d Description) Text() string {
	var b strings.Builder
	current := ""
	for _, col := range d.Columns {
		if col.Table != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = col.Table
			b.WriteString("Table " + col.Table + ": ")
			b.WriteString(col.Column + " (" + col.DataType + ")")
			continue
		}
		b.WriteString(", " + col.Column + " (" + col.DataType + ")")
	}
	return b.String()
}
