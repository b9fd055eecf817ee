package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ezequiell22/agent-sql/internal/db"
	"github.com/Ezequiell22/agent-sql/internal/errkind"
)

type fakeDB struct {
	cols []db.ColumnMeta
	err  error

	gotAllowed []string
}

func (f *fakeDB) Close() error        { return nil }
func (f *fakeDB) Dialect() db.Dialect { return db.DialectSQLServer }

func (f *fakeDB) ListTables(context.Context, int) ([]string, error) {
	return nil, nil
}

func (f *fakeDB) SchemaColumns(_ context.Context, allowed []string) ([]db.ColumnMeta, error) {
	f.gotAllowed = allowed
	return f.cols, f.err
}

func (f *fakeDB) Query(context.Context, string) (*db.Rows, error) {
	return nil, nil
}

func sampleColumns() []db.ColumnMeta {
	return []db.ColumnMeta{
		{Table: "SB1010", Column: "B1_COD", DataType: "varchar"},
		{Table: "SB1010", Column: "B1_DESC", DataType: "varchar"},
		{Table: "SE1010", Column: "E1_NUM", DataType: "varchar"},
		{Table: "SE1010", Column: "E1_VALOR", DataType: "numeric"},
	}
}

func TestFetchPassesAllowList(t *testing.T) {
	fake := &fakeDB{cols: sampleColumns()}
	desc, err := Fetch(context.Background(), fake, []string{"SE1010", "SB1010"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(fake.gotAllowed) != 2 {
		t.Fatalf("allowed = %v", fake.gotAllowed)
	}
	if len(desc.Columns) != 4 {
		t.Fatalf("len(Columns) = %d", len(desc.Columns))
	}
}

func TestFetchWrapsCatalogError(t *testing.T) {
	fake := &fakeDB{err: errors.New("login failed")}
	_, err := Fetch(context.Background(), fake, nil)
	if err == nil {
		t.Fatal("Fetch() should fail")
	}
	if errkind.KindOf(err) != errkind.SchemaUnavailable {
		t.Fatalf("kind = %q", errkind.KindOf(err))
	}
	if !strings.Contains(err.Error(), "login failed") {
		t.Fatalf("error should carry the cause: %v", err)
	}
}

func TestTablesDeduplicatesInOrder(t *testing.T) {
	desc := Description{Columns: sampleColumns()}
	tables := desc.Tables()
	if len(tables) != 2 || tables[0] != "SB1010" || tables[1] != "SE1010" {
		t.Fatalf("Tables() = %v", tables)
	}
}

func TestHasTableIsCaseInsensitive(t *testing.T) {
	desc := Description{Columns: sampleColumns()}
	if !desc.HasTable("se1010") {
		t.Fatal("HasTable(se1010) = false")
	}
	if desc.HasTable("SX5010") {
		t.Fatal("HasTable(SX5010) = true")
	}
}

func TestTextRendersOneLinePerTable(t *testing.T) {
	desc := Description{Columns: sampleColumns()}
	text := desc.Text()
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "Table SB1010: B1_COD (varchar), B1_DESC (varchar)" {
		t.Fatalf("lines[0] = %q", lines[0])
	}
	if lines[1] != "Table SE1010: E1_NUM (varchar), E1_VALOR (numeric)" {
		t.Fatalf("lines[1] = %q", lines[1])
	}
}
