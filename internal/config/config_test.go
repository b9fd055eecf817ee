package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/Ezequiell22/agent-sql/internal/errkind"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"OPENAI_API_KEY": "sk-test",
		"SERVER_DB":      "db.example.com",
		"DATABASE":       "erp",
		"USER_DB":        "reader",
		"PASS_DB":        "secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(mapLookup(requiredEnv()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Driver != DriverSQLServer {
		t.Fatalf("DB.Driver = %q", cfg.DB.Driver)
	}
	if cfg.DB.Port != 1433 {
		t.Fatalf("DB.Port = %d", cfg.DB.Port)
	}
	if cfg.DB.ODBCDriver != "ODBC Driver 17 for SQL Server" {
		t.Fatalf("DB.ODBCDriver = %q", cfg.DB.ODBCDriver)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Fatalf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.EmbeddingsModel != "text-embedding-3-small" {
		t.Fatalf("OpenAI.EmbeddingsModel = %q", cfg.OpenAI.EmbeddingsModel)
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com" {
		t.Fatalf("OpenAI.BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.DB.QueryTimeout != 30*time.Second {
		t.Fatalf("DB.QueryTimeout = %v", cfg.DB.QueryTimeout)
	}
	if len(cfg.AllowedTables) != 0 {
		t.Fatalf("AllowedTables = %v, want empty", cfg.AllowedTables)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadMissingRequiredVar(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "SERVER_DB", "DATABASE", "USER_DB", "PASS_DB"} {
		env := requiredEnv()
		delete(env, key)
		_, err := Load(mapLookup(env))
		if err == nil {
			t.Fatalf("Load() without %s should fail", key)
		}
		if errkind.KindOf(err) != errkind.ConfigMissing {
			t.Fatalf("kind = %q, want %q", errkind.KindOf(err), errkind.ConfigMissing)
		}
	}
}

func TestLoadBlankRequiredVarFails(t *testing.T) {
	env := requiredEnv()
	env["PASS_DB"] = "   "
	if _, err := Load(mapLookup(env)); err == nil {
		t.Fatal("Load() with blank PASS_DB should fail")
	}
}

func TestLoadAllowedTables(t *testing.T) {
	env := requiredEnv()
	env["ALLOWED_TABLES"] = " SE1010, SB1010 ,,SD2010 "
	cfg, err := Load(mapLookup(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"SE1010", "SB1010", "SD2010"}
	if len(cfg.AllowedTables) != len(want) {
		t.Fatalf("AllowedTables = %v", cfg.AllowedTables)
	}
	for i, table := range want {
		if cfg.AllowedTables[i] != table {
			t.Fatalf("AllowedTables[%d] = %q, want %q", i, cfg.AllowedTables[i], table)
		}
	}
}

func TestLoadPostgresDriverSwitchesPort(t *testing.T) {
	env := requiredEnv()
	env["DB_DRIVER"] = "postgres"
	cfg, err := Load(mapLookup(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Port != 5432 {
		t.Fatalf("DB.Port = %d, want 5432", cfg.DB.Port)
	}
}

func TestLoadExplicitPortWins(t *testing.T) {
	env := requiredEnv()
	env["DB_DRIVER"] = "postgres"
	env["DB_PORT"] = "6543"
	cfg, err := Load(mapLookup(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Port != 6543 {
		t.Fatalf("DB.Port = %d, want 6543", cfg.DB.Port)
	}
}

func TestLoadInvalidDriver(t *testing.T) {
	env := requiredEnv()
	env["DB_DRIVER"] = "oracle"
	if _, err := Load(mapLookup(env)); err == nil {
		t.Fatal("Load() with unsupported driver should fail")
	}
}

func TestLoadOverrides(t *testing.T) {
	env := requiredEnv()
	env["OPENAI_MODEL"] = "gpt-4o-mini"
	env["OPENAI_TIMEOUT"] = "90s"
	env["QUERY_TIMEOUT"] = "5s"
	env["LOG_LEVEL"] = "debug"
	env["LOG_JSON"] = "true"
	cfg, err := Load(mapLookup(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Timeout != 90*time.Second {
		t.Fatalf("OpenAI.Timeout = %v", cfg.OpenAI.Timeout)
	}
	if cfg.DB.QueryTimeout != 5*time.Second {
		t.Fatalf("DB.QueryTimeout = %v", cfg.DB.QueryTimeout)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.LogJSON {
		t.Fatal("LogJSON should be true")
	}
}
