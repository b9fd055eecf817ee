// Package config builds the process-wide configuration once at startup from
// environment variables. Components receive the Config by value; nothing
// reads the environment after Load returns.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Ezequiell22/agent-sql/internal/errkind"
)

type LookupFunc func(string) (string, bool)

const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

type Config struct {
	OpenAI        OpenAIConfig
	DB            DBConfig
	AllowedTables []string
	Observability ObservabilityConfig
}

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	EmbeddingsModel string
	Temperature     float64
	Timeout         time.Duration
}

type DBConfig struct {
	Driver       string
	Server       string
	Port         int
	Database     string
	User         string
	Password     string
	ODBCDriver   string
	QueryTimeout time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

// Load builds a Config from the given lookup. Required variables that are
// absent or blank produce an errkind.ConfigMissing error naming the variable.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := defaults()

	var err error
	if cfg.OpenAI.APIKey, err = require(lookup, "OPENAI_API_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.DB.Server, err = require(lookup, "SERVER_DB"); err != nil {
		return Config{}, err
	}
	if cfg.DB.Database, err = require(lookup, "DATABASE"); err != nil {
		return Config{}, err
	}
	if cfg.DB.User, err = require(lookup, "USER_DB"); err != nil {
		return Config{}, err
	}
	if cfg.DB.Password, err = require(lookup, "PASS_DB"); err != nil {
		return Config{}, err
	}

	if err := applyString(lookup, "ODBC_DRIVER", &cfg.DB.ODBCDriver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "OPENAI_MODEL", &cfg.OpenAI.Model); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "OPENAI_EMBEDDINGS_MODEL", &cfg.OpenAI.EmbeddingsModel); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "OPENAI_BASE_URL", &cfg.OpenAI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "OPENAI_TIMEOUT", &cfg.OpenAI.Timeout); err != nil {
		return Config{}, err
	}

	if err := applyString(lookup, "DB_DRIVER", &cfg.DB.Driver); err != nil {
		return Config{}, err
	}
	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)
	switch cfg.DB.Driver {
	case DriverSQLServer:
	case DriverPostgres:
		cfg.DB.Port = 5432
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER: %q", cfg.DB.Driver)
	}
	if err := applyInt(lookup, "DB_PORT", &cfg.DB.Port); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "QUERY_TIMEOUT", &cfg.DB.QueryTimeout); err != nil {
		return Config{}, err
	}

	if raw, ok := lookup("ALLOWED_TABLES"); ok {
		cfg.AllowedTables = splitTables(raw)
	}

	if err := applyBool(lookup, "LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com",
			Model:           "gpt-3.5-turbo",
			EmbeddingsModel: "text-embedding-3-small",
			Temperature:     0,
			Timeout:         30 * time.Second,
		},
		DB: DBConfig{
			Driver:       DriverSQLServer,
			Port:         1433,
			ODBCDriver:   "ODBC Driver 17 for SQL Server",
			QueryTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelInfo,
			LogJSON:  false,
		},
	}
}

func require(lookup LookupFunc, key string) (string, error) {
	raw, ok := lookup(key)
	value := strings.TrimSpace(raw)
	if !ok || value == "" {
		return "", errkind.Newf(errkind.ConfigMissing, "environment variable %s is required", key)
	}
	return value, nil
}

func splitTables(raw string) []string {
	var tables []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
