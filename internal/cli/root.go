// Package cli provides the agent-sql command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ezequiell22/agent-sql/internal/config"
	"github.com/Ezequiell22/agent-sql/internal/observability"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agent-sql",
		Short: "Ask your database questions in natural language",
		Long: `agent-sql translates a natural-language question into a read-only SQL
query, runs it safely against the configured database and prints a
structured answer.

Connection and model settings come from environment variables:
OPENAI_API_KEY, SERVER_DB, DATABASE, USER_DB, PASS_DB (required);
ODBC_DRIVER, OPENAI_MODEL, OPENAI_EMBEDDINGS_MODEL, ALLOWED_TABLES,
DB_DRIVER and others (optional).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newDatasetCommand())

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// setup loads configuration from the environment, applies logging flag
// overrides and builds the stderr logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		return config.Config{}, nil, err
	}

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("log-level") {
		raw, _ := flags.GetString("log-level")
		level, err := parseLevel(raw)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg.Observability.LogLevel = level
	}
	if flags.Changed("log-json") {
		cfg.Observability.LogJSON, _ = flags.GetBool("log-json")
	}

	return cfg, observability.NewLogger(cfg, os.Stderr), nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", raw)
	}
}
