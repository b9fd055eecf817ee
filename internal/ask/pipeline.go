// Package ask orchestrates one question through the pipeline:
// schema introspection, SQL generation, validation, execution, formatting.
// One database connection is acquired at the start and released on exit
// regardless of which stage failed.
package ask

import (
	"context"
	"log/slog"

	"github.com/Ezequiell22/agent-sql/internal/answer"
	"github.com/Ezequiell22/agent-sql/internal/config"
	"github.com/Ezequiell22/agent-sql/internal/db"
	"github.com/Ezequiell22/agent-sql/internal/db/mssql"
	"github.com/Ezequiell22/agent-sql/internal/db/postgres"
	"github.com/Ezequiell22/agent-sql/internal/errkind"
	"github.com/Ezequiell22/agent-sql/internal/executor"
	"github.com/Ezequiell22/agent-sql/internal/nl2sql"
	"github.com/Ezequiell22/agent-sql/internal/schema"
	"github.com/Ezequiell22/agent-sql/internal/sqlguard"
)

type Options struct {
	Limit  int
	Report bool
}

// Deps carries the swappable capabilities: the SQL generator and the
// database opener. Zero values select the real implementations.
type Deps struct {
	Translator nl2sql.Translator
	OpenDB     func(config.Config) (db.DB, error)
}

// Run answers one question. Every failure carries an errkind.Kind naming
// the stage that rejected the request; nothing is retried.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps, question string, opts Options) (answer.Answer, error) {
	if opts.Limit <= 0 {
		opts.Limit = sqlguard.DefaultRowLimit
	}
	if deps.OpenDB == nil {
		deps.OpenDB = OpenDatabase
	}
	if deps.Translator == nil {
		translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		})
		if err != nil {
			return answer.Answer{}, errkind.Wrap(errkind.GenerationFailed, "translator setup failed", err)
		}
		deps.Translator = translator
	}

	conn, err := deps.OpenDB(cfg)
	if err != nil {
		return answer.Answer{}, errkind.Wrap(errkind.SchemaUnavailable, "database connection failed", err)
	}
	defer func() { _ = conn.Close() }()

	desc, err := schema.Fetch(ctx, conn, cfg.AllowedTables)
	if err != nil {
		return answer.Answer{}, err
	}
	logger.Debug("schema loaded", slog.Int("tables", len(desc.Tables())), slog.Int("columns", len(desc.Columns)))

	generated, err := deps.Translator.Translate(ctx, nl2sql.Request{
		Question:   question,
		SchemaText: desc.Text(),
		Dialect:    string(conn.Dialect()),
	})
	if err != nil {
		return answer.Answer{}, errkind.Wrap(errkind.GenerationFailed, "SQL generation failed", err)
	}
	logger.Debug("candidate SQL generated", slog.String("model", generated.Model))

	safe, err := sqlguard.Validate(generated.SQL, opts.Limit, conn.Dialect())
	if err != nil {
		return answer.Answer{}, err
	}
	if err := sqlguard.CheckTables(safe.SQL, desc, cfg.AllowedTables); err != nil {
		return answer.Answer{}, err
	}
	logger.Info("query validated", slog.String("sql", safe.SQL), slog.Int("limit", safe.Limit))

	rows, err := executor.Run(ctx, conn, safe, cfg.DB.QueryTimeout)
	if err != nil {
		return answer.Answer{}, err
	}
	logger.Info("query executed", slog.Int("rows", len(rows.Data)))

	return answer.Build(question, safe.SQL, rows, opts.Report), nil
}

// OpenDatabase opens the configured backend.
func OpenDatabase(cfg config.Config) (db.DB, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		return postgres.Open(postgres.BuildDSN(cfg.DB.Server, cfg.DB.Port, cfg.DB.Database, cfg.DB.User, cfg.DB.Password))
	default:
		return mssql.Open(mssql.BuildDSN(cfg.DB.Server, cfg.DB.Port, cfg.DB.Database, cfg.DB.User, cfg.DB.Password))
	}
}
