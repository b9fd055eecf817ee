package observability

import (
	"io"
	"log/slog"

	"github.com/Ezequiell22/agent-sql/internal/config"
)

// NewLogger builds the process logger. The CLI logs to stderr so stdout
// stays reserved for the answer itself.
func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	}
	return slog.New(handler).With(
		slog.String("service", "agent-sql"),
	)
}
