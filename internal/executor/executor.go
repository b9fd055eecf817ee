// Package executor runs a validated query and materializes the result.
package executor

import (
	"context"
	"time"

	"github.com/Ezequiell22/agent-sql/internal/db"
	"github.com/Ezequiell22/agent-sql/internal/errkind"
	"github.com/Ezequiell22/agent-sql/internal/sqlguard"
)

// Run executes the query under the given timeout. Database errors surface
// verbatim inside an errkind.ExecutionFailed wrapper; nothing is interpreted
// or retried.
func Run(ctx context.Context, conn db.DB, q sqlguard.SafeQuery, timeout time.Duration) (*db.Rows, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rows, err := conn.Query(ctx, q.SQL)
	if err != nil {
		return nil, errkind.Wrap(errkind.ExecutionFailed, "query execution failed", err)
	}
	return rows, nil
}
