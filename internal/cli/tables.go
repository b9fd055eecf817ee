package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ezequiell22/agent-sql/internal/ask"
	"github.com/Ezequiell22/agent-sql/internal/dataset"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List queryable tables",
		Long: `List the tables visible to agent-sql: the ALLOWED_TABLES set when one
is configured, otherwise the base tables discovered in the default schema
(capped at 50).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}

			conn, err := ask.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			exporter := &dataset.Exporter{Conn: conn}
			tables, err := exporter.Tables(cmd.Context(), cfg.AllowedTables)
			if err != nil {
				return err
			}
			for _, table := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), table)
			}
			return nil
		},
	}
}
