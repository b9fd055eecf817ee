package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ezequiell22/agent-sql/internal/ask"
	"github.com/Ezequiell22/agent-sql/internal/sqlguard"
)

type askOptions struct {
	Limit  int
	Report bool
	JSON   bool
}

func newAskCommand() *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a natural-language question with a safe SQL query",
		Example: `  agent-sql ask "which invoices are overdue?"
  agent-sql ask "total sales per product" --limit 100 --report
  agent-sql ask "how many customers do we have?" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			question := strings.TrimSpace(strings.Join(args, " "))
			ans, err := ask.Run(cmd.Context(), cfg, logger, ask.Deps{}, question, ask.Options{
				Limit:  opts.Limit,
				Report: opts.Report,
			})
			if err != nil {
				return err
			}

			return renderAnswer(cmd.OutOrStdout(), ans, opts.JSON)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", sqlguard.DefaultRowLimit, "Maximum number of rows the query may return")
	cmd.Flags().BoolVar(&opts.Report, "report", false, "Include a CSV report preview in the answer")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the answer as JSON")

	return cmd
}
