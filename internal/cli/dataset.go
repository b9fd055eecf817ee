package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ezequiell22/agent-sql/internal/ask"
	"github.com/Ezequiell22/agent-sql/internal/dataset"
)

type datasetOptions struct {
	Out    string
	Sample int
}

func newDatasetCommand() *cobra.Command {
	opts := &datasetOptions{}

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Export per-table schema and example rows as JSONL",
		Long: `Export one JSON document per table (schema plus a few example rows) to a
JSONL file. The export feeds documentation and embedding tooling; it is not
used when answering questions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			conn, err := ask.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			exporter := &dataset.Exporter{
				Conn:        conn,
				Logger:      logger,
				ExampleRows: opts.Sample,
			}
			tables, err := exporter.Tables(cmd.Context(), cfg.AllowedTables)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(opts.Out), 0o755); err != nil {
				return err
			}
			out, err := os.Create(opts.Out)
			if err != nil {
				return err
			}
			defer func() { _ = out.Close() }()

			written, err := exporter.Export(cmd.Context(), out, tables)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tables to %s\n", written, opts.Out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", filepath.Join("dataset", "sql_schema.jsonl"), "Output JSONL path")
	cmd.Flags().IntVar(&opts.Sample, "sample", dataset.DefaultExampleRows, "Example rows per table")

	return cmd
}
