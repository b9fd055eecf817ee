package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Ezequiell22/agent-sql/internal/answer"
)

func renderAnswer(w io.Writer, ans answer.Answer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	fmt.Fprintf(w, "Question: %s\n", ans.Question)
	fmt.Fprintf(w, "SQL: %s\n\n", ans.SQL)

	renderSample(w, ans)
	fmt.Fprintf(w, "(%d of %d rows shown)\n\n", len(ans.Sample), ans.Summary.Rows)

	renderSummary(w, ans.Summary)

	if ans.Report != nil {
		fmt.Fprintln(w, "\nReport preview (CSV):")
		fmt.Fprintln(w, ans.Report.PreviewCSV)
		if ans.Report.Truncated {
			fmt.Fprintln(w, "(report truncated)")
		}
	}
	return nil
}

func renderSample(w io.Writer, ans answer.Answer) {
	if len(ans.Sample) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(ans.Columns))
	for i, col := range ans.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, sample := range ans.Sample {
		row := make(table.Row, len(ans.Columns))
		for i, col := range ans.Columns {
			row[i] = formatCell(sample[col])
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderSummary(w io.Writer, s answer.Summary) {
	fmt.Fprintf(w, "Summary: %d rows, %d columns\n", s.Rows, s.Columns)
	for _, col := range sortedKeys(s.Numeric) {
		stats := s.Numeric[col]
		fmt.Fprintf(w, "  %s: count=%d min=%g max=%g mean=%g\n", col, stats.Count, stats.Min, stats.Max, stats.Mean)
	}
	for _, col := range sortedKeys(s.Categorical) {
		stats := s.Categorical[col]
		fmt.Fprintf(w, "  %s: count=%d distinct=%d\n", col, stats.Count, stats.Distinct)
	}
}

func formatCell(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprint(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
