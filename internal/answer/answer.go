// Package answer builds the structured response returned to the caller:
// sample rows, per-column summary statistics and the optional CSV report.
package answer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/Ezequiell22/agent-sql/internal/db"
)

const (
	// SampleSize caps the number of rows echoed in the answer.
	SampleSize = 20
	// MaxCSVBytes caps the CSV report. Truncation happens on a row
	// boundary so the report always parses.
	MaxCSVBytes = 50_000
)

type Answer struct {
	Question string           `json:"question"`
	SQL      string           `json:"sql"`
	Columns  []string         `json:"columns"`
	Sample   []map[string]any `json:"sample"`
	Summary  Summary          `json:"summary"`
	Report   *Report          `json:"report,omitempty"`
}

type Summary struct {
	Rows        int                         `json:"rows"`
	Columns     int                         `json:"columns"`
	Numeric     map[string]NumericStats     `json:"numeric_stats,omitempty"`
	Categorical map[string]CategoricalStats `json:"unique_values,omitempty"`
}

// NumericStats covers non-null values of a numeric column.
type NumericStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// CategoricalStats covers non-null values of a non-numeric column.
type CategoricalStats struct {
	Count    int `json:"count"`
	Distinct int `json:"distinct"`
}

type Report struct {
	PreviewCSV string `json:"preview_csv"`
	Truncated  bool   `json:"truncated"`
}

// Build assembles the answer. The sample is the first SampleSize rows in
// result order; rows are never resorted.
func Build(question, sqlText string, rows *db.Rows, withReport bool) Answer {
	columns := make([]string, len(rows.Columns))
	for i, col := range rows.Columns {
		columns[i] = col.Name
	}

	ans := Answer{
		Question: question,
		SQL:      sqlText,
		Columns:  columns,
		Sample:   sample(columns, rows.Data),
		Summary:  summarize(columns, rows.Data),
	}
	if withReport {
		report := buildReport(columns, rows.Data)
		ans.Report = &report
	}
	return ans
}

func sample(columns []string, data []db.Row) []map[string]any {
	n := len(data)
	if n > SampleSize {
		n = SampleSize
	}
	out := make([]map[string]any, 0, n)
	for _, row := range data[:n] {
		m := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

func summarize(columns []string, data []db.Row) Summary {
	s := Summary{
		Rows:    len(data),
		Columns: len(columns),
	}

	for i, col := range columns {
		var (
			nonNull  int
			numeric  = true
			sum      float64
			min, max float64
			distinct = map[string]bool{}
		)
		for _, row := range data {
			if i >= len(row) || row[i] == nil {
				continue
			}
			value := row[i]
			nonNull++
			distinct[formatValue(value)] = true
			f, ok := toFloat(value)
			if !ok {
				numeric = false
				continue
			}
			if nonNull == 1 || f < min {
				min = f
			}
			if nonNull == 1 || f > max {
				max = f
			}
			sum += f
		}
		if nonNull == 0 {
			continue
		}
		if numeric {
			if s.Numeric == nil {
				s.Numeric = map[string]NumericStats{}
			}
			s.Numeric[col] = NumericStats{
				Count: nonNull,
				Min:   min,
				Max:   max,
				Mean:  sum / float64(nonNull),
			}
		} else {
			if s.Categorical == nil {
				s.Categorical = map[string]CategoricalStats{}
			}
			s.Categorical[col] = CategoricalStats{
				Count:    nonNull,
				Distinct: len(distinct),
			}
		}
	}
	return s
}

func buildReport(columns []string, data []db.Row) Report {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(columns)
	w.Flush()

	truncated := false
	for _, row := range data {
		record := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				record[i] = formatValue(row[i])
			}
		}
		mark := buf.Len()
		_ = w.Write(record)
		w.Flush()
		if buf.Len() > MaxCSVBytes {
			buf.Truncate(mark)
			truncated = true
			break
		}
	}

	return Report{PreviewCSV: buf.String(), Truncated: truncated}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
