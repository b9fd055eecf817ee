// Package sqlguard enforces the read-only, bounded-row contract on candidate
// SQL produced by the model. It is a pure string transform: no database
// access, no state.
//
// Keyword denylisting is an incomplete security boundary; the real guarantee
// comes from running with a read-only database login. The guard is the last
// line before execution, not the only one.
package sqlguard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ezequiell22/agent-sql/internal/db"
	"github.com/Ezequiell22/agent-sql/internal/errkind"
	"github.com/Ezequiell22/agent-sql/internal/schema"
)

// DefaultRowLimit bounds result size when the caller does not choose one.
const DefaultRowLimit = 500

// SafeQuery is a candidate that passed every check and carries an enforced
// row limit.
type SafeQuery struct {
	SQL   string
	Limit int
}

var (
	denyRe       = regexp.MustCompile(`(?i)\b(UPDATE|DELETE|INSERT|DROP|ALTER|TRUNCATE|CREATE|GRANT|EXEC|MERGE)\b`)
	selectRe     = regexp.MustCompile(`(?i)^select\b`)
	selectHeadRe = regexp.MustCompile(`(?i)^select(\s+distinct)?\b`)
	topRe        = regexp.MustCompile(`(?i)\btop\s+(\d+)\b`)
	limitRe      = regexp.MustCompile(`(?i)\blimit\s+(\d+)\b`)
	offsetRe     = regexp.MustCompile(`(?i)\b(offset|fetch)\b`)
	tableRefRe   = regexp.MustCompile(`(?i)\b(?:from|join)\s+([\w\[\]\."]+)`)
)

// Validate checks the candidate and returns it with a row limit applied.
// Rules, in order: non-empty after comment stripping; a single statement;
// no denylisted keyword as a standalone token; first keyword SELECT. A
// pre-existing limiting clause at or under the cap is left untouched; one
// above the cap is rewritten down to it.
func Validate(candidate string, limit int, dialect db.Dialect) (SafeQuery, error) {
	if limit <= 0 {
		limit = DefaultRowLimit
	}

	s := strings.TrimSpace(stripComments(candidate))
	s = strings.TrimSpace(strings.Trim(s, "`"))
	if s == "" {
		return SafeQuery{}, errkind.New(errkind.RejectedQuery, "empty statement")
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if strings.Contains(s, ";") {
		return SafeQuery{}, errkind.New(errkind.RejectedQuery, "multiple statements are not allowed")
	}

	if kw := denyRe.FindString(s); kw != "" {
		return SafeQuery{}, errkind.Newf(errkind.RejectedQuery, "forbidden SQL keyword: %s", strings.ToUpper(kw))
	}
	if !selectRe.MatchString(s) {
		return SafeQuery{}, errkind.New(errkind.RejectedQuery, "only SELECT statements are allowed")
	}

	switch dialect {
	case db.DialectPostgres:
		s = enforceLimitPostgres(s, limit)
	default:
		s = enforceLimitSQLServer(s, limit)
	}

	return SafeQuery{SQL: s, Limit: limit}, nil
}

// CheckTables verifies every table referenced after FROM or JOIN exists in
// the schema description and, when an allow-list is set, belongs to it.
func CheckTables(sqlText string, desc schema.Description, allowed []string) error {
	for _, table := range ReferencedTables(sqlText) {
		if len(allowed) > 0 && !containsFold(allowed, table) {
			return errkind.Newf(errkind.RejectedQuery, "table not in allow-list: %s", table)
		}
		if !desc.HasTable(table) {
			return errkind.Newf(errkind.RejectedQuery, "unknown table in schema: %s", table)
		}
	}
	return nil
}

// ReferencedTables extracts bare table names following FROM and JOIN,
// dropping schema qualifiers and bracket/quote decoration. Order of first
// appearance, deduplicated.
func ReferencedTables(sqlText string) []string {
	var tables []string
	seen := map[string]bool{}
	for _, m := range tableRefRe.FindAllStringSubmatch(sqlText, -1) {
		ref := m[1]
		if dot := strings.LastIndex(ref, "."); dot != -1 {
			ref = ref[dot+1:]
		}
		ref = strings.Trim(ref, `[]"`)
		if ref == "" {
			continue
		}
		key := strings.ToUpper(ref)
		if !seen[key] {
			seen[key] = true
			tables = append(tables, ref)
		}
	}
	return tables
}

func enforceLimitSQLServer(s string, limit int) string {
	masked := maskLiterals(s)
	if m := topRe.FindStringSubmatchIndex(masked); m != nil {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err == nil && n > limit {
			return s[:m[2]] + strconv.Itoa(limit) + s[m[3]:]
		}
		return s
	}
	if offsetRe.MatchString(masked) {
		return s
	}
	// selectRe already matched, so the head match cannot fail.
	head := selectHeadRe.FindStringIndex(masked)
	return s[:head[1]] + fmt.Sprintf(" TOP %d", limit) + s[head[1]:]
}

func enforceLimitPostgres(s string, limit int) string {
	masked := maskLiterals(s)
	if m := limitRe.FindStringSubmatchIndex(masked); m != nil {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err == nil && n > limit {
			return s[:m[2]] + strconv.Itoa(limit) + s[m[3]:]
		}
		return s
	}
	if offsetRe.MatchString(masked) {
		return s
	}
	return s + fmt.Sprintf(" LIMIT %d", limit)
}

// maskLiterals blanks the contents of quoted strings, keeping the quote
// characters and overall length, so positional regex matches over the result
// map back to the same offsets in the original text.
func maskLiterals(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); {
		if b[i] != '\'' {
			i++
			continue
		}
		j := i + 1
		for j < len(b) {
			if b[j] == '\'' {
				if j+1 < len(b) && b[j+1] == '\'' {
					b[j], b[j+1] = ' ', ' '
					j += 2
					continue
				}
				break
			}
			b[j] = ' '
			j++
		}
		if j < len(b) {
			j++
		}
		i = j
	}
	return string(b)
}

// stripComments removes -- line comments and /* */ block comments while
// leaving string literals intact.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\'':
			j := i + 1
			for j < len(s) {
				if s[j] == '\'' {
					if j+1 < len(s) && s[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			b.WriteString(s[i:j])
			i = j
		case strings.HasPrefix(s[i:], "--"):
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				i = len(s)
			} else {
				i += nl + 1
				b.WriteByte('\n')
			}
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 4
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
