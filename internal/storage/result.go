package storage

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// NoRowCount is reported as RowsAffected by statements that return rows
const NoRowCount int64 = -1

// QueryResult is the outcome of a single executed statement
type QueryResult struct {
	RowsAffected int64
	Columns      []string
	Rows         [][]any
	Elapsed      time.Duration
}

// FirstColumn returns the first value of every row rendered as text
func (r *QueryResult) FirstColumn() []string {
	out := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		if len(row) == 0 {
			continue
		}

		out = append(out, valueString(row[0]))
	}

	return out
}

// StringRows returns every row rendered as text
func (r *QueryResult) StringRows() [][]string {
	out := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = valueString(v)
		}

		out = append(out, cells)
	}

	return out
}

func valueString(v any) string {
	switch vv := v.(type) {
	case nil:
		return "NULL"
	case string:
		return vv
	case []byte:
		return string(vv)
	default:
		return fmt.Sprint(vv)
	}
}

// rowKeywords are the main verbs of statements that only read
var rowKeywords = map[string]bool{
	"SELECT":    true,
	"VALUES":    true,
	"PRAGMA":    true,
	"EXPLAIN":   true,
	"SHOW":      true,
	"DESCRIBE":  true,
	"SUMMARIZE": true,
	"TABLE":     true,
}

// cteVerbs can follow the common table expressions of a WITH clause
var cteVerbs = map[string]bool{
	"SELECT":  true,
	"VALUES":  true,
	"INSERT":  true,
	"UPDATE":  true,
	"DELETE":  true,
	"REPLACE": true,
}

// ReturnsRows reports whether a statement produces a result set: reads, and writes
// with a RETURNING clause
func ReturnsRows(query string) bool {
	words := topLevelWords(query)

	return rowKeywords[mainVerb(words)] || slices.Contains(words, "RETURNING")
}

// Modifies reports whether a statement may write and so must run inside the pending
// transaction. A WITH clause is classified by the statement that follows it.
func Modifies(query string) bool {
	return !rowKeywords[mainVerb(topLevelWords(query))]
}

func mainVerb(words []string) string {
	if len(words) == 0 {
		return ""
	}

	if words[0] != "WITH" {
		return words[0]
	}

	for _, w := range words[1:] {
		if cteVerbs[w] {
			return w
		}
	}

	return ""
}

// topLevelWords returns the upper-cased keywords and identifiers of query that sit
// outside parentheses, skipping comments and quoted text. Parentheses before the first
// word are ignored so a parenthesized SELECT still has SELECT as its first word.
func topLevelWords(query string) []string {
	var (
		words []string
		depth int
	)

	for i := 0; i < len(query); {
		c := query[i]

		switch {
		case strings.HasPrefix(query[i:], "--"):
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				return words
			}

			i += end + 1
		case strings.HasPrefix(query[i:], "/*"):
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return words
			}

			i += end + 4
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closing := c
			if c == '[' {
				closing = ']'
			}

			end := strings.IndexByte(query[i+1:], closing)
			if end < 0 {
				return words
			}

			i += end + 2
		case c == '(':
			if len(words) > 0 {
				depth++
			}

			i++
		case c == ')':
			depth = max(depth-1, 0)
			i++
		case isWordByte(c):
			start := i
			for i < len(query) && isWordByte(query[i]) {
				i++
			}

			if depth == 0 {
				words = append(words, strings.ToUpper(query[start:i]))
			}
		default:
			i++
		}
	}

	return words
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
