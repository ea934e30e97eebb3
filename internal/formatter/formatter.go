package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/kyleking/sqlitegui/internal/joins"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/tracker"
	"github.com/kyleking/sqlitegui/internal/workspace"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatPlain OutputFormat = "plain"
)

// ParseOutputFormat parses a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatPlain:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected table or plain)", s)
	}
}

const (
	// AppName is appended to window titles
	AppName = "SQLiteGUI"

	// NotConnected is the status label when no database is open
	NotConnected = "Not connected"

	missing = "?"
)

// Formatter renders session state and query results as text
type Formatter struct {
	now func() time.Time
}

// NewFormatter creates a new formatter instance
func NewFormatter() *Formatter {
	return &Formatter{now: time.Now}
}

// ConnectedLabel returns the status bar text for a connection label
func (f *Formatter) ConnectedLabel(label string) string {
	if label == "" {
		return NotConnected
	}

	return "Connected to " + label
}

// WindowTitle returns the title shown for a connection label
func (f *Formatter) WindowTitle(label string) string {
	if label == "" {
		return AppName
	}

	return label + " - " + AppName
}

// LastQuery returns the status bar text describing the last statement
func (f *Formatter) LastQuery(rowsAffected int64, elapsed time.Duration) string {
	return fmt.Sprintf("Last query took %.4f seconds. %d rows affected", elapsed.Seconds(), rowsAffected)
}

// FormatResult renders a statement result. Writes render as their affected-row count.
func (f *Formatter) FormatResult(result *storage.QueryResult, format OutputFormat) string {
	if result == nil {
		return ""
	}

	if len(result.Columns) == 0 {
		return f.formatAffected(result.RowsAffected)
	}

	switch format {
	case FormatPlain:
		return f.formatPlain(result)
	default:
		return f.formatTable(result)
	}
}

func (f *Formatter) formatAffected(rows int64) string {
	if rows == 1 {
		return "1 row affected"
	}

	return f.formatInt(rows) + " rows affected"
}

func (f *Formatter) formatTable(result *storage.QueryResult) string {
	var sb strings.Builder

	table := tablewriter.NewWriter(&sb)
	table.SetHeader(result.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(result.StringRows())
	table.Render()

	sb.WriteString(f.rowCount(len(result.Rows)))

	return sb.String()
}

func (f *Formatter) formatPlain(result *storage.QueryResult) string {
	lines := make([]string, 0, len(result.Rows)+1)
	lines = append(lines, strings.Join(result.Columns, "\t"))

	for _, row := range result.StringRows() {
		lines = append(lines, strings.Join(row, "\t"))
	}

	return strings.Join(lines, "\n")
}

func (f *Formatter) rowCount(n int) string {
	if n == 1 {
		return "(1 row)"
	}

	return fmt.Sprintf("(%d rows)", n)
}

// FormatJoins renders the join view model, one join per line. Parts the user has not
// set yet render as "?".
func (f *Formatter) FormatJoins(from string, js []joins.Join) string {
	if from == "" {
		return "No FROM table"
	}

	lines := []string{"FROM " + from}

	for _, j := range js {
		joinType := missing
		if j.Type != joins.Unset {
			joinType = string(j.Type)
		}

		line := fmt.Sprintf("  %s JOIN %s ON %s %s %s",
			joinType, j.Target, f.ref(j.Left.String(), j.Left.IsZero()),
			f.operator(j.Operator), f.ref(j.Right.String(), j.Right.IsZero()))

		if part := j.Missing(); part != "" {
			line += "  (missing " + part + ")"
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (f *Formatter) ref(s string, zero bool) string {
	if zero {
		return missing
	}

	return s
}

func (f *Formatter) operator(op joins.Operator) string {
	if op == joins.NoOperator {
		return missing
	}

	return string(op)
}

// FormatStatus renders the connection and save state of a session
func (f *Formatter) FormatStatus(st workspace.Status) string {
	if !st.Connected {
		return NotConnected
	}

	lines := []string{
		f.ConnectedLabel(st.Label),
		"Path: " + st.Path,
		"Driver: " + string(st.Driver),
	}

	state := st.State.String()
	if st.State == tracker.Saved && !st.LastSave.IsZero() {
		state += " (last saved " + f.humanizeAge(st.LastSave) + ")"
	}

	lines = append(lines, "State: "+state)

	if st.Pending {
		lines = append(lines, "Pending writes: yes (run with --commit to keep them)")
	}

	return strings.Join(lines, "\n")
}

// FormatList renders one item per line, or "-" when there are none
func (f *Formatter) FormatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}

	return strings.Join(items, "\n")
}

// formatInt formats a row count, returning "?" for negative values (unknown)
func (f *Formatter) formatInt(value int64) string {
	if value < 0 {
		return missing
	}

	return strconv.FormatInt(value, 10)
}

// humanizeAge converts a time to a human-readable age string
func (f *Formatter) humanizeAge(t time.Time) string {
	if t.IsZero() {
		return missing
	}

	duration := f.now().Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return plural(int(duration.Minutes()), "minute") + " ago"
	case duration < 24*time.Hour:
		return plural(int(duration.Hours()), "hour") + " ago"
	default:
		return plural(int(duration.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
