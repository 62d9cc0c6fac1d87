package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/taskledger/taskledger/internal/domain"
)

// TableColumn defines a column in a table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table provides styled fixed-width table rendering.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a new table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the table header row.
func (t *Table) WriteHeader() {
	header := ""
	for i, col := range t.columns {
		if i > 0 {
			header += " "
		}
		header += fmt.Sprintf(t.formatSpec(col), col.Name)
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(header))
}

// WriteRow writes a data row to the table.
func (t *Table) WriteRow(values ...string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		row += fmt.Sprintf(t.formatSpec(col), truncate(value, col.Width))
	}
	_, _ = fmt.Fprintln(t.w, row)
}

// WriteStyledRow writes a data row with one styled cell. The plain value is
// used for width accounting since ANSI codes inflate string length.
func (t *Table) WriteStyledRow(values []string, styledIndex int, styledValue, plainValue string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		if i == styledIndex {
			offset := len(styledValue) - len(plainValue)
			row += fmt.Sprintf(t.formatSpecWithOffset(col, offset), styledValue)
			continue
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		row += fmt.Sprintf(t.formatSpec(col), truncate(value, col.Width))
	}
	_, _ = fmt.Fprintln(t.w, row)
}

func (t *Table) formatSpec(col TableColumn) string {
	if col.Align == AlignRight {
		return fmt.Sprintf("%%%ds", col.Width)
	}
	return fmt.Sprintf("%%-%ds", col.Width)
}

func (t *Table) formatSpecWithOffset(col TableColumn, offset int) string {
	width := col.Width + offset
	if col.Align == AlignRight {
		return fmt.Sprintf("%%%ds", width)
	}
	return fmt.Sprintf("%%-%ds", width)
}

// truncate shortens a value to the column width with an ellipsis.
// Width must exceed 1 to leave room for the ellipsis rune.
func truncate(value string, width int) string {
	if width > 1 && len(value) > width {
		return value[:width-1] + "…"
	}
	return value
}

// TaskTableColumns is the standard column layout for task lists.
func TaskTableColumns() []TableColumn {
	return []TableColumn{
		{Name: "ID", Width: 8},
		{Name: "TITLE", Width: 40},
		{Name: "STATUS", Width: 13},
		{Name: "PRIORITY", Width: 9},
		{Name: "ASSIGNEE", Width: 12},
		{Name: "DUE", Width: 10},
	}
}

// WriteTaskTable renders a list of tasks as a styled table with the
// status cell colored per status.
func WriteTaskTable(w io.Writer, tasks []*domain.Task) {
	table := NewTable(w, TaskTableColumns())
	table.WriteHeader()
	for _, task := range tasks {
		plain := TaskStatusIcon(task.Status) + " " + string(task.Status)
		values := []string{
			ShortID(task.ID),
			task.Title,
			plain,
			string(task.Priority),
			task.Assignee,
			formatDue(task.DueDate),
		}
		table.WriteStyledRow(values, 2, StatusBadge(task.Status), plain)
	}
}

// ShortID returns the leading segment of a task UUID for display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatDue(due *time.Time) string {
	if due == nil {
		return "-"
	}
	return due.UTC().Format("2006-01-02")
}
