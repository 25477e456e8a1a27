// Package components holds reusable CLI output blocks.
package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/bnema/eolkeeper/internal/adapters/in/cli/ui/styles"
)

// TableColumn defines a table column. A zero Width leaves the column unbounded.
type TableColumn struct {
	Title string
	Width int
}

// TableModel is a styled table.
type TableModel struct {
	columns     []TableColumn
	rows        [][]string
	border      lipgloss.Border
	borderStyle lipgloss.Style
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// TableOption configures a TableModel.
type TableOption func(*TableModel)

// NewTable creates a new styled table.
func NewTable(opts ...TableOption) *TableModel {
	t := &TableModel{
		border:      lipgloss.RoundedBorder(),
		borderStyle: styles.Theme.TableBorder,
		headerStyle: styles.Theme.TableHeader,
		cellStyle:   styles.Theme.TableCell,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithColumns sets the table columns.
func WithColumns(cols []TableColumn) TableOption {
	return func(t *TableModel) {
		t.columns = cols
	}
}

// WithRows sets the table rows.
func WithRows(rows [][]string) TableOption {
	return func(t *TableModel) {
		t.rows = rows
	}
}

// WithHeaderStyle sets the header style.
func WithHeaderStyle(s lipgloss.Style) TableOption {
	return func(t *TableModel) {
		t.headerStyle = s
	}
}

// WithCellStyle sets the cell style.
func WithCellStyle(s lipgloss.Style) TableOption {
	return func(t *TableModel) {
		t.cellStyle = s
	}
}

// AddRow adds a row to the table.
func (t *TableModel) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Render renders the table as a string.
func (t *TableModel) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = truncateCell(col.Title, col.Width)
	}

	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			width := 0
			if j < len(t.columns) {
				width = t.columns[j].Width
			}
			rows[i][j] = truncateCell(cell, width)
		}
	}

	return table.New().
		Border(t.border).
		BorderStyle(t.borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := t.cellStyle
			if row == table.HeaderRow {
				s = t.headerStyle
			}
			if col >= 0 && col < len(t.columns) && t.columns[col].Width > 0 {
				s = s.Width(t.columns[col].Width).MaxWidth(t.columns[col].Width)
			}
			return s
		}).
		String()
}

func truncateCell(value string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(value) <= maxWidth {
		return value
	}
	return runewidth.Truncate(value, maxWidth, "...")
}
