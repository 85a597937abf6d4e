package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data  []string
	Style lipgloss.Style
}

// Table is a static, non-interactive data table
type Table struct {
	columns []TableColumn
	rows    []TableRow

	headerStyle lipgloss.Style
	rowStyle    lipgloss.Style
	borderStyle lipgloss.Style

	showBorder bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
	}
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows replaces all table rows
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = make([]TableRow, len(rows))
	for i, data := range rows {
		t.rows[i] = TableRow{Data: data, Style: t.rowStyle}
	}
	return t
}

// SetRowColor tints a single row
func (t *Table) SetRowColor(rowIndex int, color lipgloss.Color) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rows[rowIndex].Style = t.rowStyle.Foreground(color)
	}
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	lines := make([]string, 0, len(t.rows)+2)

	headers := make([]string, len(t.columns))
	separators := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = renderCell(col.Header, col, t.headerStyle)
		separators[i] = strings.Repeat("─", col.Width)
	}
	lines = append(lines, strings.Join(headers, "│"), strings.Join(separators, "┼"))

	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			data := ""
			if i < len(row.Data) {
				data = row.Data[i]
			}
			cells[i] = renderCell(data, col, row.Style)
		}
		lines = append(lines, strings.Join(cells, "│"))
	}

	result := strings.Join(lines, "\n")
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

func renderCell(content string, col TableColumn, cellStyle lipgloss.Style) string {
	return cellStyle.Width(col.Width).MaxWidth(col.Width).Align(col.Align).Render(content)
}
