package output

import (
	"fmt"
	"io"
	"strings"
)

// TableFormatter renders a result set as a fixed-width text table: header
// row, a divider of dashes joined by -+-, one line per row, and a trailing
// row-count summary. This is the engine's canonical result format and must
// stay byte-for-byte stable; existing scripts compare against it.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new fixed-width table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer.
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the result set as a fixed-width table.
func (t *TableFormatter) Format(rs *ResultSet) error {
	_, err := io.WriteString(t.writer, FormatTable(rs))
	return err
}

// FormatTable renders the canonical fixed-width table as a string.
func FormatTable(rs *ResultSet) string {
	if len(rs.Columns) == 0 {
		return "(no columns)\n"
	}

	widths := make([]int, len(rs.Columns))
	for i, header := range rs.Columns {
		widths[i] = len(header)
	}
	for _, row := range rs.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
			if i+1 < len(row) {
				b.WriteString(" | ")
			}
		}
		b.WriteByte('\n')
	}

	writeRow(rs.Columns)
	for i, w := range widths {
		b.WriteString(strings.Repeat("-", w))
		if i+1 < len(widths) {
			b.WriteString("-+-")
		}
	}
	b.WriteByte('\n')

	for _, row := range rs.Rows {
		writeRow(row)
	}

	unit := "rows"
	if len(rs.Rows) == 1 {
		unit = "row"
	}
	fmt.Fprintf(&b, "(%d %s)\n", len(rs.Rows), unit)
	return b.String()
}
