package output

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVFormatter outputs a result set as CSV with a header row.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer.
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the result set as CSV: one header record, then one record
// per row.
func (c *CSVFormatter) Format(rs *ResultSet) error {
	csvWriter := csv.NewWriter(c.writer)

	if err := csvWriter.Write(rs.Columns); err != nil {
		return err
	}
	for _, row := range rs.Rows {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
