package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter outputs a result set as JSON Lines, one object per row
// keyed by column header.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer.
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the result set as JSON Lines.
func (j *JSONFormatter) Format(rs *ResultSet) error {
	encoder := json.NewEncoder(j.writer)
	for _, row := range rs.Rows {
		object := make(map[string]string, len(rs.Columns))
		for i, col := range rs.Columns {
			if i < len(row) {
				object[col] = row[i]
			}
		}
		if err := encoder.Encode(object); err != nil {
			return err
		}
	}
	return nil
}
