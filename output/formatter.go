package output

import "io"

// ResultSet is a fully materialized query result: ordered column headers
// and rows of display text.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Formatter defines the interface for result-set formatters.
//
// Implementers must provide Format to render a result set to the target
// format and SetOutput to change the output destination.
type Formatter interface {
	// Format writes the result set in the formatter's specific format
	Format(rs *ResultSet) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter registered under the given name: "table",
// "csv", or "jsonl". Unknown names fall back to the table formatter.
func New(format string, w io.Writer) Formatter {
	switch format {
	case "csv":
		return NewCSVFormatter(w)
	case "jsonl":
		return NewJSONFormatter(w)
	default:
		return NewTableFormatter(w)
	}
}
