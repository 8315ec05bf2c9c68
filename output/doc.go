// Package output provides formatters for rendering query result sets.
//
// This package defines the Formatter interface and implementations for the
// formats the CLI can emit. All formatters work with a ResultSet: ordered
// column headers plus rows of display text.
//
// # Supported Formats
//
//   - Fixed-width table: the engine's canonical format, used by the REPL
//   - CSV: comma-separated values with a header row
//   - JSON Lines: one JSON object per row (suitable for streaming)
//
// # Basic Usage
//
// Render a result set to stdout:
//
//	formatter := output.NewTableFormatter(os.Stdout)
//	if err := formatter.Format(rs); err != nil {
//	    log.Fatal(err)
//	}
//
// Select a formatter by name:
//
//	formatter := output.New("csv", os.Stdout)
//
// The fixed-width table format is a compatibility contract: header row, a
// divider of dashes joined by -+-, cells joined by " | ", and a trailing
// "(<n> rows)" summary line. Its exact bytes must not change.
package output
