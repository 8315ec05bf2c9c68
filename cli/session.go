// Package cli implements the line-oriented front end: the interactive REPL,
// the script runner, and the file-watch loop.
//
// The front end owns no SQL semantics. It strips comments, splits buffered
// input on semicolons, hands each complete statement to the parser and
// engine, prints results, and keeps going after per-statement errors.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/minidb-io/minidb/engine"
	"github.com/minidb-io/minidb/output"
	"github.com/minidb-io/minidb/query"
	"github.com/minidb-io/minidb/schema"
)

const (
	prompt             = "my-db> "
	continuationPrompt = "    -> "
)

// Meta exposes the catalog reads the session's meta-commands need.
type Meta interface {
	TableNames() []string
	GetTable(name string) (schema.Table, bool)
}

// Session drives statement execution over an input stream.
type Session struct {
	engine *engine.Engine
	meta   Meta
	out    io.Writer
	format string
}

// NewSession creates a session writing results to out.
func NewSession(e *engine.Engine, meta Meta, out io.Writer) *Session {
	return &Session{engine: e, meta: meta, out: out, format: "table"}
}

// SetFormat selects the SELECT output format: "table" (default), "csv", or
// "jsonl". DDL/DML messages are unaffected.
func (s *Session) SetFormat(format string) {
	s.format = format
}

// RunInteractive processes input with prompts until EOF or an exit command.
func (s *Session) RunInteractive(in io.Reader) {
	s.processStream(in, true)
	fmt.Fprintln(s.out, "Bye!")
}

// RunScript processes a whole script. A script that ends with an
// unterminated statement is reported as an error.
func (s *Session) RunScript(in io.Reader) {
	s.processStream(in, false)
}

// stripComment removes a trailing -- comment from a line. Like the engine's
// predecessors, it does not special-case quoted strings; statements with a
// literal "--" inside a string must stay on their own line.
func stripComment(line string) string {
	if idx := strings.Index(line, "--"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func (s *Session) processStream(in io.Reader, interactive bool) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buffer strings.Builder

	if interactive {
		fmt.Fprint(s.out, prompt)
	}

	for scanner.Scan() {
		line := stripComment(scanner.Text())
		trimmed := strings.TrimSpace(line)

		if interactive && (trimmed == ".exit" || trimmed == "exit;") {
			return
		}
		if strings.HasPrefix(trimmed, ".") && buffer.Len() == 0 {
			s.runMetaCommand(trimmed)
			if interactive {
				fmt.Fprint(s.out, prompt)
			}
			continue
		}

		if trimmed == "" {
			if interactive && buffer.Len() == 0 {
				fmt.Fprint(s.out, prompt)
			}
			continue
		}

		buffer.WriteString(line)
		buffer.WriteByte(' ')

		pending := buffer.String()
		for {
			idx := strings.IndexByte(pending, ';')
			if idx < 0 {
				break
			}
			statement := strings.TrimSpace(pending[:idx])
			pending = pending[idx+1:]
			if statement != "" {
				s.executeStatement(statement)
			}
		}
		buffer.Reset()
		if strings.TrimSpace(pending) != "" {
			buffer.WriteString(pending)
		}

		if interactive {
			if buffer.Len() == 0 {
				fmt.Fprint(s.out, prompt)
			} else {
				fmt.Fprint(s.out, continuationPrompt)
			}
		}
	}

	if !interactive {
		if remaining := strings.TrimSpace(buffer.String()); remaining != "" {
			fmt.Fprintln(s.out, "Error: script ended without terminating ';'")
		}
	}
}

// executeStatement compiles and runs one statement, printing the result or
// the error. Errors never stop the stream.
func (s *Session) executeStatement(statement string) {
	stmt, err := query.Parse(statement)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	result, err := s.engine.Run(stmt)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	if result.Set != nil {
		if s.format != "table" {
			if err := output.New(s.format, s.out).Format(result.Set); err != nil {
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
			return
		}
		fmt.Fprintln(s.out, output.FormatTable(result.Set))
		return
	}
	fmt.Fprintln(s.out, result.Message)
}

// runMetaCommand handles the dot commands the REPL offers on top of SQL.
func (s *Session) runMetaCommand(command string) {
	fields := strings.Fields(command)
	switch fields[0] {
	case ".tables":
		s.printTables()
	case ".schema":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "Error: .schema requires a table name")
			return
		}
		s.printSchema(fields[1])
	default:
		fmt.Fprintf(s.out, "Error: unknown command %s\n", fields[0])
	}
}

func (s *Session) printTables() {
	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"Table", "Columns"})
	for _, name := range s.meta.TableNames() {
		t, ok := s.meta.GetTable(name)
		if !ok {
			continue
		}
		table.Append([]string{name, strconv.Itoa(len(t.Columns))})
	}
	table.Render()
}

func (s *Session) printSchema(name string) {
	t, ok := s.meta.GetTable(name)
	if !ok {
		fmt.Fprintf(s.out, "Error: Table does not exist: %s\n", name)
		return
	}

	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"Column", "Type", "Length"})
	for _, col := range t.Columns {
		table.Append([]string{col.Name, col.Type.String(), strconv.Itoa(col.Length)})
	}
	table.Render()
}
