package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/minidb-io/minidb/catalog"
	"github.com/minidb-io/minidb/cli"
	"github.com/minidb-io/minidb/engine"
	"github.com/minidb-io/minidb/storage"
)

var (
	fileFlag   string
	linesFlag  string
	watchFlag  bool
	dataFlag   string
	formatFlag string
)

func init() {
	flag.StringVar(&fileFlag, "f", "", "Execute a SQL script file and exit")
	flag.StringVar(&fileFlag, "file", "", "Execute a SQL script file and exit")
	flag.StringVar(&linesFlag, "l", "", "Restrict script execution to a line range, e.g. 5-12 (requires -f)")
	flag.StringVar(&linesFlag, "lines", "", "Restrict script execution to a line range, e.g. 5-12 (requires -f)")
	flag.BoolVar(&watchFlag, "w", false, "Watch a SQL file and re-execute it on every change")
	flag.BoolVar(&watchFlag, "watch", false, "Watch a SQL file and re-execute it on every change")
	flag.StringVar(&dataFlag, "d", "./data", "Data directory for catalog and table files")
	flag.StringVar(&dataFlag, "data", "./data", "Data directory for catalog and table files")
	flag.StringVar(&formatFlag, "format", "table", "SELECT output format: table, csv, jsonl")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [script.sql]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A small SQL database over plain-text table files.\n\n")
		fmt.Fprintf(os.Stderr, "With no arguments, starts an interactive session.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f setup.sql\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f setup.sql -l 5-12\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -w queries.sql\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f report.sql --format csv\n", os.Args[0])
	}

	flag.Parse()

	// Validate flag combinations
	if watchFlag && (fileFlag != "" || linesFlag != "") {
		fmt.Fprintf(os.Stderr, "Error: -w cannot be combined with -f or -l\n")
		os.Exit(1)
	}
	if linesFlag != "" && fileFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: -l requires -f\n")
		os.Exit(1)
	}
	switch formatFlag {
	case "table", "csv", "jsonl":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want table, csv, or jsonl)\n", formatFlag)
		os.Exit(1)
	}

	watchFile := ""
	if watchFlag {
		if flag.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "Error: -w requires a SQL file argument\n\n")
			flag.Usage()
			os.Exit(1)
		}
		watchFile = flag.Arg(0)
	} else if fileFlag == "" && flag.NArg() >= 1 {
		fileFlag = flag.Arg(0)
	}

	cat, err := catalog.Open(dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening catalog: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.Open(dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening storage: %v\n", err)
		os.Exit(1)
	}

	session := cli.NewSession(engine.New(cat, store), cat, os.Stdout)
	session.SetFormat(formatFlag)

	switch {
	case watchFlag:
		if err := session.RunWatch(watchFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case fileFlag != "":
		if err := runScriptFile(session, fileFlag, linesFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		session.RunInteractive(os.Stdin)
	}
}

// runScriptFile executes a script file, optionally restricted to a 1-based
// inclusive line range given as "start-end".
func runScriptFile(session *cli.Session, path, lineRange string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot open file: %s", path)
	}

	script := string(data)
	if lineRange != "" {
		script, err = extractLines(script, lineRange)
		if err != nil {
			return err
		}
	}

	session.RunScript(strings.NewReader(script))
	return nil
}

// extractLines returns the start..end slice of a script's lines.
func extractLines(script, lineRange string) (string, error) {
	start, end, err := parseLineRange(lineRange)
	if err != nil {
		return "", err
	}

	lines := strings.Split(script, "\n")
	if start > len(lines) {
		return "", fmt.Errorf("line range %s is beyond the end of the file", lineRange)
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

func parseLineRange(lineRange string) (start, end int, err error) {
	parts := strings.SplitN(lineRange, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid line range %q (want start-end)", lineRange)
	}
	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q (want start-end)", lineRange)
	}
	end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q (want start-end)", lineRange)
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid line range %q (start must be >= 1 and <= end)", lineRange)
	}
	return start, end, nil
}
