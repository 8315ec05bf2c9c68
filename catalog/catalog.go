// Package catalog persists table schema metadata.
//
// The catalog is an in-memory map of table name to schema, mirrored to a
// single metadata file so that schemas survive restarts. Every mutating
// operation rewrites the file before returning.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/minidb-io/minidb/schema"
)

const metaFileName = "catalog.meta"

// Catalog holds the schema of every known table. It is not safe for
// concurrent use; the engine runs one statement at a time.
type Catalog struct {
	tables   map[string]schema.Table
	metaPath string
}

// Open loads (or initializes) the catalog stored under dir.
func Open(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	c := &Catalog{
		tables:   make(map[string]schema.Table),
		metaPath: filepath.Join(dir, metaFileName),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// TableExists reports whether a table with the given name is registered.
func (c *Catalog) TableExists(name string) bool {
	_, ok := c.tables[name]
	return ok
}

// GetTable returns the schema for the named table, or false if absent.
func (c *Catalog) GetTable(name string) (schema.Table, bool) {
	table, ok := c.tables[name]
	return table, ok
}

// TableNames returns every registered table name in sorted order.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateTable registers a new table schema.
func (c *Catalog) CreateTable(table schema.Table) error {
	if c.TableExists(table.Name) {
		return fmt.Errorf("Table already exists: %s", table.Name)
	}
	c.tables[table.Name] = table
	return c.persist()
}

// DropTable removes a table schema.
func (c *Catalog) DropTable(name string) error {
	if !c.TableExists(name) {
		return fmt.Errorf("Table does not exist: %s", name)
	}
	delete(c.tables, name)
	return c.persist()
}

// RenameTable re-registers a table under a new name.
func (c *Catalog) RenameTable(oldName, newName string) error {
	if !c.TableExists(oldName) {
		return fmt.Errorf("Table does not exist: %s", oldName)
	}
	if c.TableExists(newName) {
		return fmt.Errorf("Target table already exists: %s", newName)
	}
	table := c.tables[oldName]
	table.Name = newName
	delete(c.tables, oldName)
	c.tables[newName] = table
	return c.persist()
}

// AddColumn appends a column to a table's schema.
func (c *Catalog) AddColumn(tableName string, column schema.Column) error {
	table, ok := c.tables[tableName]
	if !ok {
		return fmt.Errorf("Table does not exist: %s", tableName)
	}
	table.Columns = append(table.Columns, column)
	c.tables[tableName] = table
	return c.persist()
}

// DropColumn removes a column from a table's schema.
func (c *Catalog) DropColumn(tableName, columnName string) error {
	table, ok := c.tables[tableName]
	if !ok {
		return fmt.Errorf("Table does not exist: %s", tableName)
	}

	kept := table.Columns[:0]
	removed := false
	for _, col := range table.Columns {
		if col.Name == columnName {
			removed = true
			continue
		}
		kept = append(kept, col)
	}
	if !removed {
		return fmt.Errorf("Column does not exist: %s", columnName)
	}
	table.Columns = kept
	c.tables[tableName] = table
	return c.persist()
}

// ModifyColumn changes the type and length of an existing column.
func (c *Catalog) ModifyColumn(tableName string, column schema.Column) error {
	table, ok := c.tables[tableName]
	if !ok {
		return fmt.Errorf("Table does not exist: %s", tableName)
	}

	modified := false
	for i, col := range table.Columns {
		if col.Name == column.Name {
			table.Columns[i].Type = column.Type
			table.Columns[i].Length = column.Length
			modified = true
			break
		}
	}
	if !modified {
		return fmt.Errorf("Column does not exist: %s", column.Name)
	}
	c.tables[tableName] = table
	return c.persist()
}

// Refresh discards the in-memory state and reloads from disk.
func (c *Catalog) Refresh() error {
	return c.load()
}

// load reads the metadata file. One line per table:
//
//	name|col:TYPE:length,col:TYPE:length
//
// A missing file means an empty catalog. Malformed lines are skipped, so a
// partially written file never blocks startup.
func (c *Catalog) load() error {
	c.tables = make(map[string]schema.Table)

	file, err := os.Open(c.metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "|", 2)
		if len(parts) < 2 {
			continue
		}

		table := schema.Table{Name: parts[0]}
		for _, colToken := range strings.Split(parts[1], ",") {
			if colToken == "" {
				continue
			}
			pieces := strings.Split(colToken, ":")
			if len(pieces) < 2 {
				continue
			}

			colType, err := schema.ParseType(pieces[1])
			if err != nil {
				continue
			}
			column := schema.Column{Name: pieces[0], Type: colType}
			if len(pieces) > 2 {
				length, err := strconv.Atoi(pieces[2])
				if err != nil {
					continue
				}
				column.Length = length
			} else {
				column.Length = schema.DefaultLength(colType)
			}
			table.Columns = append(table.Columns, column)
		}
		c.tables[table.Name] = table
	}
	return scanner.Err()
}

// persist rewrites the whole metadata file from the in-memory map. Tables
// are written in sorted order so the file is stable across runs.
func (c *Catalog) persist() error {
	file, err := os.Create(c.metaPath)
	if err != nil {
		return fmt.Errorf("Failed to open catalog file for writing")
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, name := range c.TableNames() {
		table := c.tables[name]
		fmt.Fprintf(w, "%s|", name)
		for i, col := range table.Columns {
			if i > 0 {
				w.WriteByte(',')
			}
			fmt.Fprintf(w, "%s:%s:%d", col.Name, col.Type, col.Length)
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
