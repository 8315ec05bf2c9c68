// Package storage holds the row data for each table.
//
// Every table is one CSV file under the store's base directory: the first
// record is the header (column names), each following record is one row of
// untyped text. Typing is applied by the engine when values are read back
// against the catalog schema. Full-file rewrites go through a uniquely named
// temp file followed by a rename, so a crash mid-write never truncates a
// table in place.
package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/minidb-io/minidb/schema"
)

// Store manages the table files under one base directory. It is not safe
// for concurrent use; the engine runs one statement at a time.
type Store struct {
	baseDir string
}

// Open prepares a store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{baseDir: dir}, nil
}

// tablePath returns the backing file for a table.
func (s *Store) tablePath(name string) string {
	return filepath.Join(s.baseDir, name+".csv")
}

// CreateTableStorage creates the backing file for a new table, writing the
// header record.
func (s *Store) CreateTableStorage(table schema.Table) error {
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Name
	}
	return s.writeFile(table.Name, [][]string{headers})
}

// DropTableStorage deletes a table's backing file. A missing file is not an
// error.
func (s *Store) DropTableStorage(name string) error {
	err := os.Remove(s.tablePath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Failed to remove storage file: %s", s.tablePath(name))
	}
	return nil
}

// RenameTableStorage moves a table's backing file to a new name. A missing
// source file is a no-op.
func (s *Store) RenameTableStorage(oldName, newName string) error {
	oldPath := s.tablePath(oldName)
	if _, err := os.Stat(oldPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(oldPath, s.tablePath(newName)); err != nil {
		return fmt.Errorf("Failed to rename storage file: %v", err)
	}
	return nil
}

// ReadAllRows returns every data row of a table, in file order. The header
// record is skipped.
func (s *Store) ReadAllRows(name string) ([][]string, error) {
	records, err := s.readFile(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// AppendRow appends one row to a table's backing file.
func (s *Store) AppendRow(name string, values []string) error {
	path := s.tablePath(name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("Failed to open table file for append: %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(values); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteAllRows replaces a table's entire contents: header from the schema,
// then the given rows.
func (s *Store) WriteAllRows(name string, table schema.Table, rows [][]string) error {
	records := make([][]string, 0, len(rows)+1)
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Name
	}
	records = append(records, headers)
	records = append(records, rows...)
	return s.writeFile(name, records)
}

// AddColumn appends the new column to the header and an empty cell to every
// stored row.
func (s *Store) AddColumn(name string, column schema.Column) error {
	records, err := s.readFile(name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("Table storage is empty when attempting to add a column: %s", s.tablePath(name))
	}

	records[0] = append(records[0], column.Name)
	for i := 1; i < len(records); i++ {
		records[i] = append(records[i], "")
	}
	return s.writeFile(name, records)
}

// DropColumn removes the named column from the header and from every stored
// row.
func (s *Store) DropColumn(name, columnName string) error {
	records, err := s.readFile(name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("Column not found in storage: %s", columnName)
	}

	index := -1
	for i, header := range records[0] {
		if header == columnName {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("Column not found in storage: %s", columnName)
	}

	for i, record := range records {
		if index >= len(record) {
			return fmt.Errorf("Column index out of range during drop: %s", columnName)
		}
		records[i] = append(record[:index], record[index+1:]...)
	}
	return s.writeFile(name, records)
}

// ModifyColumn verifies the column exists in storage and rewrites the file.
// Stored values are untyped text, so a type change does not alter them;
// re-typing happens on the next read against the new schema.
func (s *Store) ModifyColumn(name string, column schema.Column) error {
	records, err := s.readFile(name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("Column not found in storage: %s", column.Name)
	}

	found := false
	for _, header := range records[0] {
		if header == column.Name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("Column not found in storage: %s", column.Name)
	}
	return s.writeFile(name, records)
}

// readFile reads every CSV record of a table file, header included. Rows may
// have differing field counts mid-migration, so the reader does not enforce
// a fixed record length.
func (s *Store) readFile(name string) ([][]string, error) {
	path := s.tablePath(name)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to open table file for reading: %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read table file %s: %w", path, err)
		}
		records = append(records, record)
	}
}

// writeFile replaces a table file's contents. The records are written to a
// temp file in the same directory and renamed over the target.
func (s *Store) writeFile(name string, records [][]string) error {
	path := s.tablePath(name)
	tmpPath := path + ".tmp-" + uuid.NewString()

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("Failed to open table file for write: %s", path)
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write table file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write table file %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace table file %s: %w", path, err)
	}
	return nil
}
