// Package engine executes parsed SQL statements against the catalog and
// storage collaborators.
//
// The engine compiles nothing itself: it receives one AST statement at a
// time, type-checks literals against the catalog schema, and delegates all
// I/O to its collaborators. SELECT statements run a multi-table nested-loop
// join pipeline; mutating statements return an affected-row message.
// One statement executes at a time; there is no internal concurrency.
package engine

import (
	"fmt"

	"github.com/minidb-io/minidb/output"
	"github.com/minidb-io/minidb/query"
	"github.com/minidb-io/minidb/schema"
)

// Catalog is the schema-metadata collaborator the engine consumes.
type Catalog interface {
	TableExists(name string) bool
	GetTable(name string) (schema.Table, bool)
	CreateTable(table schema.Table) error
	DropTable(name string) error
	RenameTable(oldName, newName string) error
	AddColumn(tableName string, column schema.Column) error
	DropColumn(tableName, columnName string) error
	ModifyColumn(tableName string, column schema.Column) error
}

// Storage is the row-data collaborator the engine consumes. Rows are
// ordered lists of untyped column text; typing happens in the engine
// against the catalog schema.
type Storage interface {
	CreateTableStorage(table schema.Table) error
	DropTableStorage(name string) error
	RenameTableStorage(oldName, newName string) error
	ReadAllRows(name string) ([][]string, error)
	AppendRow(name string, values []string) error
	WriteAllRows(name string, table schema.Table, rows [][]string) error
	AddColumn(name string, column schema.Column) error
	DropColumn(name, columnName string) error
	ModifyColumn(name string, column schema.Column) error
}

// Engine dispatches statements to their handlers.
type Engine struct {
	catalog Catalog
	storage Storage
}

// New creates an engine over the given collaborators.
func New(catalog Catalog, storage Storage) *Engine {
	return &Engine{catalog: catalog, storage: storage}
}

// Result is the outcome of one statement: a success message for DDL/DML, or
// a materialized result set for SELECT.
type Result struct {
	Message string
	Set     *output.ResultSet
}

// Execute runs one statement and renders its result as text: the canonical
// fixed-width table for SELECT, an OK message otherwise. Any error aborts
// the statement only; the collaborators keep whatever state they reached.
func (e *Engine) Execute(stmt query.Statement) (string, error) {
	result, err := e.Run(stmt)
	if err != nil {
		return "", err
	}
	if result.Set != nil {
		return output.FormatTable(result.Set), nil
	}
	return result.Message, nil
}

// Run runs one statement and returns its structured result.
func (e *Engine) Run(stmt query.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *query.CreateTableStmt:
		return e.createTable(s)
	case *query.DropTableStmt:
		return e.dropTable(s)
	case *query.AlterTableStmt:
		return e.alterTable(s)
	case *query.InsertStmt:
		return e.insert(s)
	case *query.UpdateStmt:
		return e.update(s)
	case *query.DeleteStmt:
		return e.delete(s)
	case *query.SelectStmt:
		set, err := e.executeSelect(s)
		if err != nil {
			return nil, err
		}
		return &Result{Set: set}, nil
	default:
		return nil, fmt.Errorf("Unsupported statement type in execution engine")
	}
}

func success(format string, args ...any) *Result {
	return &Result{Message: "OK: " + fmt.Sprintf(format, args...)}
}

// createTable registers the schema first, then creates storage. A duplicate
// name fails in the catalog before storage is touched, so the existing
// table's file is never disturbed.
func (e *Engine) createTable(stmt *query.CreateTableStmt) (*Result, error) {
	table := schema.Table{Name: stmt.TableName, Columns: stmt.Columns}
	if err := e.catalog.CreateTable(table); err != nil {
		return nil, err
	}
	if err := e.storage.CreateTableStorage(table); err != nil {
		return nil, err
	}
	return success("Table created: %s", table.Name), nil
}

// dropTable removes storage before the catalog entry, so a failure never
// leaves a cataloged table without its data still on disk.
func (e *Engine) dropTable(stmt *query.DropTableStmt) (*Result, error) {
	if !e.catalog.TableExists(stmt.TableName) {
		return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
	}
	if err := e.storage.DropTableStorage(stmt.TableName); err != nil {
		return nil, err
	}
	if err := e.catalog.DropTable(stmt.TableName); err != nil {
		return nil, err
	}
	return success("Table dropped: %s", stmt.TableName), nil
}

// alterTable handles the four ALTER TABLE actions. Destructive actions
// touch storage first so a failure leaves the catalog describing data that
// still exists; there is no rollback.
func (e *Engine) alterTable(stmt *query.AlterTableStmt) (*Result, error) {
	switch stmt.Action {
	case query.AlterRenameTable:
		if !e.catalog.TableExists(stmt.TableName) {
			return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
		}
		if e.catalog.TableExists(stmt.NewTableName) {
			return nil, fmt.Errorf("Target table already exists: %s", stmt.NewTableName)
		}
		if err := e.storage.RenameTableStorage(stmt.TableName, stmt.NewTableName); err != nil {
			return nil, err
		}
		if err := e.catalog.RenameTable(stmt.TableName, stmt.NewTableName); err != nil {
			return nil, err
		}
		return success("Table renamed: %s -> %s", stmt.TableName, stmt.NewTableName), nil

	case query.AlterAddColumn:
		table, ok := e.catalog.GetTable(stmt.TableName)
		if !ok {
			return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
		}
		if table.HasColumn(stmt.Column.Name) {
			return nil, fmt.Errorf("Column already exists: %s", stmt.Column.Name)
		}
		if err := e.storage.AddColumn(stmt.TableName, stmt.Column); err != nil {
			return nil, err
		}
		if err := e.catalog.AddColumn(stmt.TableName, stmt.Column); err != nil {
			return nil, err
		}
		return success("Column added: %s.%s", stmt.TableName, stmt.Column.Name), nil

	case query.AlterDropColumn:
		table, ok := e.catalog.GetTable(stmt.TableName)
		if !ok {
			return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
		}
		if !table.HasColumn(stmt.TargetColumn) {
			return nil, fmt.Errorf("Column does not exist: %s", stmt.TargetColumn)
		}
		if len(table.Columns) <= 1 {
			return nil, fmt.Errorf("Cannot drop the last column from table: %s", stmt.TableName)
		}
		if err := e.storage.DropColumn(stmt.TableName, stmt.TargetColumn); err != nil {
			return nil, err
		}
		if err := e.catalog.DropColumn(stmt.TableName, stmt.TargetColumn); err != nil {
			return nil, err
		}
		return success("Column dropped: %s.%s", stmt.TableName, stmt.TargetColumn), nil

	case query.AlterModifyColumn:
		table, ok := e.catalog.GetTable(stmt.TableName)
		if !ok {
			return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
		}
		if !table.HasColumn(stmt.TargetColumn) {
			return nil, fmt.Errorf("Column does not exist: %s", stmt.TargetColumn)
		}
		if err := e.storage.ModifyColumn(stmt.TableName, stmt.Column); err != nil {
			return nil, err
		}
		if err := e.catalog.ModifyColumn(stmt.TableName, stmt.Column); err != nil {
			return nil, err
		}
		return success("Column modified: %s.%s", stmt.TableName, stmt.Column.Name), nil

	default:
		return nil, fmt.Errorf("ALTER TABLE action not implemented")
	}
}

func (e *Engine) insert(stmt *query.InsertStmt) (*Result, error) {
	table, ok := e.catalog.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
	}
	if len(table.Columns) != len(stmt.Values) {
		return nil, fmt.Errorf("Values count does not match table schema for table %s", stmt.TableName)
	}

	values := make([]string, len(stmt.Values))
	for i, column := range table.Columns {
		text, err := literalToStorage(stmt.Values[i], column)
		if err != nil {
			return nil, err
		}
		values[i] = text
	}

	if err := e.storage.AppendRow(stmt.TableName, values); err != nil {
		return nil, err
	}
	return success("1 row inserted into %s", stmt.TableName), nil
}

// update applies every SET assignment to each row whose WHERE evaluates
// true, rewriting the table only when something changed.
func (e *Engine) update(stmt *query.UpdateStmt) (*Result, error) {
	table, ok := e.catalog.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
	}

	indices := make([]int, len(stmt.Assignments))
	texts := make([]string, len(stmt.Assignments))
	for i, assignment := range stmt.Assignments {
		column, index, ok := table.Column(assignment.ColumnName)
		if !ok {
			return nil, fmt.Errorf("Column does not exist: %s", assignment.ColumnName)
		}
		text, err := literalToStorage(assignment.Value, column)
		if err != nil {
			return nil, err
		}
		indices[i] = index
		texts[i] = text
	}

	rows, err := e.storage.ReadAllRows(stmt.TableName)
	if err != nil {
		return nil, err
	}

	affected := 0
	for _, row := range rows {
		ctx := newEvalContext([]binding{singleTableBinding(&table, row)})
		match, err := evaluateCondition(stmt.Where, ctx)
		if err != nil {
			return nil, err
		}
		if match {
			for i, index := range indices {
				row[index] = texts[i]
			}
			affected++
		}
	}

	if affected > 0 {
		if err := e.storage.WriteAllRows(stmt.TableName, table, rows); err != nil {
			return nil, err
		}
	}
	return success("%d row(s) updated in %s", affected, stmt.TableName), nil
}

// delete partitions rows into kept and removed, rewriting the table only
// when at least one row matched. Zero matches is zero affected rows, not an
// error.
func (e *Engine) delete(stmt *query.DeleteStmt) (*Result, error) {
	table, ok := e.catalog.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("Table does not exist: %s", stmt.TableName)
	}

	rows, err := e.storage.ReadAllRows(stmt.TableName)
	if err != nil {
		return nil, err
	}

	kept := make([][]string, 0, len(rows))
	removed := 0
	for _, row := range rows {
		ctx := newEvalContext([]binding{singleTableBinding(&table, row)})
		match, err := evaluateCondition(stmt.Where, ctx)
		if err != nil {
			return nil, err
		}
		if match {
			removed++
		} else {
			kept = append(kept, row)
		}
	}

	if removed > 0 {
		if err := e.storage.WriteAllRows(stmt.TableName, table, kept); err != nil {
			return nil, err
		}
	}
	return success("%d row(s) deleted from %s", removed, stmt.TableName), nil
}
