package engine

import (
	"fmt"

	"github.com/minidb-io/minidb/output"
	"github.com/minidb-io/minidb/query"
	"github.com/minidb-io/minidb/schema"
)

// tableData is one table loaded for a SELECT: its schema, the name it is
// bound under (alias when given, table name otherwise), and every row read
// once up front.
type tableData struct {
	schema    schema.Table
	tableName string
	alias     string
	rows      [][]string
}

// loadTable reads a referenced table's schema and rows.
func (e *Engine) loadTable(ref query.TableReference) (*tableData, error) {
	table, ok := e.catalog.GetTable(ref.TableName)
	if !ok {
		return nil, fmt.Errorf("Table does not exist: %s", ref.TableName)
	}
	rows, err := e.storage.ReadAllRows(ref.TableName)
	if err != nil {
		return nil, err
	}

	data := &tableData{
		schema:    table,
		tableName: ref.TableName,
		alias:     ref.Alias,
		rows:      rows,
	}
	if data.alias == "" {
		data.alias = ref.TableName
	}
	return data, nil
}

func (t *tableData) bind(row []string) binding {
	return binding{table: &t.schema, row: row, tableName: t.tableName, alias: t.alias}
}

// findTableData returns the loaded table answering to a name or alias.
func findTableData(tables []*tableData, key string) *tableData {
	for _, t := range tables {
		if t.alias == key || t.tableName == key {
			return t
		}
	}
	return nil
}

// executeSelect runs the join pipeline, WHERE filter, and projection.
//
// Joins are nested loops composed left to right, exactly in statement
// order: the working set starts as one row group per primary-table row, and
// each join clause replaces it with every surviving (existing group + new
// row) candidate whose ON condition holds. Worst case this visits
// |groups| x |table rows| candidates per step; nothing prunes beyond the ON
// condition itself.
func (e *Engine) executeSelect(stmt *query.SelectStmt) (*output.ResultSet, error) {
	primary, err := e.loadTable(stmt.PrimaryTable)
	if err != nil {
		return nil, err
	}
	tableSequence := []*tableData{primary}

	groups := make([][]binding, 0, len(primary.rows))
	for _, row := range primary.rows {
		groups = append(groups, []binding{primary.bind(row)})
	}

	for _, join := range stmt.Joins {
		joined, err := e.loadTable(join.Table)
		if err != nil {
			return nil, err
		}
		tableSequence = append(tableSequence, joined)

		var next [][]binding
		for _, existing := range groups {
			for _, row := range joined.rows {
				candidate := make([]binding, len(existing), len(existing)+1)
				copy(candidate, existing)
				candidate = append(candidate, joined.bind(row))

				match, err := evaluateCondition(join.Condition, newEvalContext(candidate))
				if err != nil {
					return nil, err
				}
				if match {
					next = append(next, candidate)
				}
			}
		}
		groups = next
	}

	if stmt.Where != nil {
		filtered := groups[:0]
		for _, group := range groups {
			match, err := evaluateCondition(stmt.Where, newEvalContext(group))
			if err != nil {
				return nil, err
			}
			if match {
				filtered = append(filtered, group)
			}
		}
		groups = filtered
	}

	headers, err := buildHeaders(stmt, tableSequence)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		row, err := projectRow(stmt, tableSequence, group)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &output.ResultSet{Columns: headers, Rows: rows}, nil
}

// buildHeaders computes the output column headers: wildcards expand to
// alias.column for every covered table, named items use the explicit alias,
// else the qualified name, else the bare column name.
func buildHeaders(stmt *query.SelectStmt, tables []*tableData) ([]string, error) {
	var headers []string
	for _, item := range stmt.SelectList {
		switch {
		case item.Wildcard && item.TableAlias == "":
			for _, t := range tables {
				for _, col := range t.schema.Columns {
					headers = append(headers, t.alias+"."+col.Name)
				}
			}
		case item.Wildcard:
			t := findTableData(tables, item.TableAlias)
			if t == nil {
				return nil, fmt.Errorf("Unknown table alias in wildcard: %s", item.TableAlias)
			}
			for _, col := range t.schema.Columns {
				headers = append(headers, t.alias+"."+col.Name)
			}
		case item.Alias != "":
			headers = append(headers, item.Alias)
		case item.TableAlias != "":
			headers = append(headers, item.TableAlias+"."+item.ColumnName)
		default:
			headers = append(headers, item.ColumnName)
		}
	}
	return headers, nil
}

// projectRow renders one surviving row group into output cells, in SELECT
// list order. Wildcards copy each bound row's raw values in table-then-
// column order; named columns resolve through the evaluation context with
// the same ambiguity rules as conditions.
func projectRow(stmt *query.SelectStmt, tables []*tableData, group []binding) ([]string, error) {
	ctx := newEvalContext(group)

	var row []string
	for _, item := range stmt.SelectList {
		switch {
		case item.Wildcard && item.TableAlias == "":
			for _, t := range tables {
				b, err := ctx.resolveBinding(t.alias)
				if err != nil {
					return nil, err
				}
				row, err = appendBoundRow(row, b)
				if err != nil {
					return nil, err
				}
			}
		case item.Wildcard:
			b, err := ctx.resolveBinding(item.TableAlias)
			if err != nil {
				return nil, err
			}
			row, err = appendBoundRow(row, b)
			if err != nil {
				return nil, err
			}
		default:
			ref, err := ctx.lookupColumn(&query.ColumnExpr{
				TableAlias: item.TableAlias,
				ColumnName: item.ColumnName,
			})
			if err != nil {
				return nil, err
			}
			if ref.index >= len(ref.binding.row) {
				return nil, fmt.Errorf("Row is missing a value for column: %s", ref.column.Name)
			}
			row = append(row, ref.binding.row[ref.index])
		}
	}
	return row, nil
}

// appendBoundRow copies one binding's values in column order, one cell per
// schema column.
func appendBoundRow(row []string, b *binding) ([]string, error) {
	for i, col := range b.table.Columns {
		if i >= len(b.row) {
			return nil, fmt.Errorf("Row is missing a value for column: %s", col.Name)
		}
		row = append(row, b.row[i])
	}
	return row, nil
}
