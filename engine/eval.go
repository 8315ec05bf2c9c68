package engine

import (
	"fmt"
	"strconv"

	"github.com/minidb-io/minidb/query"
	"github.com/minidb-io/minidb/schema"
)

// binding is one loaded table's typed view of one row under a name: the
// schema, the raw row text, and the table name/alias it answers to during
// evaluation.
type binding struct {
	table     *schema.Table
	row       []string
	tableName string
	alias     string
}

// singleTableBinding binds a row of a table under the table's own name, as
// UPDATE and DELETE evaluation does.
func singleTableBinding(table *schema.Table, row []string) binding {
	return binding{table: table, row: row, tableName: table.Name, alias: table.Name}
}

// evalContext is the set of bindings visible while evaluating one candidate
// row group, with a name lookup covering both real table names and aliases.
// It is rebuilt per candidate row and never persisted.
//
// The lookup is filled in binding order; a later table whose name or alias
// collides with an earlier key silently shadows it. That mirrors the join
// pipeline's established behavior and is left as is.
type evalContext struct {
	bindings []binding
	lookup   map[string]int
}

func newEvalContext(bindings []binding) *evalContext {
	ctx := &evalContext{
		bindings: bindings,
		lookup:   make(map[string]int, len(bindings)*2),
	}
	for i, b := range bindings {
		ctx.lookup[b.tableName] = i
		if b.alias != "" {
			ctx.lookup[b.alias] = i
		}
	}
	return ctx
}

// resolveBinding finds the binding registered under a table name or alias.
func (ctx *evalContext) resolveBinding(name string) (*binding, error) {
	idx, ok := ctx.lookup[name]
	if !ok {
		return nil, fmt.Errorf("Unknown table or alias: %s", name)
	}
	return &ctx.bindings[idx], nil
}

// columnRef is a resolved column reference: the binding that owns it, the
// column schema, and its ordinal position in the row.
type columnRef struct {
	binding *binding
	column  schema.Column
	index   int
}

// lookupColumn resolves a column expression against the context. Qualified
// references go straight to their binding; unqualified references must
// match exactly one table's schema or fail as ambiguous.
func (ctx *evalContext) lookupColumn(expr *query.ColumnExpr) (columnRef, error) {
	if expr.TableAlias != "" {
		b, err := ctx.resolveBinding(expr.TableAlias)
		if err != nil {
			return columnRef{}, err
		}
		column, index, ok := b.table.Column(expr.ColumnName)
		if !ok {
			return columnRef{}, fmt.Errorf("Column not found: %s.%s", expr.TableAlias, expr.ColumnName)
		}
		return columnRef{binding: b, column: column, index: index}, nil
	}

	var result columnRef
	found := false
	for i := range ctx.bindings {
		b := &ctx.bindings[i]
		column, index, ok := b.table.Column(expr.ColumnName)
		if !ok {
			continue
		}
		if found {
			return columnRef{}, fmt.Errorf("Ambiguous column: %s", expr.ColumnName)
		}
		result = columnRef{binding: b, column: column, index: index}
		found = true
	}
	if !found {
		return columnRef{}, fmt.Errorf("Column not found: %s", expr.ColumnName)
	}
	return result, nil
}

// storageToLiteral reconstructs a typed literal from a stored text value
// using the column's declared type. Storage is untyped, so an INT column
// holding unparseable text is a runtime error, not a null.
func storageToLiteral(column schema.Column, value string) (query.LiteralValue, error) {
	if column.Type == schema.TypeInt {
		if value == "" {
			return query.LiteralValue{}, fmt.Errorf("Empty value encountered for INT column: %s", column.Name)
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return query.LiteralValue{}, fmt.Errorf("Failed to parse INT value for column %s: %s", column.Name, value)
		}
		return query.LiteralValue{Kind: query.LiteralInt, Int: n}, nil
	}
	return query.LiteralValue{Kind: query.LiteralString, Str: value}, nil
}

// literalToStorage converts a typed literal to its stored text, enforcing
// the column's type and the declared VARCHAR length bound.
func literalToStorage(value query.LiteralValue, column schema.Column) (string, error) {
	if column.Type == schema.TypeInt {
		if value.Kind != query.LiteralInt {
			return "", fmt.Errorf("Type mismatch: column %s expects INT", column.Name)
		}
		return strconv.FormatInt(value.Int, 10), nil
	}

	if value.Kind != query.LiteralString {
		return "", fmt.Errorf("Type mismatch: column %s expects VARCHAR", column.Name)
	}
	if column.Length > 0 && len(value.Str) > column.Length {
		return "", fmt.Errorf("Value for column %s exceeds maximum length", column.Name)
	}
	return value.Str, nil
}

// compareLiterals orders two literals of the same type, returning -1/0/1.
// Mixing INT and VARCHAR operands is an error, never a false result.
func compareLiterals(left, right query.LiteralValue) (int, error) {
	if left.Kind != right.Kind {
		return 0, fmt.Errorf("Cannot compare values of different types")
	}
	if left.Kind == query.LiteralInt {
		switch {
		case left.Int < right.Int:
			return -1, nil
		case left.Int > right.Int:
			return 1, nil
		default:
			return 0, nil
		}
	}
	switch {
	case left.Str < right.Str:
		return -1, nil
	case left.Str > right.Str:
		return 1, nil
	default:
		return 0, nil
	}
}

// evaluateOperand reduces a column reference or literal to a LiteralValue.
func evaluateOperand(expr query.Expression, ctx *evalContext) (query.LiteralValue, error) {
	switch e := expr.(type) {
	case *query.ColumnExpr:
		ref, err := ctx.lookupColumn(e)
		if err != nil {
			return query.LiteralValue{}, err
		}
		if ref.index >= len(ref.binding.row) {
			return query.LiteralValue{}, fmt.Errorf("Row is missing a value for column: %s", ref.column.Name)
		}
		return storageToLiteral(ref.column, ref.binding.row[ref.index])
	case *query.LiteralExpr:
		return e.Value, nil
	default:
		return query.LiteralValue{}, fmt.Errorf("Unsupported operand in expression evaluation")
	}
}

// evaluateComparison applies one comparison operator. Equality and
// inequality work on any matched pair of types; the ordering operators
// require INT on both sides.
func evaluateComparison(expr *query.ComparisonExpr, ctx *evalContext) (bool, error) {
	left, err := evaluateOperand(expr.Left, ctx)
	if err != nil {
		return false, err
	}
	right, err := evaluateOperand(expr.Right, ctx)
	if err != nil {
		return false, err
	}

	switch expr.Op {
	case query.OpEqual, query.OpNotEqual:
		cmp, err := compareLiterals(left, right)
		if err != nil {
			return false, err
		}
		if expr.Op == query.OpEqual {
			return cmp == 0, nil
		}
		return cmp != 0, nil

	case query.OpLess, query.OpGreater, query.OpLessOrEqual, query.OpGreaterOrEqual:
		if left.Kind != query.LiteralInt || right.Kind != query.LiteralInt {
			return false, fmt.Errorf("%s comparisons require INT operands", expr.Op)
		}
		switch expr.Op {
		case query.OpLess:
			return left.Int < right.Int, nil
		case query.OpGreater:
			return left.Int > right.Int, nil
		case query.OpLessOrEqual:
			return left.Int <= right.Int, nil
		default:
			return left.Int >= right.Int, nil
		}

	default:
		return false, fmt.Errorf("Unsupported comparison operator")
	}
}

// evaluateCondition evaluates a WHERE or ON tree against one row group. A
// nil expression is vacuously true. AND terms evaluate left to right and
// stop at the first false term, so a later term that would error is never
// reached.
func evaluateCondition(expr query.Expression, ctx *evalContext) (bool, error) {
	if expr == nil {
		return true, nil
	}

	switch e := expr.(type) {
	case *query.ComparisonExpr:
		return evaluateComparison(e, ctx)
	case *query.AndExpr:
		for _, term := range e.Terms {
			ok, err := evaluateCondition(term, ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("Unsupported condition expression")
	}
}
