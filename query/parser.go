package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minidb-io/minidb/schema"
)

// reservedKeywords are the identifiers that can never act as an implicit
// table or column alias.
var reservedKeywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "INNER": true, "JOIN": true,
	"LEFT": true, "ON": true, "AS": true, "AND": true, "OR": true,
	"INSERT": true, "INTO": true, "VALUES": true, "UPDATE": true, "SET": true,
	"DELETE": true, "CREATE": true, "TABLE": true, "DROP": true, "ALTER": true,
	"DISTINCT": true,
}

func isReservedKeyword(text string) bool {
	return reservedKeywords[strings.ToUpper(text)]
}

// Parse compiles one SQL statement into its AST, or fails with a syntax
// diagnostic. A single trailing semicolon is tolerated; anything after it is
// a syntax error.
func Parse(sql string) (Statement, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, fmt.Errorf("Empty statement")
	}
	if strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(trimmed[:len(trimmed)-1])
	}

	tokens, err := Tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	c := newCursor(tokens)

	first := c.current()
	if first.Kind == TokenIdentifier {
		switch strings.ToUpper(first.Text) {
		case "CREATE":
			return parseCreateTable(c)
		case "DROP":
			return parseDropTable(c)
		case "ALTER":
			return parseAlterTable(c)
		case "INSERT":
			return parseInsert(c)
		case "UPDATE":
			return parseUpdate(c)
		case "DELETE":
			return parseDelete(c)
		case "SELECT":
			return parseSelect(c)
		}
	}
	return nil, fmt.Errorf("Unsupported SQL statement")
}

// parseColumnType completes a column definition whose name has already been
// consumed: INT takes no argument, VARCHAR takes an optional (length).
func parseColumnType(c *cursor, column schema.Column) (schema.Column, error) {
	typeName, err := c.consumeIdentifier("column type")
	if err != nil {
		return schema.Column{}, err
	}

	switch strings.ToUpper(typeName) {
	case "INT":
		column.Type = schema.TypeInt
		column.Length = schema.DefaultLength(schema.TypeInt)
	case "VARCHAR":
		column.Type = schema.TypeVarchar
		if c.matchSymbol("(") {
			lengthText, err := c.consumeNumber("VARCHAR length")
			if err != nil {
				return schema.Column{}, err
			}
			if err := c.expectSymbol(")"); err != nil {
				return schema.Column{}, err
			}
			length, err := strconv.Atoi(lengthText)
			if err != nil {
				return schema.Column{}, fmt.Errorf("Invalid VARCHAR length: %s", lengthText)
			}
			column.Length = length
		} else {
			column.Length = schema.DefaultLength(schema.TypeVarchar)
		}
	default:
		return schema.Column{}, fmt.Errorf("Unsupported column type: %s", typeName)
	}
	return column, nil
}

func parseColumnDefinition(c *cursor) (schema.Column, error) {
	name, err := c.consumeIdentifier("column name")
	if err != nil {
		return schema.Column{}, err
	}
	return parseColumnType(c, schema.Column{Name: name})
}

// parseLiteral consumes a literal operand: a quoted string or an
// optionally-negative integer. Overflow surfaces here, not in the lexer.
func parseLiteral(c *cursor) (LiteralValue, error) {
	tok := c.current()

	if tok.Kind == TokenString {
		text, err := c.consumeString()
		if err != nil {
			return LiteralValue{}, err
		}
		return LiteralValue{Kind: LiteralString, Str: text}, nil
	}

	negative := false
	if tok.Kind == TokenSymbol && tok.Text == "-" && c.peek(1).Kind == TokenNumber {
		c.consume()
		negative = true
		tok = c.current()
	}
	if tok.Kind == TokenNumber {
		text, err := c.consumeNumber("numeric literal")
		if err != nil {
			return LiteralValue{}, err
		}
		if negative {
			text = "-" + text
		}
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return LiteralValue{}, fmt.Errorf("Invalid INTEGER literal: %s", text)
		}
		return LiteralValue{Kind: LiteralInt, Int: value}, nil
	}

	return LiteralValue{}, fmt.Errorf("Unsupported literal value: %s", tok.Text)
}

// startsLiteral reports whether the cursor sits on a literal operand.
func startsLiteral(c *cursor) bool {
	tok := c.current()
	if tok.Kind == TokenString || tok.Kind == TokenNumber {
		return true
	}
	return tok.Kind == TokenSymbol && tok.Text == "-" && c.peek(1).Kind == TokenNumber
}

// parseOperand consumes a literal or a column reference. A bare identifier
// becomes a qualified column only when a '.' follows it.
func parseOperand(c *cursor) (Expression, error) {
	if startsLiteral(c) {
		value, err := parseLiteral(c)
		if err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: value}, nil
	}

	if c.current().Kind != TokenIdentifier {
		return nil, fmt.Errorf("Expected column reference or literal, found: %s", c.current().Text)
	}

	name, err := c.consumeIdentifier("column reference")
	if err != nil {
		return nil, err
	}
	expr := &ColumnExpr{ColumnName: name}
	if c.matchSymbol(".") {
		expr.TableAlias = name
		expr.ColumnName, err = c.consumeIdentifier("column name")
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func parseCompareOp(c *cursor) (CompareOp, error) {
	tok := c.current()
	if tok.Kind != TokenSymbol {
		return 0, fmt.Errorf("Expected comparison operator, found: %s", tok.Text)
	}

	var op CompareOp
	switch tok.Text {
	case "=":
		op = OpEqual
	case "<>":
		op = OpNotEqual
	case "<":
		op = OpLess
	case ">":
		op = OpGreater
	case "<=":
		op = OpLessOrEqual
	case ">=":
		op = OpGreaterOrEqual
	default:
		return 0, fmt.Errorf("Unsupported comparison operator: %s", tok.Text)
	}
	c.consume()
	return op, nil
}

func parseComparison(c *cursor) (Expression, error) {
	left, err := parseOperand(c)
	if err != nil {
		return nil, err
	}
	op, err := parseCompareOp(c)
	if err != nil {
		return nil, err
	}
	right, err := parseOperand(c)
	if err != nil {
		return nil, err
	}
	return &ComparisonExpr{Op: op, Left: left, Right: right}, nil
}

// parseCondition parses one comparison optionally followed by AND chains.
// A single comparison is returned unwrapped; two or more terms flatten into
// one AndExpr.
func parseCondition(c *cursor) (Expression, error) {
	first, err := parseComparison(c)
	if err != nil {
		return nil, err
	}
	if !c.matchKeyword("AND") {
		return first, nil
	}

	and := &AndExpr{Terms: []Expression{first}}
	for {
		term, err := parseComparison(c)
		if err != nil {
			return nil, err
		}
		and.Terms = append(and.Terms, term)
		if !c.matchKeyword("AND") {
			return and, nil
		}
	}
}

// parseTableReference consumes a table name with an optional alias. An alias
// may be introduced by AS or appear as a bare identifier that is not a
// reserved keyword.
func parseTableReference(c *cursor) (TableReference, error) {
	name, err := c.consumeIdentifier("table name")
	if err != nil {
		return TableReference{}, err
	}
	ref := TableReference{TableName: name}

	if c.matchKeyword("AS") {
		ref.Alias, err = c.consumeIdentifier("table alias")
		if err != nil {
			return TableReference{}, err
		}
	} else if tok := c.current(); tok.Kind == TokenIdentifier && !isReservedKeyword(tok.Text) {
		ref.Alias, err = c.consumeIdentifier("table alias")
		if err != nil {
			return TableReference{}, err
		}
	}
	return ref, nil
}

func parseCreateTable(c *cursor) (Statement, error) {
	if err := c.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("TABLE"); err != nil {
		return nil, err
	}

	stmt := &CreateTableStmt{}
	var err error
	stmt.TableName, err = c.consumeIdentifier("table name")
	if err != nil {
		return nil, err
	}
	if err := c.expectSymbol("("); err != nil {
		return nil, err
	}

	for {
		column, err := parseColumnDefinition(c)
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, column)
		if c.matchSymbol(")") {
			break
		}
		if err := c.expectSymbol(","); err != nil {
			return nil, err
		}
	}

	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseDropTable(c *cursor) (Statement, error) {
	if err := c.expectKeyword("DROP"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("TABLE"); err != nil {
		return nil, err
	}

	stmt := &DropTableStmt{}
	var err error
	stmt.TableName, err = c.consumeIdentifier("table name")
	if err != nil {
		return nil, err
	}
	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseAlterTable(c *cursor) (Statement, error) {
	if err := c.expectKeyword("ALTER"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("TABLE"); err != nil {
		return nil, err
	}

	stmt := &AlterTableStmt{}
	var err error
	stmt.TableName, err = c.consumeIdentifier("table name")
	if err != nil {
		return nil, err
	}

	switch {
	case c.matchKeyword("RENAME"):
		if err := c.expectKeyword("TO"); err != nil {
			return nil, err
		}
		stmt.Action = AlterRenameTable
		stmt.NewTableName, err = c.consumeIdentifier("new table name")
		if err != nil {
			return nil, err
		}

	case c.matchKeyword("ADD"):
		if err := c.expectKeyword("COLUMN"); err != nil {
			return nil, err
		}
		stmt.Action = AlterAddColumn
		stmt.Column, err = parseColumnDefinition(c)
		if err != nil {
			return nil, err
		}

	case c.matchKeyword("DROP"):
		if err := c.expectKeyword("COLUMN"); err != nil {
			return nil, err
		}
		stmt.Action = AlterDropColumn
		stmt.TargetColumn, err = c.consumeIdentifier("column name")
		if err != nil {
			return nil, err
		}

	case c.matchKeyword("MODIFY"):
		if err := c.expectKeyword("COLUMN"); err != nil {
			return nil, err
		}
		name, err := c.consumeIdentifier("column name")
		if err != nil {
			return nil, err
		}
		column, err := parseColumnType(c, schema.Column{Name: name})
		if err != nil {
			return nil, err
		}
		stmt.Action = AlterModifyColumn
		stmt.TargetColumn = name
		stmt.Column = column

	default:
		return nil, fmt.Errorf("Unsupported ALTER TABLE action")
	}

	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseInsert(c *cursor) (Statement, error) {
	if err := c.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("INTO"); err != nil {
		return nil, err
	}

	stmt := &InsertStmt{}
	var err error
	stmt.TableName, err = c.consumeIdentifier("table name")
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := c.expectSymbol("("); err != nil {
		return nil, err
	}

	for {
		value, err := parseLiteral(c)
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, value)
		if !c.matchSymbol(",") {
			break
		}
	}
	if err := c.expectSymbol(")"); err != nil {
		return nil, err
	}
	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseUpdate(c *cursor) (Statement, error) {
	if err := c.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}

	stmt := &UpdateStmt{}
	var err error
	stmt.TableName, err = c.consumeIdentifier("table name")
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword("SET"); err != nil {
		return nil, err
	}

	for {
		var assignment Assignment
		assignment.ColumnName, err = c.consumeIdentifier("column name")
		if err != nil {
			return nil, err
		}
		if err := c.expectSymbol("="); err != nil {
			return nil, err
		}
		assignment.Value, err = parseLiteral(c)
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, assignment)
		if !c.matchSymbol(",") {
			break
		}
	}

	if c.matchKeyword("WHERE") {
		stmt.Where, err = parseCondition(c)
		if err != nil {
			return nil, err
		}
	}

	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseDelete(c *cursor) (Statement, error) {
	if err := c.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("FROM"); err != nil {
		return nil, err
	}

	stmt := &DeleteStmt{}
	var err error
	stmt.TableName, err = c.consumeIdentifier("table name")
	if err != nil {
		return nil, err
	}

	if c.matchKeyword("WHERE") {
		stmt.Where, err = parseCondition(c)
		if err != nil {
			return nil, err
		}
	}

	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSelectItem consumes one SELECT list entry: *, alias.*, or a column
// reference with an optional output alias.
func parseSelectItem(c *cursor) (SelectItem, error) {
	var item SelectItem
	tok := c.current()

	switch {
	case tok.Kind == TokenSymbol && tok.Text == "*":
		item.Wildcard = true
		c.consume()

	case tok.Kind == TokenIdentifier &&
		c.peek(1).Kind == TokenSymbol && c.peek(1).Text == "." &&
		c.peek(2).Kind == TokenSymbol && c.peek(2).Text == "*":
		item.Wildcard = true
		alias, err := c.consumeIdentifier("table alias")
		if err != nil {
			return SelectItem{}, err
		}
		item.TableAlias = alias
		c.consume() // .
		c.consume() // *

	default:
		operand, err := parseOperand(c)
		if err != nil {
			return SelectItem{}, err
		}
		column, ok := operand.(*ColumnExpr)
		if !ok {
			return SelectItem{}, fmt.Errorf("SELECT list only supports column references")
		}
		item.TableAlias = column.TableAlias
		item.ColumnName = column.ColumnName
	}

	// Output alias: explicit AS, or a bare non-keyword identifier. Wildcard
	// items never take an alias without AS.
	if c.matchKeyword("AS") {
		alias, err := c.consumeIdentifier("alias")
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = alias
	} else if !item.Wildcard {
		if tok := c.current(); tok.Kind == TokenIdentifier && !isReservedKeyword(tok.Text) {
			alias, err := c.consumeIdentifier("alias")
			if err != nil {
				return SelectItem{}, err
			}
			item.Alias = alias
		}
	}
	return item, nil
}

func parseSelect(c *cursor) (Statement, error) {
	if err := c.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if c.matchKeyword("DISTINCT") {
		return nil, fmt.Errorf("DISTINCT is not supported")
	}

	stmt := &SelectStmt{}
	for {
		item, err := parseSelectItem(c)
		if err != nil {
			return nil, err
		}
		stmt.SelectList = append(stmt.SelectList, item)
		if !c.matchSymbol(",") {
			break
		}
	}

	if err := c.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	var err error
	stmt.PrimaryTable, err = parseTableReference(c)
	if err != nil {
		return nil, err
	}

	for {
		if c.matchKeyword("INNER") {
			if err := c.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
		} else if c.matchKeyword("JOIN") {
			// bare JOIN is an inner join
		} else if c.matchKeyword("LEFT") {
			return nil, fmt.Errorf("LEFT JOIN is not supported")
		} else {
			break
		}

		var clause JoinClause
		clause.Table, err = parseTableReference(c)
		if err != nil {
			return nil, err
		}
		if err := c.expectKeyword("ON"); err != nil {
			return nil, err
		}
		clause.Condition, err = parseCondition(c)
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, clause)
	}

	if c.matchKeyword("WHERE") {
		stmt.Where, err = parseCondition(c)
		if err != nil {
			return nil, err
		}
	}

	if err := c.ensureEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}
