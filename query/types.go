package query

import "github.com/minidb-io/minidb/schema"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenIdentifier TokenKind = iota
	TokenNumber
	TokenString
	TokenSymbol
	TokenEnd
)

// String returns a human-readable name for the token kind, used in
// diagnostics.
func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenSymbol:
		return "symbol"
	case TokenEnd:
		return "end of statement"
	default:
		return "unknown"
	}
}

// Token is one lexical token: its kind and raw text. String tokens hold the
// unescaped value; identifier tokens preserve the original case.
type Token struct {
	Kind TokenKind
	Text string
}

// LiteralKind discriminates the two literal value types.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralString
)

// LiteralValue is a typed scalar: an int64 or a string. Only the field
// matching Kind is meaningful.
type LiteralValue struct {
	Kind LiteralKind
	Int  int64
	Str  string
}

// CompareOp is a comparison operator in a condition.
type CompareOp int

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLess
	OpGreater
	OpLessOrEqual
	OpGreaterOrEqual
)

// String returns the SQL spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpLessOrEqual:
		return "<="
	case OpGreaterOrEqual:
		return ">="
	default:
		return "?"
	}
}

// Expression is the sealed interface over condition/operand nodes. The
// engine type-switches over the concrete variants; there are exactly four.
type Expression interface {
	exprNode()
}

// ColumnExpr references a column, optionally qualified by a table name or
// alias.
type ColumnExpr struct {
	TableAlias string // empty for unqualified references
	ColumnName string
}

// LiteralExpr wraps a literal operand.
type LiteralExpr struct {
	Value LiteralValue
}

// ComparisonExpr compares two operands with a single operator.
type ComparisonExpr struct {
	Op    CompareOp
	Left  Expression
	Right Expression
}

// AndExpr is a flattened conjunction of two or more comparisons. AND is the
// only boolean connective in the grammar; terms evaluate left to right with
// short-circuit semantics.
type AndExpr struct {
	Terms []Expression
}

func (*ColumnExpr) exprNode()     {}
func (*LiteralExpr) exprNode()    {}
func (*ComparisonExpr) exprNode() {}
func (*AndExpr) exprNode()        {}

// Statement is the sealed interface over parsed statements.
type Statement interface {
	stmtNode()
}

// CreateTableStmt represents CREATE TABLE name (col type, ...).
type CreateTableStmt struct {
	TableName string
	Columns   []schema.Column
}

// DropTableStmt represents DROP TABLE name.
type DropTableStmt struct {
	TableName string
}

// AlterAction selects which ALTER TABLE form a statement carries.
type AlterAction int

const (
	AlterRenameTable AlterAction = iota
	AlterAddColumn
	AlterDropColumn
	AlterModifyColumn
)

// AlterTableStmt represents the four ALTER TABLE forms. NewTableName is set
// for renames, Column for add/modify, TargetColumn for drop/modify.
type AlterTableStmt struct {
	Action       AlterAction
	TableName    string
	NewTableName string
	Column       schema.Column
	TargetColumn string
}

// InsertStmt represents INSERT INTO name VALUES (...).
type InsertStmt struct {
	TableName string
	Values    []LiteralValue
}

// Assignment is one column = literal pair in an UPDATE SET list.
type Assignment struct {
	ColumnName string
	Value      LiteralValue
}

// UpdateStmt represents UPDATE name SET ... [WHERE ...].
type UpdateStmt struct {
	TableName   string
	Assignments []Assignment
	Where       Expression // nil when absent
}

// DeleteStmt represents DELETE FROM name [WHERE ...].
type DeleteStmt struct {
	TableName string
	Where     Expression // nil when absent
}

// SelectItem is one entry of a SELECT list: a wildcard (bare or qualified)
// or a column reference with an optional output alias.
type SelectItem struct {
	Wildcard   bool
	TableAlias string
	ColumnName string
	Alias      string
}

// TableReference names a table with an optional alias.
type TableReference struct {
	TableName string
	Alias     string
}

// JoinClause is one [INNER] JOIN table ON condition step.
type JoinClause struct {
	Table     TableReference
	Condition Expression
}

// SelectStmt represents SELECT list FROM table [joins] [WHERE ...].
type SelectStmt struct {
	SelectList   []SelectItem
	PrimaryTable TableReference
	Joins        []JoinClause
	Where        Expression // nil when absent
}

func (*CreateTableStmt) stmtNode() {}
func (*DropTableStmt) stmtNode()   {}
func (*AlterTableStmt) stmtNode()  {}
func (*InsertStmt) stmtNode()      {}
func (*UpdateStmt) stmtNode()      {}
func (*DeleteStmt) stmtNode()      {}
func (*SelectStmt) stmtNode()      {}
