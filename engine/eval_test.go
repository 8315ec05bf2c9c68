package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minidb-io/minidb/query"
	"github.com/minidb-io/minidb/schema"
)

func usersSchema() schema.Table {
	return schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt, Length: 4},
			{Name: "name", Type: schema.TypeVarchar, Length: 10},
		},
	}
}

func ordersSchema() schema.Table {
	return schema.Table{
		Name: "orders",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt, Length: 4},
			{Name: "user_id", Type: schema.TypeInt, Length: 4},
		},
	}
}

func TestStorageToLiteral(t *testing.T) {
	intCol := schema.Column{Name: "id", Type: schema.TypeInt}
	strCol := schema.Column{Name: "name", Type: schema.TypeVarchar, Length: 10}

	v, err := storageToLiteral(intCol, "42")
	require.NoError(t, err)
	assert.Equal(t, query.LiteralValue{Kind: query.LiteralInt, Int: 42}, v)

	v, err = storageToLiteral(intCol, "-7")
	require.NoError(t, err)
	assert.Equal(t, int64(-7), v.Int)

	_, err = storageToLiteral(intCol, "")
	assert.EqualError(t, err, "Empty value encountered for INT column: id")

	_, err = storageToLiteral(intCol, "abc")
	assert.EqualError(t, err, "Failed to parse INT value for column id: abc")

	v, err = storageToLiteral(strCol, "")
	require.NoError(t, err)
	assert.Equal(t, query.LiteralValue{Kind: query.LiteralString, Str: ""}, v)
}

func TestLiteralToStorage(t *testing.T) {
	intCol := schema.Column{Name: "id", Type: schema.TypeInt}
	strCol := schema.Column{Name: "name", Type: schema.TypeVarchar, Length: 5}

	text, err := literalToStorage(query.LiteralValue{Kind: query.LiteralInt, Int: -3}, intCol)
	require.NoError(t, err)
	assert.Equal(t, "-3", text)

	_, err = literalToStorage(query.LiteralValue{Kind: query.LiteralString, Str: "x"}, intCol)
	assert.EqualError(t, err, "Type mismatch: column id expects INT")

	_, err = literalToStorage(query.LiteralValue{Kind: query.LiteralInt, Int: 1}, strCol)
	assert.EqualError(t, err, "Type mismatch: column name expects VARCHAR")

	text, err = literalToStorage(query.LiteralValue{Kind: query.LiteralString, Str: "abcde"}, strCol)
	require.NoError(t, err)
	assert.Equal(t, "abcde", text)

	_, err = literalToStorage(query.LiteralValue{Kind: query.LiteralString, Str: "abcdef"}, strCol)
	assert.EqualError(t, err, "Value for column name exceeds maximum length")
}

func TestCompareLiterals(t *testing.T) {
	intVal := func(n int64) query.LiteralValue { return query.LiteralValue{Kind: query.LiteralInt, Int: n} }
	strVal := func(s string) query.LiteralValue { return query.LiteralValue{Kind: query.LiteralString, Str: s} }

	tests := []struct {
		name        string
		left, right query.LiteralValue
		want        int
	}{
		{"int less", intVal(1), intVal(2), -1},
		{"int equal", intVal(2), intVal(2), 0},
		{"int greater", intVal(3), intVal(2), 1},
		{"string less", strVal("a"), strVal("b"), -1},
		{"string equal", strVal("a"), strVal("a"), 0},
		{"string greater", strVal("b"), strVal("a"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compareLiterals(tt.left, tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := compareLiterals(intVal(1), strVal("1"))
	assert.EqualError(t, err, "Cannot compare values of different types")
}

func TestLookupColumn(t *testing.T) {
	users := usersSchema()
	orders := ordersSchema()
	ctx := newEvalContext([]binding{
		{table: &users, row: []string{"1", "Alice"}, tableName: "users", alias: "u"},
		{table: &orders, row: []string{"10", "1"}, tableName: "orders", alias: "o"},
	})

	ref, err := ctx.lookupColumn(&query.ColumnExpr{TableAlias: "u", ColumnName: "name"})
	require.NoError(t, err)
	assert.Equal(t, 1, ref.index)
	assert.Equal(t, "Alice", ref.binding.row[ref.index])

	// The alias and the real table name both resolve.
	_, err = ctx.lookupColumn(&query.ColumnExpr{TableAlias: "orders", ColumnName: "user_id"})
	assert.NoError(t, err)

	// Unqualified lookups must match exactly one table.
	ref, err = ctx.lookupColumn(&query.ColumnExpr{ColumnName: "name"})
	require.NoError(t, err)
	assert.Equal(t, "users", ref.binding.tableName)

	_, err = ctx.lookupColumn(&query.ColumnExpr{ColumnName: "id"})
	assert.EqualError(t, err, "Ambiguous column: id")

	_, err = ctx.lookupColumn(&query.ColumnExpr{ColumnName: "ghost"})
	assert.EqualError(t, err, "Column not found: ghost")

	_, err = ctx.lookupColumn(&query.ColumnExpr{TableAlias: "u", ColumnName: "ghost"})
	assert.EqualError(t, err, "Column not found: u.ghost")

	_, err = ctx.lookupColumn(&query.ColumnExpr{TableAlias: "x", ColumnName: "id"})
	assert.EqualError(t, err, "Unknown table or alias: x")
}

func TestEvaluateComparison(t *testing.T) {
	users := usersSchema()
	ctx := newEvalContext([]binding{singleTableBinding(&users, []string{"5", "Alice"})})

	col := func(name string) query.Expression { return &query.ColumnExpr{ColumnName: name} }
	lit := func(v query.LiteralValue) query.Expression { return &query.LiteralExpr{Value: v} }
	intVal := func(n int64) query.LiteralValue { return query.LiteralValue{Kind: query.LiteralInt, Int: n} }
	strVal := func(s string) query.LiteralValue { return query.LiteralValue{Kind: query.LiteralString, Str: s} }

	tests := []struct {
		name string
		expr *query.ComparisonExpr
		want bool
	}{
		{"int equal", &query.ComparisonExpr{Op: query.OpEqual, Left: col("id"), Right: lit(intVal(5))}, true},
		{"int not equal", &query.ComparisonExpr{Op: query.OpNotEqual, Left: col("id"), Right: lit(intVal(5))}, false},
		{"int less", &query.ComparisonExpr{Op: query.OpLess, Left: col("id"), Right: lit(intVal(10))}, true},
		{"int greater or equal", &query.ComparisonExpr{Op: query.OpGreaterOrEqual, Left: col("id"), Right: lit(intVal(5))}, true},
		{"string equal", &query.ComparisonExpr{Op: query.OpEqual, Left: col("name"), Right: lit(strVal("Alice"))}, true},
		{"string not equal", &query.ComparisonExpr{Op: query.OpNotEqual, Left: col("name"), Right: lit(strVal("Bob"))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluateComparison(tt.expr, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// Ordering operators reject VARCHAR operands.
	_, err := evaluateComparison(&query.ComparisonExpr{
		Op: query.OpLess, Left: col("name"), Right: lit(strVal("Bob")),
	}, ctx)
	assert.EqualError(t, err, "< comparisons require INT operands")

	// Mixed types fail even for equality.
	_, err = evaluateComparison(&query.ComparisonExpr{
		Op: query.OpEqual, Left: col("id"), Right: lit(strVal("5")),
	}, ctx)
	assert.EqualError(t, err, "Cannot compare values of different types")
}

func TestEvaluateConditionShortCircuit(t *testing.T) {
	users := usersSchema()
	ctx := newEvalContext([]binding{singleTableBinding(&users, []string{"5", "Alice"})})

	falseTerm := &query.ComparisonExpr{
		Op:    query.OpEqual,
		Left:  &query.ColumnExpr{ColumnName: "id"},
		Right: &query.LiteralExpr{Value: query.LiteralValue{Kind: query.LiteralInt, Int: 99}},
	}
	// This term would error (unknown column) if it were evaluated.
	erroring := &query.ComparisonExpr{
		Op:    query.OpEqual,
		Left:  &query.ColumnExpr{ColumnName: "ghost"},
		Right: &query.LiteralExpr{Value: query.LiteralValue{Kind: query.LiteralInt, Int: 1}},
	}

	ok, err := evaluateCondition(&query.AndExpr{Terms: []query.Expression{falseTerm, erroring}}, ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Reordered, the error surfaces.
	trueTerm := &query.ComparisonExpr{
		Op:    query.OpEqual,
		Left:  &query.ColumnExpr{ColumnName: "id"},
		Right: &query.LiteralExpr{Value: query.LiteralValue{Kind: query.LiteralInt, Int: 5}},
	}
	_, err = evaluateCondition(&query.AndExpr{Terms: []query.Expression{trueTerm, erroring}}, ctx)
	assert.EqualError(t, err, "Column not found: ghost")
}

func TestEvaluateConditionNilIsTrue(t *testing.T) {
	ok, err := evaluateCondition(nil, newEvalContext(nil))
	require.NoError(t, err)
	assert.True(t, ok)
}
