package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minidb-io/minidb/schema"
)

func usersTable() schema.Table {
	return schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt, Length: 4},
			{Name: "name", Type: schema.TypeVarchar, Length: 50},
		},
	}
}

func TestCreateAndGetTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cat.CreateTable(usersTable()))
	assert.True(t, cat.TableExists("users"))

	got, ok := cat.GetTable("users")
	require.True(t, ok)
	assert.Equal(t, usersTable(), got)

	err = cat.CreateTable(usersTable())
	assert.EqualError(t, err, "Table already exists: users")
}

func TestDropTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cat.CreateTable(usersTable()))
	require.NoError(t, cat.DropTable("users"))
	assert.False(t, cat.TableExists("users"))

	assert.EqualError(t, cat.DropTable("users"), "Table does not exist: users")
}

func TestRenameTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cat.CreateTable(usersTable()))
	require.NoError(t, cat.RenameTable("users", "people"))

	assert.False(t, cat.TableExists("users"))
	got, ok := cat.GetTable("people")
	require.True(t, ok)
	assert.Equal(t, "people", got.Name)
	assert.Equal(t, usersTable().Columns, got.Columns)

	assert.EqualError(t, cat.RenameTable("missing", "x"), "Table does not exist: missing")

	require.NoError(t, cat.CreateTable(usersTable()))
	assert.EqualError(t, cat.RenameTable("users", "people"), "Target table already exists: people")
}

func TestColumnOperations(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cat.CreateTable(usersTable()))

	age := schema.Column{Name: "age", Type: schema.TypeInt, Length: 4}
	require.NoError(t, cat.AddColumn("users", age))
	got, _ := cat.GetTable("users")
	require.Len(t, got.Columns, 3)
	assert.Equal(t, age, got.Columns[2])

	require.NoError(t, cat.ModifyColumn("users", schema.Column{Name: "name", Type: schema.TypeVarchar, Length: 100}))
	got, _ = cat.GetTable("users")
	assert.Equal(t, 100, got.Columns[1].Length)

	require.NoError(t, cat.DropColumn("users", "age"))
	got, _ = cat.GetTable("users")
	assert.Len(t, got.Columns, 2)

	assert.EqualError(t, cat.DropColumn("users", "age"), "Column does not exist: age")
	assert.EqualError(t, cat.ModifyColumn("users", age), "Column does not exist: age")
	assert.EqualError(t, cat.AddColumn("missing", age), "Table does not exist: missing")
}

func TestPersistenceAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	cat, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, cat.CreateTable(usersTable()))
	require.NoError(t, cat.CreateTable(schema.Table{
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: schema.TypeInt, Length: 4}},
	}))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, reopened.TableNames())

	got, ok := reopened.GetTable("users")
	require.True(t, ok)
	assert.Equal(t, usersTable(), got)
}

func TestMetaFileFormat(t *testing.T) {
	dir := t.TempDir()

	cat, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, cat.CreateTable(usersTable()))

	data, err := os.ReadFile(filepath.Join(dir, "catalog.meta"))
	require.NoError(t, err)
	assert.Equal(t, "users|id:INT:4,name:VARCHAR:50\n", string(data))
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	meta := "users|id:INT:4\nno-separator-here\nbroken|col\norders|id:INT:4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.meta"), []byte(meta), 0o644))

	cat, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, cat.TableExists("users"))
	assert.True(t, cat.TableExists("orders"))
	assert.False(t, cat.TableExists("no-separator-here"))

	// The broken line still registers the table, just without the bad column.
	got, ok := cat.GetTable("broken")
	require.True(t, ok)
	assert.Empty(t, got.Columns)
}

func TestRefresh(t *testing.T) {
	dir := t.TempDir()

	cat, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, cat.CreateTable(usersTable()))

	other, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, other.CreateTable(schema.Table{
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: schema.TypeInt, Length: 4}},
	}))

	require.NoError(t, cat.Refresh())
	assert.True(t, cat.TableExists("orders"))
}
