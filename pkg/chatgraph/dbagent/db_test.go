package dbagent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openSeeded opens a fresh database in a temp dir with the sample
// schema and rows loaded.
func openSeeded(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSampleData(context.Background()))
	return db
}

func TestDB_Schema(t *testing.T) {
	db := openSeeded(t)

	schema, err := db.Schema(context.Background())
	require.NoError(t, err)

	assert.Contains(t, schema, "Table: users")
	assert.Contains(t, schema, "Table: orders")
	assert.Contains(t, schema, "Table: products")
	assert.Contains(t, schema, "- id: INTEGER (PRIMARY KEY)")
	assert.Contains(t, schema, "- email: TEXT (NOT NULL)")
	assert.Contains(t, schema, "(DEFAULT: 'pending')")
	assert.Contains(t, schema, "Rows: 5")
}

func TestDB_Query(t *testing.T) {
	db := openSeeded(t)

	rows, err := db.Query(context.Background(),
		"SELECT name, department FROM users WHERE department = 'Engineering' ORDER BY name", 0)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Alice Brown", rows[0]["name"])
	assert.Equal(t, "John Doe", rows[1]["name"])
	assert.Equal(t, "Engineering", rows[0]["department"])
}

func TestDB_QueryMaxRows(t *testing.T) {
	db := openSeeded(t)

	rows, err := db.Query(context.Background(), "SELECT id FROM users ORDER BY id", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDB_QueryInvalidSQL(t *testing.T) {
	db := openSeeded(t)

	_, err := db.Query(context.Background(), "SELECT * FROM missing_table", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute query")
}

func TestDB_EnsureSampleDataIdempotent(t *testing.T) {
	db := openSeeded(t)

	// A second call sees existing tables and leaves the data alone.
	require.NoError(t, db.EnsureSampleData(context.Background()))

	rows, err := db.Query(context.Background(), "SELECT COUNT(*) AS n FROM users", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 5, rows[0]["n"])
}
