package storage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner_FreshDB(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db, DialectSQLite)

	err := runner.Run()
	require.NoError(t, err)

	expectedTables := []string{
		"projects",
		"entries",
		"contracts",
		"schema_migrations",
	}
	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationRunner_IndexesCreated(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db, DialectSQLite)
	require.NoError(t, runner.Run())

	expectedIndexes := []string{
		"idx_entries_start_time",
		"idx_entries_project",
		"idx_contracts_keyword",
	}
	for _, idx := range expectedIndexes {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, NewMigrationRunner(db, DialectSQLite).Run())
	require.NoError(t, NewMigrationRunner(db, DialectSQLite).Run())

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 3, versions)

	var contracts int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM contracts").Scan(&contracts))
	assert.Equal(t, len(defaultContracts), contracts)
}

func TestMigrationRunner_SeedsAbsenceProjects(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db, DialectSQLite).Run())

	var key, desc string
	require.NoError(t, db.QueryRow("SELECT key, description FROM projects WHERE id = 3").Scan(&key, &desc))
	assert.Equal(t, "001", key)
	assert.Equal(t, "Urlaub", desc)

	require.NoError(t, db.QueryRow("SELECT key FROM projects WHERE id = 1").Scan(&key))
	assert.Equal(t, "X", key)
}

func TestMigrationRunner_KeepsExistingProjects(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE projects (id INTEGER PRIMARY KEY, key TEXT, description TEXT NOT NULL, active BOOLEAN NOT NULL DEFAULT 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO projects (id, key, description) VALUES (3, '777', 'Ferien')`)
	require.NoError(t, err)

	require.NoError(t, NewMigrationRunner(db, DialectSQLite).Run())

	var desc string
	require.NoError(t, db.QueryRow("SELECT description FROM projects WHERE id = 3").Scan(&desc))
	assert.Equal(t, "Ferien", desc)
}
