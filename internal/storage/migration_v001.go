package storage

import (
	"database/sql"
	"fmt"

	"github.com/runnerr0/wochenfazit/internal/config"
)

// migrateV001 creates the tables the report reads and writes. Every
// statement uses IF NOT EXISTS so an existing time-tracker database is
// left untouched.
func migrateV001(tx *sql.Tx, d Dialect) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS projects (
			id          ` + d.AutoIncrement() + `,
			key         TEXT,
			description TEXT NOT NULL,
			active      BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id          ` + d.AutoIncrement() + `,
			project_id  INTEGER NOT NULL REFERENCES projects(id),
			start_time  TEXT NOT NULL,
			stop_time   TEXT,
			description TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS contracts (
			id          ` + d.AutoIncrement() + `,
			keyword     TEXT NOT NULL,
			contract_id TEXT NOT NULL,
			task        TEXT NOT NULL DEFAULT ''
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_entries_start_time ON entries(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_project    ON entries(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_keyword  ON contracts(keyword)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV002 adds the internal absence projects unless a project with
// the same id already exists.
func migrateV002(tx *sql.Tx, d Dialect) error {
	insert := d.Rebind(`
		INSERT INTO projects (id, key, description)
		SELECT CAST(? AS INTEGER), CAST(? AS TEXT), CAST(? AS TEXT)
		WHERE NOT EXISTS (SELECT 1 FROM projects WHERE id = ?)
	`)
	for i, cat := range config.DefaultAbsenceCategories() {
		key := fmt.Sprintf("%03d", i-1)
		if cat.Key == config.KeyTemp {
			key = "X"
		}
		if _, err := tx.Exec(insert, cat.ProjectID, key, cat.Name, cat.ProjectID); err != nil {
			return err
		}
	}
	return nil
}
