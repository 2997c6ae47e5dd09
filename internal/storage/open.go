package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/runnerr0/wochenfazit/internal/config"
)

// sqliteDSN builds the connection string for the configured sqlite driver.
// "sqlite3" is mattn/go-sqlite3, "sqlite" is the pure-Go modernc driver.
func sqliteDSN(driver, path string) (string, error) {
	switch driver {
	case "", "sqlite3":
		return path + "?_foreign_keys=on", nil
	case "sqlite":
		return "file:" + path + "?_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", driver)
	}
}

// Open connects to the configured time store and applies pending
// migrations. The returned store owns the connection; close it with db.Close.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*SQLStore, *sql.DB, error) {
	dialect, err := ParseDialect(cfg.DBMS)
	if err != nil {
		return nil, nil, err
	}

	var db *sql.DB
	switch dialect {
	case DialectPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("database.dsn is required for %s", dialect)
		}
		db, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
	default:
		dbPath, err := config.ExpandPath(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
		driver := cfg.SQLiteDriver
		if driver == "" {
			driver = "sqlite3"
		}
		dsn, err := sqliteDSN(driver, dbPath)
		if err != nil {
			return nil, nil, err
		}
		db, err = sql.Open(driver, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open database %s: %w", dbPath, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect %s database: %w", dialect, err)
	}

	runner := NewMigrationRunner(db, dialect)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewSQLStore(db, dialect), db, nil
}
