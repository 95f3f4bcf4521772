package logstore

import (
	"database/sql"
	"fmt"
)

// A migration is one idempotent schema step. Steps run in order inside a
// transaction; the applied version is tracked in PRAGMA user_version.
type migration struct {
	version int
	apply   func(*sql.Tx) error
}

var migrations = []migration{
	{1, createLogTable},
	{2, addBacktraceColumn},
}

func migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %d: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
		// PRAGMA does not take bound parameters; version is a literal int.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

// createLogTable is the original schema. It predates the backtrace column,
// which migration 2 adds, so upgrades from old databases converge with fresh
// installs.
func createLogTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS lhr_log (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			url          TEXT NOT NULL,
			request_args TEXT,
			response     TEXT,
			runtime      REAL,
			date_added   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_lhr_log_date_added ON lhr_log(date_added DESC);
		CREATE INDEX IF NOT EXISTS idx_lhr_log_url ON lhr_log(url);
	`)
	if err != nil {
		return fmt.Errorf("creating log table: %w", err)
	}
	return nil
}

// addBacktraceColumn adds the backtrace column when it is missing. The column
// check keeps the step safe to re-run against databases of any vintage.
func addBacktraceColumn(tx *sql.Tx) error {
	exists, err := columnExists(tx, "lhr_log", "backtrace")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := tx.Exec(`ALTER TABLE lhr_log ADD COLUMN backtrace TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("adding backtrace column: %w", err)
	}
	return nil
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("introspecting %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("scanning table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
