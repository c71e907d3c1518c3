package db

import (
	"database/sql"
	"fmt"
)

const (
	createEstimatesTable = `
CREATE TABLE IF NOT EXISTS estimates (
    id               TEXT    PRIMARY KEY,
    source           TEXT    NOT NULL,
    delimiter        TEXT    NOT NULL,
    col              INTEGER NOT NULL,
    max_rows         INTEGER NOT NULL,
    pattern          TEXT    NOT NULL DEFAULT '',
    rows_read        INTEGER NOT NULL DEFAULT 0,
    samples          INTEGER NOT NULL DEFAULT 0,
    intervals        INTEGER NOT NULL DEFAULT 0,
    skipped          INTEGER NOT NULL DEFAULT 0,
    mean_interval_ms REAL    NOT NULL DEFAULT 0,
    hz               REAL    NOT NULL DEFAULT 0,
    created_at       TEXT    NOT NULL
)`

	createEstimatesCreatedIndex = `CREATE INDEX IF NOT EXISTS idx_estimates_created_at ON estimates(created_at)`
	createEstimatesSourceIndex  = `CREATE INDEX IF NOT EXISTS idx_estimates_source ON estimates(source)`
)

// Migrate creates all tables and indexes if they don't exist.
func Migrate(db *sql.DB) error {
	statements := []string{
		createEstimatesTable,
		createEstimatesCreatedIndex,
		createEstimatesSourceIndex,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
