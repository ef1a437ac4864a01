package storage

import (
	"database/sql"
	"fmt"
)

// Initialize the SQLite poll_records schema.
func InitSchema(db *sql.DB) error {
	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS poll_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		route_id TEXT NOT NULL,
		ts_ms INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_poll_records_route_seq
	ON poll_records(route_id, seq);
	`

	return execSchema(db, "init sqlite schema", createRecordsQuery, createIndexQuery)
}

// Initialize the Postgres poll_records schema.
func InitPostgresSchema(db *sql.DB) error {
	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS poll_records (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		route_id TEXT NOT NULL,
		ts_ms BIGINT NOT NULL,
		payload JSONB NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_poll_records_route_seq
	ON poll_records(route_id, seq);
	`

	return execSchema(db, "init postgres schema", createRecordsQuery, createIndexQuery)
}

func execSchema(db *sql.DB, op string, statements ...string) error {
	if db == nil {
		return fmt.Errorf("%s: DB is nil", op)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}
