package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS database_connection (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	host TEXT NOT NULL,
	port INTEGER NOT NULL,
	username TEXT NOT NULL,
	password TEXT NOT NULL,
	db_name TEXT NOT NULL,
	status TEXT NOT NULL,
	backup_count INTEGER NOT NULL DEFAULT 0,
	size_bytes INTEGER NOT NULL DEFAULT 0,
	last_backup DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS schedule (
	id TEXT PRIMARY KEY,
	database_id TEXT NOT NULL,
	database_name TEXT NOT NULL,
	cron_expression TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	next_run DATETIME,
	last_run DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (database_id) REFERENCES database_connection(id) ON DELETE CASCADE
);

-- No foreign key on database_id: backups are retained as read-only
-- history after the owning connection is deleted.
CREATE TABLE IF NOT EXISTS backup (
	id TEXT PRIMARY KEY,
	database_id TEXT NOT NULL,
	database_name TEXT NOT NULL,
	version TEXT NOT NULL,
	size_bytes INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	file_path TEXT NOT NULL DEFAULT '',
	origin TEXT NOT NULL,
	duration INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS alert (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	database_name TEXT,
	read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_backup_database_id ON backup(database_id);
CREATE INDEX IF NOT EXISTS idx_backup_status ON backup(status);
CREATE INDEX IF NOT EXISTS idx_backup_created_at ON backup(created_at);
CREATE INDEX IF NOT EXISTS idx_schedule_database_id ON schedule(database_id);
CREATE INDEX IF NOT EXISTS idx_schedule_next_run ON schedule(enabled, next_run);
CREATE INDEX IF NOT EXISTS idx_alert_read ON alert(read);
`

type DB struct {
	*sqlx.DB
}

func New(dbPath string) (*DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite serializes writers anyway; a single pooled connection also
	// keeps :memory: databases shared across all callers.
	db.SetMaxOpenConns(1)

	// WAL allows the scheduler and API handlers to read while a backup
	// completion is being written.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// NullString helper for optional string fields
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullTime helper for optional time fields
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
