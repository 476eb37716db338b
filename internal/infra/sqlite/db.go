// Package sqlite is the persistence adapter: a local durable slot for the
// ledger snapshot plus the independent chat-history slot. Both live in a
// single SQLite file under the client data directory.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle used by the client engine.
type DB struct {
	db *sql.DB
}

// Open creates (or opens) finch.db inside dir and applies migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, "finch.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Single writer; WAL keeps saves cheap, busy_timeout covers the rare
	// overlap between a save and a history prune.
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Full-ledger snapshot, one row per named slot
		`CREATE TABLE IF NOT EXISTS ledger_snapshot (
			slot       TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Bounded chat history, independent of the ledger slot
		`CREATE TABLE IF NOT EXISTS chat_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_msg   TEXT NOT NULL DEFAULT '',
			bot_msg    TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}
