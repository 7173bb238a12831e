// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE FOR A "DOCUMENT" STORE?
// The review history is an append-only log of small JSON-ish records scoped
// to a user — no cross-record queries, no joins, no migrations of live data.
// A single-file embedded database covers that comfortably: the suggestions
// list is stored as a JSON TEXT column and (de)serialised at the edge, which
// gives us document-style flexibility inside a plain relational table.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works, and ":memory:" makes repository tests
// trivial.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite connection pool and runs migrations.
//
// dbPath examples:
//   - "data/reviewer.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path or permissions
	// problem surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in flight — the
	// default journal mode locks the whole file, which a web server feels.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New().
func (db *DB) Close() error {
	return db.conn.Close()
}

// History returns the history repository backed by this database.
func (db *DB) History() *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Sessions returns the session repository backed by this database.
func (db *DB) Sessions() *SessionRepo {
	return &SessionRepo{db: db}
}

// migrate creates the tables. CREATE TABLE IF NOT EXISTS keeps this
// idempotent — safe to run on every startup, no migration framework needed
// for two tables.
func (db *DB) migrate() error {
	// History: the append-only review log. suggestions is a JSON array
	// serialised as TEXT. The composite index serves the only read path:
	// "this user's records, newest first".
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id          TEXT PRIMARY KEY,
			user        TEXT NOT NULL,
			code        TEXT NOT NULL DEFAULT '',
			suggestions TEXT NOT NULL DEFAULT '[]',
			timestamp   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_history_user_timestamp ON history(user, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("creating history table: %w", err)
	}

	// Sessions: the server-side half of the auth cookie. The GitHub access
	// token lives here and ONLY here.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			username     TEXT NOT NULL,
			avatar       TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	return nil
}
