// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — a single file inside the deployment, no
// separate server to run. For a single-server feed backend that's plenty,
// and ":memory:" gives tests a fresh, instant database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works.
//
// CASCADE RULES LIVE HERE:
// The schema carries every ON DELETE CASCADE the app depends on. Deleting a
// user removes their posts, likes and comments; deleting a post removes its
// likes and comments. The Go code never walks those chains by hand — a single
// DELETE inside SQLite's implicit transaction is atomic, which is exactly the
// "one commit per logical operation" rule the services rely on.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init().
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/photofeed.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	// The pragmas ride in the DSN so they apply to EVERY connection the pool
	// opens, not just the first one. A plain `PRAGMA foreign_keys=ON` via
	// Exec only configures whichever pooled connection it happens to run on;
	// the next connection comes up with foreign keys OFF and the cascade
	// rules silently stop working.
	//
	//   - journal_mode(WAL): concurrent reads while a write is in progress
	//   - foreign_keys(ON):  OFF by default in SQLite; every cascade rule in
	//     the schema is dead weight until this is on
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" gets its OWN empty database, so the pool
	// must be pinned to one connection or queries randomly see empty tables.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path or permissions problem
	// surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer it next to New().
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup; a real migration tracker can come later if the schema
// starts changing shape.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			is_active     INTEGER NOT NULL DEFAULT 1,
			is_verified   INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
		-- Partial index: many rows share github_id=0 (password accounts),
		-- but a real GitHub ID maps to exactly one account.
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username      TEXT NOT NULL,
			caption       TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL,
			file_type     TEXT NOT NULL,
			file_name     TEXT NOT NULL,
			media_file_id TEXT NOT NULL,
			created_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			UNIQUE (post_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating likes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username   TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on the
// given column set. SQLite reports these as plain-text errors like
// "UNIQUE constraint failed: likes.post_id, likes.user_id", so matching on
// the message is the only option the driver gives us. The explicit
// existence checks in the services are the first line of defense; this
// mapping is the second, for the race the checks can't close.
func isUniqueViolation(err error, columns string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, columns)
}
