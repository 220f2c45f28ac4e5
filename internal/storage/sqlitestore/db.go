package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema is the relational shape of one moderation-log record. Optional
// fields are NULL when the record carries no marker for them.
const schema = `
CREATE TABLE IF NOT EXISTS modlog (
	timestamp            INTEGER NOT NULL,
	roomid               TEXT NOT NULL,
	action               TEXT NOT NULL,
	action_taker         TEXT,
	userid               TEXT,
	autoconfirmed_userid TEXT,
	alts                 TEXT,
	ip                   TEXT,
	note                 TEXT
);
CREATE INDEX IF NOT EXISTS modlog_roomid ON modlog (roomid);
`

// Options configures the SQLite store wrapper.
type Options struct {
	// Path is the database file location. Required.
	Path string
	// FileMustExist refuses to create a fresh database, mirroring converter
	// semantics where a missing database is an operator error.
	FileMustExist bool
}

// DB wraps a SQLite database handle with the modlog schema applied.
type DB struct {
	inner *sql.DB
}

// Open opens (or creates) the database at opts.Path and ensures the schema.
func Open(opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, errors.New("sqlitestore: Options.Path is required")
	}
	if opts.FileMustExist {
		if _, err := os.Stat(opts.Path); err != nil {
			return nil, fmt.Errorf("sqlitestore: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, err
	}
	inner, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, err
	}
	// Single writer; SQLite serializes anyway and this avoids lock churn.
	inner.SetMaxOpenConns(1)
	if _, err := inner.Exec(schema); err != nil {
		inner.Close()
		return nil, fmt.Errorf("sqlitestore: apply schema: %w", err)
	}
	return &DB{inner: inner}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// SQL exposes the underlying handle for queries and transactions.
func (db *DB) SQL() *sql.DB { return db.inner }

// PrepareInsert returns the prepared statement inserting one modlog row in
// canonical column order.
func (db *DB) PrepareInsert() (*sql.Stmt, error) {
	return db.inner.Prepare(`
		INSERT INTO modlog (timestamp, roomid, action, action_taker, userid, autoconfirmed_userid, alts, ip, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
}
