package sqlitestore

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(Options{Path: filepath.Join(t.TempDir(), "modlog.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stmt, err := db.PrepareInsert()
	if err != nil {
		t.Fatalf("prepare insert: %v", err)
	}
	defer stmt.Close()
	if _, err := stmt.Exec(int64(1577836800), "lobby", "MUTE", "alice", "bob", nil, nil, nil, "spamming"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var n int
	if err := db.SQL().QueryRow(`SELECT COUNT(*) FROM modlog WHERE roomid = ?`, "lobby").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestOpenFileMustExist(t *testing.T) {
	_, err := Open(Options{Path: filepath.Join(t.TempDir(), "missing.db"), FileMustExist: true})
	if err == nil {
		t.Fatalf("expected error for missing database")
	}
}
