package pebblestore

import (
	"testing"

	"github.com/cockroachdb/pebble"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{DataDir: t.TempDir(), Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetGetDelete(t *testing.T) {
	db := newTestDB(t)
	if err := db.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want v", got)
	}
	if err := db.Delete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("k")); err != ErrNotFound {
		t.Fatalf("get after delete: %v, want ErrNotFound", err)
	}
}

func TestIterRange(t *testing.T) {
	db := newTestDB(t)
	for _, k := range []string{"a/1", "a/2", "b/1"} {
		if err := db.Set([]byte(k), []byte(k)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: []byte("a/"), UpperBound: []byte("a0")})
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	defer iter.Close()
	n := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		n++
	}
	if n != 2 {
		t.Fatalf("scanned %d keys under a/, want 2", n)
	}
}
