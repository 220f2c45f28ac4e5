package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JetOU777/Pokemon-Showdown/internal/modlog"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/sqlitestore"
)

func newTestConverter(t *testing.T) (*Converter, *sqlitestore.DB, string) {
	t.Helper()
	logsDir := t.TempDir()
	db, err := sqlitestore.Open(sqlitestore.Options{Path: filepath.Join(t.TempDir(), "modlog.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(logsDir, db, nil), db, logsDir
}

func writeBackup(t *testing.T, logsDir, name, content string) {
	t.Helper()
	dir := filepath.Join(logsDir, ".modlog-backup")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir backup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func countRows(t *testing.T, db *sqlitestore.DB, where string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.SQL().QueryRow(`SELECT COUNT(*) FROM modlog WHERE `+where, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestTextToTable(t *testing.T) {
	c, db, logsDir := newTestConverter(t)
	writeBackup(t, logsDir, "modlog_lobby.txt", strings.Join([]string{
		"[2020-08-23T23:04:04.656Z] (lobby) MUTE: [troll] by mod: spamming",
		"[2014-11-20T13:16:16.524Z] (lobby) ([bob] was promoted to Room Driver by [alice].)",
		"[2020-08-23T23:05:00.000Z] (lobby) LOCK: [troll] by mod: evasion",
		"this line is garbage",
		"",
	}, "\n"))
	// The global log carries a copy of the LOCK; the local copy must go.
	writeBackup(t, logsDir, "modlog_global.txt",
		"[2020-08-23T23:05:00.000Z] (lobby) LOCK: [troll] by mod: evasion\n")

	if err := c.Convert(FormatTxt, FormatSQLite); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if n := countRows(t, db, "1=1"); n != 3 {
		t.Fatalf("total rows = %d, want 3", n)
	}
	if n := countRows(t, db, "roomid = ?", "lobby"); n != 2 {
		t.Fatalf("lobby rows = %d, want 2", n)
	}
	if n := countRows(t, db, "roomid = ?", "global-lobby"); n != 1 {
		t.Fatalf("global-lobby rows = %d, want 1", n)
	}
	// The historical promotion line must arrive in canonical form.
	if n := countRows(t, db, "action = ? AND userid = ? AND action_taker = ?", "ROOMDRIVER", "bob", "alice"); n != 1 {
		t.Fatalf("modernized promotion missing")
	}
}

func TestTextToTableIsRerunnable(t *testing.T) {
	c, db, logsDir := newTestConverter(t)
	writeBackup(t, logsDir, "modlog_lobby.txt",
		"[2020-08-23T23:04:04.656Z] (lobby) MUTE: [troll] by mod: spamming\n")

	if err := c.Convert(FormatTxt, FormatSQLite); err != nil {
		t.Fatalf("first convert: %v", err)
	}
	if err := c.Convert(FormatTxt, FormatSQLite); err != nil {
		t.Fatalf("second convert: %v", err)
	}
	if n := countRows(t, db, "1=1"); n != 1 {
		t.Fatalf("rows after rerun = %d, want 1", n)
	}
}

func TestTableToText(t *testing.T) {
	c, db, logsDir := newTestConverter(t)
	stmt, err := db.PrepareInsert()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()
	seed := []modlog.Record{
		{Timestamp: 100, RoomID: "lobby", Action: "MUTE", ActionTakerID: "mod", UserID: "troll", Note: "spamming"},
		{Timestamp: 200, RoomID: "global-lobby", Action: "LOCK", ActionTakerID: "mod", UserID: "troll"},
		{Timestamp: 150, RoomID: "battle-gen9ou-1", Action: "WEAKLOCK", ActionTakerID: "mod", UserID: "x"},
	}
	for _, rec := range seed {
		if _, err := stmt.Exec(modlog.InsertArgs(rec)...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := c.Convert(FormatSQLite, FormatTxt); err != nil {
		t.Fatalf("convert: %v", err)
	}

	lobby, err := os.ReadFile(filepath.Join(logsDir, "modlog", "modlog_lobby.txt"))
	if err != nil {
		t.Fatalf("read lobby file: %v", err)
	}
	lobbyLines := strings.Split(strings.TrimSuffix(string(lobby), "\n"), "\n")
	if len(lobbyLines) != 2 {
		t.Fatalf("lobby lines = %q, want 2", lobbyLines)
	}
	if !strings.Contains(lobbyLines[0], "MUTE:") || !strings.Contains(lobbyLines[1], "LOCK:") {
		t.Fatalf("lobby lines out of order: %q", lobbyLines)
	}
	// The global copy is written back under its room's own id.
	if !strings.Contains(lobbyLines[1], "(lobby)") {
		t.Fatalf("global copy kept its prefix: %q", lobbyLines[1])
	}

	battle, err := os.ReadFile(filepath.Join(logsDir, "modlog", "modlog_battle.txt"))
	if err != nil {
		t.Fatalf("read battle file: %v", err)
	}
	if !strings.Contains(string(battle), "(battle-gen9ou-1) WEAKLOCK:") {
		t.Fatalf("battle file = %q", battle)
	}
}

func TestRoundTripThroughTable(t *testing.T) {
	c, _, logsDir := newTestConverter(t)
	line := "[2020-08-23T23:04:04.000Z] (lobby) MUTE: [troll] ac:[trollac] alts:[a,b] ip:[127.0.0.1] by mod: spamming\n"
	writeBackup(t, logsDir, "modlog_lobby.txt", line)

	if err := c.Convert(FormatTxt, FormatSQLite); err != nil {
		t.Fatalf("to sqlite: %v", err)
	}
	if err := c.Convert(FormatSQLite, FormatTxt); err != nil {
		t.Fatalf("to txt: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(logsDir, "modlog", "modlog_lobby.txt"))
	if err != nil {
		t.Fatalf("read regenerated file: %v", err)
	}
	if string(b) != line {
		t.Fatalf("round trip changed the line:\n got %q\nwant %q", b, line)
	}
}

// Export, re-import, export again: the second export must be byte-identical
// to the first.
func TestConversionIdempotence(t *testing.T) {
	c, db, logsDir := newTestConverter(t)
	stmt, err := db.PrepareInsert()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()
	seed := []modlog.Record{
		{Timestamp: 100, RoomID: "lobby", Action: "MUTE", ActionTakerID: "mod", UserID: "troll", Note: "spamming"},
		{Timestamp: 200, RoomID: "lobby", Action: "UNMUTE", ActionTakerID: "mod", UserID: "troll"},
	}
	for _, rec := range seed {
		if _, err := stmt.Exec(modlog.InsertArgs(rec)...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := c.Convert(FormatSQLite, FormatTxt); err != nil {
		t.Fatalf("first export: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(logsDir, "modlog", "modlog_lobby.txt"))
	if err != nil {
		t.Fatalf("read first export: %v", err)
	}
	writeBackup(t, logsDir, "modlog_lobby.txt", string(first))
	if err := c.Convert(FormatTxt, FormatSQLite); err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if err := c.Convert(FormatSQLite, FormatTxt); err != nil {
		t.Fatalf("second export: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(logsDir, "modlog", "modlog_lobby.txt"))
	if err != nil {
		t.Fatalf("read second export: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("exports differ:\nfirst  %q\nsecond %q", first, second)
	}
}

func TestUnsupportedDirection(t *testing.T) {
	c, _, _ := newTestConverter(t)
	if err := c.Convert(FormatTxt, FormatTxt); err == nil {
		t.Fatal("expected an error for txt to txt")
	}
}
