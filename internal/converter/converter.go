package converter

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JetOU777/Pokemon-Showdown/internal/modlog"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/fsstore"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/sqlitestore"
	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// Format names a moderation-log storage format.
type Format string

const (
	FormatTxt    Format = "txt"
	FormatSQLite Format = "sqlite"
)

// ErrUnsupported reports a conversion direction with no implementation.
var ErrUnsupported = errors.New("converter: unsupported conversion")

// Converter migrates moderation logs between formats rooted at one logs
// directory and one SQLite database.
type Converter struct {
	logsDir string
	db      *sqlitestore.DB
	logger  log.Logger
}

// New builds a Converter.
func New(logsDir string, db *sqlitestore.DB, logger log.Logger) *Converter {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Converter{logsDir: logsDir, db: db, logger: logger.With(log.Component("converter"))}
}

// Convert migrates from one format to the other.
func (c *Converter) Convert(from, to Format) error {
	switch {
	case from == FormatTxt && to == FormatSQLite:
		return c.textToTable()
	case from == FormatSQLite && to == FormatTxt:
		return c.tableToText()
	}
	return fmt.Errorf("%w: %s to %s", ErrUnsupported, from, to)
}

// textToTable rebuilds the modlog table from the text backups under
// logs/.modlog-backup/. The table is cleared first so the conversion can be
// re-run after a failed or partial import.
func (c *Converter) textToTable() error {
	backupDir := filepath.Join(c.logsDir, ".modlog-backup")
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return fmt.Errorf("converter: read backup dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "modlog_") && strings.HasSuffix(name, ".txt") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	// The global log duplicates per-room events, so it is read last: by then
	// every local copy it shadows is known and can be dropped.
	for i, name := range names {
		if name == "modlog_global.txt" {
			names = append(append(names[:i:i], names[i+1:]...), name)
			break
		}
	}

	logs := map[string][]modlog.Record{}
	var order []string
	for _, name := range names {
		roomID := strings.TrimSuffix(strings.TrimPrefix(name, "modlog_"), ".txt")
		recs, err := c.readBackupFile(filepath.Join(backupDir, name), roomID, logs)
		if err != nil {
			return err
		}
		logs[roomID] = append(logs[roomID], recs...)
		order = append(order, roomID)
	}

	sqldb := c.db.SQL()
	if _, err := sqldb.Exec(`DELETE FROM modlog`); err != nil {
		return fmt.Errorf("converter: clear table: %w", err)
	}
	stmt, err := c.db.PrepareInsert()
	if err != nil {
		return err
	}
	defer stmt.Close()

	total := 0
	for _, roomID := range order {
		if err := c.insertRoom(sqldb, stmt, logs[roomID]); err != nil {
			return fmt.Errorf("converter: insert %s: %w", roomID, err)
		}
		total += len(logs[roomID])
	}
	c.logger.Info("text to sqlite conversion finished",
		log.Int("rooms", len(order)), log.Int("records", total))
	return nil
}

// readBackupFile parses one backup file. Records from the global log also
// prune the matching local copies already collected in logs.
func (c *Converter) readBackupFile(path, roomID string, logs map[string][]modlog.Record) ([]modlog.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("converter: open %s: %w", path, err)
	}
	defer f.Close()

	isGlobal := roomID == "global"
	var recs []modlog.Record
	skipped := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		rec, err := modlog.ParseLine(modlog.Modernize(line), isGlobal)
		if err != nil {
			skipped++
			c.logger.Debug("skipping malformed line", log.Str("file", filepath.Base(path)), log.Err(err))
			continue
		}
		if rec == nil {
			continue
		}
		if isGlobal {
			local := strings.TrimPrefix(rec.RoomID, modlog.GlobalPrefix)
			shadow := *rec
			shadow.RoomID = local
			logs[local] = dropEqual(logs[local], shadow)
		}
		recs = append(recs, *rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("converter: scan %s: %w", path, err)
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed lines",
			log.Str("file", filepath.Base(path)), log.Int("count", skipped))
	}
	return recs, nil
}

func dropEqual(recs []modlog.Record, target modlog.Record) []modlog.Record {
	kept := recs[:0]
	for _, r := range recs {
		if !r.Equal(target) {
			kept = append(kept, r)
		}
	}
	return kept
}

func (c *Converter) insertRoom(sqldb *sql.DB, stmt *sql.Stmt, recs []modlog.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := sqldb.Begin()
	if err != nil {
		return err
	}
	txStmt := tx.Stmt(stmt)
	for _, rec := range recs {
		if _, err := txStmt.Exec(modlog.InsertArgs(rec)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// tableToText regenerates the logs/modlog/ text files from the modlog table.
// Global copies are merged back into their room, and sub-rooms group into
// their root room's file. Existing files are overwritten.
func (c *Converter) tableToText() error {
	sqldb := c.db.SQL()
	rows, err := sqldb.Query(`SELECT DISTINCT roomid FROM modlog`)
	if err != nil {
		return fmt.Errorf("converter: list rooms: %w", err)
	}
	roomSet := map[string]bool{}
	for rows.Next() {
		var roomID string
		if err := rows.Scan(&roomID); err != nil {
			rows.Close()
			return err
		}
		roomSet[strings.TrimPrefix(roomID, modlog.GlobalPrefix)] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	roomIDs := make([]string, 0, len(roomSet))
	for roomID := range roomSet {
		roomIDs = append(roomIDs, roomID)
	}
	sort.Strings(roomIDs)

	files := map[string][]string{}
	var fileOrder []string
	for _, roomID := range roomIDs {
		lines, err := c.roomLines(sqldb, roomID)
		if err != nil {
			return fmt.Errorf("converter: export %s: %w", roomID, err)
		}
		key := id.Root(roomID)
		if _, ok := files[key]; !ok {
			fileOrder = append(fileOrder, key)
		}
		files[key] = append(files[key], lines...)
	}

	outDir := filepath.Join(c.logsDir, "modlog")
	if err := fsstore.MkdirAll(outDir); err != nil {
		return err
	}
	for _, key := range fileOrder {
		path := filepath.Join(outDir, "modlog_"+key+".txt")
		if err := os.WriteFile(path, []byte(strings.Join(files[key], "")), 0o644); err != nil {
			return fmt.Errorf("converter: write %s: %w", path, err)
		}
	}
	c.logger.Info("sqlite to text conversion finished", log.Int("files", len(fileOrder)))
	return nil
}

// roomLines renders every record of one logical room, its global copies
// included, in timestamp order.
func (c *Converter) roomLines(sqldb *sql.DB, roomID string) ([]string, error) {
	rows, err := sqldb.Query(`
		SELECT timestamp, roomid, action, action_taker, userid, autoconfirmed_userid, alts, ip, note
		FROM modlog WHERE roomid = ? OR roomid = ? ORDER BY timestamp ASC, rowid ASC`,
		roomID, modlog.GlobalPrefix+roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var (
			rec                   modlog.Record
			actor, user, ac       sql.NullString
			alts, ipAddr, noteCol sql.NullString
		)
		if err := rows.Scan(&rec.Timestamp, &rec.RoomID, &rec.Action, &actor, &user, &ac, &alts, &ipAddr, &noteCol); err != nil {
			return nil, err
		}
		rec.ActionTakerID = actor.String
		rec.UserID = user.String
		rec.AutoconfirmedID = ac.String
		rec.IP = ipAddr.String
		rec.Note = noteCol.String
		if alts.Valid {
			if alts.String == "" {
				rec.AltIDs = []string{}
			} else {
				rec.AltIDs = strings.Split(alts.String, ",")
			}
		}
		rec.RoomID = strings.TrimPrefix(rec.RoomID, modlog.GlobalPrefix)
		lines = append(lines, modlog.EncodeLine(rec))
	}
	return lines, rows.Err()
}
