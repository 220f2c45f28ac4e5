package modlog

import (
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/JetOU777/Pokemon-Showdown/internal/config"
	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// SQLiteWriter inserts records into the modlog table. Writes queue through an
// ordered drain goroutine per root room, matching the fire-and-forget contract
// of the text backend.
type SQLiteWriter struct {
	reg    *Registry
	roomID string

	q           *insertQueue
	initialized bool
	disabled    bool
	shared      bool
}

var _ Writer = (*SQLiteWriter)(nil)

// Shared reports whether the writer aliases a root room's queue.
func (w *SQLiteWriter) Shared() bool { return w.shared }

// Setup prepares the insert queue. Sub-rooms reuse the root room's queue.
func (w *SQLiteWriter) Setup() error {
	if w.initialized || w.disabled {
		return nil
	}
	if w.reg.sqldb == nil {
		w.disabled = true
		return errors.New("modlog: sqlite backend selected but no database configured")
	}
	if !id.IsSubRoom(w.roomID) {
		stmt, err := w.reg.sqldb.PrepareInsert()
		if err != nil {
			w.disabled = true
			return err
		}
		w.q = newInsertQueue(stmt, w.reg.logger)
		w.initialized = true
		return nil
	}
	root, err := w.reg.sharedWriter(config.ModlogBackendSQLite, id.Root(w.roomID))
	if err != nil {
		w.disabled = true
		return err
	}
	w.q = root.(*SQLiteWriter).q
	w.shared = true
	w.initialized = true
	return nil
}

// Destroy drains and closes the queue. A shared writer only detaches.
func (w *SQLiteWriter) Destroy() error {
	q := w.q
	ownsQueue := w.initialized && !w.shared
	w.q = nil
	w.initialized = false
	w.shared = false
	if !ownsQueue || q == nil {
		return nil
	}
	return q.close()
}

// Rename re-homes existing rows under newID, but only when the source has
// rows and the destination has none. The id update always happens.
func (w *SQLiteWriter) Rename(newID string) (bool, error) {
	existed := !w.disabled
	if err := w.Destroy(); err != nil {
		return false, err
	}
	renamed, err := w.moveRows(w.roomID, newID)
	w.roomID = newID
	if existed {
		if serr := w.Setup(); serr != nil && err == nil {
			err = serr
		}
	}
	return renamed, err
}

func (w *SQLiteWriter) moveRows(oldID, newID string) (bool, error) {
	if w.reg.sqldb == nil {
		return false, nil
	}
	db := w.reg.sqldb.SQL()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM modlog WHERE roomid = ?`, newID).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	res, err := db.Exec(`UPDATE modlog SET roomid = ? WHERE roomid = ?`, newID, oldID)
	if err != nil {
		return false, err
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return moved > 0, nil
}

// Write queues one event. Dropped silently when no queue is active.
func (w *SQLiteWriter) Write(e Event) {
	if w.q == nil {
		return
	}
	w.q.submit(w.reg.record(w.roomID, e))
}

// insertQueue serializes inserts for one root room through a single
// goroutine, preserving write order without blocking callers.
type insertQueue struct {
	stmt   *sql.Stmt
	logger log.Logger
	ch     chan Record
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func newInsertQueue(stmt *sql.Stmt, logger log.Logger) *insertQueue {
	q := &insertQueue{
		stmt:   stmt,
		logger: logger,
		ch:     make(chan Record, 256),
		done:   make(chan struct{}),
	}
	go q.drain()
	return q
}

func (q *insertQueue) drain() {
	defer close(q.done)
	for rec := range q.ch {
		if _, err := q.stmt.Exec(InsertArgs(rec)...); err != nil {
			q.logger.Error("modlog insert failed", log.Str("room", rec.RoomID), log.Err(err))
		}
	}
}

func (q *insertQueue) submit(rec Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.ch <- rec
}

func (q *insertQueue) close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	<-q.done
	return q.stmt.Close()
}

// InsertArgs maps a record onto the canonical insert column order. Absent
// optional fields become NULL; a non-nil empty alts list stays an empty
// string so the nil/empty distinction survives the round trip.
func InsertArgs(rec Record) []interface{} {
	return []interface{}{
		rec.Timestamp,
		rec.RoomID,
		rec.Action,
		nullable(rec.ActionTakerID),
		nullable(rec.UserID),
		nullable(rec.AutoconfirmedID),
		altsColumn(rec.AltIDs),
		nullable(rec.IP),
		nullable(rec.Note),
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func altsColumn(alts []string) interface{} {
	if alts == nil {
		return nil
	}
	return strings.Join(alts, ",")
}
