package modlog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/JetOU777/Pokemon-Showdown/internal/config"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/pebblestore"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/sqlitestore"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// RegistryOptions configures a writer Registry.
type RegistryOptions struct {
	// LogsDir is the root of the on-disk log tree.
	LogsDir string
	// Backend selects the storage backend: "txt", "sqlite" or "pebble".
	// Unknown values fall back to "txt" with a warning.
	Backend string
	// SQLite must be set when Backend is "sqlite".
	SQLite *sqlitestore.DB
	// Pebble must be set when Backend is "pebble".
	Pebble *pebblestore.DB
	Logger log.Logger
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Registry hands out per-room writers and owns the shared root-room resources
// that sub-room writers alias.
type Registry struct {
	logsDir string
	backend string
	sqldb   *sqlitestore.DB
	kv      *pebblestore.DB
	logger  log.Logger
	now     func() time.Time

	mu     sync.Mutex
	shared map[string]Writer
}

// NewRegistry builds a Registry. The backend is validated lazily in Connect
// so a misconfigured value degrades per room instead of failing startup.
func NewRegistry(opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		logsDir: opts.LogsDir,
		backend: opts.Backend,
		sqldb:   opts.SQLite,
		kv:      opts.Pebble,
		logger:  logger.With(log.Component("modlog")),
		now:     now,
		shared:  map[string]Writer{},
	}
}

// Connect returns a set-up writer for roomID on the configured backend. Setup
// failures disable the writer and are logged, not returned: a room without a
// working modlog still runs.
func (reg *Registry) Connect(roomID string) Writer {
	backend := reg.backend
	switch backend {
	case config.ModlogBackendTxt, config.ModlogBackendSQLite, config.ModlogBackendPebble:
	default:
		reg.logger.Warn("unrecognized modlog backend, falling back to txt",
			log.Str("backend", backend), log.Str("room", roomID))
		backend = config.ModlogBackendTxt
	}
	w := reg.newWriter(backend, roomID)
	if err := w.Setup(); err != nil {
		reg.logger.Error("modlog setup failed", log.Str("room", roomID), log.Err(err))
	}
	return w
}

func (reg *Registry) newWriter(backend, roomID string) Writer {
	switch backend {
	case config.ModlogBackendSQLite:
		return &SQLiteWriter{reg: reg, roomID: roomID}
	case config.ModlogBackendPebble:
		return &PebbleWriter{reg: reg, roomID: roomID}
	default:
		return &FSWriter{reg: reg, roomID: roomID}
	}
}

// sharedWriter returns the set-up root writer for rootID, creating it on
// first use. Root ids never recurse back in here.
func (reg *Registry) sharedWriter(backend, rootID string) (Writer, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if w, ok := reg.shared[rootID]; ok {
		return w, nil
	}
	w := reg.newWriter(backend, rootID)
	if err := w.Setup(); err != nil {
		return nil, err
	}
	reg.shared[rootID] = w
	return w, nil
}

// CloseAll destroys every shared root writer. Non-shared writers belong to
// their rooms and are destroyed by them.
func (reg *Registry) CloseAll() error {
	reg.mu.Lock()
	writers := make([]Writer, 0, len(reg.shared))
	for _, w := range reg.shared {
		writers = append(writers, w)
	}
	reg.shared = map[string]Writer{}
	reg.mu.Unlock()

	var firstErr error
	for _, w := range writers {
		if err := w.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the text-backend file for roomID.
func (reg *Registry) Path(roomID string) string {
	return filepath.Join(reg.logsDir, "modlog", "modlog_"+roomID+".txt")
}

// record stamps an event into a full Record for roomID. Sub-rooms keep their
// own id in the record even though the backing resource is the root's.
func (reg *Registry) record(roomID string, e Event) Record {
	return Record{
		Timestamp:       reg.now().Unix(),
		RoomID:          roomID,
		Action:          e.Action,
		ActionTakerID:   e.ActionTakerID,
		UserID:          e.UserID,
		AutoconfirmedID: e.AutoconfirmedID,
		AltIDs:          e.AltIDs,
		IP:              e.IP,
		Note:            e.Note,
	}
}
