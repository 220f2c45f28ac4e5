package roomlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/JetOU777/Pokemon-Showdown/internal/config"
	"github.com/JetOU777/Pokemon-Showdown/internal/modlog"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// Registry owns every room's Roomlog and the shared midnight rotation timer.
type Registry struct {
	cfg     config.Config
	writers *modlog.Registry
	logger  log.Logger
	now     func() time.Time

	mu    sync.Mutex
	rooms map[string]*Roomlog

	rollMu    sync.Mutex
	rolling   bool
	rollTimer *time.Timer
}

// RegistryOptions configures a roomlog Registry.
type RegistryOptions struct {
	Config config.Config
	// Writers hands out moderation-log writers per room.
	Writers *modlog.Registry
	Logger  log.Logger
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewRegistry builds a Registry.
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
		cfg:     opts.Config,
		writers: opts.Writers,
		logger:  logger.With(log.Component("roomlog")),
		now:     now,
		rooms:   map[string]*Roomlog{},
	}
}

// Create builds and registers the Roomlog for roomID, connecting its
// moderation-log writer and opening today's chat stream. Creating a room
// twice is a caller bug and errors.
func (reg *Registry) Create(roomID string, opts Options) (*Roomlog, error) {
	reg.mu.Lock()
	if _, ok := reg.rooms[roomID]; ok {
		reg.mu.Unlock()
		return nil, fmt.Errorf("roomlog: %s already exists", roomID)
	}
	l := newRoomlog(reg, roomID, opts)
	reg.rooms[roomID] = l
	reg.mu.Unlock()

	l.mu.Lock()
	l.setupModlog()
	if err := l.setupStream(); err != nil {
		reg.logger.Error("chat log setup failed", log.Str("room", roomID), log.Err(err))
	}
	l.mu.Unlock()

	reg.scheduleRoll()
	return l, nil
}

// Get returns the Roomlog for roomID, if it exists.
func (reg *Registry) Get(roomID string) (*Roomlog, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	l, ok := reg.rooms[roomID]
	return l, ok
}

func (reg *Registry) remove(roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, roomID)
}

func (reg *Registry) rekey(oldID, newID string, l *Roomlog) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, oldID)
	reg.rooms[newID] = l
}

func (reg *Registry) snapshot() []*Roomlog {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rooms := make([]*Roomlog, 0, len(reg.rooms))
	for _, l := range reg.rooms {
		rooms = append(rooms, l)
	}
	return rooms
}

// RollLogs rotates every room's chat stream to the current day's file and
// schedules the next rotation just past midnight. A rotation already in
// progress makes this a no-op.
func (reg *Registry) RollLogs() {
	reg.rollMu.Lock()
	if reg.rolling {
		reg.rollMu.Unlock()
		return
	}
	reg.rolling = true
	if reg.rollTimer != nil {
		reg.rollTimer.Stop()
		reg.rollTimer = nil
	}
	reg.rollMu.Unlock()

	for _, l := range reg.snapshot() {
		if err := l.rollStream(); err != nil {
			reg.logger.Error("chat log rotation failed", log.Str("room", l.RoomID()), log.Err(err))
		}
	}

	reg.rollMu.Lock()
	reg.rolling = false
	reg.rollMu.Unlock()
	reg.scheduleRoll()
}

// scheduleRoll arms the rotation timer if it is not armed already.
func (reg *Registry) scheduleRoll() {
	reg.rollMu.Lock()
	defer reg.rollMu.Unlock()
	if reg.rollTimer != nil {
		return
	}
	reg.rollTimer = time.AfterFunc(untilNextMidnight(reg.now()), reg.RollLogs)
}

// untilNextMidnight returns the time until one second past the next local
// midnight. The extra second keeps the rotation on the far side of the date
// change.
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 1, 0, now.Location())
	return next.Sub(now)
}

// Close destroys every room and stops the rotation timer. For shutdown.
func (reg *Registry) Close() error {
	reg.rollMu.Lock()
	if reg.rollTimer != nil {
		reg.rollTimer.Stop()
		reg.rollTimer = nil
	}
	reg.rollMu.Unlock()

	var firstErr error
	for _, l := range reg.snapshot() {
		if err := l.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if reg.writers != nil {
		if err := reg.writers.CloseAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
