package modlog

import (
	"path/filepath"

	"github.com/JetOU777/Pokemon-Showdown/internal/config"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/fsstore"
	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// FSWriter appends canonical text lines to logs/modlog/modlog_<room>.txt.
// Sub-room writers alias the root room's stream but stamp their own room id
// into each line.
type FSWriter struct {
	reg    *Registry
	roomID string

	stream      *fsstore.AppendStream
	initialized bool
	disabled    bool
	shared      bool
}

var _ Writer = (*FSWriter)(nil)

// Shared reports whether the writer aliases a root room's stream.
func (w *FSWriter) Shared() bool { return w.shared }

// Setup opens the backing stream. For sub-rooms the root room's shared stream
// is opened (or reused) instead. Idempotent; a failure disables the writer.
func (w *FSWriter) Setup() error {
	if w.initialized || w.disabled {
		return nil
	}
	if !id.IsSubRoom(w.roomID) {
		if err := fsstore.MkdirAll(filepath.Dir(w.reg.Path(w.roomID))); err != nil {
			w.disabled = true
			return err
		}
		s, err := fsstore.OpenAppendStream(w.reg.Path(w.roomID))
		if err != nil {
			w.disabled = true
			return err
		}
		room := w.roomID
		s.SetErrorHook(func(err error) {
			w.reg.logger.Error("modlog append failed", log.Str("room", room), log.Err(err))
		})
		w.stream = s
		w.initialized = true
		return nil
	}
	root, err := w.reg.sharedWriter(config.ModlogBackendTxt, id.Root(w.roomID))
	if err != nil {
		w.disabled = true
		return err
	}
	w.stream = root.(*FSWriter).stream
	w.shared = true
	w.initialized = true
	return nil
}

// Destroy releases the stream. A shared writer detaches without closing the
// root's stream.
func (w *FSWriter) Destroy() error {
	s := w.stream
	ownsStream := w.initialized && !w.shared
	w.stream = nil
	w.initialized = false
	w.shared = false
	if !ownsStream || s == nil {
		return nil
	}
	return s.Close()
}

// Rename closes the stream, moves the backing file when the destination is
// free, adopts newID, and re-runs setup if the writer was not disabled.
func (w *FSWriter) Rename(newID string) (bool, error) {
	existed := !w.disabled
	if err := w.Destroy(); err != nil {
		return false, err
	}
	renamed, err := fsstore.SafeRename(w.reg.Path(w.roomID), w.reg.Path(newID))
	w.roomID = newID
	if existed {
		if serr := w.Setup(); serr != nil && err == nil {
			err = serr
		}
	}
	return renamed, err
}

// Write appends one event. Dropped silently when no stream is active.
func (w *FSWriter) Write(e Event) {
	if w.stream == nil {
		return
	}
	w.stream.WriteString(EncodeLine(w.reg.record(w.roomID, e)))
}
