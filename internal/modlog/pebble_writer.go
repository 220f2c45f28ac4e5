package modlog

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/JetOU777/Pokemon-Showdown/internal/config"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/pebblestore"
	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// Pebble keyspace, one entry per line plus a per-root sequence meta key:
//
//	modlog/<rootID>/e/<seq, big-endian uint64>  -> canonical text line
//	modlog/<rootID>/m                           -> last sequence number
//
// Big-endian sequence numbers make a prefix scan return lines in write order.

func keyEntry(rootID string, seq uint64) []byte {
	k := make([]byte, 0, len("modlog//e/")+len(rootID)+8)
	k = append(k, "modlog/"...)
	k = append(k, rootID...)
	k = append(k, "/e/"...)
	return binary.BigEndian.AppendUint64(k, seq)
}

func keyEntryPrefix(rootID string) []byte {
	return []byte("modlog/" + rootID + "/e/")
}

func keyMeta(rootID string) []byte {
	return []byte("modlog/" + rootID + "/m")
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix.
func prefixUpperBound(prefix []byte) []byte {
	ub := append([]byte(nil), prefix...)
	for i := len(ub) - 1; i >= 0; i-- {
		if ub[i] < 0xff {
			ub[i]++
			return ub[:i+1]
		}
	}
	return nil
}

// PebbleWriter stores canonical text lines in the Pebble backend. All
// sub-rooms of a root share one sequence; each record still carries its own
// room id inside the line.
type PebbleWriter struct {
	reg    *Registry
	roomID string

	// rootID names the keyspace this writer appends under. Set at Setup,
	// and only meaningful on root writers.
	rootID string

	root        *PebbleWriter
	initialized bool
	disabled    bool
	shared      bool

	mu      sync.Mutex
	lastSeq uint64
}

var _ Writer = (*PebbleWriter)(nil)

// Shared reports whether the writer aliases a root room's sequence.
func (w *PebbleWriter) Shared() bool { return w.shared }

// Setup loads the root sequence counter. Sub-rooms attach to the root
// writer instead of owning a counter.
func (w *PebbleWriter) Setup() error {
	if w.initialized || w.disabled {
		return nil
	}
	if w.reg.kv == nil {
		w.disabled = true
		return errors.New("modlog: pebble backend selected but no store configured")
	}
	if !id.IsSubRoom(w.roomID) {
		val, err := w.reg.kv.Get(keyMeta(w.roomID))
		switch {
		case err == nil && len(val) == 8:
			w.lastSeq = binary.BigEndian.Uint64(val)
		case err == nil, errors.Is(err, pebblestore.ErrNotFound):
			w.lastSeq = 0
		default:
			w.disabled = true
			return err
		}
		w.root = w
		w.rootID = w.roomID
		w.initialized = true
		return nil
	}
	root, err := w.reg.sharedWriter(config.ModlogBackendPebble, id.Root(w.roomID))
	if err != nil {
		w.disabled = true
		return err
	}
	w.root = root.(*PebbleWriter)
	w.shared = true
	w.initialized = true
	return nil
}

// Destroy detaches from the store. The store itself belongs to the registry.
func (w *PebbleWriter) Destroy() error {
	w.root = nil
	w.initialized = false
	w.shared = false
	return nil
}

// Rename moves the keyspace to newID when this writer owns it and the
// destination keyspace is empty. A sub-room writer never owns the keyspace:
// it only detaches and re-attaches, leaving the root's entries (including
// every sibling's) where they are. The id update always happens; setup
// re-runs unless disabled.
func (w *PebbleWriter) Rename(newID string) (bool, error) {
	existed := !w.disabled
	wasSub := id.IsSubRoom(w.roomID)
	oldRoot := id.Root(w.roomID)
	if err := w.Destroy(); err != nil {
		return false, err
	}
	var renamed bool
	var err error
	if !wasSub {
		renamed, err = w.moveKeys(oldRoot, id.Root(newID))
	}
	w.roomID = newID
	if existed {
		if serr := w.Setup(); serr != nil && err == nil {
			err = serr
		}
	}
	return renamed, err
}

func (w *PebbleWriter) moveKeys(oldRoot, newRoot string) (bool, error) {
	if w.reg.kv == nil || oldRoot == newRoot {
		return false, nil
	}
	if _, err := w.reg.kv.Get(keyMeta(newRoot)); err == nil {
		return false, nil
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return false, err
	}
	if _, err := w.reg.kv.Get(keyMeta(oldRoot)); errors.Is(err, pebblestore.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	prefix := keyEntryPrefix(oldRoot)
	iter, err := w.reg.kv.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return false, err
	}
	defer iter.Close()

	batch := w.reg.kv.NewBatch()
	defer batch.Close()
	for ok := iter.First(); ok; ok = iter.Next() {
		seq := binary.BigEndian.Uint64(iter.Key()[len(prefix):])
		if err := batch.Set(keyEntry(newRoot, seq), iter.Value(), nil); err != nil {
			return false, err
		}
		if err := batch.Delete(append([]byte(nil), iter.Key()...), nil); err != nil {
			return false, err
		}
	}
	meta, err := w.reg.kv.Get(keyMeta(oldRoot))
	if err != nil {
		return false, err
	}
	if err := batch.Set(keyMeta(newRoot), meta, nil); err != nil {
		return false, err
	}
	if err := batch.Delete(keyMeta(oldRoot), nil); err != nil {
		return false, err
	}
	if err := w.reg.kv.CommitBatch(batch); err != nil {
		return false, err
	}
	return true, nil
}

// Write appends one event under the root sequence. Dropped silently when the
// writer is not set up.
func (w *PebbleWriter) Write(e Event) {
	root := w.root
	if root == nil {
		return
	}
	line := EncodeLine(w.reg.record(w.roomID, e))
	root.append(line)
}

func (w *PebbleWriter) append(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeq++
	seq := w.lastSeq

	batch := w.reg.kv.NewBatch()
	defer batch.Close()
	meta := binary.BigEndian.AppendUint64(nil, seq)
	err := batch.Set(keyEntry(w.rootID, seq), []byte(line), nil)
	if err == nil {
		err = batch.Set(keyMeta(w.rootID), meta, nil)
	}
	if err == nil {
		err = w.reg.kv.CommitBatch(batch)
	}
	if err != nil {
		w.reg.logger.Error("modlog pebble write failed",
			log.Str("room", w.roomID), log.Err(err))
	}
}

// ReadLines returns every stored line for rootID in write order.
func ReadLines(kv *pebblestore.DB, rootID string) ([]string, error) {
	prefix := keyEntryPrefix(rootID)
	iter, err := kv.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var lines []string
	for ok := iter.First(); ok; ok = iter.Next() {
		lines = append(lines, string(iter.Value()))
	}
	return lines, iter.Error()
}
