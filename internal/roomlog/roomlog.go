package roomlog

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/JetOU777/Pokemon-Showdown/internal/modlog"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/fsstore"
	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
	"github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

// ChannelAll is the scrollback channel that sees every private line of a
// multichannel room.
const ChannelAll = -1

// Options selects per-room logging behavior. Everything defaults off; chat
// rooms usually enable AutoTruncate and LogTimes, battles IsMultichannel and
// AutoTruncate.
type Options struct {
	// IsMultichannel marks rooms whose protocol lines carry per-player
	// visibility markers (battles).
	IsMultichannel bool
	// AutoTruncate caps the in-memory scrollback.
	AutoTruncate bool
	// LogTimes timestamps chat messages in the scrollback.
	LogTimes bool
}

// splitMarker matches the per-player visibility marker in multichannel lines.
var splitMarker = regexp.MustCompile(`\|split\|p(\d)`)

// inlineImage matches base64 data images, which are stripped from the on-disk
// chat log to keep it line-oriented and small.
var inlineImage = regexp.MustCompile(`<img[^>]* src="data:image/png;base64,[^">]+"[^>]*>`)

// Roomlog holds one room's logs: scrollback, chat stream, broadcast buffer
// and moderation-log writer. All methods are safe for concurrent use.
type Roomlog struct {
	reg    *Registry
	roomID string

	isMultichannel bool
	autoTruncate   bool
	logTimes       bool

	mu        sync.Mutex
	log       []string
	broadcast strings.Builder

	modlogWriter modlog.Writer

	stream         *fsstore.AppendStream
	streamDisabled bool
	filename       string
}

func newRoomlog(reg *Registry, roomID string, opts Options) *Roomlog {
	return &Roomlog{
		reg:            reg,
		roomID:         roomID,
		isMultichannel: opts.IsMultichannel,
		autoTruncate:   opts.AutoTruncate,
		logTimes:       opts.LogTimes,
	}
}

// RoomID returns the current room id.
func (l *Roomlog) RoomID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.roomID
}

func (l *Roomlog) setupModlog() {
	if l.modlogWriter != nil || l.reg.writers == nil {
		return
	}
	l.modlogWriter = l.reg.writers.Connect(l.roomID)
}

// setupStream opens (or rotates to) today's chat log file. Battle rooms and
// globally disabled chat logging leave the stream off permanently. Callers
// hold l.mu.
func (l *Roomlog) setupStream() error {
	if l.streamDisabled {
		return nil
	}
	if !l.reg.cfg.LogChat || strings.HasPrefix(l.roomID, "battle-") {
		l.streamDisabled = true
		return nil
	}
	now := l.reg.now()
	dateStr := now.Format("2006-01-02")
	monthStr := now.Format("2006-01")
	basepath := filepath.Join(l.reg.cfg.LogsDir, "chat", l.roomID)
	relpath := filepath.Join(monthStr, dateStr+".txt")
	if relpath == l.filename {
		return nil
	}
	if err := fsstore.MkdirAll(filepath.Join(basepath, monthStr)); err != nil {
		return err
	}
	l.filename = relpath
	if l.stream != nil {
		old := l.stream
		l.stream = nil
		if err := old.Close(); err != nil {
			l.reg.logger.Error("closing rotated chat log failed",
				log.Str("room", l.roomID), log.Err(err))
		}
	}
	s, err := fsstore.OpenAppendStream(filepath.Join(basepath, relpath))
	if err != nil {
		l.streamDisabled = true
		return err
	}
	room := l.roomID
	s.SetErrorHook(func(err error) {
		l.reg.logger.Error("chat log append failed", log.Str("room", room), log.Err(err))
	})
	l.stream = s
	// Keep a stable name pointing at the current day's log. Not every host
	// supports symlinks, so a failure is only logged.
	if err := fsstore.RelinkLatest(basepath, relpath, "today.txt"); err != nil {
		l.reg.logger.Debug("today.txt relink skipped", log.Str("room", room), log.Err(err))
	}
	return nil
}

// Add records one protocol line: scrollback, broadcast buffer and chat
// stream. A |uhtmlchange| line rewrites its earlier |uhtml| line in place
// instead of appending.
func (l *Roomlog) Add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if strings.HasPrefix(line, "|uhtmlchange|") {
		l.uhtmlchange(line)
		return
	}
	l.writeChatLine(line)
	if l.logTimes && strings.HasPrefix(line, "|c|") {
		line = "|c:|" + strconv.FormatInt(l.reg.now().Unix(), 10) + "|" + line[len("|c|"):]
	}
	l.log = append(l.log, line)
	l.broadcast.WriteString(line)
	l.broadcast.WriteByte('\n')
}

// writeChatLine appends one line to the on-disk chat log, prefixed with the
// wall-clock time. Callers hold l.mu.
func (l *Roomlog) writeChatLine(line string) {
	if l.stream == nil {
		return
	}
	line = inlineImage.ReplaceAllString(line, "")
	l.stream.WriteString(l.reg.now().Format("15:04:05") + " " + line + "\n")
}

func (l *Roomlog) uhtmlchange(line string) {
	rest := line[len("|uhtmlchange|"):]
	pipe := strings.IndexByte(rest, '|')
	if pipe >= 0 {
		originalStart := "|uhtml|" + rest[:pipe+1]
		for i, cur := range l.log {
			if strings.HasPrefix(cur, originalStart) {
				l.log[i] = originalStart + rest[pipe+1:]
				break
			}
		}
	}
	l.broadcast.WriteString(line)
	l.broadcast.WriteByte('\n')
}

// GetScrollback renders the scrollback for one viewer channel. In a
// multichannel room a |split|pN marker makes exactly one of the next two
// lines visible: the private one for player N (and for ChannelAll), the
// public one for everyone else.
func (l *Roomlog) GetScrollback(channel int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isMultichannel {
		lines := l.log
		if l.logTimes {
			lines = append([]string{"|:|" + strconv.FormatInt(l.reg.now().Unix(), 10)}, lines...)
		}
		return strings.Join(lines, "\n") + "\n"
	}
	out := make([]string, 0, len(l.log))
	for i := 0; i < len(l.log); i++ {
		line := l.log[i]
		m := splitMarker.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		marker, _ := strconv.Atoi(m[1])
		ownIdx := i + 2
		if channel == marker || channel == ChannelAll {
			ownIdx = i + 1
		}
		if ownIdx < len(l.log) {
			out = append(out, l.log[ownIdx])
		}
		i += 2
	}
	return strings.Join(out, "\n") + "\n"
}

// HasUsername reports whether the scrollback contains a chat message from
// username.
func (l *Roomlog) HasUsername(username string) bool {
	uid := id.Normalize(username)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.log {
		if strings.HasPrefix(line, "|c:|") {
			parts := strings.SplitN(line, "|", 5)
			if len(parts) > 3 && id.Normalize(parts[3]) == uid {
				return true
			}
		} else if strings.HasPrefix(line, "|c|") {
			parts := strings.SplitN(line, "|", 4)
			if len(parts) > 2 && id.Normalize(parts[2]) == uid {
				return true
			}
		}
	}
	return false
}

// ClearText removes chat messages by the given users from the scrollback,
// newest first, and returns the users actually affected. limit caps removals
// per call; 0 means unlimited. Battle rooms report matches but keep the lines
// as evidence.
func (l *Roomlog) ClearText(userIDs []string, limit int) []string {
	msgStart := "|c|"
	section := 3
	if l.logTimes {
		msgStart = "|c:|"
		section = 4
	}
	clearAll := limit == 0

	l.mu.Lock()
	defer l.mu.Unlock()
	isBattle := strings.HasPrefix(l.roomID, "battle-")
	var cleared []string
	seen := map[string]bool{}
	kept := make([]string, 0, len(l.log))
	for i := len(l.log) - 1; i >= 0; i-- {
		line := l.log[i]
		if strings.HasPrefix(line, msgStart) {
			parts := strings.SplitN(line, "|", section+1)
			if len(parts) > section-1 {
				uid := id.Normalize(parts[section-1])
				if containsString(userIDs, uid) {
					if !seen[uid] {
						seen[uid] = true
						cleared = append(cleared, uid)
					}
					if !isBattle {
						if clearAll {
							continue
						}
						if limit > 0 {
							limit--
							continue
						}
					}
				}
			}
		}
		kept = append(kept, line)
	}
	// kept was built newest first.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	l.log = kept
	return cleared
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Truncate trims the scrollback to the configured cap. A no-op for rooms
// created with NoAutoTruncate.
func (l *Roomlog) Truncate() {
	if !l.autoTruncate {
		return
	}
	max := l.reg.cfg.ScrollbackLines
	if max <= 0 {
		max = 100
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.log) > max {
		l.log = append([]string(nil), l.log[len(l.log)-max:]...)
	}
}

// Modlog records one moderation event through the room's writer. Dropped
// silently when the writer is disabled.
func (l *Roomlog) Modlog(e modlog.Event) {
	l.mu.Lock()
	w := l.modlogWriter
	l.mu.Unlock()
	if w == nil {
		return
	}
	w.Write(e)
}

// TakeBroadcastBuffer returns the accumulated broadcast lines and resets the
// buffer.
func (l *Roomlog) TakeBroadcastBuffer() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.broadcast.String()
	l.broadcast.Reset()
	return out
}

// Rename moves the room's logs to newID. Backing resources move only when
// the destination is free; the id update and registry re-keying always
// happen, and live streams are re-opened under the new id.
func (l *Roomlog) Rename(newID string) error {
	l.mu.Lock()
	oldID := l.roomID
	streamExisted := !l.streamDisabled

	var firstErr error
	if l.modlogWriter != nil {
		if _, err := l.modlogWriter.Rename(newID); err != nil {
			firstErr = err
		}
	}
	if l.stream != nil {
		if err := l.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.stream = nil
	}
	l.filename = ""
	oldDir := filepath.Join(l.reg.cfg.LogsDir, "chat", oldID)
	newDir := filepath.Join(l.reg.cfg.LogsDir, "chat", newID)
	if _, err := fsstore.SafeRename(oldDir, newDir); err != nil && firstErr == nil {
		firstErr = err
	}
	l.roomID = newID
	if streamExisted {
		if err := l.setupStream(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.mu.Unlock()

	l.reg.rekey(oldID, newID, l)
	return firstErr
}

// Destroy releases the room's streams and removes it from the registry.
// Shared modlog writers detach without closing the root resource.
func (l *Roomlog) Destroy() error {
	l.mu.Lock()
	var firstErr error
	if l.modlogWriter != nil {
		if err := l.modlogWriter.Destroy(); err != nil {
			firstErr = err
		}
		l.modlogWriter = nil
	}
	if l.stream != nil {
		if err := l.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.stream = nil
	}
	roomID := l.roomID
	l.mu.Unlock()

	l.reg.remove(roomID)
	return firstErr
}

// rollStream rotates the chat stream to the current day's file.
func (l *Roomlog) rollStream() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setupStream()
}
