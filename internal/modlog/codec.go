package modlog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// isoMillis is the timestamp layout of the text encoding (always UTC).
const isoMillis = "2006-01-02T15:04:05.000Z"

// GlobalPrefix marks the room id of records parsed out of the global log, so
// a global copy never collides with the room's own copy of the same event.
const GlobalPrefix = "global-"

// ErrMalformedLine reports a line that does not follow the canonical grammar.
var ErrMalformedLine = errors.New("modlog: malformed line")

// EncodeLine renders r as one canonical text line, trailing newline included.
//
// Optional fields are omitted together with their markers. A non-nil empty
// AltIDs still emits "alts:[]"; a nil slice emits nothing.
func EncodeLine(r Record) string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(time.Unix(r.Timestamp, 0).UTC().Format(isoMillis))
	b.WriteString("] (")
	b.WriteString(r.RoomID)
	b.WriteString(") ")
	b.WriteString(r.Action)
	b.WriteByte(':')
	if r.UserID != "" {
		b.WriteString(" [")
		b.WriteString(r.UserID)
		b.WriteByte(']')
	}
	if r.AutoconfirmedID != "" {
		b.WriteString(" ac:[")
		b.WriteString(r.AutoconfirmedID)
		b.WriteByte(']')
	}
	if r.AltIDs != nil {
		b.WriteString(" alts:[")
		b.WriteString(strings.Join(r.AltIDs, ","))
		b.WriteByte(']')
	}
	if r.IP != "" {
		b.WriteString(" ip:[")
		b.WriteString(r.IP)
		b.WriteByte(']')
	}
	if r.ActionTakerID != "" {
		b.WriteString(" by ")
		b.WriteString(r.ActionTakerID)
	}
	if r.Note != "" {
		b.WriteString(": ")
		b.WriteString(r.Note)
	}
	b.WriteByte('\n')
	return b.String()
}

// ParseLine decodes one canonical text line into a Record. A blank line
// yields (nil, nil). When isGlobal is set, the parsed room id gets the
// GlobalPrefix.
//
// Parsing is strict left to right: a missing or unbalanced bracket anywhere
// before the note is an error, never a guess.
func ParseLine(line string, isGlobal bool) (*Record, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	rest := line
	ts, rest, err := delimited(rest, '[', ']')
	if err != nil {
		return nil, malformed(line, "timestamp")
	}
	when, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, malformed(line, "timestamp")
	}
	rest, ok := strings.CutPrefix(rest, " ")
	if !ok {
		return nil, malformed(line, "room id")
	}
	room, rest, err := delimited(rest, '(', ')')
	if err != nil {
		return nil, malformed(line, "room id")
	}
	if isGlobal {
		room = GlobalPrefix + room
	}
	rest, ok = strings.CutPrefix(rest, " ")
	if !ok {
		return nil, malformed(line, "action")
	}
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return nil, malformed(line, "action")
	}
	rec := &Record{
		Timestamp: when.Unix(),
		RoomID:    room,
		Action:    rest[:colon],
	}
	rest = rest[colon+1:]
	rest = strings.TrimPrefix(rest, " ")

	if strings.HasPrefix(rest, "[") {
		rec.UserID, rest, err = delimited(rest, '[', ']')
		if err != nil {
			return nil, malformed(line, "user id")
		}
		rest = strings.TrimPrefix(rest, " ")
	}
	if after, found := strings.CutPrefix(rest, "ac:"); found {
		rec.AutoconfirmedID, rest, err = delimited(after, '[', ']')
		if err != nil {
			return nil, malformed(line, "autoconfirmed id")
		}
		rest = strings.TrimPrefix(rest, " ")
	}
	if after, found := strings.CutPrefix(rest, "alts:"); found {
		rec.AltIDs, rest, err = parseAlts(after)
		if err != nil {
			return nil, malformed(line, "alts")
		}
		rest = strings.TrimPrefix(rest, " ")
	}
	if strings.HasPrefix(rest, "ip:") || strings.HasPrefix(rest, "[") {
		after := strings.TrimPrefix(rest, "ip:")
		rec.IP, rest, err = delimited(after, '[', ']')
		if err != nil {
			return nil, malformed(line, "ip")
		}
		rest = strings.TrimPrefix(rest, " ")
	}

	switch {
	case rest == "":
	case strings.HasPrefix(rest, "by "):
		rest = rest[len("by "):]
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			rec.ActionTakerID = rest[:i]
			rec.Note = strings.TrimPrefix(rest[i+1:], " ")
		} else {
			rec.ActionTakerID = rest
		}
	case strings.HasPrefix(rest, ":"):
		// Note without an actor. Rare, but the encoder can produce it.
		rec.Note = strings.TrimPrefix(rest[1:], " ")
	default:
		return nil, malformed(line, "actor")
	}
	return rec, nil
}

// parseAlts accepts both live-format "alts:[a,b]" and the legacy
// "alts:[a],[b]" bracketing. The result is never nil: the marker was present.
func parseAlts(s string) ([]string, string, error) {
	alts := []string{}
	for {
		inner, rest, err := delimited(s, '[', ']')
		if err != nil {
			return nil, s, err
		}
		if inner != "" {
			alts = append(alts, strings.Split(inner, ",")...)
		}
		s = rest
		if strings.HasPrefix(s, ",[") {
			s = s[1:]
			continue
		}
		return alts, s, nil
	}
}

// delimited extracts the text between a leading open delimiter and the next
// close delimiter, returning the remainder after the close.
func delimited(s string, open, close byte) (string, string, error) {
	if len(s) == 0 || s[0] != open {
		return "", s, ErrMalformedLine
	}
	i := strings.IndexByte(s[1:], close)
	if i < 0 {
		return "", s, ErrMalformedLine
	}
	return s[1 : 1+i], s[2+i:], nil
}

func malformed(line, segment string) error {
	return fmt.Errorf("%w: bad %s segment in %q", ErrMalformedLine, segment, line)
}
