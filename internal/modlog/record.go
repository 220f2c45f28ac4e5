package modlog

// Record is one moderation-log entry. Timestamp is Unix seconds; the text
// encoding renders it at millisecond precision but sub-second detail is never
// stored.
//
// Optional string fields use "" for absent. AltIDs distinguishes absent (nil)
// from present-but-empty (non-nil, zero length); both forms occur in
// historical logs.
type Record struct {
	Timestamp       int64
	RoomID          string
	Action          string
	ActionTakerID   string
	UserID          string
	AutoconfirmedID string
	AltIDs          []string
	IP              string
	Note            string
}

// Event carries the caller-supplied portion of a record. The writer stamps
// the timestamp and room id at write time.
type Event struct {
	Action          string
	ActionTakerID   string
	UserID          string
	AutoconfirmedID string
	AltIDs          []string
	IP              string
	Note            string
}

// Equal reports full value equality, including the nil/empty distinction on
// AltIDs. Used for duplicate elimination during format conversion.
func (r Record) Equal(o Record) bool {
	if r.Timestamp != o.Timestamp ||
		r.RoomID != o.RoomID ||
		r.Action != o.Action ||
		r.ActionTakerID != o.ActionTakerID ||
		r.UserID != o.UserID ||
		r.AutoconfirmedID != o.AutoconfirmedID ||
		r.IP != o.IP ||
		r.Note != o.Note {
		return false
	}
	if (r.AltIDs == nil) != (o.AltIDs == nil) || len(r.AltIDs) != len(o.AltIDs) {
		return false
	}
	for i := range r.AltIDs {
		if r.AltIDs[i] != o.AltIDs[i] {
			return false
		}
	}
	return true
}
