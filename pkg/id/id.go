package id

import "strings"

// Normalize reduces a display name to its canonical identifier form:
// lowercase, with every non-alphanumeric character removed.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsSubRoom reports whether roomID names a sub-room (contains a '-').
func IsSubRoom(roomID string) bool {
	return strings.Contains(roomID, "-")
}

// Root returns the root room id: the portion of roomID before the first '-'.
// For a root room id, Root returns the id unchanged.
func Root(roomID string) string {
	if i := strings.IndexByte(roomID, '-'); i >= 0 {
		return roomID[:i]
	}
	return roomID
}
