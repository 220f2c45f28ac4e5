// Package roomlog aggregates the per-room logs: the in-memory scrollback
// sent to joining users, the daily-rotated chat history on disk, the
// broadcast buffer, and the room's moderation log writer.
//
// A Roomlog is obtained from the Registry, which also owns the midnight
// rotation timer shared by every room's chat stream.
package roomlog
