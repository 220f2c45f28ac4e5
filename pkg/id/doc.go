// Package id provides user and room identifier normalization.
//
// # Format
//
// An ID is the lowercase alphanumeric reduction of a display name: every
// character outside [a-z0-9] is stripped after lowercasing. IDs are the
// canonical join key across the moderation log, the chat log, and the
// relational sink, so the reduction must be stable across the codebase.
//
// Room IDs additionally carry structure: an id containing '-' names a
// sub-room, and the portion before the first '-' names the root room whose
// moderation log the sub-room shares.
//
// Usage
//
//	id.Normalize("Lilly ?!")      // "lilly"
//	id.Root("battle-gen9ou-123")  // "battle"
//	id.IsSubRoom("lobby")         // false
package id
