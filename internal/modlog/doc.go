// Package modlog implements per-room moderation logs: an append-only record
// of staff actions with a canonical single-line text encoding.
//
// The text form is the interchange format. Every backend (plain text files,
// SQLite, Pebble) stores records that round-trip through EncodeLine and
// ParseLine; Modernize upgrades historical free-text lines to the canonical
// grammar before parsing.
//
// Writers are obtained from a Registry. Sub-rooms (ids containing '-') share
// the backing resource of their root room but stamp records with their own
// room id.
package modlog
