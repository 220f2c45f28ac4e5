// Package converter migrates moderation logs between the plain-text and
// SQLite storage formats.
//
// Text to SQLite reads the backup tree logs/.modlog-backup/, upgrades
// historical lines, drops per-room duplicates of globally logged events, and
// rebuilds the modlog table from scratch. SQLite to text regenerates
// logs/modlog/ files, merging each room's global copies back in.
package converter
