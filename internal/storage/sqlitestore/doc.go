// Package sqlitestore wraps the SQLite database holding the relational
// moderation-log sink.
//
// The wrapper owns schema creation and exposes the prepared-statement and
// transaction surface the live sqlite writer and the format converter build
// on. The driver is modernc.org/sqlite (pure Go, registered as "sqlite").
package sqlitestore
