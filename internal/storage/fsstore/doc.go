// Package fsstore wraps the filesystem capabilities the logging subsystem
// relies on: append streams, existence checks, collision-safe renames,
// directory creation, and best-effort symbolic links.
//
// # Append streams
//
// An AppendStream is a fire-and-forget writer over one file. Write enqueues
// onto a per-stream ordered queue drained by a single goroutine, so callers
// never block on disk and write order is preserved. Errors during the drain
// are reported to an optional error callback and otherwise dropped; appends
// are best-effort by contract. Close drains the queue before closing the
// file and is the only operation callers must wait on.
//
// # Renames
//
// SafeRename moves a file or directory only when the source exists and the
// destination does not. It never overwrites silently; a collision is a no-op
// reported through the returned bool.
package fsstore
