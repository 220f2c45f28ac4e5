// Package pebblestore wraps the Pebble key-value store behind the optional
// "pebble" moderation-log backend.
//
// The wrapper pins an fsync policy at open time and exposes the small
// batch/get/iterate surface the writer needs. Keys are laid out
// lexicographically so per-room ranges scan in write order; see the modlog
// package for the keyspace.
package pebblestore
