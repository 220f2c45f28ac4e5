// Package log provides the structured logging facade used across the
// codebase.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a Formatter
// (text or JSON) to one or more Outputs. Components receive a Logger by
// injection and tag themselves with Component; no global logger exists.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("roomlog"), log.Str("room", "lobby"))
//	l.Info("stream opened", log.Str("path", p))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config (level and
// format strings, typically sourced from flags or environment).
//
// # Interop
//
// To capture output from libraries that write through the standard library
// logger (Pebble does), use RedirectStdLog.
package log
