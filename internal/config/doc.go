// Package config loads process-wide configuration for the logging subsystem.
//
// Configuration is read from an optional JSON file and then overlaid with
// CHATLOG_* environment variables, so deployments can ship a base file and
// tweak individual knobs per host.
package config
