// Package config loads runtime configuration for the sessionkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with SESSIONKEEPER_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-s string   storage backend: sqlite, postgres, redis, s3, memory
//	-d string   SQLite database path
//	-p string   PostgreSQL DSN
//	-r string   Redis address
//	-t int      storage timeout (seconds)
//	-m string   secret scheme: plain, argon2, bcrypt
//	-k string   session signing key
//	-l string   log level
//
// # JSON schema
//
// Durations accept "3s" style strings or integer nanoseconds:
//
//	{
//	  "store_backend": "sqlite",
//	  "sqlite_path": "data/sessionkeeper.db",
//	  "storage_timeout": "5s",
//	  "secret_scheme": "argon2"
//	}
package config
