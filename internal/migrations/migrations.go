// Package migrations embeds the goose migrations for the SQL key-value
// backends.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SQLite embed.FS

//go:embed postgres/*.sql
var Postgres embed.FS
