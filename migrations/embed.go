// Package migrations embeds the SQL schema files applied by internal/migration.
package migrations

import "embed"

// FS holds one directory per backend, each with NNN_name.sql files
//
//go:embed sqlite/*.sql
var FS embed.FS
