// Package migrations embeds the SQL schema migrations for the books database.
package migrations

import "embed"

// FS holds the embedded migration files, applied at service startup.
//
//go:embed *.sql
var FS embed.FS
