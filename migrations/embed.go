// Package migrations embeds the versioned SQL schema applied by cmd/migrate
// and, when database.auto_migrate is set, by the server on boot.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file
//
//go:embed *.sql
var FS embed.FS
