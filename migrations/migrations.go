package migrations

import "embed"

// FS embeds the SQL migrations applied by internal/db.Migrate.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
