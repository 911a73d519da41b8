package db

import "embed"

// MigrationFS holds the schema migrations applied by db/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
