// Package migrations embeds the goose SQL migrations for the trip planner
// schema. cmd/api applies them when MIGRATE_ON_START is set; integration
// tests apply them before touching the database.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem path
// at runtime.
//
//go:embed *.sql
var FS embed.FS
