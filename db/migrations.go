// Package db holds the embedded schema migrations.
package db

import "embed"

// MigrationsFS embeds the SQL migration files applied on startup.
//
//go:embed migration/*.sql
var MigrationsFS embed.FS
