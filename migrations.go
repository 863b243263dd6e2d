package worklog

import (
	"embed"
	"io/fs"
)

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// Root files (data/sql/migrations/*.sql) target PostgreSQL and the
// data/sql/migrations/sqlite directory holds the SQLite overrides. The
// go-persistence-bun loader picks the set matching the active dialect:
//
//	migrationsFS, _ := worklog.GetMigrationsFS()
//	client.RegisterDialectMigrations(
//	    migrationsFS,
//	    persistence.WithDialectSourceLabel("."),
//	    persistence.WithValidationTargets("postgres", "sqlite"),
//	)
//
//go:embed data/sql/migrations
var MigrationsFS embed.FS

// GetMigrationsFS returns the migrations rooted at data/sql/migrations.
func GetMigrationsFS() (fs.FS, error) {
	return fs.Sub(MigrationsFS, "data/sql/migrations")
}
