package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the steps in order. Statements are written to run on both
// Postgres and SQLite.
var Migrations = []Migration{
	{
		Name: "create_resume_kv",
		SQL: `CREATE TABLE IF NOT EXISTS resume_kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "create_export_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS export_jobs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			template TEXT NOT NULL,
			status TEXT NOT NULL,
			file_name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			pages INTEGER NOT NULL DEFAULT 0,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP
		)`,
	},
	{
		Name: "index_export_jobs_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_export_jobs_user ON export_jobs (user_id, created_at)`,
	},
}

// RunMigrations executes every migration on startup.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	log.Info().Int("count", len(Migrations)).Msg("starting database migrations")
	for _, m := range Migrations {
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			log.Error().Err(err).Str("name", m.Name).Msg("migration failed")
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		log.Debug().Str("name", m.Name).Msg("migration completed")
	}
	log.Info().Msg("all migrations completed")
	return nil
}
